package main

import (
	"context"
	"fmt"

	"github.com/kodegraph/membank/internal/models"
	"github.com/kodegraph/membank/internal/ops"
	"github.com/spf13/cobra"
)

var (
	addRuleRepository string
	addRuleBranch     string
	addRuleName       string
	addRuleContent    string
	addRuleTriggers   []string
	addRuleStatus     string
)

var addRuleCmd = &cobra.Command{
	Use:   "add-rule <id>",
	Short: "Create or update a standing Rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := reg.GetClient(ctx, projectRoot)
		if err != nil {
			return fmt.Errorf("failed to open memory bank: %w", err)
		}
		gw := ops.NewGateways(client)
		scope := ops.Scope{Repository: addRuleRepository, Branch: addRuleBranch}

		r := &models.Rule{
			ID:       args[0],
			Name:     addRuleName,
			Content:  addRuleContent,
			Triggers: addRuleTriggers,
			Status:   models.RuleStatus(addRuleStatus),
		}

		result, err := ops.UpsertRule(ctx, client, gw, scope, r)
		if err != nil {
			return fmt.Errorf("failed to upsert rule: %w", err)
		}

		fmt.Printf("✅ rule %s (%s) recorded for %s @ %s\n", result.ID, result.Status, scope.Repository, scope.Branch)
		return nil
	},
}

func init() {
	addRuleCmd.Flags().StringVar(&addRuleRepository, "repository", "", "repository (required)")
	addRuleCmd.Flags().StringVar(&addRuleBranch, "branch", "main", "branch")
	addRuleCmd.Flags().StringVar(&addRuleName, "name", "", "human-readable name")
	addRuleCmd.Flags().StringVar(&addRuleContent, "content", "", "rule text")
	addRuleCmd.Flags().StringSliceVar(&addRuleTriggers, "triggers", nil, "keywords that should surface this rule")
	addRuleCmd.Flags().StringVar(&addRuleStatus, "status", string(models.RuleActive), "active or deprecated")
	addRuleCmd.MarkFlagRequired("repository")
}
