package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kodegraph/membank/internal/models"
	"github.com/kodegraph/membank/internal/ops"
	"github.com/spf13/cobra"
)

var (
	addDecisionRepository string
	addDecisionBranch     string
	addDecisionName       string
	addDecisionContext    string
	addDecisionStatus     string
	addDecisionDate       string
	addDecisionGoverns    string
)

var addDecisionCmd = &cobra.Command{
	Use:   "add-decision <id>",
	Short: "Create or update a Decision, enforcing its status state machine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := reg.GetClient(ctx, projectRoot)
		if err != nil {
			return fmt.Errorf("failed to open memory bank: %w", err)
		}
		gw := ops.NewGateways(client)
		scope := ops.Scope{Repository: addDecisionRepository, Branch: addDecisionBranch}

		date := time.Now()
		if addDecisionDate != "" {
			date, err = time.Parse(time.RFC3339, addDecisionDate)
			if err != nil {
				return fmt.Errorf("invalid --date, want RFC3339: %w", err)
			}
		}

		d := &models.Decision{
			ID:      args[0],
			Name:    addDecisionName,
			Context: addDecisionContext,
			Status:  models.DecisionStatus(addDecisionStatus),
			Date:    date,
		}

		result, err := ops.UpsertDecision(ctx, client, gw, scope, d, addDecisionGoverns)
		if err != nil {
			return fmt.Errorf("failed to upsert decision: %w", err)
		}

		fmt.Printf("✅ decision %s (%s) recorded for %s @ %s\n", result.ID, result.Status, scope.Repository, scope.Branch)
		return nil
	},
}

func init() {
	addDecisionCmd.Flags().StringVar(&addDecisionRepository, "repository", "", "repository (required)")
	addDecisionCmd.Flags().StringVar(&addDecisionBranch, "branch", "main", "branch")
	addDecisionCmd.Flags().StringVar(&addDecisionName, "name", "", "human-readable name")
	addDecisionCmd.Flags().StringVar(&addDecisionContext, "context", "", "why this decision was made")
	addDecisionCmd.Flags().StringVar(&addDecisionStatus, "status", string(models.DecisionProposed), "proposed, approved, implemented, or failed")
	addDecisionCmd.Flags().StringVar(&addDecisionDate, "date", "", "RFC3339 timestamp (default: now)")
	addDecisionCmd.Flags().StringVar(&addDecisionGoverns, "governs", "", "component id this decision governs, if any")
	addDecisionCmd.MarkFlagRequired("repository")
}
