package main

import (
	"context"
	"fmt"

	"github.com/kodegraph/membank/internal/models"
	"github.com/kodegraph/membank/internal/ops"
	"github.com/spf13/cobra"
)

var (
	addContextRepository string
	addContextBranch     string
	addContextAgent      string
	addContextSummary    string
	addContextObservation string
	addContextIssue      string
)

var addContextCmd = &cobra.Command{
	Use:   "add-context <id>",
	Short: "Record an agent observation as a Context entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := reg.GetClient(ctx, projectRoot)
		if err != nil {
			return fmt.Errorf("failed to open memory bank: %w", err)
		}
		gw := ops.NewGateways(client)
		scope := ops.Scope{Repository: addContextRepository, Branch: addContextBranch}

		c := &models.Context{
			ID:          args[0],
			Agent:       addContextAgent,
			Summary:     addContextSummary,
			Observation: addContextObservation,
			Issue:       addContextIssue,
		}

		result, err := ops.UpsertContext(ctx, client, gw, scope, c)
		if err != nil {
			return fmt.Errorf("failed to upsert context: %w", err)
		}

		fmt.Printf("✅ context %s recorded for %s @ %s\n", result.ID, scope.Repository, scope.Branch)
		return nil
	},
}

func init() {
	addContextCmd.Flags().StringVar(&addContextRepository, "repository", "", "repository (required)")
	addContextCmd.Flags().StringVar(&addContextBranch, "branch", "main", "branch")
	addContextCmd.Flags().StringVar(&addContextAgent, "agent", "", "agent name recording this observation")
	addContextCmd.Flags().StringVar(&addContextSummary, "summary", "", "one-line summary")
	addContextCmd.Flags().StringVar(&addContextObservation, "observation", "", "full observation text")
	addContextCmd.Flags().StringVar(&addContextIssue, "issue", "", "linked issue identifier, if any")
	addContextCmd.MarkFlagRequired("repository")
}
