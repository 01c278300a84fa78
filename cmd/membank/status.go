package main

import (
	"context"
	"fmt"

	"github.com/kodegraph/membank/internal/ops"
	"github.com/spf13/cobra"
)

var statusRepository string
var statusBranch string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report Client Registry state for the current project root",
	Long: `status is a thin read-only view onto the Client Registry: it reports
whether a Store Client is already cached for this project root, then opens
(or confirms) one and prints a per-label count for the given scope.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		roots := reg.Roots()
		fmt.Printf("registry: %d client(s) cached\n", len(roots))
		for _, r := range roots {
			fmt.Printf("  - %s\n", r)
		}

		client, err := reg.GetClient(ctx, projectRoot)
		if err != nil {
			return fmt.Errorf("failed to open memory bank at %s: %w", projectRoot, err)
		}
		fmt.Printf("✅ memory bank open: %s\n", projectRoot)

		if statusRepository == "" {
			return nil
		}

		gw := ops.NewGateways(client)
		scope := ops.Scope{Repository: statusRepository, Branch: statusBranch}

		fmt.Printf("\n%s @ %s\n", scope.Repository, scope.Branch)
		for _, label := range ops.Labels() {
			count, err := ops.Count(ctx, client, gw, label, scope)
			if err != nil {
				fmt.Printf("  %-10s error: %v\n", label, err)
				continue
			}
			fmt.Printf("  %-10s %d\n", label, count)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusRepository, "repository", "", "repository to report per-label counts for")
	statusCmd.Flags().StringVar(&statusBranch, "branch", "main", "branch to report per-label counts for")
}
