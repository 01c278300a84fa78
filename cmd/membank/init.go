package main

import (
	"context"
	"fmt"

	"github.com/kodegraph/membank/internal/ops"
	"github.com/spf13/cobra"
)

var initBranch string

var initCmd = &cobra.Command{
	Use:   "init <repository>",
	Short: "Create (or confirm) the memory bank for a repository+branch",
	Long: `init opens the Store Client for the current project root, installing
schema on first use, and upserts the Repository anchor node for the given
repository name and branch so later add-* commands have a target to link
against.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repository := args[0]
		ctx := context.Background()

		client, err := reg.GetClient(ctx, projectRoot)
		if err != nil {
			return fmt.Errorf("failed to open memory bank: %w", err)
		}
		gw := ops.NewGateways(client)

		repo, err := gw.Repository.Upsert(ctx, repository, initBranch)
		if err != nil {
			return fmt.Errorf("failed to create repository node: %w", err)
		}

		fmt.Printf("✅ memory bank ready: %s @ %s\n", repo.Name, repo.Branch)
		fmt.Printf("   project root: %s\n", projectRoot)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initBranch, "branch", "main", "branch to initialize")
}
