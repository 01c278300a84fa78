package main

import (
	"context"
	"fmt"

	"github.com/kodegraph/membank/internal/models"
	"github.com/kodegraph/membank/internal/ops"
	"github.com/spf13/cobra"
)

var (
	addComponentRepository string
	addComponentBranch     string
	addComponentName       string
	addComponentKind       string
	addComponentStatus     string
	addComponentDependsOn  []string
)

var addComponentCmd = &cobra.Command{
	Use:   "add-component <id>",
	Short: "Create or update a Component and its dependency edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := reg.GetClient(ctx, projectRoot)
		if err != nil {
			return fmt.Errorf("failed to open memory bank: %w", err)
		}
		gw := ops.NewGateways(client)
		scope := ops.Scope{Repository: addComponentRepository, Branch: addComponentBranch}

		c := &models.Component{
			ID:        args[0],
			Name:      addComponentName,
			Kind:      addComponentKind,
			Status:    models.ComponentStatus(addComponentStatus),
			DependsOn: addComponentDependsOn,
		}

		result, err := ops.UpsertComponent(ctx, client, gw, scope, c)
		if err != nil {
			return fmt.Errorf("failed to upsert component: %w", err)
		}

		fmt.Printf("✅ component %s (%s) recorded for %s @ %s\n", result.ID, result.Status, scope.Repository, scope.Branch)
		if len(result.DependsOn) > 0 {
			fmt.Printf("   depends on: %v\n", result.DependsOn)
		}
		return nil
	},
}

func init() {
	addComponentCmd.Flags().StringVar(&addComponentRepository, "repository", "", "repository (required)")
	addComponentCmd.Flags().StringVar(&addComponentBranch, "branch", "main", "branch")
	addComponentCmd.Flags().StringVar(&addComponentName, "name", "", "human-readable name")
	addComponentCmd.Flags().StringVar(&addComponentKind, "kind", "", "component kind, e.g. service, library")
	addComponentCmd.Flags().StringVar(&addComponentStatus, "status", string(models.ComponentActive), "active, deprecated, or planned")
	addComponentCmd.Flags().StringSliceVar(&addComponentDependsOn, "depends-on", nil, "logical component ids this component depends on")
	addComponentCmd.MarkFlagRequired("repository")
}
