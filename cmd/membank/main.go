package main

import (
	"fmt"
	"os"

	"github.com/kodegraph/membank/internal/config"
	"github.com/kodegraph/membank/internal/logging"
	"github.com/kodegraph/membank/internal/registry"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile     string
	projectRoot string
	verbose     bool
	cfg         *config.Config
	reg         *registry.Registry
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "membank",
	Short: "membank - a per-project graph memory bank for coding agents",
	Long: `membank stores components, decisions, rules, and context notes for a
project in a small embedded graph, scoped by repository and branch, so an
agent can query architectural memory instead of re-deriving it every session.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := logging.Initialize(logging.DefaultConfig(verbose)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			logging.Warn("failed to load config, using defaults", "error", err)
			cfg = config.Default()
		}

		if projectRoot == "" {
			projectRoot, _ = os.Getwd()
		}

		reg = registry.New(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./membank.yaml or ~/.membank/membank.yaml)")
	rootCmd.PersistentFlags().StringVar(&projectRoot, "project-root", "", "project root directory (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`membank {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addContextCmd)
	rootCmd.AddCommand(addComponentCmd)
	rootCmd.AddCommand(addDecisionCmd)
	rootCmd.AddCommand(addRuleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}
