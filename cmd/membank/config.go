package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage membank configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("db_filename:      %s\n", cfg.DBFilename)
		fmt.Printf("port:             %d\n", cfg.Port)
		fmt.Printf("http_stream_port: %d\n", cfg.HTTPStreamPort)
		fmt.Printf("host:             %s\n", cfg.Host)
		fmt.Printf("debug:            %t\n", cfg.Debug)
		if cfg.UseNeo4j() {
			fmt.Printf("neo4j.uri:        %s\n", cfg.Neo4j.URI)
			fmt.Printf("neo4j.user:       %s\n", cfg.Neo4j.User)
		} else {
			fmt.Println("neo4j:            (not configured, using embedded sqlite)")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to ~/.membank/membank.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path := filepath.Join(homeDir, ".membank", "membank.yaml")
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Printf("✅ wrote config to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
