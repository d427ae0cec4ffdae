// Package cli defines the kanban command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/kanban/internal/model"
)

var (
	configPath string
	serverURL  string
	verbose    bool
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "kanban",
		Short: "Kanban - team boards in the terminal",
		Long: `kanban is a terminal client for a team Kanban board service.

Run it without a subcommand to open the board. Use "kanban mock-server" to
start a local server with a demo account (demo / demo).`,
		RunE:          runBoard, // Default action opens the board
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Board service URL (overrides server.base_url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(newVersionCmd(version))

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
