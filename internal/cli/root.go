// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires together the rbroker root Cobra command and global
// CLI options.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/internal/cli/commands"
)

// NewRootCommand constructs the rbroker root Cobra command, wiring
// subcommands for every opcode the engine supports.
func NewRootCommand() *cobra.Command {
	version := os.Getenv("RBROKER_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "rbroker",
		Short:         "rbroker – exerciser CLI for the tuple-space request lifecycle engine",
		Long:          "rbroker drives a Redis-protocol backend through the PUT/GET/MOVE/NSxxx request lifecycle engine from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "path to rbroker.yml")
	cmd.PersistentFlags().StringP("address", "a", "", "backend address, overrides config")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of rbroker",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rbroker version %s\n", version)
		},
	})

	cmd.AddCommand(commands.NewCancelCommand())
	cmd.AddCommand(commands.NewDirectoryCommand())
	cmd.AddCommand(commands.NewGetCommand())
	cmd.AddCommand(commands.NewIteratorCommand())
	cmd.AddCommand(commands.NewMoveCommand())
	cmd.AddCommand(commands.NewNSCommand())
	cmd.AddCommand(commands.NewPutCommand())
	cmd.AddCommand(commands.NewReadCommand())
	cmd.AddCommand(commands.NewRemoveCommand())

	return cmd
}
