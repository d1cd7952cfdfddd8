// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMoveCommand returns the `rbroker move` command.
func NewMoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <key> <src-namespace> <dst-namespace>",
		Short: "Relocate a key between namespaces",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			srcNS, err := attachOrCreate(cmd, client, args[1])
			if err != nil {
				return err
			}
			dstNS, err := attachOrCreate(cmd, client, args[2])
			if err != nil {
				return err
			}

			comp, err := client.Move(cmd.Context(), srcNS, dstNS, args[0], 0)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s rc=%d\n", comp.Status, comp.RC)
			return nil
		},
	}
	return cmd
}
