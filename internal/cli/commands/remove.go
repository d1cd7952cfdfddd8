// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewRemoveCommand returns the `rbroker remove` command.
func NewRemoveCommand() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			var ns *rbroker.NamespaceHandle
			if namespace != "" {
				ns, err = attachOrCreate(cmd, client, namespace)
				if err != nil {
					return err
				}
			}

			comp, err := client.Remove(cmd.Context(), ns, args[0], 0)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s rc=%d\n", comp.Status, comp.RC)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to remove from")
	return cmd
}
