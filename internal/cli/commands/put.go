// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewPutCommand returns the `rbroker put` command.
func NewPutCommand() *cobra.Command {
	var namespace string
	var cookie uint64

	cmd := &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a value under a key",
		Args:  cobra.ExactArgs(2),
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

			comp, err := client.Put(cmd.Context(), ns, args[0], []byte(args[1]), cookie)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s rc=%d\n", comp.Status, comp.RC)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to put into")
	cmd.Flags().Uint64Var(&cookie, "cookie", 0, "opaque caller cookie echoed back in the completion")
	return cmd
}
