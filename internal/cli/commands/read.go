// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewReadCommand returns the `rbroker read` command: a non-destructive
// peek.
func NewReadCommand() *cobra.Command {
	var namespace string
	var bufSize int
	var partial bool

	cmd := &cobra.Command{
		Use:   "read <key>",
		Short: "Peek a value without removing it",
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

			var flags rbroker.Flags
			if partial {
				flags |= rbroker.Partial
			}
			buf := make([]byte, bufSize)
			comp, err := client.Read(cmd.Context(), ns, args[0], buf, flags, 0)
			if err != nil {
				return err
			}
			if comp.Status == rbroker.Success {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", buf[:min(comp.RC, int64(len(buf)))])
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s rc=%d\n", comp.Status, comp.RC)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to read from")
	cmd.Flags().IntVar(&bufSize, "buffer", 4096, "read buffer size in bytes")
	cmd.Flags().BoolVar(&partial, "partial", false, "accept a truncated value instead of ERR_UBUFFER")
	return cmd
}
