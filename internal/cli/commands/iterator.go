// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewIteratorCommand returns the `rbroker iterator` command: it walks a
// namespace's key space one element per step until exhausted.
func NewIteratorCommand() *cobra.Command {
	var namespace string
	var bufSize int

	cmd := &cobra.Command{
		Use:   "iterator <match>",
		Short: "Step through keys matching a pattern one at a time",
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

			it := client.NewIterator(ns, args[0])
			buf := make([]byte, bufSize)
			for !it.Done() {
				comp, err := client.IteratorStep(cmd.Context(), it, buf, 0)
				if err != nil {
					return err
				}
				if comp.Status != rbroker.Success {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s\n", comp.Status)
					return nil
				}
				if comp.RC == 0 {
					break
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", buf[:comp.RC])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to iterate")
	cmd.Flags().IntVar(&bufSize, "buffer", 4096, "per-step read buffer size in bytes")
	return cmd
}
