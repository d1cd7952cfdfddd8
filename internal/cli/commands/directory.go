// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewDirectoryCommand returns the `rbroker directory` command.
func NewDirectoryCommand() *cobra.Command {
	var namespace string
	var bufSize int

	cmd := &cobra.Command{
		Use:   "directory <match>",
		Short: "Enumerate keys matching a pattern",
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

			buf := make([]byte, bufSize)
			comp, err := client.Directory(cmd.Context(), ns, args[0], buf, 0)
			if err != nil {
				return err
			}
			if comp.Status != rbroker.Success {
				printTable(cmd.OutOrStdout(), []string{"status", "rc"}, [][]string{{comp.Status.String(), itoa(comp.RC)}})
				return nil
			}

			keys := strings.Split(strings.TrimRight(string(buf), "\x00"), "\n")
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				if k == "" {
					continue
				}
				rows = append(rows, []string{k})
			}
			printTable(cmd.OutOrStdout(), []string{"key"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to scan")
	cmd.Flags().IntVar(&bufSize, "buffer", 65536, "scan result buffer size in bytes")
	return cmd
}
