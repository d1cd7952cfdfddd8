// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewNSCommand returns the `rbroker ns` command group: namespace
// lifecycle management.
func NewNSCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ns",
		Short: "Namespace lifecycle commands",
	}
	cmd.AddCommand(newNSCreateCommand())
	cmd.AddCommand(newNSAttachCommand())
	cmd.AddCommand(newNSDetachCommand())
	cmd.AddCommand(newNSDeleteCommand())
	cmd.AddCommand(newNSQueryCommand())
	return cmd
}

func newNSCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			h, comp, err := client.NSCreate(cmd.Context(), args[0], 0)
			if err != nil {
				return err
			}
			if h != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s handle=%s\n", comp.Status, h.ID())
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s\n", comp.Status)
			return nil
		},
	}
}

func newNSAttachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <name>",
		Short: "Attach to an existing namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			h, comp, err := client.NSCreate(cmd.Context(), args[0], 0)
			if err != nil {
				return err
			}
			comp, err = client.NSAttach(cmd.Context(), h, 0)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s refs=%d\n", comp.Status, h.Refs())
			return nil
		},
	}
}

func newNSDetachCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <name>",
		Short: "Detach from a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			h, err := attachOrCreate(cmd, client, args[0])
			if err != nil {
				return err
			}
			comp, err := client.NSDetach(cmd.Context(), h, 0)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s refs=%d\n", comp.Status, h.Refs())
			return nil
		},
	}
}

func newNSDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			h, err := attachOrCreate(cmd, client, args[0])
			if err != nil {
				return err
			}
			comp, err := client.NSDelete(cmd.Context(), h, 0)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s rc=%d\n", comp.Status, comp.RC)
			return nil
		},
	}
}

func newNSQueryCommand() *cobra.Command {
	var bufSize int
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List known namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			buf := make([]byte, bufSize)
			comp, err := client.NSQuery(cmd.Context(), buf, 0)
			if err != nil {
				return err
			}
			if comp.Status != rbroker.Success {
				printTable(cmd.OutOrStdout(), []string{"status", "rc"}, [][]string{{comp.Status.String(), itoa(comp.RC)}})
				return nil
			}

			rows := make([][]string, 0)
			for _, line := range strings.Split(strings.TrimRight(string(buf), "\x00"), "\n") {
				if line == "" {
					continue
				}
				parts := strings.SplitN(line, ":", 2)
				if len(parts) == 2 {
					rows = append(rows, []string{parts[0], parts[1]})
				}
			}
			printTable(cmd.OutOrStdout(), []string{"namespace", "refs"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&bufSize, "buffer", 65536, "query result buffer size in bytes")
	return cmd
}
