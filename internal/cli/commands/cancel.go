// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// NewCancelCommand returns the `rbroker cancel` command. It connects a
// fresh Client whose table of outstanding requests is empty, so a Tag
// issued by another invocation or connection is reported as "no such
// outstanding request".
func NewCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <tag>",
		Short: "Cancel an outstanding request by tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := rbroker.ParseTag(args[0])
			if err != nil {
				return err
			}
			client, closeFn, err := connect(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			comp, err := client.Cancel(tag)
			if err != nil {
				return err
			}
			if comp == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no such outstanding request")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status=%s\n", comp.Status)
			return nil
		},
	}
}
