// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/databroker-go/rbroker/pkg/config"
	"github.com/databroker-go/rbroker/pkg/logging"
	"github.com/databroker-go/rbroker/pkg/rbroker"
	"github.com/databroker-go/rbroker/pkg/transport/nettransport"
)

// connect builds a Client from a command's global flags: --config loads
// a config.Config, --address overrides its connection address, and
// --verbose (or logging.verbose in the config) wires a debug-level
// logging.Logger through an Observer adapter. The
// caller must call the returned close func.
func connect(cmd *cobra.Command) (*rbroker.Client, func(), error) {
	cfg := config.Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, nil, err
		}
		cfg = *loaded
	}
	if addr, _ := cmd.Flags().GetString("address"); addr != "" {
		cfg.Connection.Address = addr
	}
	verbose, _ := cmd.Flags().GetBool("verbose")
	verbose = verbose || cfg.Logging.Verbose

	tr, err := nettransport.Dial(cfg.Connection.Address, nettransport.Config{
		DialTimeout:  cfg.Connection.DialTimeout,
		WriteTimeout: cfg.Connection.WriteTimeout,
		ReadTimeout:  cfg.Connection.ReadTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(verbose)
	client, err := rbroker.NewClient(tr, rbroker.WithObserver(logging.NewObserver(logger)))
	if err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	closeFn := func() {
		_ = client.Close()
		_ = tr.Close()
	}
	return client, closeFn, nil
}

// attachOrCreate resolves a namespace handle by name for CLI commands
// that take a bare --namespace string: it attaches if the backend
// already knows the name, otherwise creates it.
func attachOrCreate(cmd *cobra.Command, client *rbroker.Client, name string) (*rbroker.NamespaceHandle, error) {
	h, comp, err := client.NSCreate(cmd.Context(), name, 0)
	if err != nil {
		return nil, err
	}
	if comp.Status == rbroker.Success {
		return h, nil
	}
	if comp.Status == rbroker.ErrExists || comp.Status == rbroker.ErrNoFile {
		if _, aerr := client.NSAttach(cmd.Context(), h, 0); aerr != nil {
			return nil, aerr
		}
		return h, nil
	}
	return nil, fmt.Errorf("rbroker: creating namespace %q: %s", name, comp.Status)
}
