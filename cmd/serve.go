//go:build linux

package cmd

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/gurisko/jbsearch/internal/catalog"
	"github.com/gurisko/jbsearch/internal/daemon"
	"github.com/gurisko/jbsearch/internal/discovery"
	"github.com/gurisko/jbsearch/internal/launcher"
	"github.com/gurisko/jbsearch/internal/provider"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search provider on the session bus",
	Long: `Own the search provider bus name and answer desktop shell search requests
until stopped.

Normally started by bus activation or by the systemd user unit. SIGHUP
rereads all recent-project sources.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := products()
	disc := discovery.New(reg, cfg.DiscoveryOptions(), logger)
	cat := catalog.New(disc, logger)

	scopes := launcher.NewSystemdScopes()
	defer scopes.Close()
	l := launcher.New(launcher.NewExecSpawner(logger), scopes, cfg.LauncherConfig(), logger)

	p := provider.New(cat, reg, l, provider.Options{DefaultProduct: cfg.Launch.DefaultProduct}, logger)

	d := daemon.New(&daemon.Config{
		BusName:    cfg.Bus.Name,
		ObjectPath: dbus.ObjectPath(cfg.Bus.ObjectPath),
	}, cat, p, logger, daemon.WithPending(l))

	if err := d.Run(cmd.Context()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
