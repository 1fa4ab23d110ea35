package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/gurisko/jbsearch/internal/busclient"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the running service to reread all sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBusClient()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Refresh(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Catalog refreshed")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many projects the running service knows per product",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newBusClient()
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Stats(cmd.Context())
		if err != nil {
			if busclient.IsNotRunning(err) {
				fmt.Println("jbsearch service is not running")
				return nil
			}
			return err
		}

		ids := make([]string, 0, len(stats))
		var total uint32
		for id, n := range stats {
			ids = append(ids, id)
			total += n
		}
		sort.Strings(ids)

		fmt.Printf("jbsearch service running on %s\n", cfg.Bus.Name)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tPROJECTS")
		for _, id := range ids {
			fmt.Fprintf(w, "%s\t%d\n", id, stats[id])
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nTotal: %d project(s)\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statusCmd)
}

func newBusClient() (*busclient.Client, error) {
	return busclient.New(cfg.Bus.Name, dbus.ObjectPath(cfg.Bus.ObjectPath))
}
