package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/busclient"
	"github.com/gurisko/jbsearch/internal/discovery"
	"github.com/gurisko/jbsearch/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh the running service whenever recent-project files change",
	Long: `Watch the directories holding recent-project files of every product and
call Refresh on the running service after they settle.

The service itself never watches files; run this next to it (for example as a
second user unit) to keep results current without waiting for a reload.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before refreshing")
}

func runWatch(cmd *cobra.Command, args []string) error {
	targets := discovery.New(products(), cfg.DiscoveryOptions(), logger).WatchTargets()

	c, err := newBusClient()
	if err != nil {
		return err
	}
	defer c.Close()

	w, err := watch.New(watch.Config{
		Dirs:     targets.Dirs,
		Names:    targets.Names,
		Debounce: watchDebounce,
		OnChange: func(ctx context.Context, changed []string) error {
			if err := c.Refresh(ctx); err != nil {
				// keep watching; the service may come back
				if busclient.IsNotRunning(err) {
					logger.Warn("service not running, refresh skipped", zap.Error(err))
					return nil
				}
				return err
			}
			logger.Info("refreshed", zap.Int("changed", len(changed)))
			return nil
		},
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()
	return w.Run(ctx)
}
