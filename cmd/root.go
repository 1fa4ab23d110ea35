package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/config"
	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/registry"
)

var (
	cfgFile string

	// set by the root pre-run for every subcommand
	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jbsearch",
	Short: "jbsearch - JetBrains recent projects in desktop search",
	Long: `jbsearch exposes the recent projects of JetBrains IDEs to the desktop shell
search over the session bus and opens the chosen project in its IDE.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, resolved, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		l, err := logging.New(c.Logging())
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		if resolved != "" {
			l.Debug("loaded config", zap.String("path", resolved))
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/jbsearch/config.yaml)")
}

func Execute() error {
	// Silence usage and errors to avoid cluttering output with Cobra defaults
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd.Execute()
}

// products is the default registry minus the ones disabled in config.
func products() *registry.Registry {
	return registry.Default().Without(cfg.Products.Disabled...)
}
