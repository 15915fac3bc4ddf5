// Package cli implements the platekit command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/platekit/pkg/annotation"
	"github.com/matzehuels/platekit/pkg/buildinfo"
	"github.com/matzehuels/platekit/pkg/config"
	"github.com/matzehuels/platekit/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "platekit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
	stats      *runStats

	// openStore is replaced in tests.
	openStore func(ctx context.Context, cfg config.Store) (annotation.Store, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		cfg:       config.Default(),
		stats:     &runStats{},
		openStore: annotation.Open,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Platekit plans and claims wells on microplates",
		Long:         `Platekit generates well fill orders for microplates and allocates unclaimed wells against a persistent annotation store, so interrupted runs resume where they stopped.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			observability.SetAllocationHooks(c.stats)
			observability.SetStoreHooks(c.stats)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvConfig+" or $XDG_CONFIG_HOME/platekit/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.strategiesCommand())
	root.AddCommand(c.allocateCommand())
	root.AddCommand(c.annotationsCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// store opens the configured annotation store. Remote backends show a
// spinner while connecting.
func (c *CLI) store(ctx context.Context) (annotation.Store, error) {
	backend := c.cfg.Store.Backend
	if backend != annotation.BackendRedis && backend != annotation.BackendMongo {
		return c.openStore(ctx, c.cfg.Store)
	}

	spinner := newSpinnerWithContext(ctx, "Connecting to "+backend+"...")
	spinner.Start()
	s, err := c.openStore(ctx, c.cfg.Store)
	if err != nil {
		spinner.StopWithError("Could not connect to " + backend)
		return nil, err
	}
	spinner.Stop()
	c.Logger.Debug("store connected", "backend", backend)
	return s, nil
}
