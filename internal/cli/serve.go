package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/platekit/pkg/api"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addrs []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts and allocations over HTTP",
		Long: `Serve layouts and allocations over HTTP.

The server uses the configured annotation store and plate defaults. --addr
may be repeated to listen on several addresses; if any listener fails, all
are shut down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addrs = []string{c.cfg.Server.Addr}
			}

			store, err := c.store(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			srv := api.New(store, api.WithLogger(c.Logger), api.WithDefaults(c.cfg.Plate))
			printInfo("Serving %s store on %v", store.Name(), addrs)

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, addr := range addrs {
				g.Go(func() error {
					return srv.ListenAndServe(ctx, addr)
				})
			}
			return g.Wait()
		},
	}

	cmd.Flags().StringSliceVar(&addrs, "addr", nil, "listen address (default from config, repeatable)")

	return cmd
}
