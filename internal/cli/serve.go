package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caldwen/spellweave/internal/server"
	"github.com/caldwen/spellweave/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the spellweave HTTP API",
		Long: `Run the spellweave HTTP API.

The server exposes the build pipeline over HTTP:

  POST /api/v1/builds       build trees and layout from a spell list
  GET  /api/v1/builds       list persisted build IDs
  GET  /api/v1/builds/{id}  fetch a persisted build
  POST /api/v1/repairs      repair externally produced edge lists
  GET  /healthz             liveness check

Build persistence requires --mongo. Without --redis the server uses the
local file cache shared with the CLI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newRunner(ctx, noCache, redisAddr)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			var st *store.Store
			if mongoURI != "" {
				st, err = store.Connect(ctx, mongoURI, "")
				if err != nil {
					return err
				}
				defer st.Close(ctx)
			}

			srv := server.New(runner, st, c.Logger)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for shared caching")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "mongodb URI for build persistence")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
