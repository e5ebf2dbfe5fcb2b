package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authgraph/internal/httpapi"
)

type serveOptions struct {
	Addr           string
	TrustProxy     bool
	AttemptTimeout time.Duration
}

func newServeCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP",
		Long: `Serve the engine over HTTP until interrupted.

Routes:
  POST /v1/authenticate   run an attempt
  GET  /v1/graphs         list graphs and resolvers
  GET  /v1/providers      list cross-platform providers
  GET  /v1/me             claims of a bearer identity token
  GET  /metrics           Prometheus exposition
  GET  /healthz           liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(e.engine, httpapi.Options{
				Logger:         e.logger,
				Verifier:       e.tokens,
				TrustProxy:     opts.TrustProxy,
				AttemptTimeout: opts.AttemptTimeout,
			})
			return srv.Run(ctx, opts.Addr)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.TrustProxy, "trust-proxy", false, "take the client address from X-Forwarded-For")
	cmd.Flags().DurationVar(&opts.AttemptTimeout, "attempt-timeout", 30*time.Second, "timeout of one authenticate request")

	return cmd
}
