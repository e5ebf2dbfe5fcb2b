package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authgraph"
	"github.com/MrEthical07/authgraph/graph"
)

type runOptions struct {
	Graph     string
	Provider  string
	CredType  string
	CredID    string
	CredToken string
	Times     int
	Timeout   time.Duration
	JSON      bool
}

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one authentication attempt and print the outcome",
		Long: `Run an authentication graph against the development backend.

With --times greater than one the attempt is repeated against the same
backend, which shows credentials created by the first run being reused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAttempts(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Graph, "graph", "g", "", "graph or resolver name (config default when empty)")
	cmd.Flags().StringVarP(&opts.Provider, "provider", "p", "", "cross-platform provider name")
	cmd.Flags().StringVar(&opts.CredType, "cred-type", "", "provided credential type")
	cmd.Flags().StringVar(&opts.CredID, "cred-id", "", "provided credential id")
	cmd.Flags().StringVar(&opts.CredToken, "cred-token", "", "provided credential token")
	cmd.Flags().IntVarP(&opts.Times, "times", "n", 1, "number of sequential attempts")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-attempt timeout")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print outcomes as JSON")

	return cmd
}

func runAttempts(cmd *cobra.Command, rootOpts *rootOptions, opts *runOptions) error {
	if opts.Times <= 0 {
		return errors.New("--times must be > 0")
	}
	e, err := openEnv(rootOpts)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	req := authgraph.Request{
		Graph:    opts.Graph,
		Provider: opts.Provider,
		Credentials: graph.Credentials{
			Type:  opts.CredType,
			ID:    opts.CredID,
			Token: opts.CredToken,
		},
	}

	var failed int
	for i := 0; i < opts.Times; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		out, err := e.engine.Run(attemptCtx, req)
		cancel()
		if out == nil {
			return err
		}
		if err != nil {
			failed++
		}
		if err := printOutcome(cmd, out, opts.JSON); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d attempts failed", failed, opts.Times)
	}
	return nil
}

func printOutcome(cmd *cobra.Command, out *authgraph.Outcome, asJSON bool) error {
	w := cmd.OutOrStdout()
	if asJSON {
		view := map[string]any{
			"attempt_id":  out.AttemptID,
			"graph":       out.Graph,
			"provider":    out.Provider,
			"user_id":     out.UserID.String(),
			"attributes":  out.AuthAttributes,
			"diagnostics": out.Diagnostics,
			"succeeded":   out.Succeeded(),
		}
		if out.CrossPlatformAccountID != nil {
			view["cross_platform_account_id"] = out.CrossPlatformAccountID.String()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	if out.Succeeded() {
		fmt.Fprintf(w, "%s %s: signed in as %s\n", out.AttemptID, out.Graph, out.UserID)
		if out.CrossPlatformAccountID != nil && out.CrossPlatformAccountID.IsValid() {
			fmt.Fprintf(w, "  %s account %s\n", out.CrossPlatformAccountID.Type(), out.CrossPlatformAccountID)
		}
		return nil
	}
	fmt.Fprintf(w, "%s %s: failed: %v\n", out.AttemptID, out.Graph, out.Err)
	return nil
}
