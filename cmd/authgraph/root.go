package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	RedisAddr  string
	Prefix     string
	Device     string
	// JWTSecret switches identity tokens to HS256. Empty generates an
	// Ed25519 key pair per process.
	JWTSecret string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "authgraph",
		Short:         "Run authentication graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML engine config (defaults when empty)")
	cmd.PersistentFlags().StringVar(&opts.RedisAddr, "redis", "", "redis address; empty uses REDIS_ADDR or an in-process miniredis")
	cmd.PersistentFlags().StringVar(&opts.Prefix, "prefix", "ag:dev", "redis key prefix of the development backend")
	cmd.PersistentFlags().StringVar(&opts.Device, "device", "local", "device name for anonymous logins")
	cmd.PersistentFlags().StringVar(&opts.JWTSecret, "jwt-secret", "", "HS256 secret for identity tokens; empty generates an ed25519 key")

	cmd.AddCommand(newGraphsCommand(opts))
	cmd.AddCommand(newProvidersCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newAccountCommand(opts))

	return cmd
}
