package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authgraph/provider/federated"
)

func newAccountCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Provision federated accounts in the development backend",
	}
	cmd.AddCommand(newAccountCreateCommand(rootOpts))
	cmd.AddCommand(newAccountCodeCommand(rootOpts))
	cmd.AddCommand(newAccountDeveloperCommand(rootOpts))
	return cmd
}

func newAccountCreateCommand(rootOpts *rootOptions) *cobra.Command {
	var email, secret string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account that signs in with email and secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			id, err := e.accounts.CreateAccount(cmd.Context(), email, secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&secret, "secret", "", "account secret")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func newAccountCodeCommand(rootOpts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exchange-code <account-id>",
		Short: "Issue a single-use exchange code for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			code, err := e.accounts.IssueExchangeCode(cmd.Context(), federated.ParseAccountID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func newAccountDeveloperCommand(rootOpts *rootOptions) *cobra.Command {
	var address, name string
	cmd := &cobra.Command{
		Use:   "developer <account-id>",
		Short: "Register a developer tool credential for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(rootOpts)
			if err != nil {
				return err
			}
			defer e.close()

			return e.accounts.RegisterDeveloperCredential(cmd.Context(), address, name, federated.ParseAccountID(args[0]))
		},
	}
	cmd.Flags().StringVar(&address, "address", "localhost:6300", "developer tool address")
	cmd.Flags().StringVar(&name, "name", "", "credential name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
