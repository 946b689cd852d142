package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/coderstoolbox/internal/identity"
)

func newIdentityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect the identity provider configuration of this environment",
	}

	cmd.AddCommand(newIdentityCheckCommand())
	cmd.AddCommand(newIdentityVerifyCommand())

	return cmd
}

func newIdentityCheckCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which identity settings are present (values are never printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := identity.ConfigFromEnv(os.LookupEnv)
			getCliContext(cmd).Logger.Debug("checked identity configuration", "identity", cfg)

			writeIdentityReport(cmd.OutOrStdout(), cfg)

			if strict && !cfg.Configured() {
				return identity.ErrNotConfigured
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when accounts would be disabled")

	return cmd
}

func writeIdentityReport(out io.Writer, cfg identity.Config) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", identity.EnvProjectID, setOrNot(cfg.ProjectID))
	fmt.Fprintf(w, "%s\t%s\n", identity.EnvPublishableClientKey, setOrNot(cfg.PublishableClientKey))
	fmt.Fprintf(w, "%s\t%s\n", identity.EnvSecretServerKey, setOrNot(cfg.SecretServerKey))
	fmt.Fprintf(w, "%s\t%s\n", identity.EnvAPIURL, setOrNot(cfg.APIURL))
	fmt.Fprintf(w, "token store\t%s\n", cfg.TokenStore)
	w.Flush()

	fmt.Fprintln(out)
	switch {
	case cfg.SignInEnabled():
		fmt.Fprintln(out, "Accounts: enabled (sessions and sign-in)")
	case cfg.Configured():
		fmt.Fprintln(out, "Accounts: sessions only (no API URL, sign-in disabled)")
	default:
		fmt.Fprintln(out, "Accounts: disabled (pages render for anonymous visitors)")
	}
}

func setOrNot(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}

func newIdentityVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-token TOKEN",
		Short: "Verify an access token against this environment's secret server key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)
			svc := identity.New(identity.ConfigFromEnv(os.LookupEnv), cliCtx.Logger)

			user, err := svc.VerifyToken(args[0])
			if err != nil {
				if errors.Is(err, identity.ErrNotConfigured) {
					return fmt.Errorf("%w: set %s and %s", err, identity.EnvProjectID, identity.EnvSecretServerKey)
				}
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "user id\t%s\n", user.ID)
			fmt.Fprintf(w, "name\t%s\n", user.Name())
			if user.Email != "" {
				fmt.Fprintf(w, "email\t%s\n", user.Email)
			}
			if user.Anonymous {
				fmt.Fprintf(w, "anonymous\tyes\n")
			}
			if !user.ExpiresAt.IsZero() {
				fmt.Fprintf(w, "expires\t%s (in %s)\n", user.ExpiresAt.Format(time.RFC3339), time.Until(user.ExpiresAt).Round(time.Second))
			}
			return w.Flush()
		},
	}
}
