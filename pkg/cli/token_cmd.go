package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"gatecheck/internal/db/repository"
	"gatecheck/internal/service/token"
)

func newKeygenCmd() *cobra.Command {
	var (
		kid string
		out string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA signing keypair and write it as PEM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keypair, err := token.GenerateKeypair(kid)
			if err != nil {
				return err
			}
			if err := keypair.WritePEM(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote signing key %s to %s\n", kid, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kid, "kid", "", "key identifier")
	cmd.Flags().StringVar(&out, "out", "", "output path for the private key PEM")
	_ = cmd.MarkFlagRequired("kid")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newTokenCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint tokens and maintain the revocation store",
	}
	cmd.AddCommand(newTokenIssueCmd(dbPath))
	cmd.AddCommand(newTokenGCCmd(dbPath))
	return cmd
}

func newTokenIssueCmd(dbPath *string) *cobra.Command {
	var (
		keyPath string
		kid     string
		issuer  string
		ttl     time.Duration
		admin   bool
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "issue <username>",
		Short: "Mint a signed token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			// The subject must exist so the minted token authenticates.
			user, err := rt.users.GetByUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			ring, err := token.LoadKeyRing([]token.KeypairFile{{KID: kid, Path: keyPath}})
			if err != nil {
				return err
			}
			logger := slog.New(slog.DiscardHandler)
			authority := token.NewAuthority(ring, repository.NewRevokedTokenRepo(rt.writeDB), issuer, logger)

			audience := []string{"user"}
			if admin || user.IsAdmin {
				audience = append(audience, "admin")
			}

			var signed string
			if refresh {
				signed, _, err = authority.IssueRefresh(user.Username, audience, ttl)
			} else {
				signed, _, err = authority.Issue(user.Username, audience, ttl)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&keyPath, "key", "", "path to the signing key PEM")
	cmd.Flags().StringVar(&kid, "kid", "", "key identifier")
	cmd.Flags().StringVar(&issuer, "issuer", "gatecheck", "issuer claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&admin, "admin", false, "force the admin audience")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "mint a refresh token instead of an access token")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("kid")
	return cmd
}

func newTokenGCCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "gc",
		Short: "Remove expired entries from the revocation store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(*dbPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			revocations := repository.NewRevokedTokenRepo(rt.writeDB)
			removed, err := revocations.DeleteExpired(cmd.Context(), time.Now().Unix())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired revocation(s)\n", removed)
			return nil
		},
	}
}
