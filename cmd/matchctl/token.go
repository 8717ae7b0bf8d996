package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobmatch-backend/internal/shared/auth"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a subject id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject := v.GetString("subject")
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			secret := v.GetString("jwt-secret")
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				secret = auth.DevSecret
			}
			signer, err := auth.NewSigner(secret)
			if err != nil {
				return err
			}
			claims := auth.Claims{Sub: subject, Email: v.GetString("email")}
			if ttl := v.GetDuration("ttl"); ttl > 0 {
				claims.Exp = time.Now().Add(ttl).Unix()
			}
			token, err := signer.Sign(claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringP("subject", "s", "", "subject id carried in the sub claim")
	flags.String("email", "", "optional email claim")
	flags.Duration("ttl", auth.DefaultTTL, "token lifetime")
	flags.String("jwt-secret", "", "signing secret (defaults to JWT_SECRET, then the dev secret)")
	for _, name := range []string{"subject", "email", "ttl", "jwt-secret"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}
