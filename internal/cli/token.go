package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wordduel/wordduel/internal/auth"
	"github.com/wordduel/wordduel/internal/dependencies/clock"
	"github.com/wordduel/wordduel/internal/model"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
		save   bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a connection token",
		Long: `Mint a signed connection token for a user.

The secret must match the server's JWT_SECRET. Real deployments issue
tokens from their identity provider; this exists for local development
and testing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Secret == "" {
				return fmt.Errorf("--secret is required")
			}

			verifier := auth.NewJWTVerifier(cfg.Secret, clock.New())
			token, err := verifier.Issue(model.UserID(userID), email, ttl)
			if err != nil {
				return err
			}

			if save {
				if err := cfg.SaveToken(token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(TokenResult{UserID: userID, Email: email, Token: token})
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User id the token identifies (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().BoolVar(&save, "save", true, "Save the token to the token file")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
