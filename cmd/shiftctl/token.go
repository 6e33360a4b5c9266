package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cmlabs-hris/shift-reconcile/internal/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a reviewer access token signed with JWT_SECRET_KEY",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			return runToken(cmd.OutOrStdout(), os.Getenv("JWT_SECRET_KEY"), subject, ttl)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "reviewer name or email")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func runToken(out io.Writer, secret, subject string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}

	token, expiresAt, err := jwt.NewJWTService(secret).GenerateAccessToken(subject, ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\nexpires %s\n", token, time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return err
}
