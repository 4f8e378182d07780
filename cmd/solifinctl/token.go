package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"solifin/internal/middleware"
)

func addTokenCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Signs a development token with the server secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := flagOrEnv(cmd, "secret", "JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			sub, _ := cmd.Flags().GetString("sub")
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			tok, err := middleware.SignToken(secret, sub, email, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "HMAC secret (env JWT_SECRET)")
	cmd.Flags().String("sub", "", "user id")
	cmd.Flags().String("email", "", "email claim")
	cmd.Flags().String("role", "", "role claim, admin for moderators")
	cmd.Flags().Duration("ttl", 24*time.Hour, "validity")
	_ = cmd.MarkFlagRequired("sub")
	root.AddCommand(cmd)
}
