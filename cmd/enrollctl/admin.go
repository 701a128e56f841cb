package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/enrollment-portal-api/internal/repository"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	"github.com/noah-isme/enrollment-portal-api/pkg/database"
)

func newCreateAdminCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.NewPostgres(cmd.Context(), a.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close() //nolint:errcheck

			auth := service.NewAuthService(repository.NewUserRepository(db), nil, a.log, service.AuthConfig{
				Secret: a.cfg.JWT.Secret,
				Expiry: a.cfg.JWT.Expiration,
				Issuer: a.cfg.JWT.Issuer,
			})
			user, err := auth.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.log.Info("admin created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
