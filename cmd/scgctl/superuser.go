package main

import (
	"errors"

	identityapp "github.com/scg/portal/internal/application/identity"
	"github.com/scg/portal/internal/domain/identity"
	"github.com/scg/portal/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errEmailTaken = errors.New("a user with this e-mail already exists")

func createSuperuserCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an active staff superuser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger()
			defer func() { _ = log.Sync() }()

			user, err := identity.NewSuperuser(email, password, identityapp.PasswordPolicyFromConfig(cfg.Security))
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			users := persistence.NewGormUserRepository(db.DB)
			exists, err := users.ExistsByEmail(cmd.Context(), user.Email, nil)
			if err != nil {
				return err
			}
			if exists {
				return errEmailTaken
			}
			if err := users.Create(cmd.Context(), user); err != nil {
				return err
			}
			log.Info("Superuser created", zap.String("user_id", user.ID.String()))
			return writeOutput(cmd.OutOrStdout(), identityapp.ToUserResponse(user))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
