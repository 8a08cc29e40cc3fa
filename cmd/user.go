package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathgym/internal/account"
	"github.com/abhisek/mathgym/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learner accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Register a learner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		ctx := cmd.Context()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		accounts, err := newAccounts(cfg, st)
		if err != nil {
			return err
		}
		_, err = accounts.Register(ctx, account.Credentials{Username: args[0], Password: password})
		var inputErr *account.InvalidInputError
		switch {
		case errors.As(err, &inputErr):
			return fmt.Errorf("invalid credentials: %s", inputErr)
		case errors.Is(err, store.ErrUserExists):
			return fmt.Errorf("user %q already exists", args[0])
		case err != nil:
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", args[0])
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete a learner (the admin account is protected)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(ctx, cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		accounts, err := newAccounts(cfg, st)
		if err != nil {
			return err
		}
		err = accounts.Delete(ctx, accounts.Admin(), args[0])
		switch {
		case errors.Is(err, account.ErrProtectedUser):
			return fmt.Errorf("%s cannot be deleted", args[0])
		case errors.Is(err, store.ErrUserNotFound):
			return fmt.Errorf("user %q not found", args[0])
		case err != nil:
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringP("password", "p", "", "Password (8+ characters, 2+ ASCII letters)")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userDeleteCmd)
}
