package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathgym/internal/account"
	"github.com/abhisek/mathgym/internal/config"
	"github.com/abhisek/mathgym/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "mathgym",
	Short:         "Math practice tasks, answer checking and a leaderboard",
	Long:          "MathGym generates randomized school math tasks, checks answers exactly, and keeps a star leaderboard.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides MATHGYM_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MATHGYM_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(ratingCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// resolveDBPath returns the SQLite path using --db flag (highest priority),
// then the configured DSN, then MATHGYM_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Database.DSN != "" {
		return cfg.Database.DSN, nil
	}
	return store.DefaultDBPath()
}

func openStore(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	opts := store.Options{
		Driver:       store.Driver(cfg.Database.Driver),
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}
	if opts.Driver == store.DriverSQLite {
		p, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		opts.DSN = p
	}
	st, err := store.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func newAccounts(cfg *config.Config, st *store.Store) (*account.Service, error) {
	tokens, err := account.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	return account.NewService(st.Users(), tokens, account.Options{
		Admin:      cfg.Auth.AdminUsername,
		BcryptCost: cfg.Auth.BcryptCost,
	})
}
