package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathgym/internal/server"
	"github.com/abhisek/mathgym/internal/store"
	"github.com/abhisek/mathgym/internal/taskgen"
	"github.com/abhisek/mathgym/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		if err := shutdownTracing(cmd.Context()); err != nil {
			logger.Warn("flush traces", "error", err)
		}
	}()

	st, err := openStore(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	accounts, err := newAccounts(cfg, st)
	if err != nil {
		return err
	}
	created, err := accounts.SeedAdmin(ctx, cfg.Auth.AdminPassword, cfg.Auth.AdminStars)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("admin account created", "username", accounts.Admin())
	}
	if cfg.Auth.TokenSecret == "" {
		logger.Warn("auth.token_secret is empty; sessions will not survive a restart")
	}

	seed, err := taskgen.NewSeed()
	if err != nil {
		return fmt.Errorf("seed task generator: %w", err)
	}
	tasks, err := taskgen.NewDispatcher(taskgen.NewRand(seed), taskgen.DefaultConfig())
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Addr:             cfg.Server.Addr,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		CORSOrigins:      cfg.Server.CORSOrigins,
		LeaderboardLimit: cfg.Scores.LeaderboardLimit,
	}, tasks, accounts, st.Users(), st.Scores(store.ScorePolicy(cfg.Scores.Policy)), logger)

	logger.Info("starting mathgym", "version", version, "driver", st.Driver(), "score_policy", cfg.Scores.Policy)
	return srv.Run(ctx)
}
