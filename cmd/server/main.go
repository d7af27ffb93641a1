package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/mcoot/teamrank/internal/api"
	"github.com/mcoot/teamrank/internal/config"
	"github.com/mcoot/teamrank/internal/discord"
	"github.com/mcoot/teamrank/internal/factory"
	"github.com/mcoot/teamrank/internal/loghandler"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/web"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv(config.EnvPrefix+"_CONFIG"), "Path to a config file (env: TEAMRANK_CONFIG)")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run returns once the server has stopped; deferred cleanup runs on every path
func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := loghandler.NewLogger(os.Stdout, cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create application factory
	m := metrics.New()
	app, err := factory.New(ctx, cfg.Factory(logger, m))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		Metrics:            m,
		RosterService:      app.RosterService,
		MatchService:       app.MatchService,
		TeamsService:       app.TeamsService,
		LeaderboardService: app.LeaderboardService,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		Metrics:            m,
		RosterService:      app.RosterService,
		MatchService:       app.MatchService,
		TeamsService:       app.TeamsService,
		LeaderboardService: app.LeaderboardService,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/metrics", apiRouter)
	mux.Handle("/", webRouter)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	server := api.NewServer(mux, serverConfig, logger)

	if cfg.Discord.Enabled() {
		handler := discord.NewHandler(app.RosterService, app.MatchService, app.TeamsService, app.LeaderboardService, logger)
		bot, err := discord.New(discord.Config{
			Token:   cfg.Discord.Token,
			AppID:   cfg.Discord.AppID,
			GuildID: cfg.Discord.GuildID,
		}, handler, logger)
		if err != nil {
			return fmt.Errorf("create discord bot: %w", err)
		}
		if err := bot.Start(); err != nil {
			return fmt.Errorf("start discord bot: %w", err)
		}
		defer func() {
			if err := bot.Stop(); err != nil {
				logger.Warn("failed to stop discord bot", slog.String("error", err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("strategy", string(app.Strategy.Kind())),
		slog.String("storage", cfg.Storage.Type),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
