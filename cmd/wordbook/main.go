// Package main Wordbook API
//
// @title           Wordbook API
// @version         1.0
// @description     API словаря: перевод слов, примеры, группы, выгрузка и тарифные планы

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/wordbook/docs"
	"github.com/magabrotheeeer/wordbook/internal/app/wordbook"
	"github.com/magabrotheeeer/wordbook/internal/config"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
)

const envLocal = "local"

func main() {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	logger.Info("starting wordbook", slog.String("env", cfg.Env))
	logger.Debug("config loaded\n" + cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := wordbook.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("wordbook stopped gracefully")
}

// setupLogger пишет текст локально и JSON в остальных окружениях.
func setupLogger(env string) *slog.Logger {
	if env == envLocal {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
