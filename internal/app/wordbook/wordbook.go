package wordbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/wordbook/internal/auth"
	"github.com/magabrotheeeer/wordbook/internal/cache"
	"github.com/magabrotheeeer/wordbook/internal/config"
	"github.com/magabrotheeeer/wordbook/internal/events"
	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/lib/jwt"
	"github.com/magabrotheeeer/wordbook/internal/lib/sl"
	"github.com/magabrotheeeer/wordbook/internal/llm"
	"github.com/magabrotheeeer/wordbook/internal/migrations"
	adminservice "github.com/magabrotheeeer/wordbook/internal/services/admin"
	exportservice "github.com/magabrotheeeer/wordbook/internal/services/export"
	groupsservice "github.com/magabrotheeeer/wordbook/internal/services/groups"
	plansservice "github.com/magabrotheeeer/wordbook/internal/services/plans"
	wordsservice "github.com/magabrotheeeer/wordbook/internal/services/words"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

const (
	// supabaseAudience — aud токенов вошедших пользователей.
	supabaseAudience = "authenticated"

	amqpRetries    = 5
	amqpRetryDelay = 2 * time.Second
	shutdownPeriod = 15 * time.Second
)

type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *storage.Storage
	closers []io.Closer
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.wordbook.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString, storage.Options{Log: logger})
	if err != nil {
		return nil, err
	}
	app := &App{logger: logger, db: db}

	if err := app.setup(ctx, cfg); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

func (a *App) setup(ctx context.Context, cfg *config.Config) error {
	if cfg.MigrationsPath != "" {
		if err := migrations.Run(a.db.DB, cfg.MigrationsPath); err != nil {
			return err
		}
		a.logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))
	}

	caps, err := schemaCapabilities(ctx, cfg.Schema, a.db)
	if err != nil {
		return err
	}
	a.db.SetCapabilities(caps)
	a.logger.Info("schema capabilities",
		slog.Bool("group_id", caps.HasGroupID),
		slog.Bool("groups", caps.HasGroups),
		slog.Bool("plans", caps.HasPlans),
		slog.Bool("user_plans", caps.HasUserPlans),
		slog.Bool("roles", caps.HasRoles))

	verifier, directory := authClients(cfg.Auth)

	meanings, err := a.meaningCache(ctx, cfg.RedisConnection)
	if err != nil {
		return err
	}

	publisher, err := a.publisher(cfg.RabbitMQ)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		a.logger.Warn("no LLM API key configured, translate and example requests will fail")
		provider = llm.Unconfigured{}
	case err != nil:
		return err
	}
	a.logger.Info("llm provider selected", slog.String("provider", provider.Name()))

	plans := plansservice.NewService(a.db, a.logger)
	svc := Services{
		Words:  wordsservice.NewService(a.db, plans, llm.NewGenerator(provider, a.logger), meanings, publisher, a.logger),
		Groups: groupsservice.NewService(a.db, plans, a.logger),
		Plans:  plans,
		Admin:  adminservice.NewService(a.db, directory, a.logger),
		Export: exportservice.NewService(a.db, plans, publisher, a.logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, a.logger, verifier, svc, RouteOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        middlewarectx.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return nil
}

// schemaCapabilities берёт флаги схемы из конфига или определяет их по базе.
func schemaCapabilities(ctx context.Context, cfg config.Schema, db *storage.Storage) (storage.SchemaCapabilities, error) {
	if cfg.Static {
		return storage.SchemaCapabilities{
			HasGroupID:   cfg.HasGroupID,
			HasGroups:    cfg.HasGroups,
			HasPlans:     cfg.HasPlans,
			HasUserPlans: cfg.HasUserPlans,
			HasRoles:     cfg.HasRoles,
		}, nil
	}
	return storage.ProbeSchema(ctx, db.DB)
}

// authClients выбирает проверку токенов по режиму. Список пользователей для
// администратора доступен, только если заданы адрес и сервисный ключ BaaS.
func authClients(cfg config.Auth) (middlewarectx.Verifier, adminservice.UserDirectory) {
	var directory adminservice.UserDirectory = auth.NoDirectory{}
	var supabase *auth.SupabaseClient
	if cfg.SupabaseURL != "" && cfg.ServiceKey != "" {
		supabase = auth.NewSupabaseClient(cfg.SupabaseURL, cfg.ServiceKey, cfg.Timeout)
		directory = supabase
	}

	if cfg.Mode == config.AuthModeJWT {
		return auth.NewJWTVerifier(jwt.NewJWTMaker(cfg.JWTSecret, 0, supabaseAudience)), directory
	}
	return supabase, directory
}

func (a *App) meaningCache(ctx context.Context, cfg config.RedisConnection) (wordsservice.MeaningCache, error) {
	if cfg.AddressRedis == "" {
		a.logger.Info("redis is not configured, meaning cache disabled")
		return cache.Nop{}, nil
	}
	c, err := cache.InitServer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, c)
	return c, nil
}

func (a *App) publisher(cfg config.RabbitMQ) (events.Publisher, error) {
	if cfg.URL == "" {
		a.logger.Info("rabbitmq is not configured, events disabled")
		return events.Nop{}, nil
	}
	conn, err := events.Connect(cfg.URL, amqpRetries, amqpRetryDelay)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn)

	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	p, err := events.NewAMQPPublisher(ch, cfg.Exchange)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	// Канал закрывается раньше соединения.
	a.closers = append(a.closers, p)
	return p, nil
}

// close освобождает ресурсы в обратном порядке.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}

func (a *App) Run(ctx context.Context) error {
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}
