// Package wordbook собирает HTTP-приложение словаря: сервисы, маршруты и сервер.
package wordbook

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	adminassign "github.com/magabrotheeeer/wordbook/internal/http/handlers/admin/assign"
	adminplans "github.com/magabrotheeeer/wordbook/internal/http/handlers/admin/plans"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/admin/updateplan"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/admin/userplan"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/export"
	groupcreate "github.com/magabrotheeeer/wordbook/internal/http/handlers/groups/create"
	grouplist "github.com/magabrotheeeer/wordbook/internal/http/handlers/groups/list"
	groupremove "github.com/magabrotheeeer/wordbook/internal/http/handlers/groups/remove"
	groupupdate "github.com/magabrotheeeer/wordbook/internal/http/handlers/groups/update"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/health"
	plancheck "github.com/magabrotheeeer/wordbook/internal/http/handlers/plans/check"
	planlist "github.com/magabrotheeeer/wordbook/internal/http/handlers/plans/list"
	planme "github.com/magabrotheeeer/wordbook/internal/http/handlers/plans/me"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/words/example"
	wordlist "github.com/magabrotheeeer/wordbook/internal/http/handlers/words/list"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/words/setgroup"
	"github.com/magabrotheeeer/wordbook/internal/http/handlers/words/translate"
	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/http/response"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	adminservice "github.com/magabrotheeeer/wordbook/internal/services/admin"
	exportservice "github.com/magabrotheeeer/wordbook/internal/services/export"
	groupsservice "github.com/magabrotheeeer/wordbook/internal/services/groups"
	plansservice "github.com/magabrotheeeer/wordbook/internal/services/plans"
	wordsservice "github.com/magabrotheeeer/wordbook/internal/services/words"
)

// Services — сервисы, которые обслуживают маршруты.
type Services struct {
	Words  *wordsservice.Service
	Groups *groupsservice.Service
	Plans  *plansservice.Service
	Admin  *adminservice.Service
	Export *exportservice.Service
}

// RouteOptions — настройки транспорта.
type RouteOptions struct {
	AllowedOrigins []string
	Limiter        *middlewarectx.RateLimiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, verifier middlewarectx.Verifier, svc Services, opts RouteOptions) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}),
		middlewarectx.Metrics,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(w, r, apperr.New(apperr.CodeNotFound, "Route not found"))
	})

	healthHandler := health.New(logger)
	r.Get("/", healthHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", healthHandler.ServeHTTP)
		r.Get("/plans", planlist.New(logger, svc.Plans).ServeHTTP)

		// Формат выгрузки проверяется до токена: неверный формат — 400 даже без авторизации.
		r.With(
			middlewarectx.ExportFormat(logger),
			middlewarectx.JWTMiddleware(verifier, logger),
		).Get("/export", export.New(logger, svc.Export).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(verifier, logger))

			// Обращения к LLM ограничены по частоте на пользователя.
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, opts.Limiter))
				r.Post("/translate", translate.New(logger, svc.Words).ServeHTTP)
				r.Post("/example", example.New(logger, svc.Words).ServeHTTP)
			})

			r.Get("/words", wordlist.New(logger, svc.Words).ServeHTTP)
			r.Patch("/words/{id}/group", setgroup.New(logger, svc.Words).ServeHTTP)

			r.Get("/groups", grouplist.New(logger, svc.Groups).ServeHTTP)
			r.Post("/groups", groupcreate.New(logger, svc.Groups).ServeHTTP)
			r.Put("/groups/{id}", groupupdate.New(logger, svc.Groups).ServeHTTP)
			r.Delete("/groups/{id}", groupremove.New(logger, svc.Groups).ServeHTTP)

			r.Get("/plan", planme.New(logger, svc.Plans).ServeHTTP)
			r.Get("/plan/check", plancheck.New(logger, svc.Plans).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(logger, svc.Admin))
				r.Get("/plans", adminplans.New(logger, svc.Admin).ServeHTTP)
				r.Put("/plans/{id}", updateplan.New(logger, svc.Admin).ServeHTTP)
				r.Get("/users", users.New(logger, svc.Admin).ServeHTTP)
				r.Post("/user-plans", adminassign.New(logger, svc.Admin).ServeHTTP)
				r.Get("/user-plans/{user_id}", userplan.New(logger, svc.Admin).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
