package wordbook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wordbook/internal/auth"
	"github.com/magabrotheeeer/wordbook/internal/cache"
	"github.com/magabrotheeeer/wordbook/internal/events"
	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/llm"
	adminservice "github.com/magabrotheeeer/wordbook/internal/services/admin"
	exportservice "github.com/magabrotheeeer/wordbook/internal/services/export"
	groupsservice "github.com/magabrotheeeer/wordbook/internal/services/groups"
	plansservice "github.com/magabrotheeeer/wordbook/internal/services/plans"
	wordsservice "github.com/magabrotheeeer/wordbook/internal/services/words"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

const (
	testUserID = "3b8f2c1e-7a41-4e0a-9d0c-5f6a1b2c3d4e"
	testToken  = "good-token"
)

type staticVerifier struct{}

func (staticVerifier) Verify(_ context.Context, token string) (string, error) {
	if token != testToken {
		return "", apperr.New(apperr.CodeUnauthorized, "Invalid token")
	}
	return testUserID, nil
}

// newTestRouter собирает приложение поверх базы без необязательных таблиц.
func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewWithDB(db, storage.Options{})
	plans := plansservice.NewService(store, log)
	svc := Services{
		Words:  wordsservice.NewService(store, plans, llm.NewGenerator(llm.Unconfigured{}, log), cache.Nop{}, events.Nop{}, log),
		Groups: groupsservice.NewService(store, plans, log),
		Plans:  plans,
		Admin:  adminservice.NewService(store, auth.NoDirectory{}, log),
		Export: exportservice.NewService(store, plans, events.Nop{}, log),
	}

	r := chi.NewRouter()
	RegisterRoutes(r, log, staticVerifier{}, svc, RouteOptions{
		AllowedOrigins: []string{"*"},
		Limiter:        middlewarectx.NewRateLimiter(0.001, 1),
	})
	return r, mock
}

func do(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		token          string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "корень отвечает как health",
			method:         http.MethodGet,
			target:         "/",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"ok":true}`,
		},
		{
			name:           "health",
			method:         http.MethodGet,
			target:         "/api/health",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"ok":true}`,
		},
		{
			name:           "неизвестный маршрут",
			method:         http.MethodGet,
			target:         "/api/nope",
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":{"code":"not_found","message":"Route not found"}}`,
		},
		{
			name:           "публичный каталог без таблицы планов",
			method:         http.MethodGet,
			target:         "/api/plans",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"plans":[]}`,
		},
		{
			name:           "неверный формат выгрузки без токена",
			method:         http.MethodGet,
			target:         "/api/export?format=xml",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"invalid_format"`,
		},
		{
			name:           "выгрузка без токена",
			method:         http.MethodGet,
			target:         "/api/export",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"code":"unauthorized"`,
		},
		{
			name:           "слова без токена",
			method:         http.MethodGet,
			target:         "/api/words",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `Missing Bearer token`,
		},
		{
			name:           "группы без таблицы",
			method:         http.MethodGet,
			target:         "/api/groups",
			token:          testToken,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"groups":[]}`,
		},
		{
			name:           "админка без таблицы ролей",
			method:         http.MethodGet,
			target:         "/api/admin/plans",
			token:          testToken,
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"error":{"code":"forbidden","message":"Admin access required"}}`,
		},
		{
			name:           "неверный токен",
			method:         http.MethodGet,
			target:         "/api/plan/check?action=export",
			token:          "bad",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `Invalid token`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock := newTestRouter(t)
			w := do(h, tt.method, tt.target, tt.token, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoutes_PlanInfoWithoutCatalog(t *testing.T) {
	h, mock := newTestRouter(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM words WHERE user_id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	w := do(h, http.MethodGet, "/api/plan", testToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Plan struct {
			Name           string `json:"name"`
			MaxWords       int    `json:"max_words"`
			WordCount      int    `json:"word_count"`
			RemainingWords int    `json:"remaining_words"`
		} `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "free", body.Plan.Name)
	assert.Equal(t, 10, body.Plan.MaxWords)
	assert.Equal(t, 7, body.Plan.WordCount)
	assert.Equal(t, 3, body.Plan.RemainingWords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes_TranslateIsRateLimited(t *testing.T) {
	h, _ := newTestRouter(t)

	first := do(h, http.MethodPost, "/api/translate", testToken, `{"word":"  "}`)
	assert.Equal(t, http.StatusBadRequest, first.Code)

	second := do(h, http.MethodPost, "/api/translate", testToken, `{"word":"  "}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), `"code":"rate_limited"`)

	// Лимит не распространяется на маршруты без LLM.
	groups := do(h, http.MethodGet, "/api/groups", testToken, "")
	assert.Equal(t, http.StatusOK, groups.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/translate", nil)
	req.Header.Set("Origin", "chrome-extension://abcdef")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "authorization, content-type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoutes_Metrics(t *testing.T) {
	h, _ := newTestRouter(t)
	_ = do(h, http.MethodGet, "/api/health", "", "")

	w := do(h, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wordbook_http_requests_total")
}
