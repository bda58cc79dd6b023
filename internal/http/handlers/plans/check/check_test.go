package check

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/models"
	"github.com/magabrotheeeer/wordbook/internal/services/plans"
	"github.com/magabrotheeeer/wordbook/internal/storage"
)

const userID = "3b8f2c1e-7a41-4e0a-9d0c-5f6a1b2c3d4e"

type fakeRepo struct{ words int }

func (fakeRepo) GetUserPlan(context.Context, string) (*models.UserPlanAssignment, error) {
	return nil, &storage.Error{Op: "test", Kind: storage.KindNotFound, Err: storage.ErrNotFound}
}

func (fakeRepo) GetPlanByName(context.Context, string) (*models.Plan, error) {
	return &models.Plan{ID: "free-id", Name: "free", DisplayName: "Free Plan", MaxWords: 10, Currency: "USD"}, nil
}

func (f fakeRepo) CountWords(context.Context, string) (int, error) { return f.words, nil }

func (fakeRepo) ListPlans(context.Context, storage.PlanOrder) ([]models.Plan, error) {
	return nil, nil
}

func TestCheckHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		query          string
		words          int
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "слово можно добавить при max-1",
			query:          "?action=add_word",
			words:          9,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"allowed":true}`,
		},
		{
			name:           "лимит слов исчерпан",
			query:          "?action=add_word",
			words:          10,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"allowed":false,"message":"You have reached your plan limit of 10 words. Please upgrade to add more words."}`,
		},
		{
			name:           "упражнения недоступны на бесплатном плане",
			query:          "?action=access_exercises",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"allowed":false,"message":"Exercises feature is not available in your current plan. Please upgrade to Pro+ plan."}`,
		},
		{
			name:           "нет action",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":{"code":"invalid_request","message":"'action' is required"}}`,
		},
		{
			name:           "неизвестное действие",
			query:          "?action=fly",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"invalid_request"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := plans.NewService(fakeRepo{words: tt.words}, log)

			req := httptest.NewRequest(http.MethodGet, "/api/plan/check"+tt.query, nil)
			req = req.WithContext(middlewarectx.WithUserID(req.Context(), userID))
			w := httptest.NewRecorder()

			New(log, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
