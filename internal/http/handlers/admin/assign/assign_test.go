package assign

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

const (
	userID = "3b8f2c1e-7a41-4e0a-9d0c-5f6a1b2c3d4e"
	planID = "c0ffee00-0000-4000-8000-000000000001"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) AssignPlan(ctx context.Context, req models.AssignPlanRequest) (*models.UserPlanAssignment, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.UserPlanAssignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAssignHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "назначение со сроком",
			body: `{"user_id":"` + userID + `","plan_id":"` + planID + `","expires_at":"2026-01-01T00:00:00Z"}`,
			setupMock: func(m *MockService) {
				m.On("AssignPlan", mock.Anything, mock.MatchedBy(func(req models.AssignPlanRequest) bool {
					return req.UserID == userID && req.PlanID == planID && req.ExpiresAt != nil && req.ExpiresAt.Equal(expires)
				})).Return(&models.UserPlanAssignment{
					UserID: userID, PlanID: planID, CreatedAt: created, ExpiresAt: &expires,
					Plan: &models.Plan{ID: planID, Name: "pro"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"user_plan":{"user_id":"` + userID + `","plan_id":"` + planID + `","created_at":"2025-06-01T00:00:00Z","expires_at":"2026-01-01T00:00:00Z"`,
		},
		{
			name: "нет plan_id",
			body: `{"user_id":"` + userID + `"}`,
			setupMock: func(m *MockService) {
				m.On("AssignPlan", mock.Anything, models.AssignPlanRequest{UserID: userID}).
					Return(nil, apperr.New(apperr.CodeInvalidRequest, "'user_id' and 'plan_id' are required"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `'user_id' and 'plan_id' are required`,
		},
		{
			name:           "неверная дата",
			body:           `{"user_id":"` + userID + `","plan_id":"` + planID + `","expires_at":"next year"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid request body`,
		},
		{
			name: "план не найден",
			body: `{"user_id":"` + userID + `","plan_id":"` + planID + `"}`,
			setupMock: func(m *MockService) {
				m.On("AssignPlan", mock.Anything, models.AssignPlanRequest{UserID: userID, PlanID: planID}).
					Return(nil, apperr.New(apperr.CodeNotFound, "Plan not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `Plan not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/admin/user-plans", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
