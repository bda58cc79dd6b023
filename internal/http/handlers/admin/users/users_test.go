package users

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListUsers(ctx context.Context, page, limit int) (*models.UsersPage, error) {
	args := m.Called(ctx, page, limit)
	if res := args.Get(0); res != nil {
		return res.(*models.UsersPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUsersHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	page := &models.UsersPage{
		Users: []models.UserStats{{
			AuthUser:     models.AuthUser{ID: "u1", Email: "a@example.com", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			WordCount:    3,
			ExampleCount: 5,
			Plan:         models.UserPlanSummary{Name: "free", DisplayName: "Free Plan"},
		}},
		Total: 1,
		Page:  2,
		Limit: 10,
	}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "страница пользователей",
			url:  "/api/admin/users?page=2&limit=10",
			setupMock: func(m *MockService) {
				m.On("ListUsers", mock.Anything, 2, 10).Return(page, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"word_count":3,"example_count":5,"plan":{"id":null,"name":"free"`,
		},
		{
			name: "нечисловые параметры",
			url:  "/api/admin/users?page=abc&limit=",
			setupMock: func(m *MockService) {
				m.On("ListUsers", mock.Anything, 0, 0).Return(&models.UsersPage{Users: []models.UserStats{}, Page: 1, Limit: 50}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"users":[],"total":0,"page":1,"limit":50}`,
		},
		{
			name: "сервис аутентификации недоступен",
			url:  "/api/admin/users",
			setupMock: func(m *MockService) {
				m.On("ListUsers", mock.Anything, 0, 0).Return(nil, apperr.New(apperr.CodeAuthError, "Failed to fetch users"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":{"code":"auth_error","message":"Failed to fetch users"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
