package example

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wordbook/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

const userID = "3b8f2c1e-7a41-4e0a-9d0c-5f6a1b2c3d4e"

// MockService реализует интерфейс example.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GenerateExamples(ctx context.Context, userID string, req models.ExampleRequest) ([]models.StructuredExample, error) {
	args := m.Called(ctx, userID, req)
	if res := args.Get(0); res != nil {
		return res.([]models.StructuredExample), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExampleHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная генерация",
			body: `{"word":"run","translation_lang":"Turkish"}`,
			setupMock: func(m *MockService) {
				m.On("GenerateExamples", mock.Anything, userID, models.ExampleRequest{Word: "run", TranslationLang: "Turkish"}).
					Return([]models.StructuredExample{
						{Sentence: "I run every day.", Translation: "Her gün koşarım."},
						{Sentence: "Run!", Translation: ""},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"examples":[{"sentence":"I run every day.","translation":"Her gün koşarım."},{"sentence":"Run!","translation":""}]}`,
		},
		{
			name: "слово не найдено",
			body: `{"word":"fly"}`,
			setupMock: func(m *MockService) {
				m.On("GenerateExamples", mock.Anything, userID, models.ExampleRequest{Word: "fly"}).
					Return(nil, apperr.New(apperr.CodeNotFound, "Word not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":{"code":"not_found","message":"Word not found"}}`,
		},
		{
			name:           "битый JSON",
			body:           `[`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"code":"invalid_request"`,
		},
		{
			name: "LLM не настроена",
			body: `{"word":"run"}`,
			setupMock: func(m *MockService) {
				m.On("GenerateExamples", mock.Anything, userID, models.ExampleRequest{Word: "run"}).
					Return(nil, apperr.New(apperr.CodeInternal, "No LLM API key configured"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `No LLM API key configured`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/example", strings.NewReader(tt.body))
			req = req.WithContext(middlewarectx.WithUserID(req.Context(), userID))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
