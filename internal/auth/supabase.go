package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/wordbook/internal/lib/apperr"
	"github.com/magabrotheeeer/wordbook/internal/models"
)

// SupabaseClient обращается к HTTP API аутентификации BaaS.
type SupabaseClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewSupabaseClient создаёт клиент. baseURL — адрес проекта без завершающего слэша.
func NewSupabaseClient(baseURL, serviceKey string, timeout time.Duration) *SupabaseClient {
	return &SupabaseClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *SupabaseClient) newRequest(ctx context.Context, path, bearer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Verify запрашивает пользователя по токену: 401/403 означают недействительный токен,
// остальные неуспешные ответы — ошибку сервиса аутентификации.
func (c *SupabaseClient) Verify(ctx context.Context, token string) (string, error) {
	const op = "auth.Verify"

	req, err := c.newRequest(ctx, "/auth/v1/user", token)
	if err != nil {
		return "", errAuthService(fmt.Errorf("%s: %w", op, err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errAuthService(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return "", errUnauthorized("Invalid token", fmt.Errorf("%s: status %d", op, resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", errAuthService(fmt.Errorf("%s: unexpected status %s", op, resp.Status))
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", errUnauthorized("Invalid user", fmt.Errorf("%s: %w", op, err))
	}
	if user.ID == "" {
		return "", errUnauthorized("Invalid user", fmt.Errorf("%s: response has no id", op))
	}
	return user.ID, nil
}

// ListUsers возвращает страницу пользователей из админского API и их общее количество.
func (c *SupabaseClient) ListUsers(ctx context.Context, page, perPage int) ([]models.AuthUser, int, error) {
	const op = "auth.ListUsers"

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := c.newRequest(ctx, "/auth/v1/admin/users?"+q.Encode(), c.serviceKey)
	if err != nil {
		return nil, 0, errAuthService(fmt.Errorf("%s: %w", op, err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errAuthService(fmt.Errorf("%s: %w", op, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = "Failed to fetch users"
		}
		return nil, 0, apperr.Wrap(apperr.CodeAuthError, msg, fmt.Errorf("%s: unexpected status %s", op, resp.Status))
	}

	var payload struct {
		Users []models.AuthUser `json:"users"`
		Total *int              `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, errAuthService(fmt.Errorf("%s: %w", op, err))
	}

	total := len(payload.Users)
	switch {
	case payload.Total != nil:
		total = *payload.Total
	case resp.Header.Get("X-Total-Count") != "":
		if n, err := strconv.Atoi(resp.Header.Get("X-Total-Count")); err == nil {
			total = n
		}
	}
	if payload.Users == nil {
		payload.Users = []models.AuthUser{}
	}
	return payload.Users, total, nil
}
