package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"tonequest/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"bare token without scheme", "abc123", ""},
		{"padded token", "Bearer  abc123 ", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(req); got != tt.want {
				t.Errorf("bearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := &Middleware{logger: zap.NewNop()}
	guard := m.RequireRole(models.RoleTeacher, models.RoleAdmin)

	handler := guard(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		user       *models.User
		wantStatus int
	}{
		{"teacher allowed", &models.User{Role: models.RoleTeacher}, http.StatusOK},
		{"admin allowed", &models.User{Role: models.RoleAdmin}, http.StatusOK},
		{"student rejected", &models.User{Role: models.RoleStudent}, http.StatusForbidden},
		{"no user rejected", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(context.WithValue(req.Context(), UserContextKey, tt.user))
			}
			recorder := httptest.NewRecorder()
			handler(recorder, req)
			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}
