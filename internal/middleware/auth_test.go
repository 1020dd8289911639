package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"stomatrack/internal/models"
	"stomatrack/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeTokens struct {
	claims *models.Claims
	err    error
}

func (f fakeTokens) ParseToken(string) (*models.Claims, error) { return f.claims, f.err }

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		header     string
		tokens     fakeTokens
		wantStatus int
		wantUser   string
	}{
		{"Given no header Then 401", "", fakeTokens{}, http.StatusUnauthorized, ""},
		{"Given a basic auth header Then 401", "Basic abc", fakeTokens{}, http.StatusUnauthorized, ""},
		{"Given an empty bearer Then 401", "Bearer ", fakeTokens{}, http.StatusUnauthorized, ""},
		{"Given an expired token Then 401", "Bearer t", fakeTokens{err: service.ErrTokenExpired}, http.StatusUnauthorized, ""},
		{"Given an invalid token Then 401", "Bearer t", fakeTokens{err: service.ErrInvalidToken}, http.StatusUnauthorized, ""},
		{"Given a valid token Then the user id is set", "Bearer t", fakeTokens{claims: &models.Claims{UserID: "user-1"}}, http.StatusOK, "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			r := gin.New()
			r.Use(RequestLogger(zap.NewNop()), AuthMiddleware(tt.tokens, zap.NewNop()))
			r.GET("/api/ping", func(c *gin.Context) {
				gotUser = UserID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}
