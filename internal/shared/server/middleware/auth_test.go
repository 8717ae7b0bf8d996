package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"jobmatch-backend/internal/shared/auth"
)

func authRouter(t *testing.T) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner("test-secret")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	router := gin.New()
	router.Use(Auth(signer))
	router.GET("/api/v1/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "guest": IsGuest(c)})
	})
	router.OPTIONS("/api/v1/match", func(c *gin.Context) {
		c.String(http.StatusOK, "handler ran")
	})
	return router, signer
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router, _ := authRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/match", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent || resp.Body.Len() != 0 {
		t.Fatalf("expected bare 204 without reaching the handler, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestAuthIdentities(t *testing.T) {
	router, signer := authRouter(t)
	token, err := signer.Sign(auth.Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		name   string
		header string
		value  string
		status int
		body   string
	}{
		{name: "bearer", header: "Authorization", value: "Bearer " + token, status: http.StatusOK, body: `{"guest":false,"userId":"user-1"}`},
		{name: "guest", header: "X-Guest-Id", value: "g1", status: http.StatusOK, body: `{"guest":true,"userId":"guest:g1"}`},
		{name: "bad token", header: "Authorization", value: "Bearer nope", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Authorization", value: "Basic abc", status: http.StatusUnauthorized},
		{name: "anonymous", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, resp.Code, resp.Body.String())
			}
			if tt.body != "" && resp.Body.String() != tt.body {
				t.Fatalf("unexpected body %s", resp.Body.String())
			}
		})
	}
}
