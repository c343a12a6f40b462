package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func authTestServer(token string) *echo.Echo {
	e := echo.New()
	e.POST("/trigger", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, BearerAuth(token))
	return e
}

func TestBearerAuthAcceptsValidToken(t *testing.T) {
	e := authTestServer("s3cret")
	req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer s3cret")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerAuthRejects(t *testing.T) {
	e := authTestServer("s3cret")

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer nope"},
		{"wrong scheme", "Basic s3cret"},
		{"bare token", "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/trigger", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
