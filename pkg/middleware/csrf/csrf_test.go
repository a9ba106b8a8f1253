package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/form", ok)
	e.POST("/submit", ok)
	return e
}

func TestMiddleware_IssuesTokenOnSafeMethod(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "XSRF-TOKEN", cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
}

func TestMiddleware_UnsafeMethods(t *testing.T) {
	e := newTestEcho()

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantCode int
	}{
		{
			name: "matching header",
			setup: func(r *http.Request) {
				r.Header.Set(echo.HeaderOrigin, "http://example.com")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
				r.Header.Set("X-CSRF-Token", "tok")
			},
			wantCode: http.StatusNoContent,
		},
		{
			name: "mismatched header",
			setup: func(r *http.Request) {
				r.Header.Set(echo.HeaderOrigin, "http://example.com")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
				r.Header.Set("X-CSRF-Token", "other")
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "foreign origin",
			setup: func(r *http.Request) {
				r.Header.Set(echo.HeaderOrigin, "http://evil.test")
				r.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "tok"})
				r.Header.Set("X-CSRF-Token", "tok")
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "bearer request is exempt",
			setup: func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer abc")
			},
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://example.com/submit", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
