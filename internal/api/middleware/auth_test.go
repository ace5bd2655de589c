package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/timmy/sitegen/internal/config"
)

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
	}{
		{name: "match", secret: "s3cret", header: "s3cret", wantCode: http.StatusOK},
		{name: "mismatch", secret: "s3cret", header: "wrong", wantCode: http.StatusUnauthorized},
		{name: "missing header", secret: "s3cret", header: "", wantCode: http.StatusUnauthorized},
		{name: "prefix only", secret: "s3cret", header: "s3c", wantCode: http.StatusUnauthorized},
		{name: "secret unset", secret: "", header: "", wantCode: http.StatusInternalServerError},
		{name: "secret unset with header", secret: "", header: "anything", wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", APIKeyAuth(tt.secret), func(c *gin.Context) {
				c.String(http.StatusOK, "ok")
			})

			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.JSONEq(t, `{"status":"error","error":"Unauthorized"}`, w.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		cfg        config.CORSConfig
		origin     string
		method     string
		wantOrigin string
		wantCode   int
	}{
		{name: "allow all", cfg: config.CORSConfig{AllowAllOrigins: true}, origin: "https://a.test", method: http.MethodGet, wantOrigin: "*", wantCode: http.StatusOK},
		{name: "listed origin", cfg: config.CORSConfig{AllowedOrigins: []string{"https://A.test/"}}, origin: "https://a.test", method: http.MethodGet, wantOrigin: "https://a.test", wantCode: http.StatusOK},
		{name: "unlisted origin", cfg: config.CORSConfig{AllowedOrigins: []string{"https://a.test"}}, origin: "https://b.test", method: http.MethodGet, wantOrigin: "", wantCode: http.StatusOK},
		{name: "empty list echoes origin", cfg: config.CORSConfig{}, origin: "https://b.test", method: http.MethodGet, wantOrigin: "https://b.test", wantCode: http.StatusOK},
		{name: "no origin header", cfg: config.CORSConfig{}, origin: "", method: http.MethodGet, wantOrigin: "", wantCode: http.StatusOK},
		{name: "preflight", cfg: config.CORSConfig{AllowAllOrigins: true}, origin: "https://a.test", method: http.MethodOptions, wantOrigin: "*", wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.cfg))
			r.Any("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/p", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestLoggerMiddlewareRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggerMiddleware(nil))
	r.GET("/p", func(c *gin.Context) {
		assert.NotNil(t, GetLogger(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}
