package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/sitegen/internal/config"
)

var corsAllowHeaders = strings.Join([]string{
	"Content-Type", "Content-Length", "Accept", "Authorization", "Origin",
	"Cache-Control", "X-Requested-With", requestIDHeader, APIKeyHeader,
}, ", ")

// originSet matches request origins case-insensitively. An empty list matches any origin.
type originSet struct {
	any   bool
	exact map[string]struct{}
}

func newOriginSet(origins []string) originSet {
	s := originSet{any: len(origins) == 0, exact: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		if o == "*" {
			s.any = true
			continue
		}
		s.exact[o] = struct{}{}
	}
	return s
}

func (s originSet) allows(origin string) bool {
	if s.any {
		return true
	}
	_, ok := s.exact[strings.ToLower(origin)]
	return ok
}

// CORS returns a middleware that answers cross-origin requests according to cfg.
// AllowAllOrigins responds with "*" and no credentials; otherwise matching origins are echoed
// back with credentials allowed, and other origins get no CORS headers at all.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := newOriginSet(cfg.AllowedOrigins)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()

		switch {
		case cfg.AllowAllOrigins:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && origins.allows(origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		default:
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Expose-Headers", "Content-Length, "+requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
