package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Liveness handles GET / and GET /health. It reports only that the process is serving;
// the store and the generation APIs are not consulted.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
