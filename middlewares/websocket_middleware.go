package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order/utils"
)

// WebSocketAuthMiddleware -> browser tidak bisa set header Authorization saat
// upgrade, jadi token boleh lewat query ?token=
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" || !setClaims(c, token) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or missing token"))
			c.Abort()
			return
		}
		c.Next()
	}
}
