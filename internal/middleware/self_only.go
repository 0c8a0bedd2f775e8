// self_only.go
package middleware

import (
	"opt-shop/internal/apperror"

	"github.com/gin-gonic/gin"
)

// SelfOnly lets a request through only when the named path parameter is the
// authenticated user. Must run after AuthMiddleware.
func SelfOnly(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param(param) != UserID(c) {
			abortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}
