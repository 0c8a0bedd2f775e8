// auth_middleware.go
package middleware

import (
	"strings"

	"opt-shop/internal/apperror"
	"opt-shop/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

var errMissingToken = apperror.New(apperror.KindUnauthorized, "MISSING_TOKEN", "missing authorization header")

type TokenVerifier interface {
	VerifyAccessToken(token string) (*service.Claims, error)
}

// AuthMiddleware validates the bearer access token and stores the caller in
// the context.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, errMissingToken)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortWithError(c, apperror.ErrInvalidAccessToken)
			return
		}

		claims, err := verifier.VerifyAccessToken(strings.TrimSpace(token))
		if err != nil {
			abortWithError(c, apperror.ErrInvalidAccessToken)
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller, empty on public routes.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func abortWithError(c *gin.Context, e *apperror.Error) {
	c.AbortWithStatusJSON(e.Kind.HTTPStatus(), gin.H{"error": e.Message, "code": e.Code})
}
