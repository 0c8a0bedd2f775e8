// controller.go
package controller

import (
	"errors"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/middleware"

	"github.com/gin-gonic/gin"
)

// respondError writes {"error", "code"} with the status of the error's kind.
// Anything that is not an *apperror.Error is reported as internal and its
// detail is only attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}
	if appErr.Kind == apperror.KindInternal || appErr.Kind == apperror.KindUnavailable {
		_ = c.Error(err)
	}
	c.JSON(appErr.Kind.HTTPStatus(), gin.H{"error": appErr.Message, "code": appErr.Code})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, dto.BindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, dto.BindError(err))
		return false
	}
	return true
}

func message(text string) gin.H {
	return gin.H{"message": text}
}

func currentUser(c *gin.Context) string {
	return middleware.UserID(c)
}
