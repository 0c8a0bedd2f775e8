// auth_controller.go
package controller

import (
	"context"
	"net/http"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/service"

	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refreshToken"

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req dto.LoginRequest) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	LogoutWithToken(ctx context.Context, refreshToken string) error
	VerifyAccessToken(token string) (*service.Claims, error)
	RefreshMaxAge() int
}

type AuthController struct {
	Service      AuthService
	secureCookie bool
}

// NewAuthController. In production the refresh cookie is Secure and
// SameSite=Strict, otherwise SameSite=Lax over plain HTTP.
func NewAuthController(s AuthService, production bool) *AuthController {
	return &AuthController{Service: s, secureCookie: production}
}

// POST /auth/register
func (ctl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ctl.Service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	ctl.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusCreated, authResponse("user registered", res))
}

// POST /auth/login
func (ctl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := ctl.Service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	ctl.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusOK, authResponse("login successful", res))
}

// POST /auth/refresh reads the refresh cookie and rotates it.
func (ctl *AuthController) Refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)

	res, err := ctl.Service.Refresh(c.Request.Context(), token)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindUnauthorized {
			ctl.clearRefreshCookie(c)
		}
		respondError(c, err)
		return
	}

	ctl.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusOK, dto.TokenResponse{Message: "tokens refreshed", AccessToken: res.AccessToken})
}

// POST /auth/logout always clears the cookie, even when the token is no
// longer valid.
func (ctl *AuthController) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)

	if err := ctl.Service.LogoutWithToken(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	ctl.clearRefreshCookie(c)
	c.JSON(http.StatusOK, message("logged out"))
}

func authResponse(msg string, res *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Message:     msg,
		User:        dto.UserRef{ID: res.User.ID.Hex(), Email: res.User.Email},
		AccessToken: res.AccessToken,
	}
}

func (ctl *AuthController) setRefreshCookie(c *gin.Context, token string) {
	ctl.writeRefreshCookie(c, token, ctl.Service.RefreshMaxAge())
}

func (ctl *AuthController) clearRefreshCookie(c *gin.Context) {
	ctl.writeRefreshCookie(c, "", -1)
}

func (ctl *AuthController) writeRefreshCookie(c *gin.Context, value string, maxAge int) {
	if ctl.secureCookie {
		c.SetSameSite(http.SameSiteStrictMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(refreshCookieName, value, maxAge, "/", "", ctl.secureCookie, true)
}
