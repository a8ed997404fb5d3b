// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"taskline-service/internal/domain/user"
	"taskline-service/internal/middleware"
	xerrors "taskline-service/internal/pkg/errors"
	"taskline-service/internal/pkg/response"
	authUsecase "taskline-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RefreshCookieName is the cookie carrying the refresh credential. The
// access token never goes in a cookie; it is returned in the body.
const RefreshCookieName = "t"

// CookieConfig controls how the refresh cookie is issued.
type CookieConfig struct {
	Path   string
	Secure bool
	MaxAge int
}

type AuthHandler struct {
	authService *authUsecase.AuthService
	cookie      CookieConfig
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	if cookie.Path == "" {
		cookie.Path = "/api/v1/auth"
	}
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// setRefreshCookie puts the refresh token in an HttpOnly, SameSite=Lax
// cookie scoped to the auth endpoints.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, token, h.cookie.MaxAge, h.cookie.Path, "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookieName, "", -1, h.cookie.Path, "", h.cookie.Secure, true)
}

// respondError maps service errors onto the HTTP taxonomy.
func (h *AuthHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, xerrors.ErrUnauthorized):
		response.Unauthorized(c, "authentication failed")
	case errors.Is(err, xerrors.ErrConflict):
		response.Conflict(c, "account already exists")
	case errors.Is(err, xerrors.ErrStoreUnavailable):
		response.Error(c, http.StatusServiceUnavailable, "service unavailable", nil)
	case errors.Is(err, xerrors.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not found", nil)
	default:
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func (h *AuthHandler) respondAuth(c *gin.Context, result *authUsecase.AuthResult) {
	h.setRefreshCookie(c, result.RefreshToken)
	response.Success(c, http.StatusOK, "authenticated", user.AuthResponse{
		AccessToken: result.AccessToken,
		User:        result.User.Info(),
	})
}

// ========== Sign-up ==========

// SignUp handles account creation (public endpoint).
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req user.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("sign-up failed", zap.String("email", req.Email), zap.Error(err))
		h.respondError(c, err)
		return
	}

	h.respondAuth(c, result)
}

// ========== Sign-in ==========

// SignIn handles password sign-in.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req user.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("sign-in failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		h.respondError(c, err)
		return
	}

	h.logger.Info("user signed in", zap.Int64("user_id", result.User.ID))
	h.respondAuth(c, result)
}

// GoogleSignIn handles federated sign-in with a Google ID token.
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req user.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	result, err := h.authService.GoogleSignIn(c.Request.Context(), req.Token)
	if err != nil {
		h.logger.Warn("google sign-in failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		h.respondError(c, err)
		return
	}

	h.logger.Info("user signed in via google", zap.Int64("user_id", result.User.ID))
	h.respondAuth(c, result)
}

// ========== Refresh ==========

// Refresh rotates the refresh credential presented in the cookie.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshCookieName)
	if err != nil || refreshToken == "" {
		response.Unauthorized(c, "authentication failed")
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondAuth(c, result)
}

// ========== Logout ==========

// Logout revokes the session marker and clears the cookie in the same
// request (requires auth).
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		h.logger.Error("logout failed", zap.Int64("user_id", userID), zap.Error(err))
		h.respondError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.Success(c, http.StatusOK, "logged out", nil)
}

// ========== Profile ==========

// Me returns the authenticated user's profile (requires auth).
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "ok", u.Info())
}
