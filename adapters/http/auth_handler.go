package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authUC "github.com/khoahotran/folio/internal/application/usecase/auth"
	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

type Authenticator interface {
	SignInWithPassword(ctx context.Context, input authUC.SignInInput) (*authUC.SignInOutput, error)
	GetSession(ctx context.Context, token string) (*session.Session, error)
	SignOut(ctx context.Context, token string) error
}

type AuthHandler struct {
	auth         Authenticator
	secureCookie bool
	logger       logger.Logger
}

func NewAuthHandler(auth Authenticator, secureCookie bool, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookie: secureCookie, logger: log}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("email and password are required", err))
		return
	}

	output, err := h.auth.SignInWithPassword(c.Request.Context(), authUC.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	sess := output.Session
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, sess.Token, maxAge, "/", "", h.secureCookie, true)

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: sess.Token,
		Session:     *ToSessionDTO(sess),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), bearerToken(c)); err != nil {
		c.Error(err)
		return
	}
	c.SetCookie(SessionCookie, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

// Session reports the current session, or null. It never fails on a bad
// token.
func (h *AuthHandler) Session(c *gin.Context) {
	sess, err := h.auth.GetSession(c.Request.Context(), bearerToken(c))
	if err != nil {
		c.Error(apperror.NewInternal("session lookup failed", err))
		return
	}
	c.JSON(http.StatusOK, SessionResponse{Session: ToSessionDTO(sess)})
}
