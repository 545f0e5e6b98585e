package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/folio/internal/application/guard"
	"github.com/khoahotran/folio/internal/domain/session"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

const (
	GinContextKeySession       = "session"
	GinContextKeyCorrelationID = "correlationID"

	HeaderCorrelationID = "X-Correlation-ID"
	// SessionCookie carries the token for browser navigation and websockets,
	// which cannot set an Authorization header.
	SessionCookie = "folio_session"
)

// CorrelationIDMiddleware makes sure every request carries a correlation id.
func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(GinContextKeyCorrelationID, id)
		c.Header(HeaderCorrelationID, id)
		c.Next()
	}
}

func GetCorrelationID(c *gin.Context) string {
	return c.GetString(GinContextKeyCorrelationID)
}

// RequestLogger logs one line per request, tagged with the correlation id.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log.Info("request completed",
			zap.String("correlation_id", GetCorrelationID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unhandled error", err)
		}
		status := apperror.ToHTTPStatus(appErr)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err,
				zap.String("correlation_id", GetCorrelationID(c)),
				zap.String("path", c.Request.URL.Path),
			)
		}
		c.JSON(status, appErr.ToJSON())
	}
}

// bearerToken reads the session token from the Authorization header, then
// from the session cookie.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// AuthMiddleware lets the request through only with a live session. API
// callers get 401 with the login path, browser navigation is redirected.
func AuthMiddleware(source guard.SessionSource, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome, sess := guard.Resolve(c.Request.Context(), source, bearerToken(c), log)
		if outcome.Kind != guard.ShowChildren {
			if wantsHTML(c) {
				c.Redirect(http.StatusFound, outcome.RedirectTo)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    apperror.ErrUnauthorized.Error(),
				"message":  "Sign in required",
				"redirect": outcome.RedirectTo,
			})
			return
		}

		c.Set(GinContextKeySession, sess)
		c.Next()
	}
}

func GetSessionFromGinContext(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(GinContextKeySession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}
