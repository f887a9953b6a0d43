package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"photolabel/internal/pkg/jwtutil"
)

const ContextSessionIDKey = "session_id"

type SessionOptions struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
}

// Session binds every request to a visitor session id carried in a signed cookie.
// A missing, expired or tampered cookie starts a fresh session.
func Session(opts SessionOptions, logger *slog.Logger) gin.HandlerFunc {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return func(c *gin.Context) {
		sessionID := ""
		if raw, err := c.Cookie(opts.CookieName); err == nil && raw != "" {
			if claims, err := jwtutil.ParseToken(opts.Secret, raw); err == nil {
				sessionID = claims.SessionID
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			logger.Debug("new session", "session", sessionID)
		}

		// The cookie is reissued on every request and slides with the store TTL.
		token, err := jwtutil.GenerateToken(opts.Secret, opts.TTL, sessionID)
		if err != nil {
			logger.Error("issue session token failed", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, token, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)

		c.Set(ContextSessionIDKey, sessionID)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionIDKey)
}
