package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/access"
	"github.com/plateadmin/plateadmin/internal/auth"
	"github.com/plateadmin/plateadmin/internal/models"
)

const (
	bearerPrefix = "Bearer "
	sessionKey   = "session"
)

func setSession(c *gin.Context, session *auth.Session) {
	c.Set(sessionKey, session)
}

// GetSession returns the request's session, or nil when there is none
func GetSession(c *gin.Context) *auth.Session {
	value, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}

	session, _ := value.(*auth.Session)
	return session
}

// sessionBlob returns the stored session token from the bearer header, falling
// back to the session cookie
func sessionBlob(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	}

	cookie, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return cookie
}

// SessionMiddleware reads the session on every request. Unreadable sessions
// and sessions of deleted users are treated as no session.
func SessionMiddleware(db *gorm.DB, cookieName string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := auth.ReadSession(sessionBlob(c, cookieName))

		if session != nil {
			var count int64
			if err := db.Model(&models.User{}).Where("id = ?", session.UserID).Count(&count).Error; err != nil {
				log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to look up session user")
				session = nil
			} else if count == 0 {
				log.Debug().Str("user_id", session.UserID).Msg("Session user no longer exists")
				session = nil
			}
		}

		setSession(c, session)
		c.Next()
	}
}

func isAPIRequest(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

// RequireRoles runs the access gate for the current request. No roles means
// any signed-in session. Pages are redirected; API calls get 401 or 403.
func RequireRoles(log zerolog.Logger, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := access.Decide(GetSession(c), roles)
		if decision == access.Allow {
			c.Next()
			return
		}

		log.Debug().
			Str("path", c.Request.URL.Path).
			Str("decision", decision.String()).
			Msg("Access denied")

		if !isAPIRequest(c) {
			c.Redirect(http.StatusFound, decision.Redirect())
			c.Abort()
			return
		}

		status, message := http.StatusUnauthorized, "Unauthorized"
		if decision == access.DenyUnauthorized {
			status, message = http.StatusForbidden, "Insufficient role"
		}

		c.AbortWithStatusJSON(status, gin.H{
			"error":    message,
			"redirect": decision.Redirect(),
		})
	}
}

// setSessionCookie stores the session token. The cookie carries no expiry so
// it ends with the browser session.
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.Session.CookieName, token, 0, "/", "", s.config.Session.CookieSecure, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.Session.CookieName, "", -1, "/", "", s.config.Session.CookieSecure, true)
}
