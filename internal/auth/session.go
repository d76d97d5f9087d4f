// Package auth attaches the caller's session to every request. Browsers carry
// the session id in a cookie; the CLI sends it in the X-Session-Id header.
package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
)

const (
	CookieName   = "mint_sid"
	HeaderName   = "X-Session-Id"
	CtxSession   = "session"
	cookieMaxAge = 30 * 24 * 60 * 60
)

// WithSession loads the session for the request, issuing a new id when the
// caller has none. Anonymous sessions are normal; nothing is enforced here.
func WithSession(store session.Service, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(HeaderName))
		if sid == "" {
			sid, _ = c.Cookie(CookieName)
		}
		if sid == "" {
			sid = session.NewID()
		}

		sess, err := store.Load(c.Request.Context(), sid)
		if err != nil {
			logging.NewLogger(c.Request.Context()).LogError("auth.load_session", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, sid, cookieMaxAge, "/", "", secureCookie, true)
		c.Header(HeaderName, sid)
		c.Set(CtxSession, sess)
		c.Next()
	}
}

// RequireArtist rejects requests whose session is not logged in.
func RequireArtist() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !SessionFrom(c).Authenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in to continue"})
			c.Abort()
			return
		}
		c.Next()
	}
}
