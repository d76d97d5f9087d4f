package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
)

// SessionFrom extracts the session set by WithSession. It never returns nil.
func SessionFrom(c *gin.Context) *session.Session {
	if v, ok := c.Get(CtxSession); ok {
		if sess, ok := v.(*session.Session); ok && sess != nil {
			return sess
		}
	}
	return &session.Session{}
}

// ArtistID returns the logged-in artist's id, or "".
func ArtistID(c *gin.Context) string {
	return SessionFrom(c).ArtistID()
}
