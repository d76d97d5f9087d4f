package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T) (*gin.Engine, *session.RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	store := session.NewRedisStore(client, time.Hour)
	r := gin.New()
	r.Use(WithSession(store, false))
	r.GET("/whoami", func(c *gin.Context) {
		sess := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"sid": sess.ID, "artistId": ArtistID(c)})
	})
	r.GET("/private", RequireArtist(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, store
}

func TestWithSession_IssuesCookie(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	sid := w.Header().Get(HeaderName)
	assert.NotEmpty(t, sid)

	var found bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName {
			found = true
			assert.Equal(t, sid, ck.Value)
			assert.True(t, ck.HttpOnly)
		}
	}
	assert.True(t, found)
}

func TestWithSession_ReusesHeaderSession(t *testing.T) {
	r, store := setupRouter(t)
	_, err := store.Save(context.Background(), "cli-sid", &domain.Artist{ID: "a1", Name: "Jane"}, "tok")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set(HeaderName, "cli-sid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireArtist_Anonymous(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Please log in")
}
