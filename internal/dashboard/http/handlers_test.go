package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/auth"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/availability"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/directory"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
)

// fakeBackend plays the external artist API.
type fakeBackend struct {
	mu        sync.Mutex
	created   []directory.CreateProjectRequest
	updated   []directory.DetailsRequest
	authHdrs  []string
	takenName string
}

func (b *fakeBackend) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api/artists")
	api.POST("/login", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		if body["password"] != "secret1" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"artist":  gin.H{"id": "a1", "name": "Jane Doe", "email": body["email"]},
			"token":   "tok-a1",
		})
	})
	api.POST("/register", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	api.GET("/:id/projects", func(c *gin.Context) {
		b.recordAuth(c)
		c.JSON(http.StatusOK, gin.H{"projects": []gin.H{{"id": "p1", "projectName": "My Art", "status": "pending"}}})
	})
	api.POST("/check-project-name", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"available": body["projectName"] != b.takenName})
	})
	api.POST("/check-project-symbol", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"available": true})
	})
	api.POST("/create-project", func(c *gin.Context) {
		b.recordAuth(c)
		var body directory.CreateProjectRequest
		_ = c.ShouldBindJSON(&body)
		b.mu.Lock()
		b.created = append(b.created, body)
		b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{})
	})
	api.POST("/verify-ownership", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusOK, gin.H{"isOwner": body["projectName"] == "My Art"})
	})
	api.PUT("/projects/:id/details", func(c *gin.Context) {
		var body directory.DetailsRequest
		_ = c.ShouldBindJSON(&body)
		b.mu.Lock()
		b.updated = append(b.updated, body)
		b.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{})
	})
	return r
}

func (b *fakeBackend) recordAuth(c *gin.Context) {
	b.mu.Lock()
	b.authHdrs = append(b.authHdrs, c.GetHeader("Authorization"))
	b.mu.Unlock()
}

type testEnv struct {
	router  *gin.Engine
	backend *fakeBackend
	sid     string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	client := directory.NewClient(srv.URL, 5*time.Second)
	store := session.NewRedisStore(rdb, time.Hour)
	dirFor := func(token string) views.ArtistDirectory { return client.WithToken(token) }

	r := gin.New()
	api := r.Group("/api/v1/dashboard", auth.WithSession(store, false))
	New(views.NewRegistry[*views.Dashboard](time.Hour), store, dirFor, availability.NewChecker(client, nil)).Register(api)

	return &testEnv{router: r, backend: backend, sid: session.NewID()}
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req.Header.Set(auth.HeaderName, e.sid)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var out map[string]json.RawMessage
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (e *testEnv) json(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return e.send(t, req)
}

func (e *testEnv) multipart(t *testing.T, method, path string, fields map[string]string, fileField string, file []byte) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "art.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(t, req)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	w, _ := e.json(t, http.MethodPost, "/api/v1/dashboard/login", gin.H{"email": "jane@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func errorOf(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(body["error"], &msg))
	return msg
}

func projectFields() map[string]string {
	return map[string]string{
		"projectName":   "My Art",
		"projectSymbol": "ART",
		"totalSupply":   "100",
		"mintPrice":     "0.05",
		"royalties":     "5",
		"contractOwner": "0x" + strings.Repeat("a", 40),
	}
}

func TestGetDashboard_LoggedOutByDefault(t *testing.T) {
	env := setupTestEnv(t)
	w, body := env.send(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["dashboard"]), `"state":"logged_out"`)
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)

	w, body := env.json(t, http.MethodPost, "/api/v1/dashboard/login", gin.H{"email": "jane@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", errorOf(t, body))

	w, body = env.json(t, http.MethodPost, "/api/v1/dashboard/login", gin.H{"email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(body["field"]), "email")

	env.login(t)
	w, body = env.send(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["dashboard"]), `"state":"authenticated"`)
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	env := setupTestEnv(t)
	w, _ := env.send(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListProjectsForwardsToken(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t)

	w, body := env.send(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/projects", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["projects"]), "My Art")
	assert.Equal(t, []string{"Bearer tok-a1"}, env.backend.authHdrs)
}

func TestRegisterThenLogout(t *testing.T) {
	env := setupTestEnv(t)

	w, body := env.json(t, http.MethodPost, "/api/v1/dashboard/register", gin.H{
		"name": "Jane", "email": "jane@example.com", "mobile": "12345678901", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(body["dashboard"]), views.MsgRegistered)
	assert.Contains(t, string(body["dashboard"]), `"state":"logged_out"`)

	env.login(t)
	w, body = env.json(t, http.MethodPost, "/api/v1/dashboard/logout", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["dashboard"]), `"state":"logged_out"`)

	w, _ = env.send(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/projects", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateProject(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t)

	t.Run("missing image", func(t *testing.T) {
		w, body := env.multipart(t, http.MethodPost, "/api/v1/dashboard/projects", projectFields(), "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Project image is required", errorOf(t, body))
	})

	t.Run("taken name", func(t *testing.T) {
		env.backend.takenName = "My Art"
		defer func() { env.backend.takenName = "" }()

		w, body := env.json(t, http.MethodPost, "/api/v1/dashboard/availability/name", gin.H{"projectName": "My Art"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(body["projectName"]), `"verdict":"taken"`)

		w, body = env.multipart(t, http.MethodPost, "/api/v1/dashboard/projects", projectFields(), "image", []byte("png"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Project name is already taken", errorOf(t, body))
	})

	t.Run("created", func(t *testing.T) {
		w, _ := env.json(t, http.MethodPost, "/api/v1/dashboard/availability/name", gin.H{"projectName": "My Art"})
		require.Equal(t, http.StatusOK, w.Code)

		w, body := env.multipart(t, http.MethodPost, "/api/v1/dashboard/projects", projectFields(), "image", []byte("png"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Contains(t, string(body["dashboard"]), views.MsgProjectCreated)

		require.Len(t, env.backend.created, 1)
		got := env.backend.created[0]
		assert.Equal(t, "a1", got.ArtistID)
		assert.Equal(t, int64(100), got.TotalSupply)
		assert.True(t, strings.HasPrefix(got.Image, "data:"), got.Image)
	})
}

func TestSymbolAvailability(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t)

	w, body := env.json(t, http.MethodPost, "/api/v1/dashboard/availability/symbol", gin.H{"projectSymbol": ""})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["projectSymbol"]), `"verdict":"unknown"`)

	w, body = env.json(t, http.MethodPost, "/api/v1/dashboard/availability/symbol", gin.H{"projectSymbol": "ART"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(body["projectSymbol"]), `"verdict":"available"`)
}

func TestUpdateDetails(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t)

	fields := map[string]string{"projectName": "Someone Else's", "description": "hello", "backgroundColor": "#102030"}
	w, _ := env.multipart(t, http.MethodPut, "/api/v1/dashboard/projects/p1/details", fields, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, env.backend.updated)

	fields["projectName"] = "My Art"
	w, _ = env.multipart(t, http.MethodPut, "/api/v1/dashboard/projects/p1/details", fields, "coverImage", []byte("jpg"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, env.backend.updated, 1)
	assert.Equal(t, "hello", env.backend.updated[0].Description)
	assert.NotEmpty(t, env.backend.updated[0].CoverImage)
}
