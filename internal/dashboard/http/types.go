package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/auth"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/availability"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
)

// MaxImageBytes caps uploaded project and cover images.
const MaxImageBytes = 10 << 20

// Handler serves the artist dashboard. One Dashboard view lives per session.
type Handler struct {
	dashboards *views.Registry[*views.Dashboard]
	store      session.Service
	dirFor     views.DirectoryFor
	checker    *availability.Checker
}

// New creates a new Handler
func New(dashboards *views.Registry[*views.Dashboard], store session.Service, dirFor views.DirectoryFor, checker *availability.Checker) *Handler {
	return &Handler{
		dashboards: dashboards,
		store:      store,
		dirFor:     dirFor,
		checker:    checker,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type nameCheckRequest struct {
	ProjectName string `json:"projectName"`
}

type symbolCheckRequest struct {
	ProjectSymbol string `json:"projectSymbol"`
}

// Register registers the dashboard routes. rg must already carry
// auth.WithSession.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.GetDashboard)
	rg.POST("/login", h.Login)
	rg.POST("/register", h.RegisterArtist)
	rg.POST("/logout", h.Logout)

	artist := rg.Group("", auth.RequireArtist())
	artist.GET("/projects", h.ListProjects)
	artist.POST("/projects", h.CreateProject)
	artist.PUT("/projects/:project_id/details", h.UpdateDetails)
	artist.POST("/availability/name", h.CheckName)
	artist.POST("/availability/symbol", h.CheckSymbol)
}
