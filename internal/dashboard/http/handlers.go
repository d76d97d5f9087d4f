package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/GoSim-25-26J-441/go-mint-studio/internal/api/http"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/auth"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/views"
)

func (h *Handler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dashboard": h.dashboard(c).Snapshot()})
}

func (h *Handler) Login(c *gin.Context) {
	var body loginRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	d := h.dashboard(c)
	if err := d.Login(c.Request.Context(), domain.LoginForm{Email: body.Email, Password: body.Password}); err != nil {
		httpapi.WriteError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": d.Snapshot()})
}

func (h *Handler) RegisterArtist(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	d := h.dashboard(c)
	err := d.Register(c.Request.Context(), domain.RegisterForm{
		Name:     body.Name,
		Email:    body.Email,
		Mobile:   body.Mobile,
		Password: body.Password,
	})
	if err != nil {
		httpapi.WriteError(c, err, "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dashboard": d.Snapshot()})
}

func (h *Handler) Logout(c *gin.Context) {
	d := h.dashboard(c)
	if err := d.Logout(c.Request.Context()); err != nil {
		httpapi.WriteError(c, err, "Logout failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": d.Snapshot()})
}

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.dashboard(c).Projects(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, err, "Failed to load projects")
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// CreateProject accepts the create-project form as multipart/form-data with
// the artwork in the "image" part.
func (h *Handler) CreateProject(c *gin.Context) {
	image, err := formUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := domain.ProjectForm{
		ProjectName:   c.PostForm("projectName"),
		ProjectSymbol: c.PostForm("projectSymbol"),
		TotalSupply:   c.PostForm("totalSupply"),
		MintPrice:     c.PostForm("mintPrice"),
		Royalties:     c.PostForm("royalties"),
		ContractOwner: c.PostForm("contractOwner"),
		Image:         image,
	}

	d := h.dashboard(c)
	if err := d.CreateProject(c.Request.Context(), form); err != nil {
		httpapi.WriteError(c, err, "Failed to create project")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"dashboard": d.Snapshot()})
}

func (h *Handler) UpdateDetails(c *gin.Context) {
	cover, err := formUpload(c, "coverImage")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form := domain.DetailsForm{
		ProjectID:       c.Param("project_id"),
		ProjectName:     c.PostForm("projectName"),
		Description:     c.PostForm("description"),
		BackgroundColor: c.PostForm("backgroundColor"),
		CoverImage:      cover,
	}

	d := h.dashboard(c)
	if err := d.UpdateDetails(c.Request.Context(), form); err != nil {
		httpapi.WriteError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": d.Snapshot()})
}

func (h *Handler) CheckName(c *gin.Context) {
	var body nameCheckRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	d := h.dashboard(c)
	d.SetProjectName(body.ProjectName)
	c.JSON(http.StatusOK, gin.H{"projectName": d.CheckName(c.Request.Context())})
}

func (h *Handler) CheckSymbol(c *gin.Context) {
	var body symbolCheckRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	d := h.dashboard(c)
	d.SetProjectSymbol(body.ProjectSymbol)
	c.JSON(http.StatusOK, gin.H{"projectSymbol": d.CheckSymbol(c.Request.Context())})
}

// dashboard returns the session's dashboard, building it from the session
// on first use.
func (h *Handler) dashboard(c *gin.Context) *views.Dashboard {
	sess := auth.SessionFrom(c)
	if d, ok := h.dashboards.Get(sess.ID); ok {
		return d
	}
	d := views.NewDashboard(sess, h.store, h.dirFor, h.checker)
	h.dashboards.Put(sess.ID, d)
	return d
}

// formUpload reads an optional file part into memory.
func formUpload(c *gin.Context, field string) (*domain.Upload, error) {
	fh, err := c.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s upload", field)
	}
	if fh.Size > MaxImageBytes {
		return nil, fmt.Errorf("%s must be at most %d MB", field, MaxImageBytes>>20)
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) (*domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
