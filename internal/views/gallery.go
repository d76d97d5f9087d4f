package views

import (
	"context"
	"errors"
	"sync"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
)

var ErrViewClosed = errors.New("view closed")

// PublicDirectory is the read-only backend surface the gallery needs.
type PublicDirectory interface {
	ListPublicProjects(ctx context.Context) ([]domain.Project, error)
	GetPublicProject(ctx context.Context, artistName, projectName string) (*domain.Project, error)
}

// Gallery is one browsing session over the public gallery: either the
// listing or a single project's page.
type Gallery struct {
	id      string
	dir     PublicDirectory
	newMint MintFactory

	mu       sync.Mutex
	route    Route
	projects []domain.Project
	page     *ProjectPage
	message  string
	loading  bool
	gen      uint64
	closed   bool
}

func NewGallery(id string, dir PublicDirectory, newMint MintFactory) *Gallery {
	return &Gallery{id: id, dir: dir, newMint: newMint}
}

func (g *Gallery) ID() string {
	return g.id
}

// Mount derives the initial state from path and loads it.
func (g *Gallery) Mount(ctx context.Context, path string) error {
	return g.navigate(ctx, Resolve(path))
}

// Select opens a project from the listing.
func (g *Gallery) Select(ctx context.Context, artistName, projectName string) error {
	return g.navigate(ctx, ProjectRoute(artistName, projectName))
}

// Back returns to the listing. The listing is always fetched again.
func (g *Gallery) Back(ctx context.Context) error {
	return g.navigate(ctx, Route{Kind: RouteGallery})
}

func (g *Gallery) navigate(ctx context.Context, route Route) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrViewClosed
	}
	g.gen++
	gen := g.gen
	old := g.page
	g.route = route
	g.page = nil
	g.message = ""
	g.loading = true
	g.mu.Unlock()

	if old != nil {
		old.close()
	}

	if route.Kind == RouteGallery {
		return g.loadListing(ctx, gen)
	}
	return g.loadProject(ctx, gen, route)
}

func (g *Gallery) loadListing(ctx context.Context, gen uint64) error {
	all, err := g.dir.ListPublicProjects(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stale(gen) {
		return nil
	}
	g.loading = false
	if err != nil {
		g.projects = nil
		g.message = domain.UserMessage(err, "Failed to load projects")
		return err
	}

	approved := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.Status == domain.StatusApproved {
			approved = append(approved, p)
		}
	}
	g.projects = approved
	if len(approved) == 0 {
		g.message = "No projects available yet"
	}
	return nil
}

func (g *Gallery) loadProject(ctx context.Context, gen uint64, route Route) error {
	project, err := g.dir.GetPublicProject(ctx, route.ArtistName, route.ProjectName)
	if err != nil {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.stale(gen) {
			return nil
		}
		g.loading = false
		g.message = domain.UserMessage(err, "Failed to load project")
		return err
	}

	// build the page before taking the lock; the mint factory may touch the wallet
	page := newProjectPage(project, g.id, g.newMint)

	g.mu.Lock()
	if g.stale(gen) {
		g.mu.Unlock()
		page.close()
		logging.NewLogger(ctx).LogInfof("gallery", "dropped stale project load view=%s", g.id)
		return nil
	}
	g.loading = false
	g.page = page
	g.mu.Unlock()
	return nil
}

func (g *Gallery) stale(gen uint64) bool {
	return g.closed || g.gen != gen
}

// Page returns the open project page, or nil on the listing.
func (g *Gallery) Page() *ProjectPage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page
}

// Close tears the view down. Loads still in flight are discarded.
func (g *Gallery) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	page := g.page
	g.page = nil
	g.mu.Unlock()

	if page != nil {
		page.close()
	}
}

// GalleryView is the rendered gallery state.
type GalleryView struct {
	ID       string        `json:"id"`
	Route    Route         `json:"route"`
	Path     string        `json:"path"`
	Loading  bool          `json:"loading"`
	Message  string        `json:"message,omitempty"`
	Projects []GalleryItem `json:"projects,omitempty"`
	Project  *ProjectView  `json:"projectPage,omitempty"`
}

// GalleryItem is a listing card with the path it links to.
type GalleryItem struct {
	domain.Project
	Path string `json:"path"`
}

func (g *Gallery) Snapshot() GalleryView {
	g.mu.Lock()
	v := GalleryView{
		ID:      g.id,
		Route:   g.route,
		Path:    g.route.Path(),
		Loading: g.loading,
		Message: g.message,
	}
	if g.route.Kind == RouteGallery {
		v.Projects = make([]GalleryItem, 0, len(g.projects))
		for _, p := range g.projects {
			v.Projects = append(v.Projects, GalleryItem{Project: p, Path: ProjectRoute(p.ArtistName, p.ProjectName).Path()})
		}
	}
	page := g.page
	g.mu.Unlock()

	if page != nil {
		v.Project = page.view()
	}
	return v
}
