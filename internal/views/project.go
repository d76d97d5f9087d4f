package views

import (
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/mint"
)

// MintPanel is what the project page shows where the mint button would be.
type MintPanel int

const (
	PanelHidden MintPanel = iota
	PanelComingSoon
	PanelMintControls
)

func (p MintPanel) String() string {
	switch p {
	case PanelComingSoon:
		return "coming_soon"
	case PanelMintControls:
		return "mint_controls"
	default:
		return "hidden"
	}
}

func (p MintPanel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// PanelFor picks the mint panel: controls when the project is mintable,
// a coming-soon notice for approved projects that are not yet, nothing
// otherwise.
func PanelFor(p *domain.Project) MintPanel {
	switch {
	case p.Mintable():
		return PanelMintControls
	case p != nil && p.Status == domain.StatusApproved:
		return PanelComingSoon
	default:
		return PanelHidden
	}
}

// MintFactory builds the mint controller for a mintable project page.
type MintFactory func(project *domain.Project, viewID string) *mint.Controller

// ProjectPage is the detail view of one project.
type ProjectPage struct {
	project *domain.Project
	panel   MintPanel
	mint    *mint.Controller
}

func newProjectPage(project *domain.Project, viewID string, factory MintFactory) *ProjectPage {
	page := &ProjectPage{project: project, panel: PanelFor(project)}
	if page.panel == PanelMintControls && factory != nil {
		page.mint = factory(project, viewID)
	}
	return page
}

// Mint returns the page's controller, or nil when no controls are shown.
func (p *ProjectPage) Mint() *mint.Controller {
	return p.mint
}

func (p *ProjectPage) Panel() MintPanel {
	return p.panel
}

func (p *ProjectPage) close() {
	if p.mint != nil {
		p.mint.Close()
	}
}

// ProjectView is the rendered project page.
type ProjectView struct {
	Project *domain.Project `json:"project"`
	Panel   MintPanel       `json:"panel"`
	Mint    *mint.Snapshot  `json:"mint,omitempty"`
}

func (p *ProjectPage) view() *ProjectView {
	v := &ProjectView{Project: p.project, Panel: p.panel}
	if p.mint != nil {
		snap := p.mint.Snapshot()
		if snap.Project != nil {
			v.Project = snap.Project
		}
		v.Mint = &snap
	}
	return v
}
