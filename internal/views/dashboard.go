package views

import (
	"context"
	"strings"
	"sync"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/availability"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/directory"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/session"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/validation"
)

type DashboardState int

const (
	LoggedOut DashboardState = iota
	Authenticated
)

func (s DashboardState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "logged_out"
}

func (s DashboardState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ArtistDirectory is the backend surface the dashboard needs.
type ArtistDirectory interface {
	Login(ctx context.Context, form domain.LoginForm) (*directory.LoginResult, error)
	Register(ctx context.Context, form domain.RegisterForm) error
	ListArtistProjects(ctx context.Context, artistID string) ([]domain.Project, error)
	CreateProject(ctx context.Context, artistID string, draft *domain.ProjectDraft) error
	VerifyOwnership(ctx context.Context, artistID, projectName string) (bool, error)
	UpdateProjectDetails(ctx context.Context, artistID string, form domain.DetailsForm) error
}

// DirectoryFor returns an ArtistDirectory that authenticates with token.
type DirectoryFor func(token string) ArtistDirectory

// Success messages.
const (
	MsgRegistered     = "Registration successful! Please log in."
	MsgProjectCreated = "Project created successfully! It is pending admin approval."
	MsgDetailsSaved   = "Project details updated"
)

// Dashboard is the artist area for one browser session. Its state is
// derived from the injected session when it is built and changes only
// through Login, Register and Logout.
type Dashboard struct {
	store   session.Service
	dirFor  DirectoryFor
	checker *availability.Checker

	mu         sync.Mutex
	sess       *session.Session
	state      DashboardState
	message    string
	isError    bool
	submitting bool
	name       *availability.Field
	symbol     *availability.Field
}

func NewDashboard(sess *session.Session, store session.Service, dirFor DirectoryFor, checker *availability.Checker) *Dashboard {
	d := &Dashboard{
		store:   store,
		dirFor:  dirFor,
		checker: checker,
		sess:    sess,
		name:    availability.NewField(availability.ProjectName, checker),
		symbol:  availability.NewField(availability.ProjectSymbol, checker),
	}
	if sess.Authenticated() {
		d.state = Authenticated
	}
	return d
}

func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Session returns the session the dashboard currently acts for.
func (d *Dashboard) Session() *session.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess
}

func (d *Dashboard) Login(ctx context.Context, form domain.LoginForm) error {
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.Login(form); err != nil {
		d.setMessage(err.Error(), true)
		return err
	}
	if err := d.beginSubmit(); err != nil {
		return err
	}
	defer d.endSubmit()

	res, err := d.dirFor("").Login(ctx, form)
	if err != nil {
		d.setMessage(domain.UserMessage(err, "Login failed"), true)
		return err
	}

	sess, err := d.store.Save(ctx, d.Session().ID, res.Artist, res.Token)
	if err != nil {
		logging.NewLogger(ctx).LogError("dashboard.login", err)
		d.setMessage("Login failed", true)
		return err
	}

	d.mu.Lock()
	d.sess = sess
	d.state = Authenticated
	d.message, d.isError = "", false
	d.mu.Unlock()
	return nil
}

// Register creates the account and leaves the dashboard logged out.
func (d *Dashboard) Register(ctx context.Context, form domain.RegisterForm) error {
	form.Email = strings.TrimSpace(form.Email)
	if err := validation.Register(form); err != nil {
		d.setMessage(err.Error(), true)
		return err
	}
	if err := d.beginSubmit(); err != nil {
		return err
	}
	defer d.endSubmit()

	if err := d.dirFor("").Register(ctx, form); err != nil {
		d.setMessage(domain.UserMessage(err, "Registration failed"), true)
		return err
	}
	d.setMessage(MsgRegistered, false)
	return nil
}

func (d *Dashboard) Logout(ctx context.Context) error {
	sid := d.Session().ID
	if err := d.store.Clear(ctx, sid); err != nil {
		logging.NewLogger(ctx).LogError("dashboard.logout", err)
		return err
	}

	d.mu.Lock()
	d.sess = &session.Session{ID: sid}
	d.state = LoggedOut
	d.message, d.isError = "", false
	d.mu.Unlock()

	d.name.SetInput("")
	d.symbol.SetInput("")
	return nil
}

// Projects lists the logged-in artist's projects, whatever their status.
func (d *Dashboard) Projects(ctx context.Context) ([]domain.Project, error) {
	sess, err := d.authenticated()
	if err != nil {
		return nil, err
	}
	return d.dirFor(sess.Token).ListArtistProjects(ctx, sess.ArtistID())
}

func (d *Dashboard) SetProjectName(s string) {
	d.name.SetInput(s)
}

func (d *Dashboard) SetProjectSymbol(s string) {
	d.symbol.SetInput(s)
}

func (d *Dashboard) CheckName(ctx context.Context) availability.FieldState {
	return d.name.Check(ctx, d.Session().ArtistID())
}

func (d *Dashboard) CheckSymbol(ctx context.Context) availability.FieldState {
	return d.symbol.Check(ctx, d.Session().ArtistID())
}

// CreateProject validates form against the latest availability verdicts and
// submits it. Only one submission may be outstanding.
func (d *Dashboard) CreateProject(ctx context.Context, form domain.ProjectForm) error {
	sess, err := d.authenticated()
	if err != nil {
		return err
	}
	if err := d.beginSubmit(); err != nil {
		return err
	}
	defer d.endSubmit()

	d.name.SetInput(form.ProjectName)
	d.symbol.SetInput(form.ProjectSymbol)

	draft, err := validation.Project(form, validation.Availability{
		NameTaken:   d.name.State().Verdict == availability.Taken,
		SymbolTaken: d.symbol.State().Verdict == availability.Taken,
	})
	if err != nil {
		d.setMessage(err.Error(), true)
		return err
	}

	if err := d.dirFor(sess.Token).CreateProject(ctx, sess.ArtistID(), draft); err != nil {
		d.setMessage(domain.UserMessage(err, "Failed to create project"), true)
		return err
	}

	d.name.SetInput("")
	d.symbol.SetInput("")
	d.setMessage(MsgProjectCreated, false)
	return nil
}

// UpdateDetails saves description, cover and colour after the backend
// confirms the artist owns the project.
func (d *Dashboard) UpdateDetails(ctx context.Context, form domain.DetailsForm) error {
	sess, err := d.authenticated()
	if err != nil {
		return err
	}
	if err := validation.Details(form); err != nil {
		d.setMessage(err.Error(), true)
		return err
	}
	if err := d.beginSubmit(); err != nil {
		return err
	}
	defer d.endSubmit()

	dir := d.dirFor(sess.Token)
	owner, err := dir.VerifyOwnership(ctx, sess.ArtistID(), form.ProjectName)
	if err != nil {
		d.setMessage(domain.UserMessage(err, "Failed to update project"), true)
		return err
	}
	if !owner {
		d.setMessage(domain.UserMessage(domain.ErrNotOwner, ""), true)
		return domain.ErrNotOwner
	}

	if err := dir.UpdateProjectDetails(ctx, sess.ArtistID(), form); err != nil {
		d.setMessage(domain.UserMessage(err, "Failed to update project"), true)
		return err
	}
	d.setMessage(MsgDetailsSaved, false)
	return nil
}

// Close is a no-op; dashboards hold no background work.
func (d *Dashboard) Close() {}

// DashboardView is the rendered dashboard.
type DashboardView struct {
	State      DashboardState          `json:"state"`
	Artist     *domain.Artist          `json:"artist,omitempty"`
	Message    string                  `json:"message,omitempty"`
	Error      bool                    `json:"error"`
	Submitting bool                    `json:"submitting"`
	Name       availability.FieldState `json:"projectName"`
	Symbol     availability.FieldState `json:"projectSymbol"`
}

func (d *Dashboard) Snapshot() DashboardView {
	d.mu.Lock()
	v := DashboardView{
		State:      d.state,
		Message:    d.message,
		Error:      d.isError,
		Submitting: d.submitting,
	}
	if d.sess.Authenticated() {
		a := *d.sess.Artist
		v.Artist = &a
	}
	d.mu.Unlock()

	v.Name = d.name.State()
	v.Symbol = d.symbol.State()
	return v
}

func (d *Dashboard) authenticated() (*session.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Authenticated || !d.sess.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	return d.sess, nil
}

func (d *Dashboard) beginSubmit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return domain.ErrSubmitInFlight
	}
	d.submitting = true
	return nil
}

func (d *Dashboard) endSubmit() {
	d.mu.Lock()
	d.submitting = false
	d.mu.Unlock()
}

func (d *Dashboard) setMessage(msg string, isError bool) {
	d.mu.Lock()
	d.message, d.isError = msg, isError
	d.mu.Unlock()
}
