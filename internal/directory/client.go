// Package directory is the client for the external artist/project REST
// backend: public gallery listings, artist auth and project management.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/artists/domain"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/logging"
	"github.com/GoSim-25-26J-441/go-mint-studio/internal/metrics"
)

const DefaultTimeout = 30 * time.Second

// Client handles communication with the artist/project backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a new backend client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends body (if any) as JSON and decodes a 2xx response into out.
// Transport and decode failures become *domain.NetworkError, non-2xx
// responses *domain.BackendError.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) (err error) {
	logger := logging.NewLogger(ctx)
	start := time.Now()
	defer func() {
		metrics.RecordBackendCall(op, time.Since(start), err)
		if err != nil {
			logger.LogError(op, err)
		}
	}()

	var reader io.Reader
	if body != nil {
		jsonData, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("%s: failed to marshal request: %w", op, mErr)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		msg := eb.Error
		if msg == "" {
			msg = eb.Message
		}
		return &domain.BackendError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &domain.NetworkError{Op: op, Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}
	return nil
}

type availabilityResponse struct {
	Available bool `json:"available"`
}

// CheckProjectName asks whether name is free within the artist's namespace.
func (c *Client) CheckProjectName(ctx context.Context, name, artistID string) (bool, error) {
	var resp availabilityResponse
	err := c.do(ctx, "check_project_name", http.MethodPost, "/api/artists/check-project-name",
		map[string]string{"projectName": name, "artistId": artistID}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Available, nil
}

// CheckProjectSymbol asks whether symbol is free within the artist's namespace.
func (c *Client) CheckProjectSymbol(ctx context.Context, symbol, artistID string) (bool, error) {
	var resp availabilityResponse
	err := c.do(ctx, "check_project_symbol", http.MethodPost, "/api/artists/check-project-symbol",
		map[string]string{"projectSymbol": symbol, "artistId": artistID}, &resp)
	if err != nil {
		return false, err
	}
	return resp.Available, nil
}

// GetArtist fetches an artist profile.
func (c *Client) GetArtist(ctx context.Context, artistID string) (*domain.Artist, error) {
	var resp struct {
		Artist *domain.Artist `json:"artist"`
	}
	if err := c.do(ctx, "get_artist", http.MethodGet, "/api/artists/"+url.PathEscape(artistID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Artist == nil {
		return nil, &domain.BackendError{Op: "get_artist", StatusCode: http.StatusOK, Message: "artist missing from response"}
	}
	return resp.Artist, nil
}

// ListArtistProjects returns every project the artist owns, in any status.
func (c *Client) ListArtistProjects(ctx context.Context, artistID string) ([]domain.Project, error) {
	var resp struct {
		Projects []domain.Project `json:"projects"`
	}
	path := "/api/artists/" + url.PathEscape(artistID) + "/projects"
	if err := c.do(ctx, "list_artist_projects", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return orEmpty(resp.Projects), nil
}

// CreateProjectRequest is the create-project payload. Image is a base64 data URL.
type CreateProjectRequest struct {
	ArtistID      string  `json:"artistId"`
	ProjectName   string  `json:"projectName"`
	ProjectSymbol string  `json:"projectSymbol"`
	TotalSupply   int64   `json:"totalSupply"`
	MintPrice     float64 `json:"mintPrice"`
	ContractOwner string  `json:"contractOwner"`
	Royalties     float64 `json:"royalties"`
	Image         string  `json:"image"`
}

// CreateProject submits a validated draft for admin review.
func (c *Client) CreateProject(ctx context.Context, artistID string, draft *domain.ProjectDraft) error {
	req := CreateProjectRequest{
		ArtistID:      artistID,
		ProjectName:   draft.ProjectName,
		ProjectSymbol: draft.ProjectSymbol,
		TotalSupply:   draft.TotalSupply,
		MintPrice:     draft.MintPrice,
		ContractOwner: draft.ContractOwner,
		Royalties:     draft.Royalties,
		Image:         EncodeImage(draft.Image),
	}
	return c.do(ctx, "create_project", http.MethodPost, "/api/artists/create-project", req, nil)
}

// LoginResult is what a successful login hands to the session store.
type LoginResult struct {
	Artist *domain.Artist
	Token  string
}

// Login authenticates an artist by email and password.
func (c *Client) Login(ctx context.Context, form domain.LoginForm) (*LoginResult, error) {
	var resp struct {
		Success bool           `json:"success"`
		Artist  *domain.Artist `json:"artist"`
		Token   string         `json:"token"`
		Error   string         `json:"error"`
	}
	err := c.do(ctx, "login", http.MethodPost, "/api/artists/login",
		map[string]string{"email": form.Email, "password": form.Password}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Artist == nil {
		return nil, &domain.BackendError{Op: "login", StatusCode: http.StatusOK, Message: resp.Error}
	}
	return &LoginResult{Artist: resp.Artist, Token: resp.Token}, nil
}

// Register creates a new artist account. It does not log the artist in.
func (c *Client) Register(ctx context.Context, form domain.RegisterForm) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	err := c.do(ctx, "register", http.MethodPost, "/api/artists/register", map[string]string{
		"name":     form.Name,
		"email":    form.Email,
		"mobile":   form.Mobile,
		"password": form.Password,
	}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return &domain.BackendError{Op: "register", StatusCode: http.StatusOK, Message: resp.Error}
	}
	return nil
}

// VerifyOwnership asks the backend whether artistID owns projectName.
func (c *Client) VerifyOwnership(ctx context.Context, artistID, projectName string) (bool, error) {
	var resp struct {
		IsOwner bool `json:"isOwner"`
	}
	err := c.do(ctx, "verify_ownership", http.MethodPost, "/api/artists/verify-ownership",
		map[string]string{"artistId": artistID, "projectName": projectName}, &resp)
	if err != nil {
		return false, err
	}
	return resp.IsOwner, nil
}

// DetailsRequest is the project-details update payload. CoverImage is a
// base64 data URL and omitted when unchanged.
type DetailsRequest struct {
	ArtistID        string `json:"artistId"`
	Description     string `json:"description"`
	CoverImage      string `json:"coverImage,omitempty"`
	BackgroundColor string `json:"backgroundColor"`
}

// UpdateProjectDetails updates the presentational fields of a project.
func (c *Client) UpdateProjectDetails(ctx context.Context, artistID string, form domain.DetailsForm) error {
	req := DetailsRequest{
		ArtistID:        artistID,
		Description:     form.Description,
		CoverImage:      EncodeImage(form.CoverImage),
		BackgroundColor: form.BackgroundColor,
	}
	path := "/api/artists/projects/" + url.PathEscape(form.ProjectID) + "/details"
	return c.do(ctx, "update_project_details", http.MethodPut, path, req, nil)
}

// ListPublicProjects returns the gallery listing.
func (c *Client) ListPublicProjects(ctx context.Context) ([]domain.Project, error) {
	var resp struct {
		Projects []domain.Project `json:"projects"`
	}
	if err := c.do(ctx, "list_public_projects", http.MethodGet, "/api/public/projects", nil, &resp); err != nil {
		return nil, err
	}
	return orEmpty(resp.Projects), nil
}

// GetPublicProject looks a project up by artist and project name. The names
// are usually decoded slugs; the backend matches them case-insensitively.
func (c *Client) GetPublicProject(ctx context.Context, artistName, projectName string) (*domain.Project, error) {
	var resp struct {
		Project *domain.Project `json:"project"`
	}
	path := "/api/public/projects/" + url.PathEscape(artistName) + "/" + url.PathEscape(projectName)
	err := c.do(ctx, "get_public_project", http.MethodGet, path, nil, &resp)
	if err != nil {
		var bErr *domain.BackendError
		if errors.As(err, &bErr) && bErr.StatusCode == http.StatusNotFound {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	if resp.Project == nil {
		return nil, domain.ErrProjectNotFound
	}
	return resp.Project, nil
}

func orEmpty(p []domain.Project) []domain.Project {
	if p == nil {
		return []domain.Project{}
	}
	return p
}
