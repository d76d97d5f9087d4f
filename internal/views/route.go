// Package views holds the stateful screens of the client: the public gallery
// with its project detail page, and the artist dashboard. Each view instance
// is mutated only through its methods and renders through Snapshot.
package views

import (
	"net/url"
	"strings"

	"github.com/GoSim-25-26J-441/go-mint-studio/internal/slug"
)

type RouteKind int

const (
	RouteGallery RouteKind = iota
	RouteProjectDetail
)

func (k RouteKind) String() string {
	if k == RouteProjectDetail {
		return "project_detail"
	}
	return "gallery"
}

func (k RouteKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Route is a resolved location. Names are decoded from the slugs and are
// therefore title-cased approximations of the stored names.
type Route struct {
	Kind        RouteKind `json:"kind"`
	ArtistSlug  string    `json:"artistSlug,omitempty"`
	ProjectSlug string    `json:"projectSlug,omitempty"`
	ArtistName  string    `json:"artistName,omitempty"`
	ProjectName string    `json:"projectName,omitempty"`
}

// Path renders the route back to a URL path.
func (r Route) Path() string {
	if r.Kind == RouteProjectDetail {
		return slug.ProjectsPrefix + "/" + r.ArtistSlug + "/" + r.ProjectSlug
	}
	return slug.ProjectsPrefix
}

// Resolve maps a URL path to a route. Exactly three non-empty segments with
// the projects prefix first select a project page; anything else is the
// gallery.
func Resolve(path string) Route {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	prefix := strings.Trim(slug.ProjectsPrefix, "/")

	if len(segments) != 3 || segments[0] != prefix || segments[1] == "" || segments[2] == "" {
		return Route{Kind: RouteGallery}
	}
	return Route{
		Kind:        RouteProjectDetail,
		ArtistSlug:  segments[1],
		ProjectSlug: segments[2],
		ArtistName:  slug.Decode(segments[1]),
		ProjectName: slug.Decode(segments[2]),
	}
}

// ProjectRoute builds the detail route for a selected project.
func ProjectRoute(artistName, projectName string) Route {
	a, p := slug.Encode(artistName), slug.Encode(projectName)
	return Route{
		Kind:        RouteProjectDetail,
		ArtistSlug:  a,
		ProjectSlug: p,
		ArtistName:  slug.Decode(a),
		ProjectName: slug.Decode(p),
	}
}
