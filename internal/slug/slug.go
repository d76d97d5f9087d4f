// Package slug maps human-readable artist and project names to URL path
// segments and back.
//
// The mapping is deliberately simple and lossy. Encode is not injective: two
// names that differ only in casing or punctuation share a slug. Decode only
// produces a display/query hint; the backend performs the authoritative
// case-insensitive name lookup.
package slug

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ProjectsPrefix is the first path segment of every gallery route.
const ProjectsPrefix = "/projects"

var (
	nonSlugChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphens      = regexp.MustCompile(`-+`)
)

// Encode lowercases and trims name, drops everything except word characters,
// whitespace and hyphens, then collapses whitespace and hyphen runs to a
// single hyphen. Encode(Encode(x)) == Encode(x).
func Encode(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	return hyphens.ReplaceAllString(s, "-")
}

// Decode turns hyphens back into spaces and upper-cases the first letter of
// every word: "jane-doe" -> "Jane Doe".
func Decode(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "-", " "), " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// ProjectPath builds the detail route for a project, e.g.
// "/projects/jane-doe/my-art".
func ProjectPath(artistName, projectName string) string {
	return ProjectsPrefix + "/" + Encode(artistName) + "/" + Encode(projectName)
}
