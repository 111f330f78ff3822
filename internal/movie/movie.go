// Package movie holds the OMDb movie record, the newest-first movie list
// and the persisted snapshot history.
package movie

import (
	"fmt"
	"strings"
)

// Movie is an OMDb payload kept as an opaque attribute bag. Only Title is
// required; every other attribute is passed through untouched.
type Movie map[string]any

// String returns the attribute as a string, or "" when absent or not a string.
func (m Movie) String(key string) string {
	v, _ := m[key].(string)
	return v
}

// HasTitle reports whether the payload carries a Title attribute.
func (m Movie) HasTitle() bool {
	_, ok := m["Title"]
	return ok
}

func (m Movie) Title() string  { return m.String("Title") }
func (m Movie) Year() string   { return m.String("Year") }
func (m Movie) Plot() string   { return m.String("Plot") }
func (m Movie) IMDbID() string { return m.String("imdbID") }

// Poster returns the poster URL, or "" when OMDb reports "N/A".
func (m Movie) Poster() string {
	p := m.String("Poster")
	if p == "N/A" {
		return ""
	}
	return p
}

// Identity is the de-duplication key: the IMDb ID when present, otherwise
// the lower-cased title and year.
func (m Movie) Identity() string {
	if id := m.IMDbID(); id != "" {
		return id
	}
	return strings.ToLower(strings.TrimSpace(m.Title())) + "|" + m.Year()
}

// Label is a short human-readable description, e.g. "Heat (1995)".
func (m Movie) Label() string {
	if y := m.Year(); y != "" {
		return fmt.Sprintf("%s (%s)", m.Title(), y)
	}
	return m.Title()
}

// Clone returns a shallow copy of the attribute bag.
func (m Movie) Clone() Movie {
	out := make(Movie, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
