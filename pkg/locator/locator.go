// Package locator classifies content URIs of the form
//
//	content://<authority>/<path>
//	content://<authority>/<path>/<id>
//
// against a set of registered path patterns. Paths are matched with a chi
// routing tree, so patterns use chi syntax ("/products",
// "/products/{id:[0-9]+}").
package locator

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Scheme is the only scheme a Matcher accepts.
const Scheme = "content"

// Kind is the shape a URI was classified into.
type Kind int

const (
	Unrecognized Kind = iota
	Collection
	Item
)

func (k Kind) String() string {
	switch k {
	case Collection:
		return "collection"
	case Item:
		return "item"
	default:
		return "unrecognized"
	}
}

// Match is the result of classifying a URI.
type Match struct {
	URI  string
	Kind Kind
	// ID is set for Item matches only.
	ID int64
}

// Matcher maps URIs of one authority to a Kind.
type Matcher struct {
	authority string
	mux       *chi.Mux
	kinds     map[string]Kind
	idParam   string
}

// New creates a Matcher for authority. idParam names the pattern parameter
// holding the item id.
func New(authority, idParam string) *Matcher {
	return &Matcher{
		authority: authority,
		mux:       chi.NewRouter(),
		kinds:     map[string]Kind{},
		idParam:   idParam,
	}
}

// Add registers a path pattern for kind.
func (m *Matcher) Add(pattern string, kind Kind) *Matcher {
	m.mux.Method(http.MethodGet, pattern, http.NotFoundHandler())
	m.kinds[pattern] = kind
	return m
}

// Authority returns the authority this matcher accepts.
func (m *Matcher) Authority() string { return m.authority }

// Match classifies uri. Anything that fails to parse, carries another scheme
// or authority, or matches no pattern is Unrecognized. Item ids must be
// positive and fit in an int64.
func (m *Matcher) Match(uri string) Match {
	out := Match{URI: uri}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme != Scheme || u.Host != m.authority || u.RawQuery != "" || u.Fragment != "" {
		return out
	}

	rctx := chi.NewRouteContext()
	if !m.mux.Match(rctx, http.MethodGet, u.EscapedPath()) {
		return out
	}

	kind := m.kinds[rctx.RoutePattern()]
	if kind == Item {
		id, err := strconv.ParseInt(rctx.URLParam(m.idParam), 10, 64)
		if err != nil || id <= 0 {
			return out
		}
		out.ID = id
	}
	out.Kind = kind
	return out
}

// Build returns content://<authority>/<path>.
func (m *Matcher) Build(path string) string {
	u := url.URL{Scheme: Scheme, Host: m.authority, Path: path}
	return u.String()
}

// WithID appends an id segment to a URI.
func WithID(uri string, id int64) string {
	return fmt.Sprintf("%s/%d", uri, id)
}
