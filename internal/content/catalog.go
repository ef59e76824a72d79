package content

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Kind classifies catalog entries.
type Kind string

const (
	KindDoc      Kind = "doc"
	KindBlogPost Kind = "blog"
	KindPage     Kind = "page"
	// KindListing marks generated routes such as the blog index.
	KindListing Kind = "listing"
)

var (
	ErrDuplicateID    = errors.New("duplicate document id")
	ErrDuplicateRoute = errors.New("duplicate route")
)

// Entry is one discovered piece of content.
type Entry struct {
	Kind        Kind
	ID          string // document id; only set for KindDoc
	Path        string // route path, without the site baseUrl
	Title       string
	Source      string // file the entry was read from
	Fingerprint string
}

// Catalog is the read-only set of known routes and document ids queried
// during assembly.
type Catalog struct {
	entries []Entry
	pages   map[string]int
	docs    map[string]int
	digest  string
}

// NewStaticCatalog builds a catalog from caller-supplied page paths and
// document ids. Repeated values are collapsed.
func NewStaticCatalog(pages, docIDs []string) *Catalog {
	c := &Catalog{pages: make(map[string]int), docs: make(map[string]int)}
	for _, p := range pages {
		p = NormalizePath(p)
		if _, ok := c.pages[p]; ok {
			continue
		}
		c.pages[p] = len(c.entries)
		c.entries = append(c.entries, Entry{Kind: KindPage, Path: p})
	}
	for _, id := range docIDs {
		if _, ok := c.docs[id]; ok {
			continue
		}
		c.docs[id] = len(c.entries)
		c.entries = append(c.entries, Entry{Kind: KindDoc, ID: id})
	}
	c.digest = digest(c.entries)
	return c
}

// newCatalog indexes discovered entries. Two entries may not share a route,
// and two documents may not share an id.
func newCatalog(entries []Entry) (*Catalog, error) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Source < entries[j].Source
	})

	c := &Catalog{
		entries: entries,
		pages:   make(map[string]int, len(entries)),
		docs:    make(map[string]int),
	}
	for i, e := range entries {
		if prev, dup := c.pages[e.Path]; dup {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateRoute, e.Path, entries[prev].Source, e.Source)
		}
		c.pages[e.Path] = i
		if e.Kind != KindDoc {
			continue
		}
		if prev, dup := c.docs[e.ID]; dup {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateID, e.ID, entries[prev].Source, e.Source)
		}
		c.docs[e.ID] = i
	}
	c.digest = digest(entries)
	return c, nil
}

// HasPage reports whether a route exists. Trailing slashes are ignored.
func (c *Catalog) HasPage(p string) bool {
	if c == nil {
		return false
	}
	_, ok := c.pages[NormalizePath(p)]
	return ok
}

// HasDocument reports whether a document id exists.
func (c *Catalog) HasDocument(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.docs[id]
	return ok
}

// Document returns the entry of a document id.
func (c *Catalog) Document(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.docs[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// DocumentPath returns the route of a document id. Documents of a static
// catalog have no known route.
func (c *Catalog) DocumentPath(id string) (string, bool) {
	e, ok := c.Document(id)
	if !ok || e.Path == "" {
		return "", false
	}
	return e.Path, true
}

// Entries returns all entries ordered by route.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Digest is a hash over every entry's route, id and fingerprint. It changes
// whenever any document content changes.
func (c *Catalog) Digest() string {
	if c == nil {
		return ""
	}
	return c.digest
}

// NormalizePath cleans a route path: leading slash, no trailing slash except
// for the root, and no query or fragment.
func NormalizePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = path.Clean("/" + strings.TrimSpace(p))
	return p
}
