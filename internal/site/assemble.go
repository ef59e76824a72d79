package site

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

// Catalog is the set of known routes and document ids supplied by content
// discovery.
type Catalog interface {
	HasPage(path string) bool
	HasDocument(id string) bool
}

// documentPather is implemented by catalogs that know document routes.
type documentPather interface {
	DocumentPath(id string) (string, bool)
}

// Options carries build metadata recorded on the model.
type Options struct {
	// BuildID is generated when empty.
	BuildID       string
	Revision      string
	ContentDigest string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Assemble cross-validates cfg against tree and catalog and returns the site
// model. Unresolved references become report warnings, subject to the
// config's broken-link policies. A nil catalog skips page and document
// checks. Assemble has no side effects.
func Assemble(cfg *config.SiteConfig, tree *sidebar.Tree, catalog Catalog, opts Options) (*Model, error) {
	if cfg == nil {
		return nil, errors.New("site config is nil")
	}
	if opts.BuildID == "" {
		opts.BuildID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &assembler{cfg: cfg, tree: tree, catalog: catalog}
	if p, ok := catalog.(documentPather); ok {
		a.paths = p
	}

	navbar := make([]NavItem, 0, len(cfg.Theme.Navbar.Items))
	for i, item := range cfg.Theme.Navbar.Items {
		navbar = append(navbar, a.resolve(config.NavbarItemPath(i), item))
	}
	footer := make([]FooterColumn, 0, len(cfg.Theme.Footer.Links))
	for g, group := range cfg.Theme.Footer.Links {
		col := FooterColumn{Title: group.Title, Items: make([]NavItem, 0, len(group.Items))}
		for i, item := range group.Items {
			col.Items = append(col.Items, a.resolve(config.FooterItemPath(g, i), item))
		}
		footer = append(footer, col)
	}
	a.checkDocuments()

	kept, fatal := applyPolicy(a.warnings, cfg.OnBrokenLinks, cfg.OnBrokenMarkdownLinks)
	if len(fatal) > 0 {
		return nil, &BrokenLinksError{Warnings: fatal}
	}

	return &Model{
		BuildID:       opts.BuildID,
		AssembledAt:   opts.Now().UTC(),
		Revision:      opts.Revision,
		ContentDigest: opts.ContentDigest,
		Config:        cfg,
		Sidebars:      tree,
		Navbar:        navbar,
		Footer:        footer,
		Report:        Report{Warnings: kept},
	}, nil
}

type assembler struct {
	cfg      *config.SiteConfig
	tree     *sidebar.Tree
	catalog  Catalog
	paths    documentPather
	warnings []Warning
}

func (a *assembler) warn(kind WarningKind, ref, loc string) {
	a.warnings = append(a.warnings, Warning{Kind: kind, Ref: ref, Location: loc})
}

func (a *assembler) resolve(loc string, item config.LinkItem) NavItem {
	meta := item.Meta()
	nav := NavItem{Label: meta.Label, Position: meta.Position}

	switch l := item.(type) {
	case config.SidebarLink:
		nav.Kind, nav.Target = LinkSidebar, l.SidebarID
		if !a.tree.Has(l.SidebarID) {
			a.warn(UnknownSidebar, l.SidebarID, loc)
			nav.Broken = true
			return nav
		}
		nav.Href = a.sidebarHref(l.SidebarID)
	case config.PageLink:
		nav.Kind, nav.Target = LinkPage, l.To
		p := a.stripBaseURL(l.To)
		if a.catalog != nil && !a.catalog.HasPage(p) {
			a.warn(UnknownPage, l.To, loc)
			nav.Broken = true
			return nav
		}
		nav.Href = a.href(p)
	case config.ExternalLink:
		nav.Kind, nav.Target, nav.Href = LinkExternal, l.Href, l.Href
	}
	return nav
}

// checkDocuments reports sidebar documents the catalog does not know.
func (a *assembler) checkDocuments() {
	if a.catalog == nil {
		return
	}
	for _, name := range a.tree.Names() {
		for _, d := range a.tree.Documents(name) {
			if !a.catalog.HasDocument(d.ID) {
				a.warn(UnknownDocument, d.ID, name)
			}
		}
	}
}

// sidebarHref links a sidebar to its first document.
func (a *assembler) sidebarHref(name string) string {
	docs := a.tree.Documents(name)
	if len(docs) == 0 {
		return ""
	}
	id := docs[0].ID
	if a.paths != nil {
		if p, ok := a.paths.DocumentPath(id); ok {
			return a.href(p)
		}
	}
	return a.href(path.Join("/", a.cfg.Docs.RouteBasePath, id))
}

// stripBaseURL accepts page paths written with or without the site baseUrl.
func (a *assembler) stripBaseURL(p string) string {
	base := a.cfg.BaseURL
	if base == "/" || base == "" {
		return p
	}
	if strings.HasPrefix(p, base) {
		return "/" + strings.TrimPrefix(p, base)
	}
	return p
}

func (a *assembler) href(p string) string {
	return strings.TrimSuffix(a.cfg.BaseURL, "/") + p
}

// applyPolicy splits warnings by the policy governing their kind: ignored
// warnings are dropped and thrown ones are returned as fatal.
func applyPolicy(ws []Warning, links, markdown config.BrokenLinkPolicy) (kept, fatal []Warning) {
	for _, w := range ws {
		policy := links
		if w.Kind == UnknownDocument {
			policy = markdown
		}
		switch policy {
		case config.BrokenLinksIgnore:
		case config.BrokenLinksThrow:
			fatal = append(fatal, w)
		default:
			kept = append(kept, w)
		}
	}
	return kept, fatal
}
