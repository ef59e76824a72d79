package site

import (
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

// LinkKind names the variant of a resolved navigation item.
type LinkKind string

const (
	LinkSidebar  LinkKind = "sidebar"
	LinkPage     LinkKind = "page"
	LinkExternal LinkKind = "external"
)

// NavItem is a navbar or footer entry with its target resolved to a URL
// path.
type NavItem struct {
	Kind     LinkKind        `json:"kind"`
	Label    string          `json:"label"`
	Position config.Position `json:"position,omitempty"`
	// Target is the sidebar id, page path or external URL as declared.
	Target string `json:"target"`
	// Href is the link the renderer emits. Empty when the target is unknown.
	Href   string `json:"href,omitempty"`
	Broken bool   `json:"broken,omitempty"`
}

// FooterColumn is a titled footer group.
type FooterColumn struct {
	Title string    `json:"title"`
	Items []NavItem `json:"items"`
}

// Model is the assembled site handed to the renderer. It is built once per
// build by Assemble and is not modified afterwards.
type Model struct {
	BuildID       string
	AssembledAt   time.Time
	Revision      string
	ContentDigest string

	Config   *config.SiteConfig
	Sidebars *sidebar.Tree

	// Navbar and Footer keep the declared order.
	Navbar []NavItem
	Footer []FooterColumn

	Report Report
}
