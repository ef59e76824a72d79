package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"

	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// FileName is the manifest file written into the output directory.
const FileName = "site-manifest.json"

// SiteManifest is the assembled site as handed to the external renderer.
type SiteManifest struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Inputs    Inputs        `json:"inputs"`
	Site      Site          `json:"site"`
	Sidebars  []SidebarSpec `json:"sidebars"`
	Report    site.Report   `json:"report"`
}

// Inputs identifies what a manifest was built from.
type Inputs struct {
	ConfigHash    string `json:"config_hash"`
	SidebarHash   string `json:"sidebar_hash,omitempty"`
	Revision      string `json:"revision,omitempty"`
	ContentDigest string `json:"content_digest,omitempty"`
}

// Site carries the identity and navigation of the site.
type Site struct {
	Title         string              `json:"title"`
	Tagline       string              `json:"tagline,omitempty"`
	URL           string              `json:"url"`
	BaseURL       string              `json:"base_url"`
	Favicon       string              `json:"favicon,omitempty"`
	DefaultLocale string              `json:"default_locale"`
	Locales       []string            `json:"locales"`
	Navbar        []site.NavItem      `json:"navbar"`
	Footer        []site.FooterColumn `json:"footer"`
	Copyright     string              `json:"copyright,omitempty"`
	FooterStyle   string              `json:"footer_style"`
	PrismTheme    string              `json:"prism_theme"`
	PrismDark     string              `json:"prism_dark_theme"`
	DocsRoute     string              `json:"docs_route"`
	BlogRoute     string              `json:"blog_route,omitempty"`
}

// SidebarSpec is one named sidebar.
type SidebarSpec struct {
	Name  string     `json:"name"`
	Items []NodeSpec `json:"items"`
}

// NodeSpec is a sidebar node; Type is "doc" or "category".
type NodeSpec struct {
	Type      string     `json:"type"`
	ID        string     `json:"id,omitempty"`
	Label     string     `json:"label,omitempty"`
	Collapsed bool       `json:"collapsed,omitempty"`
	Items     []NodeSpec `json:"items,omitempty"`
}

// FromModel converts an assembled model into its manifest form.
func FromModel(m *site.Model, inputs Inputs) *SiteManifest {
	cfg := m.Config
	s := Site{
		Title:         cfg.Title,
		Tagline:       cfg.Tagline,
		URL:           cfg.URL,
		BaseURL:       cfg.BaseURL,
		Favicon:       cfg.Favicon,
		DefaultLocale: cfg.I18n.DefaultLocale,
		Locales:       cfg.I18n.Locales,
		Navbar:        m.Navbar,
		Footer:        m.Footer,
		Copyright:     cfg.Theme.Footer.Copyright,
		FooterStyle:   string(cfg.Theme.Footer.Style),
		PrismTheme:    cfg.Theme.Prism.Theme,
		PrismDark:     cfg.Theme.Prism.DarkTheme,
		DocsRoute:     cfg.Docs.RouteBasePath,
	}
	if cfg.Blog != nil {
		s.BlogRoute = cfg.Blog.RouteBasePath
	}

	inputs.Revision = m.Revision
	inputs.ContentDigest = m.ContentDigest

	sidebars := make([]SidebarSpec, 0, m.Sidebars.Len())
	for _, name := range m.Sidebars.Names() {
		nodes, _ := m.Sidebars.Sidebar(name)
		sidebars = append(sidebars, SidebarSpec{Name: name, Items: nodeSpecs(nodes)})
	}

	report := m.Report
	if report.Warnings == nil {
		report.Warnings = []site.Warning{}
	}
	return &SiteManifest{
		ID:        m.BuildID,
		Timestamp: m.AssembledAt,
		Inputs:    inputs,
		Site:      s,
		Sidebars:  sidebars,
		Report:    report,
	}
}

func nodeSpecs(nodes []sidebar.Node) []NodeSpec {
	out := make([]NodeSpec, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case sidebar.Document:
			out = append(out, NodeSpec{Type: sidebar.TypeDoc, ID: v.ID, Label: v.Label})
		case sidebar.Category:
			out = append(out, NodeSpec{Type: sidebar.TypeCategory, Label: v.Label, Collapsed: v.Collapsed, Items: nodeSpecs(v.Items)})
		}
	}
	return out
}

// ToJSON serializes the manifest to JSON.
func (m *SiteManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*SiteManifest, error) {
	var m SiteManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest inputs. Two builds with
// equal hashes were built from identical config, sidebars and content.
func (m *SiteManifest) Hash() (string, error) {
	data, err := json.Marshal(m.Inputs)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Write stores the manifest at path atomically: readers see either the
// previous file or the complete new one.
func Write(path string, m *SiteManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending manifest file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write manifest data: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace manifest file: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (*SiteManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// HashBytes is the hex sha256 of an input document, used for Inputs hashes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum)
}
