package config

// SiteConfig is the validated site configuration. It is produced by Parse or
// Load and is treated as read-only by every consumer.
type SiteConfig struct {
	Version          string
	Title            string
	Tagline          string
	Favicon          string
	URL              string
	BaseURL          string
	OrganizationName string
	ProjectName      string

	OnBrokenLinks         BrokenLinkPolicy
	OnBrokenMarkdownLinks BrokenLinkPolicy

	I18n  I18nConfig
	Docs  DocsConfig
	Blog  *BlogConfig // nil when the blog is disabled
	Pages PagesConfig

	Theme ThemeConfig
}

// I18nConfig holds the locale set. DefaultLocale is always a member of Locales.
type I18nConfig struct {
	DefaultLocale string
	Locales       []string
}

// DocsConfig describes the docs content plugin.
type DocsConfig struct {
	Path          string // content directory, relative to the site root
	RouteBasePath string // URL segment docs are served under
	SidebarPath   string // sidebar definition document
	EditURL       string
}

// BlogConfig describes the blog content plugin.
type BlogConfig struct {
	Path            string
	RouteBasePath   string
	ShowReadingTime bool
	EditURL         string
}

// PagesConfig describes standalone pages.
type PagesConfig struct {
	Path string
}

// ThemeConfig groups navbar, footer and code highlighting.
type ThemeConfig struct {
	Image  string
	Navbar Navbar
	Footer Footer
	Prism  PrismConfig
}

// Navbar is the top navigation bar. Items keep declaration order.
type Navbar struct {
	Title string
	Logo  *Logo
	Items []LinkItem
}

// Logo is the navbar logo.
type Logo struct {
	Alt string
	Src string
}

// Footer is the page footer. Links keep declaration order.
type Footer struct {
	Style     FooterStyle
	Links     []FooterGroup
	Copyright string
}

// FooterGroup is a titled column of footer links.
type FooterGroup struct {
	Title string
	Items []LinkItem
}

// PrismConfig names the light and dark code highlighting themes.
type PrismConfig struct {
	Theme     string
	DarkTheme string
}

// LinkItem is a navbar or footer entry. It is exactly one of SidebarLink,
// PageLink or ExternalLink.
type LinkItem interface {
	Meta() LinkMeta
	linkItem()
}

// LinkMeta carries the fields shared by all link variants.
type LinkMeta struct {
	Label    string
	Position Position
}

// SidebarLink points at a named sidebar.
type SidebarLink struct {
	LinkMeta
	SidebarID string
}

// PageLink points at an internal page path.
type PageLink struct {
	LinkMeta
	To string
}

// ExternalLink points at an external URL. Href is opaque and not validated.
type ExternalLink struct {
	LinkMeta
	Href string
}

func (l SidebarLink) Meta() LinkMeta  { return l.LinkMeta }
func (l PageLink) Meta() LinkMeta     { return l.LinkMeta }
func (l ExternalLink) Meta() LinkMeta { return l.LinkMeta }

func (SidebarLink) linkItem()  {}
func (PageLink) linkItem()     {}
func (ExternalLink) linkItem() {}

// SidebarReferences returns every sidebar id referenced from the navbar and
// footer, in declaration order (navbar first).
func (c *SiteConfig) SidebarReferences() []string {
	var refs []string
	c.EachLink(func(_ string, item LinkItem) {
		if s, ok := item.(SidebarLink); ok {
			refs = append(refs, s.SidebarID)
		}
	})
	return refs
}

// EachLink visits every navbar and footer link item in declaration order.
// loc is a field path such as "themeConfig.footer.links[1].items[0]".
func (c *SiteConfig) EachLink(fn func(loc string, item LinkItem)) {
	for i, item := range c.Theme.Navbar.Items {
		fn(NavbarItemPath(i), item)
	}
	for g, group := range c.Theme.Footer.Links {
		for i, item := range group.Items {
			fn(FooterItemPath(g, i), item)
		}
	}
}
