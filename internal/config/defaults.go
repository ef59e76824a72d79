package config

// Default values applied after normalization.
const (
	DefaultVersion         = "1.0"
	DefaultBaseURL         = "/"
	DefaultDocsPath        = "docs"
	DefaultDocsRoute       = "docs"
	DefaultSidebarPath     = "sidebars.yaml"
	DefaultBlogPath        = "blog"
	DefaultBlogRoute       = "blog"
	DefaultPagesPath       = "src/pages"
	DefaultPrismTheme      = "github"
	DefaultPrismDarkTheme  = "dracula"
	DefaultBrokenLinkLevel = BrokenLinksWarn
)

// applyDefaults fills optional fields. Required identity fields are left
// alone so validation can report them.
func applyDefaults(c *RawConfig) {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.OnBrokenLinks == "" {
		c.OnBrokenLinks = string(DefaultBrokenLinkLevel)
	}
	if c.OnBrokenMarkdownLinks == "" {
		c.OnBrokenMarkdownLinks = string(DefaultBrokenLinkLevel)
	}

	if c.Docs.Path == "" {
		c.Docs.Path = DefaultDocsPath
	}
	if c.Docs.RouteBasePath == "" {
		c.Docs.RouteBasePath = DefaultDocsRoute
	}
	if c.Docs.SidebarPath == "" {
		c.Docs.SidebarPath = DefaultSidebarPath
	}
	if c.Blog != nil {
		if c.Blog.Path == "" {
			c.Blog.Path = DefaultBlogPath
		}
		if c.Blog.RouteBasePath == "" {
			c.Blog.RouteBasePath = DefaultBlogRoute
		}
	}
	if c.Pages.Path == "" {
		c.Pages.Path = DefaultPagesPath
	}

	if c.Theme.Footer.Style == "" {
		c.Theme.Footer.Style = string(FooterStyleLight)
	}
	if c.Theme.Prism.Theme == "" {
		c.Theme.Prism.Theme = DefaultPrismTheme
	}
	if c.Theme.Prism.DarkTheme == "" {
		c.Theme.Prism.DarkTheme = DefaultPrismDarkTheme
	}
	if c.Theme.Navbar.Title == "" {
		c.Theme.Navbar.Title = c.Title
	}

	for i := range c.Theme.Navbar.Items {
		defaultLinkItem(&c.Theme.Navbar.Items[i])
	}
	for g := range c.Theme.Footer.Links {
		for i := range c.Theme.Footer.Links[g].Items {
			defaultLinkItem(&c.Theme.Footer.Links[g].Items[i])
		}
	}
}

func defaultLinkItem(item *RawLinkItem) {
	if item.Position == "" {
		item.Position = string(PositionLeft)
	}
	if item.Label == "" && item.SidebarID != "" {
		item.Label = item.SidebarID
	}
}
