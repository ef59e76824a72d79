package config

// RawConfig is the declared site configuration as decoded from YAML, TOML or
// JSON. Keys follow the Docusaurus naming so existing site configs port over.
type RawConfig struct {
	Version               string `yaml:"version" toml:"version" json:"version"`
	Title                 string `yaml:"title" toml:"title" json:"title"`
	Tagline               string `yaml:"tagline" toml:"tagline" json:"tagline"`
	Favicon               string `yaml:"favicon" toml:"favicon" json:"favicon"`
	URL                   string `yaml:"url" toml:"url" json:"url"`
	BaseURL               string `yaml:"baseUrl" toml:"baseUrl" json:"baseUrl"`
	OrganizationName      string `yaml:"organizationName" toml:"organizationName" json:"organizationName"`
	ProjectName           string `yaml:"projectName" toml:"projectName" json:"projectName"`
	OnBrokenLinks         string `yaml:"onBrokenLinks" toml:"onBrokenLinks" json:"onBrokenLinks"`
	OnBrokenMarkdownLinks string `yaml:"onBrokenMarkdownLinks" toml:"onBrokenMarkdownLinks" json:"onBrokenMarkdownLinks"`

	I18n  RawI18n  `yaml:"i18n" toml:"i18n" json:"i18n"`
	Docs  RawDocs  `yaml:"docs" toml:"docs" json:"docs"`
	Blog  *RawBlog `yaml:"blog,omitempty" toml:"blog,omitempty" json:"blog,omitempty"`
	Pages RawPages `yaml:"pages" toml:"pages" json:"pages"`
	Theme RawTheme `yaml:"themeConfig" toml:"themeConfig" json:"themeConfig"`
}

// RawI18n is the declared locale set.
type RawI18n struct {
	DefaultLocale string   `yaml:"defaultLocale" toml:"defaultLocale" json:"defaultLocale"`
	Locales       []string `yaml:"locales" toml:"locales" json:"locales"`
}

// RawDocs is the declared docs plugin options.
type RawDocs struct {
	Path          string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	RouteBasePath string `yaml:"routeBasePath,omitempty" toml:"routeBasePath,omitempty" json:"routeBasePath,omitempty"`
	SidebarPath   string `yaml:"sidebarPath,omitempty" toml:"sidebarPath,omitempty" json:"sidebarPath,omitempty"`
	EditURL       string `yaml:"editUrl,omitempty" toml:"editUrl,omitempty" json:"editUrl,omitempty"`
}

// RawBlog is the declared blog plugin options.
type RawBlog struct {
	Path            string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	RouteBasePath   string `yaml:"routeBasePath,omitempty" toml:"routeBasePath,omitempty" json:"routeBasePath,omitempty"`
	ShowReadingTime bool   `yaml:"showReadingTime" toml:"showReadingTime" json:"showReadingTime"`
	EditURL         string `yaml:"editUrl,omitempty" toml:"editUrl,omitempty" json:"editUrl,omitempty"`
}

// RawPages is the declared pages plugin options.
type RawPages struct {
	Path string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
}

// RawTheme is the declared themeConfig block.
type RawTheme struct {
	Image  string    `yaml:"image,omitempty" toml:"image,omitempty" json:"image,omitempty"`
	Navbar RawNavbar `yaml:"navbar" toml:"navbar" json:"navbar"`
	Footer RawFooter `yaml:"footer" toml:"footer" json:"footer"`
	Prism  RawPrism  `yaml:"prism" toml:"prism" json:"prism"`
}

// RawNavbar is the declared navbar.
type RawNavbar struct {
	Title string        `yaml:"title" toml:"title" json:"title"`
	Logo  *RawLogo      `yaml:"logo,omitempty" toml:"logo,omitempty" json:"logo,omitempty"`
	Items []RawLinkItem `yaml:"items" toml:"items" json:"items"`
}

// RawLogo is the declared navbar logo.
type RawLogo struct {
	Alt string `yaml:"alt" toml:"alt" json:"alt"`
	Src string `yaml:"src" toml:"src" json:"src"`
}

// RawFooter is the declared footer.
type RawFooter struct {
	Style     string           `yaml:"style,omitempty" toml:"style,omitempty" json:"style,omitempty"`
	Links     []RawFooterGroup `yaml:"links" toml:"links" json:"links"`
	Copyright string           `yaml:"copyright,omitempty" toml:"copyright,omitempty" json:"copyright,omitempty"`
}

// RawFooterGroup is a declared footer column.
type RawFooterGroup struct {
	Title string        `yaml:"title" toml:"title" json:"title"`
	Items []RawLinkItem `yaml:"items" toml:"items" json:"items"`
}

// RawPrism is the declared code highlighting themes.
type RawPrism struct {
	Theme     string `yaml:"theme,omitempty" toml:"theme,omitempty" json:"theme,omitempty"`
	DarkTheme string `yaml:"darkTheme,omitempty" toml:"darkTheme,omitempty" json:"darkTheme,omitempty"`
}

// RawLinkItem is a declared link whose variant is implied by which of
// SidebarID, To and Href is set.
type RawLinkItem struct {
	Type      string `yaml:"type,omitempty" toml:"type,omitempty" json:"type,omitempty"`
	SidebarID string `yaml:"sidebarId,omitempty" toml:"sidebarId,omitempty" json:"sidebarId,omitempty"`
	To        string `yaml:"to,omitempty" toml:"to,omitempty" json:"to,omitempty"`
	Href      string `yaml:"href,omitempty" toml:"href,omitempty" json:"href,omitempty"`
	Label     string `yaml:"label,omitempty" toml:"label,omitempty" json:"label,omitempty"`
	Position  string `yaml:"position,omitempty" toml:"position,omitempty" json:"position,omitempty"`
}
