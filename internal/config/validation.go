package config

import (
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/net/idna"
	"golang.org/x/text/language"
)

// SupportedVersions is the range of site document versions this loader reads.
const SupportedVersions = ">= 1.0, < 2.0"

var supportedVersions = mustConstraint(SupportedVersions)

func mustConstraint(c string) *semver.Constraints {
	sc, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return sc
}

// configurationValidator validates a normalized raw configuration and builds
// the typed SiteConfig from it.
type configurationValidator struct {
	raw *RawConfig
}

func newConfigurationValidator(raw *RawConfig) *configurationValidator {
	return &configurationValidator{raw: raw}
}

// validate runs domain checks in dependency order and returns the first failure.
func (cv *configurationValidator) validate() (*SiteConfig, error) {
	if err := cv.validateVersion(); err != nil {
		return nil, err
	}
	if err := cv.validateIdentity(); err != nil {
		return nil, err
	}
	if err := cv.validateLocales(); err != nil {
		return nil, err
	}

	cfg := cv.baseConfig()

	navbar, err := cv.validateNavbar()
	if err != nil {
		return nil, err
	}
	cfg.Theme.Navbar = navbar

	footer, err := cv.validateFooter()
	if err != nil {
		return nil, err
	}
	cfg.Theme.Footer = footer

	return cfg, nil
}

func (cv *configurationValidator) validateVersion() error {
	v, err := semver.NewVersion(cv.raw.Version)
	if err != nil {
		return newConfigError(ErrUnsupportedVersion, "version", "%q is not a version", cv.raw.Version)
	}
	if !supportedVersions.Check(v) {
		return newConfigError(ErrUnsupportedVersion, "version", "%s does not satisfy %s", v, SupportedVersions)
	}
	return nil
}

// validateIdentity checks the required identity fields and the site URL shape.
func (cv *configurationValidator) validateIdentity() error {
	if cv.raw.Title == "" {
		return newConfigError(ErrMissingField, "title", "")
	}
	if cv.raw.URL == "" {
		return newConfigError(ErrMissingField, "url", "")
	}

	u, err := url.Parse(cv.raw.URL)
	if err != nil {
		return newConfigError(ErrInvalidURL, "url", "%v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return newConfigError(ErrInvalidURL, "url", "scheme must be http or https, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return newConfigError(ErrInvalidURL, "url", "missing host")
	}
	if _, err := idna.Lookup.ToASCII(u.Hostname()); err != nil {
		return newConfigError(ErrInvalidURL, "url", "host %q: %v", u.Hostname(), err)
	}
	if u.Path != "" && u.Path != "/" {
		return newConfigError(ErrInvalidURL, "url", "must not contain a path; set baseUrl to %q instead", u.Path)
	}

	if !strings.HasPrefix(cv.raw.BaseURL, "/") || !strings.HasSuffix(cv.raw.BaseURL, "/") {
		return newConfigError(ErrInvalidBaseURL, "baseUrl", "must start and end with '/'")
	}
	return nil
}

// validateLocales requires well-formed BCP 47 tags and a listed default locale.
func (cv *configurationValidator) validateLocales() error {
	i := cv.raw.I18n
	if i.DefaultLocale == "" {
		return newConfigError(ErrMissingField, "i18n.defaultLocale", "")
	}
	if len(i.Locales) == 0 {
		return newConfigError(ErrMissingField, "i18n.locales", "")
	}

	def, err := language.Parse(i.DefaultLocale)
	if err != nil {
		return newConfigError(ErrInvalidLocale, "i18n.defaultLocale", "%q: %v", i.DefaultLocale, err)
	}

	listed := false
	for idx, l := range i.Locales {
		tag, err := language.Parse(l)
		if err != nil {
			return newConfigError(ErrInvalidLocale, "i18n.locales", "entry %d %q: %v", idx, l, err)
		}
		if tag == def {
			listed = true
		}
	}
	if !listed {
		return newConfigError(ErrDefaultLocaleNotListed, "i18n.defaultLocale", "%q not in %v", i.DefaultLocale, i.Locales)
	}
	return nil
}

func (cv *configurationValidator) validateNavbar() (Navbar, error) {
	r := cv.raw.Theme.Navbar
	nb := Navbar{Title: r.Title}
	if r.Logo != nil {
		if r.Logo.Src == "" {
			return Navbar{}, newConfigError(ErrMissingField, "themeConfig.navbar.logo.src", "")
		}
		nb.Logo = &Logo{Alt: r.Logo.Alt, Src: r.Logo.Src}
	}
	items := make([]LinkItem, 0, len(r.Items))
	for i, raw := range r.Items {
		item, err := convertLinkItem(NavbarItemPath(i), raw)
		if err != nil {
			return Navbar{}, err
		}
		items = append(items, item)
	}
	nb.Items = items
	return nb, nil
}

func (cv *configurationValidator) validateFooter() (Footer, error) {
	r := cv.raw.Theme.Footer
	f := Footer{
		Style:     FooterStyle(r.Style),
		Copyright: r.Copyright,
		Links:     make([]FooterGroup, 0, len(r.Links)),
	}
	for g, rg := range r.Links {
		group := FooterGroup{Title: rg.Title, Items: make([]LinkItem, 0, len(rg.Items))}
		for i, raw := range rg.Items {
			item, err := convertLinkItem(FooterItemPath(g, i), raw)
			if err != nil {
				return Footer{}, err
			}
			group.Items = append(group.Items, item)
		}
		f.Links = append(f.Links, group)
	}
	return f, nil
}

// Link item types accepted in the raw "type" field.
const (
	linkTypeDefault    = "default"
	linkTypeDocSidebar = "docSidebar"
)

// convertLinkItem turns a raw item into exactly one link variant.
func convertLinkItem(field string, raw RawLinkItem) (LinkItem, error) {
	var set []string
	if raw.SidebarID != "" {
		set = append(set, "sidebarId")
	}
	if raw.To != "" {
		set = append(set, "to")
	}
	if raw.Href != "" {
		set = append(set, "href")
	}
	switch len(set) {
	case 0:
		return nil, newConfigError(ErrEmptyLinkItem, field, "")
	case 1:
	default:
		return nil, newConfigError(ErrAmbiguousLinkItem, field, "set: %s", strings.Join(set, ", "))
	}

	switch raw.Type {
	case "", linkTypeDefault, linkTypeDocSidebar:
	default:
		return nil, newConfigError(ErrInvalidValue, field+".type", "unsupported link type %q", raw.Type)
	}
	isSidebar := raw.SidebarID != ""
	if raw.Type == linkTypeDocSidebar && !isSidebar {
		return nil, newConfigError(ErrLinkTypeMismatch, field, "type %q requires sidebarId, got %s", raw.Type, set[0])
	}
	if raw.Type == linkTypeDefault && isSidebar {
		return nil, newConfigError(ErrLinkTypeMismatch, field, "sidebarId requires type %q", linkTypeDocSidebar)
	}

	if raw.Label == "" {
		return nil, newConfigError(ErrMissingField, field+".label", "")
	}
	meta := LinkMeta{Label: raw.Label, Position: Position(raw.Position)}

	switch {
	case isSidebar:
		return SidebarLink{LinkMeta: meta, SidebarID: raw.SidebarID}, nil
	case raw.To != "":
		if !strings.HasPrefix(raw.To, "/") {
			return nil, newConfigError(ErrInvalidValue, field+".to", "page path %q must start with '/'", raw.To)
		}
		return PageLink{LinkMeta: meta, To: raw.To}, nil
	default:
		return ExternalLink{LinkMeta: meta, Href: raw.Href}, nil
	}
}

// baseConfig copies the scalar sections of the raw config.
func (cv *configurationValidator) baseConfig() *SiteConfig {
	r := cv.raw
	cfg := &SiteConfig{
		Version:               r.Version,
		Title:                 r.Title,
		Tagline:               r.Tagline,
		Favicon:               r.Favicon,
		URL:                   strings.TrimSuffix(r.URL, "/"),
		BaseURL:               r.BaseURL,
		OrganizationName:      r.OrganizationName,
		ProjectName:           r.ProjectName,
		OnBrokenLinks:         BrokenLinkPolicy(r.OnBrokenLinks),
		OnBrokenMarkdownLinks: BrokenLinkPolicy(r.OnBrokenMarkdownLinks),
		I18n: I18nConfig{
			DefaultLocale: r.I18n.DefaultLocale,
			Locales:       append([]string(nil), r.I18n.Locales...),
		},
		Docs: DocsConfig{
			Path:          r.Docs.Path,
			RouteBasePath: strings.Trim(r.Docs.RouteBasePath, "/"),
			SidebarPath:   r.Docs.SidebarPath,
			EditURL:       r.Docs.EditURL,
		},
		Pages: PagesConfig{Path: r.Pages.Path},
		Theme: ThemeConfig{
			Image: r.Theme.Image,
			Prism: PrismConfig{Theme: r.Theme.Prism.Theme, DarkTheme: r.Theme.Prism.DarkTheme},
		},
	}
	if r.Blog != nil {
		cfg.Blog = &BlogConfig{
			Path:            r.Blog.Path,
			RouteBasePath:   strings.Trim(r.Blog.RouteBasePath, "/"),
			ShowReadingTime: r.Blog.ShowReadingTime,
			EditURL:         r.Blog.EditURL,
		}
	}
	return cfg
}
