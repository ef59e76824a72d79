package config

import (
	"fmt"
	"os"
)

// Example returns a starter site configuration.
func Example() *RawConfig {
	return &RawConfig{
		Version:               DefaultVersion,
		Title:                 "Keycloak Development with Kind, Crossplane & Docusaurus",
		Tagline:               "Modern Identity Management Deployment",
		Favicon:               "img/favicon.ico",
		URL:                   "https://yourusername.github.io",
		BaseURL:               "/keycloak-getting-started/",
		OrganizationName:      "yourusername",
		ProjectName:           "keycloak-getting-started",
		OnBrokenLinks:         string(BrokenLinksThrow),
		OnBrokenMarkdownLinks: string(BrokenLinksWarn),
		I18n:                  RawI18n{DefaultLocale: "en", Locales: []string{"en"}},
		Docs: RawDocs{
			SidebarPath: DefaultSidebarPath,
			EditURL:     "https://github.com/yourusername/keycloak-getting-started/tree/main/",
		},
		Blog: &RawBlog{
			ShowReadingTime: true,
			EditURL:         "https://github.com/yourusername/keycloak-getting-started/tree/main/",
		},
		Theme: RawTheme{
			Image: "img/docusaurus-social-card.jpg",
			Navbar: RawNavbar{
				Title: "Keycloak Development",
				Logo:  &RawLogo{Alt: "Keycloak Logo", Src: "img/logo.svg"},
				Items: []RawLinkItem{
					{Type: linkTypeDocSidebar, SidebarID: "tutorialSidebar", Position: string(PositionLeft), Label: "Documentation"},
					{To: "/blog", Label: "Blog", Position: string(PositionLeft)},
					{Href: "https://github.com/yourusername/keycloak-getting-started", Label: "GitHub", Position: string(PositionRight)},
				},
			},
			Footer: RawFooter{
				Style: string(FooterStyleDark),
				Links: []RawFooterGroup{
					{Title: "Docs", Items: []RawLinkItem{
						{Label: "Getting Started", To: "/docs/intro"},
						{Label: "Keycloak Setup", To: "/docs/keycloak-setup"},
						{Label: "Crossplane Configuration", To: "/docs/crossplane-config"},
					}},
					{Title: "Community", Items: []RawLinkItem{
						{Label: "Keycloak", Href: "https://www.keycloak.org/"},
						{Label: "Crossplane", Href: "https://crossplane.io/"},
						{Label: "Kubernetes", Href: "https://kubernetes.io/"},
					}},
					{Title: "More", Items: []RawLinkItem{
						{Label: "Blog", To: "/blog"},
						{Label: "GitHub", Href: "https://github.com/yourusername/keycloak-getting-started"},
					}},
				},
				Copyright: "Copyright © Keycloak Development Project.",
			},
			Prism: RawPrism{Theme: DefaultPrismTheme, DarkTheme: DefaultPrismDarkTheme},
		},
	}
}

// Init writes the example configuration to configPath in the format implied
// by its extension.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	format, err := FormatFromPath(configPath)
	if err != nil {
		return err
	}

	data, err := Encode(Example(), format)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
