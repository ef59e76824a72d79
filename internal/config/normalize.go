package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// normalizeRaw canonicalizes enumerations, trims identity fields and fixes
// recoverable shape problems (baseUrl slashes, duplicate locales) in place.
func normalizeRaw(c *RawConfig, res *NormalizationResult) {
	c.Title = strings.TrimSpace(c.Title)
	c.URL = strings.TrimSpace(c.URL)
	c.OrganizationName = strings.TrimSpace(c.OrganizationName)
	c.ProjectName = strings.TrimSpace(c.ProjectName)

	c.OnBrokenLinks = normalizePolicy("onBrokenLinks", c.OnBrokenLinks, res)
	c.OnBrokenMarkdownLinks = normalizePolicy("onBrokenMarkdownLinks", c.OnBrokenMarkdownLinks, res)

	normalizeBaseURL(c, res)
	normalizeLocales(&c.I18n, res)

	if c.Theme.Footer.Style != "" {
		if fs := NormalizeFooterStyle(c.Theme.Footer.Style); fs != "" {
			if string(fs) != c.Theme.Footer.Style {
				res.warn("%s", warnChanged("themeConfig.footer.style", c.Theme.Footer.Style, string(fs)))
			}
			c.Theme.Footer.Style = string(fs)
		} else {
			res.warn("%s", warnUnknown("themeConfig.footer.style", c.Theme.Footer.Style, string(FooterStyleLight)))
			c.Theme.Footer.Style = string(FooterStyleLight)
		}
	}

	for i := range c.Theme.Navbar.Items {
		normalizeLinkItem(NavbarItemPath(i), &c.Theme.Navbar.Items[i], res)
	}
	for g := range c.Theme.Footer.Links {
		for i := range c.Theme.Footer.Links[g].Items {
			normalizeLinkItem(FooterItemPath(g, i), &c.Theme.Footer.Links[g].Items[i], res)
		}
	}
}

func normalizePolicy(field, raw string, res *NormalizationResult) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if p := NormalizeBrokenLinkPolicy(raw); p != "" {
		if string(p) != raw {
			res.warn("%s", warnChanged(field, raw, string(p)))
		}
		return string(p)
	}
	res.warn("%s", warnUnknown(field, raw, string(BrokenLinksWarn)))
	return string(BrokenLinksWarn)
}

func normalizeBaseURL(c *RawConfig, res *NormalizationResult) {
	b := strings.TrimSpace(c.BaseURL)
	if b == "" {
		c.BaseURL = ""
		return
	}
	fixed := b
	if !strings.HasPrefix(fixed, "/") {
		fixed = "/" + fixed
	}
	if !strings.HasSuffix(fixed, "/") {
		fixed += "/"
	}
	if fixed != b {
		res.warn("%s", warnChanged("baseUrl", b, fixed))
	}
	c.BaseURL = fixed
}

// normalizeLocales trims and dedupes locales, keeping declaration order.
func normalizeLocales(i *RawI18n, res *NormalizationResult) {
	i.DefaultLocale = strings.TrimSpace(i.DefaultLocale)
	if len(i.Locales) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(i.Locales))
	out := make([]string, 0, len(i.Locales))
	for _, l := range i.Locales {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) != len(i.Locales) {
		res.warn("normalized i18n.locales list (%d -> %d entries)", len(i.Locales), len(out))
	}
	i.Locales = out
}

func normalizeLinkItem(field string, item *RawLinkItem, res *NormalizationResult) {
	item.SidebarID = strings.TrimSpace(item.SidebarID)
	item.To = strings.TrimSpace(item.To)
	item.Href = strings.TrimSpace(item.Href)
	item.Type = strings.TrimSpace(item.Type)
	if item.Position == "" {
		return
	}
	if p := NormalizePosition(item.Position); p != "" {
		if string(p) != item.Position {
			res.warn("%s", warnChanged(field+".position", item.Position, string(p)))
		}
		item.Position = string(p)
		return
	}
	res.warn("%s", warnUnknown(field+".position", item.Position, string(PositionLeft)))
	item.Position = string(PositionLeft)
}

func warnChanged(field, from, to string) string {
	return fmt.Sprintf("normalized %s from %q to %q", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("unknown %s %q, using %q", field, value, fallback)
}

// cloneRaw deep-copies the parts of c that normalization mutates so callers
// keep their input untouched.
func cloneRaw(c *RawConfig) *RawConfig {
	cp := *c
	cp.I18n.Locales = append([]string(nil), c.I18n.Locales...)
	if c.Blog != nil {
		b := *c.Blog
		cp.Blog = &b
	}
	if c.Theme.Navbar.Logo != nil {
		l := *c.Theme.Navbar.Logo
		cp.Theme.Navbar.Logo = &l
	}
	cp.Theme.Navbar.Items = append([]RawLinkItem(nil), c.Theme.Navbar.Items...)
	cp.Theme.Footer.Links = make([]RawFooterGroup, len(c.Theme.Footer.Links))
	for i, g := range c.Theme.Footer.Links {
		cp.Theme.Footer.Links[i] = RawFooterGroup{
			Title: g.Title,
			Items: append([]RawLinkItem(nil), g.Items...),
		}
	}
	return &cp
}
