package config

import (
	"errors"
	"fmt"
)

// Sentinel kinds for ConfigError; match with errors.Is.
var (
	ErrMissingField           = errors.New("required field is empty")
	ErrInvalidLocale          = errors.New("malformed locale tag")
	ErrDefaultLocaleNotListed = errors.New("default locale is not in locales")
	ErrAmbiguousLinkItem      = errors.New("link item sets more than one of sidebarId, to, href")
	ErrEmptyLinkItem          = errors.New("link item sets none of sidebarId, to, href")
	ErrLinkTypeMismatch       = errors.New("link item type does not match its target")
	ErrInvalidURL             = errors.New("invalid site url")
	ErrInvalidBaseURL         = errors.New("invalid baseUrl")
	ErrInvalidValue           = errors.New("invalid value")
	ErrUnsupportedVersion     = errors.New("unsupported configuration version")
	ErrUnsupportedFormat      = errors.New("unsupported configuration format")
)

// ConfigError reports a malformed or ambiguous site configuration. Field is
// the dotted path of the offending field.
type ConfigError struct {
	Kind   error
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap exposes the kind sentinel.
func (e *ConfigError) Unwrap() error { return e.Kind }

func newConfigError(kind error, field, format string, args ...any) *ConfigError {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &ConfigError{Kind: kind, Field: field, Detail: detail}
}

// NavbarItemPath is the field path of the i-th navbar item.
func NavbarItemPath(i int) string {
	return fmt.Sprintf("themeConfig.navbar.items[%d]", i)
}

// FooterItemPath is the field path of an item in a footer link group.
func FooterItemPath(group, i int) string {
	return fmt.Sprintf("themeConfig.footer.links[%d].items[%d]", group, i)
}
