package site

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter writes a model's validation report.
type Formatter interface {
	Format(w io.Writer, m *Model) error
}

// NewFormatter returns the formatter for "text" or "json".
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want text or json)", name)
	}
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct{}

// Format outputs the report in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, m *Model) error {
	cfg := m.Config
	if _, err := fmt.Fprintf(w, "Site: %s (%s%s)\n", cfg.Title, cfg.URL, cfg.BaseURL); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}

	names := m.Sidebars.Names()
	if _, err := fmt.Fprintf(w, "  %d sidebar%s", len(names), pluralize(len(names))); err != nil {
		return err
	}
	if len(names) > 0 {
		if _, err := fmt.Fprintf(w, " (%s)", strings.Join(names, ", ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\n  %d navbar item%s, %d footer group%s\n",
		len(m.Navbar), pluralize(len(m.Navbar)), len(m.Footer), pluralize(len(m.Footer))); err != nil {
		return err
	}
	if m.Revision != "" {
		if _, err := fmt.Fprintf(w, "  revision %s\n", shortRevision(m.Revision)); err != nil {
			return err
		}
	}

	if m.Report.HasWarnings() {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		for _, warning := range m.Report.Warnings {
			if _, err := fmt.Fprintf(w, "⚠ %s\n", warning); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	n := m.Report.Len()
	if n == 0 {
		_, err := fmt.Fprintln(w, "✨ Site definition is valid.")
		return err
	}
	_, err := fmt.Fprintf(w, "⚠️  %d warning%s (navigation renders degraded)\n", n, pluralize(n))
	return err
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// JSONOutput represents the JSON report structure.
type JSONOutput struct {
	BuildID       string    `json:"build_id"`
	AssembledAt   time.Time `json:"assembled_at"`
	Revision      string    `json:"revision,omitempty"`
	ContentDigest string    `json:"content_digest,omitempty"`
	Title         string    `json:"title"`
	Sidebars      []string  `json:"sidebars"`
	WarningCount  int       `json:"warning_count"`
	Warnings      []Warning `json:"warnings"`
}

// Format outputs the report as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, m *Model) error {
	out := JSONOutput{
		BuildID:       m.BuildID,
		AssembledAt:   m.AssembledAt,
		Revision:      m.Revision,
		ContentDigest: m.ContentDigest,
		Title:         m.Config.Title,
		Sidebars:      m.Sidebars.Names(),
		WarningCount:  m.Report.Len(),
		Warnings:      m.Report.Warnings,
	}
	if out.Sidebars == nil {
		out.Sidebars = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []Warning{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
