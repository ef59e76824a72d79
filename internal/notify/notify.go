// Package notify publishes build reports to downstream consumers.
package notify

import (
	"context"
	"net/url"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/site"
)

// ReportMessage is the published form of a finished build's report.
type ReportMessage struct {
	BuildID    string         `json:"build_id"`
	Site       string         `json:"site"`
	Title      string         `json:"title"`
	Outcome    string         `json:"outcome"`
	Revision   string         `json:"revision,omitempty"`
	InputsHash string         `json:"inputs_hash,omitempty"`
	Warnings   []site.Warning `json:"warnings"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewReportMessage builds the message for an assembled model.
func NewReportMessage(m *site.Model, inputsHash string) ReportMessage {
	outcome := "success"
	if m.Report.HasWarnings() {
		outcome = "warning"
	}
	warnings := m.Report.Warnings
	if warnings == nil {
		warnings = []site.Warning{}
	}
	return ReportMessage{
		BuildID:    m.BuildID,
		Site:       SiteKey(m.Config.URL, m.Config.BaseURL),
		Title:      m.Config.Title,
		Outcome:    outcome,
		Revision:   m.Revision,
		InputsHash: inputsHash,
		Warnings:   warnings,
		Timestamp:  m.AssembledAt,
	}
}

// Publisher delivers report messages.
type Publisher interface {
	PublishReport(ctx context.Context, msg ReportMessage) error
	Close() error
}

// NoopPublisher drops every message.
type NoopPublisher struct{}

func (NoopPublisher) PublishReport(context.Context, ReportMessage) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }

// SiteKey derives a subject token and bucket key from the site address, e.g.
// "https://example.github.io" + "/docs/" gives "example_github_io_docs".
func SiteKey(siteURL, baseURL string) string {
	host := siteURL
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		host = u.Host
	}
	raw := strings.ToLower(host + "/" + strings.Trim(baseURL, "/"))

	var b strings.Builder
	lastSep := true
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
			lastSep = false
		default:
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		}
	}
	key := strings.TrimSuffix(b.String(), "_")
	if key == "" {
		return "site"
	}
	return key
}
