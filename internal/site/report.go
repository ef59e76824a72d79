package site

import (
	"errors"
	"fmt"
	"strings"
)

// WarningKind classifies unresolved references found during assembly.
type WarningKind string

const (
	UnknownSidebar  WarningKind = "unknown_sidebar"
	UnknownPage     WarningKind = "unknown_page"
	UnknownDocument WarningKind = "unknown_document"
)

// Warning is one non-fatal cross-validation finding.
type Warning struct {
	Kind WarningKind `json:"kind"`
	// Ref is the unresolved sidebar name, page path or document id.
	Ref string `json:"ref"`
	// Location is the config field path, or the sidebar name for documents.
	Location string `json:"location"`
}

func (w Warning) String() string {
	var what string
	switch w.Kind {
	case UnknownSidebar:
		what = "unknown sidebar"
	case UnknownPage:
		what = "unknown page"
	case UnknownDocument:
		what = "unknown document"
	default:
		what = string(w.Kind)
	}
	if w.Location == "" {
		return fmt.Sprintf("%s %q", what, w.Ref)
	}
	return fmt.Sprintf("%s %q at %s", what, w.Ref, w.Location)
}

// Report is the validation report of an assembled site. Warnings are ordered
// by declaration position: navbar, footer, then sidebar documents.
type Report struct {
	Warnings []Warning `json:"warnings"`
}

// Len returns the number of warnings.
func (r Report) Len() int { return len(r.Warnings) }

// HasWarnings reports whether any warning was recorded.
func (r Report) HasWarnings() bool { return len(r.Warnings) > 0 }

// Count returns the number of warnings of a kind.
func (r Report) Count(kind WarningKind) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// ErrBrokenLinks is matched by a *BrokenLinksError.
var ErrBrokenLinks = errors.New("broken links")

// BrokenLinksError is returned when a broken-link policy of "throw" applies
// to at least one warning. No model is produced in that case.
type BrokenLinksError struct {
	Warnings []Warning
}

func (e *BrokenLinksError) Error() string {
	parts := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		parts = append(parts, w.String())
	}
	return fmt.Sprintf("%d broken link(s): %s", len(e.Warnings), strings.Join(parts, "; "))
}

// Unwrap exposes ErrBrokenLinks.
func (e *BrokenLinksError) Unwrap() error { return ErrBrokenLinks }
