package sidebar

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for SidebarError; match with errors.Is.
var (
	ErrEmptyCategory     = errors.New("category has an empty label or no items")
	ErrDuplicateDocument = errors.New("duplicate document")
	ErrCyclicReference   = errors.New("category contains itself")
	ErrUnknownCategory   = errors.New("unknown shared category")
	ErrMaxDepthExceeded  = errors.New("maximum sidebar depth exceeded")
	ErrInvalidNode       = errors.New("invalid sidebar item")
)

// SidebarError reports a malformed navigation tree. Path holds the category
// labels from the sidebar root down to the offending node. ID names the
// document or shared category involved, when there is one.
type SidebarError struct {
	Kind    error
	Sidebar string
	Path    []string
	ID      string
	Detail  string
}

func (e *SidebarError) Error() string {
	var b strings.Builder
	if e.Sidebar != "" {
		fmt.Fprintf(&b, "sidebar %q", e.Sidebar)
	}
	if len(e.Path) > 0 {
		if b.Len() > 0 {
			b.WriteString(" > ")
		}
		b.WriteString(strings.Join(e.Path, " > "))
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.ID != "" {
		fmt.Fprintf(&b, " %q", e.ID)
	}
	if e.Detail != "" {
		b.WriteString(" (" + e.Detail + ")")
	}
	return b.String()
}

// Unwrap exposes the kind sentinel.
func (e *SidebarError) Unwrap() error { return e.Kind }
