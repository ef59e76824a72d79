package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySidebar    = "sidebar"
	KeyDocID      = "doc_id"
	KeyLocale     = "locale"
	KeyPath       = "path"
	KeyWarnings   = "warnings"
	KeyRevision   = "revision"
	KeyError      = "error"
	KeyTrigger    = "trigger"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Sidebar(name string) slog.Attr   { return slog.String(KeySidebar, name) }
func DocID(id string) slog.Attr       { return slog.String(KeyDocID, id) }
func Locale(tag string) slog.Attr     { return slog.String(KeyLocale, tag) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Warnings(n int) slog.Attr        { return slog.Int(KeyWarnings, n) }
func Revision(rev string) slog.Attr   { return slog.String(KeyRevision, rev) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
