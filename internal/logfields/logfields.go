package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRequestID     = "request_id"
	KeyMode          = "mode"
	KeyLine          = "line"
	KeyPath          = "path"
	KeyObjects       = "objects"
	KeyLoadingErrors = "loading_errors"
	KeyParsingErrors = "parsing_errors"
	KeyDurationMS    = "duration_ms"
	KeyCategory      = "category"
	KeyFile          = "file"
	KeyError         = "error"
	KeyVersion       = "version"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Line(n int) slog.Attr            { return slog.Int(KeyLine, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Objects(n int) slog.Attr         { return slog.Int(KeyObjects, n) }
func LoadingErrors(n int) slog.Attr   { return slog.Int(KeyLoadingErrors, n) }
func ParsingErrors(n int) slog.Attr   { return slog.Int(KeyParsingErrors, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
