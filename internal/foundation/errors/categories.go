package errors

import "maps"

// ErrorCategory is the broad class of an error, used for exit codes and log routing.
type ErrorCategory string

const (
	// CategoryConfig covers application configuration and loader option errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryProtocol covers malformed wire input and output failures.
	CategoryProtocol ErrorCategory = "protocol"

	// CategoryLoad covers unrecoverable failures inside a loader.
	CategoryLoad ErrorCategory = "load"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the process
	SeverityError   ErrorSeverity = "error"   // Fails the current request
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
	SeverityInfo    ErrorSeverity = "info"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence. Neither input is modified.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
