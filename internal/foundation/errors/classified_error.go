package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ClassifiedError is a structured error with category, severity, context and the
// call stack captured when it was built.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
	stack    []uintptr
}

// Error implements the standard error interface.
func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error severity.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// Message returns the error message without category prefix or cause.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Cause returns the underlying error.
func (e *ClassifiedError) Cause() error {
	return e.cause
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// WithContext returns a copy of the error with an extra context value.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	cp := *e
	cp.context = e.context.Merge(ErrorContext{key: value})
	return &cp
}

// Is reports equality by category and message so sentinel-style comparisons work.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// IsFatal checks if the error should stop the process.
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// StackTrace renders the captured call stack, innermost frame first.
func (e *ClassifiedError) StackTrace() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// Detail renders the message followed by its context keys in sorted order.
func (e *ClassifiedError) Detail() string {
	if len(e.context) == 0 {
		return e.Error()
	}
	keys := make([]string, 0, len(e.context))
	for k := range e.context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.context[k]))
	}
	return e.Error() + " {" + strings.Join(parts, ", ") + "}"
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// IsClassified checks if any error in the chain is a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// HasCategory checks if the first classified error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}

// Traceback renders the whole error chain, one cause per line, followed by the stack
// of the innermost classified error that captured one.
func Traceback(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Traceback (most recent cause last):\n")
	stack := ""
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if classified, ok := cur.(*ClassifiedError); ok {
			fmt.Fprintf(&b, "  %T: %s\n", cur, classified.Detail())
			if s := classified.StackTrace(); s != "" {
				stack = s
			}
			continue
		}
		fmt.Fprintf(&b, "  %T: %s\n", cur, cur.Error())
	}
	if stack != "" {
		b.WriteString("\n")
		b.WriteString(stack)
	}
	return b.String()
}
