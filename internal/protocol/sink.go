package protocol

import (
	"bytes"
	"encoding/json"
	"io"

	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

// Sink accepts one encoded response at a time.
type Sink interface {
	Emit(v any) error
}

type flusher interface {
	Flush() error
}

// JSONLineSink writes each value as one compact JSON document followed by a newline.
// When the writer can be flushed it is flushed after every value, so a reader sees
// each response as soon as it is written.
type JSONLineSink struct {
	w io.Writer
}

// NewJSONLineSink returns a sink writing to w.
func NewJSONLineSink(w io.Writer) *JSONLineSink {
	return &JSONLineSink{w: w}
}

// Emit encodes v and writes it in a single call. Values that cannot be encoded are
// internal errors; failed writes are protocol errors.
func (s *JSONLineSink) Emit(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode response").Build()
	}
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return errors.WrapError(err, errors.CategoryProtocol, "write response").Build()
	}
	if f, ok := s.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return errors.WrapError(err, errors.CategoryProtocol, "flush response").Build()
		}
	}
	return nil
}
