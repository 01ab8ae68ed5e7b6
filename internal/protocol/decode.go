package protocol

import (
	"bytes"
	"encoding/json"
	"io"

	"git.home.luguber.info/inful/docharvest/internal/collect"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

// ErrorLine is written in line mode in place of a response when a line fails.
type ErrorLine struct {
	Error     string `json:"error"`
	Traceback string `json:"traceback"`
}

// NewErrorLine describes err for the output stream.
func NewErrorLine(err error) ErrorLine {
	return ErrorLine{Error: err.Error(), Traceback: errors.Traceback(err)}
}

// DecodeRequest decodes exactly one JSON request. Unknown top-level keys are ignored;
// empty input, malformed JSON and trailing data are protocol errors.
func DecodeRequest(data []byte) (collect.Request, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return collect.Request{}, errors.ProtocolError("empty request").Build()
	}
	var req collect.Request
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&req); err != nil {
		return collect.Request{}, errors.WrapError(err, errors.CategoryProtocol, "invalid request JSON").Build()
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return collect.Request{}, errors.ProtocolError("unexpected data after request").Build()
	}
	return req, nil
}
