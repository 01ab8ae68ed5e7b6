package collect

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation"
)

// ObjectSpec names one object to document.
type ObjectSpec struct {
	Path   string         `json:"path"`
	Config docobj.Options `json:"config,omitempty"`
}

// Request is one decoded wire request.
type Request struct {
	Objects      []ObjectSpec   `json:"objects"`
	GlobalConfig docobj.Options `json:"global_config,omitempty"`
}

// Validate checks the request preconditions: at least one object, each with a path.
func (r Request) Validate() error {
	result := foundation.NonEmpty[ObjectSpec]("objects")(r.Objects)
	for i, spec := range r.Objects {
		result = result.Combine(foundation.RequiredString(fmt.Sprintf("objects[%d].path", i))(spec.Path))
	}
	return result.ToError()
}

// Response is the envelope written for one request.
type Response struct {
	LoadingErrors []string            `json:"loading_errors"`
	ParsingErrors map[string][]string `json:"parsing_errors"`
	Objects       []map[string]any    `json:"objects"`
}

// NewResponse returns an envelope whose collections encode as [] and {} rather than null.
func NewResponse(capacity int) Response {
	return Response{
		LoadingErrors: []string{},
		ParsingErrors: map[string][]string{},
		Objects:       make([]map[string]any, 0, capacity),
	}
}

// Loader builds the documentation tree for one dotted path. Besides the tree it
// returns the load-time error messages of this call. A non-nil error means the load
// could not produce a tree at all.
type Loader interface {
	Load(ctx context.Context, opts docobj.Options, path string) (*docobj.Object, []string, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, opts docobj.Options, path string) (*docobj.Object, []string, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, opts docobj.Options, path string) (*docobj.Object, []string, error) {
	return f(ctx, opts, path)
}

// Serializer flattens a documentation tree into a JSON-safe map.
type Serializer interface {
	Serialize(obj *docobj.Object) map[string]any
}

// SerializerFunc adapts a function to the Serializer interface.
type SerializerFunc func(obj *docobj.Object) map[string]any

// Serialize calls f.
func (f SerializerFunc) Serialize(obj *docobj.Object) map[string]any {
	return f(obj)
}
