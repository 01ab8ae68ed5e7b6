package collect

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
	"git.home.luguber.info/inful/docharvest/internal/logfields"
	"git.home.luguber.info/inful/docharvest/internal/metrics"
	"git.home.luguber.info/inful/docharvest/internal/observability"
)

// Processor turns requests into response envelopes. It keeps no state between
// requests, so one Processor serves a whole input stream.
type Processor struct {
	loader     Loader
	serializer Serializer
	defaults   docobj.Options
	recorder   metrics.Recorder
}

// Option configures a Processor.
type Option func(*Processor)

// WithDefaults sets the lowest-precedence configuration layer, applied beneath each
// request's global_config.
func WithDefaults(defaults docobj.Options) Option {
	return func(p *Processor) { p.defaults = defaults }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewProcessor creates a Processor using the given collaborators.
func NewProcessor(loader Loader, serializer Serializer, opts ...Option) *Processor {
	p := &Processor{
		loader:     loader,
		serializer: serializer,
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one request. Objects are loaded in request order; loading errors
// are appended in that order and parsing errors are merged by path, later objects
// overwriting earlier ones. Any loader failure aborts the whole request.
func (p *Processor) Process(ctx context.Context, req Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Response{}, err
	}

	resp := NewResponse(len(req.Objects))
	for i, spec := range req.Objects {
		effective := docobj.Merge(p.defaults, req.GlobalConfig, spec.Config)

		tree, loadErrors, err := p.loader.Load(ctx, effective, spec.Path)
		if err != nil {
			return Response{}, fmt.Errorf("load objects[%d] %q: %w", i, spec.Path, err)
		}
		if tree == nil {
			return Response{}, errors.InternalError("loader returned no tree").
				WithContext("path", spec.Path).
				Build()
		}

		resp.LoadingErrors = append(resp.LoadingErrors, loadErrors...)
		parsing := ExtractErrors(tree)
		for path, errs := range parsing {
			resp.ParsingErrors[path] = errs
		}
		resp.Objects = append(resp.Objects, p.serializer.Serialize(tree))

		observability.DebugContext(ctx, "Collected object",
			logfields.Path(spec.Path),
			logfields.LoadingErrors(len(loadErrors)),
			logfields.ParsingErrors(len(parsing)))
		p.recorder.AddLoadingErrors(len(loadErrors))
		p.recorder.AddParsingErrors(len(parsing))
	}
	p.recorder.AddObjects(len(resp.Objects))
	return resp, nil
}
