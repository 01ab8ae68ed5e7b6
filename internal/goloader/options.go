package goloader

import (
	"bytes"
	"encoding/json"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

// Options are the loader settings carried in a request's configuration map.
type Options struct {
	// Filters are regular expressions matched against member names. A leading "!"
	// negates the filter.
	Filters []string `json:"filters"`
	// SearchPaths are the directories dotted paths are resolved against, in order.
	SearchPaths []string `json:"search_paths"`
	// IncludeSource attaches declaration source to every object. Defaults to true.
	IncludeSource *bool `json:"include_source"`
}

func (o Options) includeSource() bool {
	return o.IncludeSource == nil || *o.IncludeSource
}

// DecodeOptions reads Options from an opaque configuration map. Unknown keys and
// values of the wrong type are configuration errors.
func DecodeOptions(raw docobj.Options) (Options, error) {
	var opts Options
	if len(raw) > 0 {
		data, err := json.Marshal(raw)
		if err != nil {
			return Options{}, errors.WrapError(err, errors.CategoryConfig, "encode loader options").Build()
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			return Options{}, errors.WrapError(err, errors.CategoryConfig, "invalid loader options").Build()
		}
	}
	if len(opts.SearchPaths) == 0 {
		opts.SearchPaths = []string{"."}
	}
	return opts, nil
}
