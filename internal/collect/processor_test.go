package collect

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docharvest/internal/docobj"
	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
	"git.home.luguber.info/inful/docharvest/internal/metrics"
)

// pathSerializer serializes only the fields the pipeline observes.
var pathSerializer = SerializerFunc(func(obj *docobj.Object) map[string]any {
	return map[string]any{"path": obj.Path, "children": []any{}}
})

type loadCall struct {
	path string
	opts docobj.Options
}

// recordingLoader returns a bare node for every path and remembers what it was asked.
type recordingLoader struct {
	calls []loadCall
	trees map[string]*docobj.Object
	errs  map[string][]string
}

func (l *recordingLoader) Load(_ context.Context, opts docobj.Options, path string) (*docobj.Object, []string, error) {
	l.calls = append(l.calls, loadCall{path: path, opts: opts})
	if tree, ok := l.trees[path]; ok {
		return tree, l.errs[path], nil
	}
	return docobj.New(path, docobj.CategoryType), l.errs[path], nil
}

func TestProcess_ObjectsInRequestOrder(t *testing.T) {
	loader := &recordingLoader{}
	p := NewProcessor(loader, pathSerializer)

	req := Request{Objects: []ObjectSpec{{Path: "pkg.c"}, {Path: "pkg.a"}, {Path: "pkg.b"}}}
	resp, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, resp.Objects, 3)
	for i, spec := range req.Objects {
		assert.Equal(t, spec.Path, resp.Objects[i]["path"])
		assert.Equal(t, spec.Path, loader.calls[i].path)
	}
}

func TestProcess_ConfigMergeDoesNotMutate(t *testing.T) {
	loader := &recordingLoader{}
	p := NewProcessor(loader, pathSerializer)

	global := docobj.Options{"a": 1, "b": 2}
	objConfig := docobj.Options{"b": 3}
	req := Request{
		Objects:      []ObjectSpec{{Path: "pkg.x", Config: objConfig}, {Path: "pkg.y"}},
		GlobalConfig: global,
	}
	_, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, docobj.Options{"a": 1, "b": 3}, loader.calls[0].opts)
	assert.Equal(t, docobj.Options{"a": 1, "b": 2}, loader.calls[1].opts)
	assert.Equal(t, docobj.Options{"a": 1, "b": 2}, global)
	assert.Equal(t, docobj.Options{"b": 3}, objConfig)

	// Each object receives its own map.
	loader.calls[1].opts["a"] = 99
	assert.Equal(t, 1, global["a"])
}

func TestProcess_DefaultsAreLowestLayer(t *testing.T) {
	loader := &recordingLoader{}
	p := NewProcessor(loader, pathSerializer, WithDefaults(docobj.Options{"a": 0, "c": true}))

	req := Request{
		Objects:      []ObjectSpec{{Path: "pkg.x", Config: docobj.Options{"b": 3}}},
		GlobalConfig: docobj.Options{"a": 1},
	}
	_, err := p.Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, docobj.Options{"a": 1, "b": 3, "c": true}, loader.calls[0].opts)
}

func TestProcess_ErrorAggregation(t *testing.T) {
	first := docobj.New("pkg.mod", docobj.CategoryPackage)
	first.AddChild(node("pkg.mod.Class.method", "first error"))
	first.AddChild(node("pkg.mod.only_first", "kept"))

	second := docobj.New("pkg.mod2", docobj.CategoryPackage)
	second.AddChild(node("pkg.mod.Class.method", "second error", "another"))

	loader := &recordingLoader{
		trees: map[string]*docobj.Object{"pkg.mod": first, "pkg.mod2": second},
		errs: map[string][]string{
			"pkg.mod":  {"Couldn't read source for 'pkg.mod': boom"},
			"pkg.mod2": {"No package named 'x'", "another load error"},
		},
	}
	p := NewProcessor(loader, pathSerializer)

	resp, err := p.Process(context.Background(), Request{Objects: []ObjectSpec{{Path: "pkg.mod"}, {Path: "pkg.mod2"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Couldn't read source for 'pkg.mod': boom",
		"No package named 'x'",
		"another load error",
	}, resp.LoadingErrors)
	assert.Equal(t, map[string][]string{
		"pkg.mod.Class.method": {"second error", "another"},
		"pkg.mod.only_first":   {"kept"},
	}, resp.ParsingErrors)
}

func TestProcess_EndToEndEnvelope(t *testing.T) {
	loader := LoaderFunc(func(_ context.Context, _ docobj.Options, path string) (*docobj.Object, []string, error) {
		return docobj.New(path, docobj.CategoryFunction), nil, nil
	})
	p := NewProcessor(loader, pathSerializer)

	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"objects":[{"path":"pkg.foo"}]}`), &req))
	resp, err := p.Process(context.Background(), req)
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"loading_errors":[],"parsing_errors":{},"objects":[{"path":"pkg.foo","children":[]}]}`, string(data))
}

func TestProcess_ValidationErrors(t *testing.T) {
	p := NewProcessor(&recordingLoader{}, pathSerializer)

	tests := []struct {
		name string
		req  Request
	}{
		{name: "no objects", req: Request{}},
		{name: "empty path", req: Request{Objects: []ObjectSpec{{Path: "pkg.a"}, {Path: " "}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
		})
	}
}

func TestProcess_LoaderFailureAbortsRequest(t *testing.T) {
	boom := stderrors.New("boom")
	calls := 0
	loader := LoaderFunc(func(_ context.Context, _ docobj.Options, path string) (*docobj.Object, []string, error) {
		calls++
		if path == "pkg.bad" {
			return nil, nil, boom
		}
		return docobj.New(path, docobj.CategoryType), nil, nil
	})
	p := NewProcessor(loader, pathSerializer)

	resp, err := p.Process(context.Background(), Request{Objects: []ObjectSpec{{Path: "pkg.ok"}, {Path: "pkg.bad"}, {Path: "pkg.never"}}})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pkg.bad")
	assert.Nil(t, resp.Objects)
	assert.Equal(t, 2, calls)
}

func TestProcess_NilTreeIsInternalError(t *testing.T) {
	loader := LoaderFunc(func(context.Context, docobj.Options, string) (*docobj.Object, []string, error) {
		return nil, nil, nil
	})
	_, err := NewProcessor(loader, pathSerializer).Process(context.Background(), Request{Objects: []ObjectSpec{{Path: "pkg.x"}}})
	assert.True(t, errors.HasCategory(err, errors.CategoryInternal))
}

type countingRecorder struct {
	metrics.NoopRecorder
	objects, loading, parsing int
}

func (r *countingRecorder) AddObjects(n int)       { r.objects += n }
func (r *countingRecorder) AddLoadingErrors(n int) { r.loading += n }
func (r *countingRecorder) AddParsingErrors(n int) { r.parsing += n }

func TestProcess_RecordsMetrics(t *testing.T) {
	tree := docobj.New("pkg.x", docobj.CategoryType)
	tree.AddChild(node("pkg.x.y", "bad"))
	loader := &recordingLoader{
		trees: map[string]*docobj.Object{"pkg.x": tree},
		errs:  map[string][]string{"pkg.x": {"one", "two"}},
	}
	rec := &countingRecorder{}
	p := NewProcessor(loader, pathSerializer, WithRecorder(rec))

	_, err := p.Process(context.Background(), Request{Objects: []ObjectSpec{{Path: "pkg.x"}, {Path: "pkg.z"}}})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.objects)
	assert.Equal(t, 2, rec.loading)
	assert.Equal(t, 1, rec.parsing)
}
