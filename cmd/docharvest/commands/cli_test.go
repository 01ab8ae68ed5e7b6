package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docharvest/internal/config"
	helpers "git.home.luguber.info/inful/docharvest/internal/testutil/testutils"
)

const geoSrc = `// Package geo does geometry.
package geo

// Point is a location.
type Point struct {
	// X is the horizontal coordinate.
	X float64
}

// Dist returns the distance to q.
//
// Parameters:
//	q: the other point
//	r: not a parameter
func (p Point) Dist(q Point) float64 { return 0 }
`

type harness struct {
	tree     *helpers.SourceTree
	textfile string
}

// newHarness creates a Go source tree and a config file pointing at it, and isolates
// the test from the caller's environment.
func newHarness(t *testing.T, logLevel string) *harness {
	t.Helper()
	root := t.TempDir()
	textfile := filepath.Join(root, "docharvest.prom")
	cfgPath := filepath.Join(root, "docharvest.yaml")
	tree := helpers.NewSourceTree(t).
		WithFile("geo/geo.go", geoSrc).
		WithFile("docharvest.yaml", "logging:\n  level: "+logLevel+"\n  format: json\n"+
			"metrics:\n  textfile: '"+textfile+"'\n"+
			"defaults:\n  search_paths: ['"+root+"']\n")
	tree.WriteTo(root)

	t.Chdir(root)
	t.Setenv(config.EnvConfigPath, cfgPath)
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvLogFormat, "")
	t.Setenv(config.EnvMetricsTextfile, "")

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &harness{tree: tree, textfile: textfile}
}

func (h *harness) run(args []string, stdin string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, Streams{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return code, stdout.String(), stderr.String()
}

func TestExecute_WholeStream(t *testing.T) {
	h := newHarness(t, "info")

	code, stdout, _ := h.run(nil, `{"objects":[{"path":"geo.Point"}]}`)
	require.Equal(t, 0, code)
	require.Equal(t, 1, strings.Count(stdout, "\n"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, []any{}, resp["loading_errors"])
	assert.Equal(t, map[string]any{
		"geo.Point.Dist": []any{"Parameter 'r' does not appear in the function signature"},
	}, resp["parsing_errors"])

	objects := resp["objects"].([]any)
	require.Len(t, objects, 1)
	point := objects[0].(map[string]any)
	assert.Equal(t, "geo.Point", point["path"])
	assert.Equal(t, []any{"geo.Point.X"}, point["fields"])
	assert.Equal(t, []any{"geo.Point.Dist"}, point["methods"])

	h.tree.AssertFileContains(filepath.Base(h.textfile), `docharvest_requests_total{mode="whole",outcome="success"} 1`)
}

func TestExecute_LineByLine(t *testing.T) {
	h := newHarness(t, "info")

	stdin := `{"objects":[{"path":"geo"}]}` + "\n" +
		"not json\n" +
		`{"objects":[{"path":"geo.Nope"}],"global_config":{"include_source":false}}` + "\n"
	code, stdout, _ := h.run([]string{"--line-by-line"}, stdin)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 3)

	var first, second, third map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))

	assert.Equal(t, "geo", first["objects"].([]any)[0].(map[string]any)["path"])
	assert.Contains(t, second, "error")
	assert.Contains(t, second, "traceback")
	assert.Equal(t, []any{"'geo' has no member 'Nope'"}, third["loading_errors"])
}

func TestExecute_WholeStreamFailure(t *testing.T) {
	h := newHarness(t, "info")

	code, stdout, stderr := h.run(nil, "")
	assert.Equal(t, 3, code)
	assert.Empty(t, stdout)
	// Reported once, not once as a log record and again as a message.
	assert.Equal(t, 1, strings.Count(stderr, "empty request"), stderr)
}

func TestExecute_LoaderOptionErrorIsIsolatedPerLine(t *testing.T) {
	h := newHarness(t, "info")

	stdin := `{"objects":[{"path":"geo","config":{"colour":"red"}}]}` + "\n" + `{"objects":[{"path":"geo.Point"}]}` + "\n"
	code, stdout, _ := h.run([]string{"--line-by-line"}, stdin)
	require.Equal(t, 0, code)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"error"`)
	assert.Contains(t, lines[1], `"objects"`)
}

func TestExecute_Help(t *testing.T) {
	h := newHarness(t, "info")

	code, stdout, _ := h.run([]string{"--help"}, "")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "--line-by-line")
}

func TestExecute_UnknownFlag(t *testing.T) {
	h := newHarness(t, "info")

	code, stdout, _ := h.run([]string{"--bogus"}, "")
	assert.NotEqual(t, 0, code)
	assert.Empty(t, stdout)
}

func TestExecute_InvalidConfig(t *testing.T) {
	h := newHarness(t, "loud")

	code, stdout, _ := h.run(nil, `{"objects":[{"path":"geo"}]}`)
	assert.NotEqual(t, 0, code)
	assert.Empty(t, stdout)
}
