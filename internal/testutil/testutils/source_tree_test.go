package helpers

import "testing"

func TestSourceTree(t *testing.T) {
	tree := NewSourceTree(t).
		WithFile("pkg/a.go", "package pkg\n").
		WithFiles(map[string]string{"pkg/sub/b.go": "package sub\n"})
	tree.Write()

	tree.AssertFileExists("pkg/a.go").
		AssertFileContains("pkg/sub/b.go", "package sub")
}

func TestSourceTree_WriteTo(t *testing.T) {
	root := t.TempDir()
	tree := NewSourceTree(t).WithFile("out/report.prom", "requests_total 1\n")
	tree.WriteTo(root)

	tree.AssertFileContains("out/report.prom", "requests_total")
}
