package docobj

import "maps"

// Options is the open configuration map handed to a loader. The pipeline never
// interprets individual keys.
type Options map[string]any

// Merge overlays layers left to right: keys from later layers win. The result is a
// fresh map; no layer is modified. Merge is shallow: nested maps are shared, not copied.
func Merge(layers ...Options) Options {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	out := make(Options, size)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}
