// Package collect turns one decoded request into one response envelope.
//
// For every requested object it merges configuration layers, drives a Loader, gathers
// the loader's own errors and the per-node doc comment parsing errors of the returned
// tree, and serializes the tree. Loading errors accumulate request-wide in request
// order; parsing errors are keyed by node path, and a later object overwrites an
// earlier one on a path collision.
package collect
