package collect

import "git.home.luguber.info/inful/docharvest/internal/docobj"

// ExtractErrors flattens the doc comment parsing errors of a tree into one map keyed
// by node path. Nodes without errors have no entry. The walk is pre-order, so if two
// nodes share a path the one visited last wins.
func ExtractErrors(root *docobj.Object) map[string][]string {
	errs := map[string][]string{}
	root.Walk(func(obj *docobj.Object) {
		if len(obj.DocstringErrors) > 0 {
			errs[obj.Path] = obj.DocstringErrors
		}
	})
	return errs
}
