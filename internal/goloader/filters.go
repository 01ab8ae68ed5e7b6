package goloader

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docharvest/internal/foundation/errors"
)

type nameFilter struct {
	re     *regexp.Regexp
	negate bool
}

// filterSet decides which member names are kept. Every filter is tried in order and
// the last one that matches decides; a name no filter matches is kept. A leading "!"
// negates a filter; repeated leading "!" characters count as one.
type filterSet []nameFilter

func compileFilters(patterns []string) (filterSet, error) {
	set := make(filterSet, 0, len(patterns))
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		expr := strings.TrimLeft(p, "!")
		// Anchored at the start of the name only.
		re, err := regexp.Compile(`^(?:` + expr + `)`)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid filter").
				WithContext("filter", p).
				Build()
		}
		set = append(set, nameFilter{re: re, negate: negate})
	}
	return set, nil
}

func (fs filterSet) keep(name string) bool {
	keep := true
	for _, f := range fs {
		if f.re.MatchString(name) {
			keep = !f.negate
		}
	}
	return keep
}
