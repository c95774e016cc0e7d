package formatter

import (
	"sort"
	"strings"

	"github.com/arthur-debert/clipfmt/pkg/errors"
)

// Rule is one literal replacement.
type Rule struct {
	Original    string `toml:"original" yaml:"original"`
	Replacement string `toml:"replacement" yaml:"replacement"`
}

// Rules is an ordered rule collection. Order of application is slice order.
type Rules []Rule

// Validate rejects rules with an empty original and duplicate originals.
func (rs Rules) Validate() error {
	seen := make(map[string]int, len(rs))
	for i, r := range rs {
		if r.Original == "" {
			return errors.Newf(errors.ErrRulesInvalid, "rule %d has an empty original", i+1).
				WithDetail("index", i)
		}
		if prev, ok := seen[r.Original]; ok {
			return errors.Newf(errors.ErrRulesInvalid, "rule %d duplicates the original of rule %d: %q", i+1, prev+1, r.Original).
				WithDetail("index", i)
		}
		seen[r.Original] = i
	}
	return nil
}

// Clone returns a copy that shares no backing array with rs.
func (rs Rules) Clone() Rules {
	if rs == nil {
		return nil
	}
	out := make(Rules, len(rs))
	copy(out, rs)
	return out
}

// Exclusions is a set of characters that are never folded.
type Exclusions struct {
	set map[rune]struct{}
}

// NewExclusions builds a set from the given runes.
func NewExclusions(runes ...rune) Exclusions {
	set := make(map[rune]struct{}, len(runes))
	for _, r := range runes {
		set[r] = struct{}{}
	}
	return Exclusions{set: set}
}

// Contains reports whether r is excluded from folding.
func (e Exclusions) Contains(r rune) bool {
	_, ok := e.set[r]
	return ok
}

// Len returns the number of excluded characters.
func (e Exclusions) Len() int {
	return len(e.set)
}

// Runes returns the excluded characters in ascending order.
func (e Exclusions) Runes() []rune {
	out := make([]rune, 0, len(e.set))
	for r := range e.set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the set as its characters in ascending order.
func (e Exclusions) String() string {
	var b strings.Builder
	for _, r := range e.Runes() {
		b.WriteRune(r)
	}
	return b.String()
}
