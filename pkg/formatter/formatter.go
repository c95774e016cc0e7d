package formatter

import (
	"strings"
	"unicode/utf8"
)

const (
	// FoldRangeStart is U+FF01 FULLWIDTH EXCLAMATION MARK.
	FoldRangeStart rune = '！'
	// FoldRangeEnd is U+FF5E FULLWIDTH TILDE.
	FoldRangeEnd rune = '～'
	// foldOffset maps the fold range onto U+0021..U+007E.
	foldOffset rune = 0xFEE0
)

// IsFoldable reports whether r lies in the full-width range that folds to ASCII.
func IsFoldable(r rune) bool {
	return r >= FoldRangeStart && r <= FoldRangeEnd
}

// FoldRune returns the half-width form of r, or r itself when it is not foldable.
func FoldRune(r rune) rune {
	if !IsFoldable(r) {
		return r
	}
	return r - foldOffset
}

// Format applies rules in order and then folds full-width characters that are
// not excluded. It never mutates its inputs and never fails.
func Format(text string, rules Rules, exclusions Exclusions) string {
	out := text
	for _, rule := range rules {
		if rule.Original == "" {
			continue
		}
		out = strings.ReplaceAll(out, rule.Original, rule.Replacement)
	}
	return fold(out, exclusions)
}

// fold returns s unchanged when nothing needs folding.
func fold(s string, exclusions Exclusions) string {
	first := -1
	for i, r := range s {
		if IsFoldable(r) && !exclusions.Contains(r) {
			first = i
			break
		}
	}
	if first < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:first])
	for i := first; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			// keep invalid bytes as they are
			b.WriteByte(s[i])
		case IsFoldable(r) && !exclusions.Contains(r):
			b.WriteRune(r - foldOffset)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}
