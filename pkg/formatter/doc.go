// Package formatter rewrites clipboard text.
//
// Format applies two steps in a fixed order:
//
//  1. literal replacements, one rule at a time in slice order. Each rule is a
//     global substring replacement over the output of the previous rule, so a
//     later rule can match text introduced by an earlier one. The pass runs
//     once; cyclic rules do not iterate to a fixpoint.
//  2. full-width folding: every rune in U+FF01..U+FF5E that is not in the
//     exclusion set is shifted down by 0xFEE0 onto printable ASCII.
//
// Rules are kept as an ordered slice. A map would make the result depend on
// iteration order whenever one rule's replacement overlaps another rule's
// original.
package formatter
