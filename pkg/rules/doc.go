// Package rules holds the rule state the monitor formats with.
//
// A Store tracks a fixed set of source files: the settings document, the
// replacement rules and the exclusion list. Each source moves through a small
// state machine on every change event:
//
//	Loaded(good) --change--> Validating --ok--> Loaded(new)
//	                                    --err-> Loaded(good), warn once
//
// A parse failure never replaces good state. The warning for a broken file is
// emitted once per failure streak; it is repeated only when the file changes to
// a different broken content, and the streak ends on the next successful parse.
package rules
