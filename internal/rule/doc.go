// Package rule holds the generation-rule model and its registry.
//
// A Rule is a declarative registration of one external generation step: a
// grammar input, the source it generates, the flags the generator is invoked
// with, and optionally a generated header. Registration only declares the
// mapping; nothing is written to disk until an executor later runs the plan.
//
// The Registry is the single owner of all rules for one application instance,
// keyed by rule name. Names are write-once: registering a second rule under
// an existing name is a hard configuration error.
package rule
