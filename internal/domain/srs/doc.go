// Package srs implements the spaced repetition scheduling core: the ordered
// interval table, the total interval resolver with its clamp policy, the
// review state machine that advances a card after a remembered or forgotten
// outcome, and the consistency repairer that normalizes card state on read.
//
// The package is a stateless, synchronous computation over one card at a
// time. It never performs I/O and, aside from caller-misuse precondition
// errors, always produces a usable due date: configuration defects in the
// rule table are absorbed by the resolver's fallback and clamp policies
// rather than surfaced as errors.
package srs
