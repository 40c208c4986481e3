// Package sendcheck implements the region-based data-race analysis over LIR
// functions.
//
// Per function the checker: normalizes values to canonical roots, registers
// dense element IDs for non-thread-safe roots, translates instructions into
// partition ops, solves a monotone fixpoint over the CFG, then replays the
// ops with failure hooks and traces every use of a consumed region back to
// the isolation-crossing call sites responsible.
package sendcheck
