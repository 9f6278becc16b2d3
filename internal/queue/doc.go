// Package queue transforms the live remote play queue into a desired target
// order using the minimal sequence of position-based mutations.
//
// The queue's positions are not stable identities: every insert shifts
// everything to its right, every delete shifts everything left. The
// reconciler therefore plans against a single snapshot taken at the start
// of the operation and tracks the cumulative position shift explicitly
// instead of re-reading the queue between primitives.
//
// Reconciliation is NOT atomic: a failed primitive aborts the remaining
// sequence and leaves the queue in whatever partially-mutated state the
// failure occurred in. It is safe to re-run: every run re-derives its plan
// from a fresh snapshot.
package queue
