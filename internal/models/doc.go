// Package models defines the domain entities shared across euphony's core.
//
// The package contains two categories of types:
//
// 1. Cached library entities backed by SQLite:
//   - [Song] : a library entry keyed by its canonical MPD-relative path,
//     holding the analysis feature vector and tag metadata
//   - [FeatureVector] : fixed-length numeric descriptor produced by the
//     external analyzer, opaque to the core
//
// 2. Remote queue snapshots:
//   - [QueueItem] : one slot of MPD's play queue; positions are 0-based,
//     contiguous, and shift on every queue mutation
//
// A Song with Analyzed set always carries exactly [NumFeatures] feature
// values; an unanalyzed Song carries none and records a past analysis
// failure. Unanalyzed songs are never fed into ranking.
package models
