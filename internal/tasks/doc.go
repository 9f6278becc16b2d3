// Package tasks implements the long-running library operations.
//
// The core abstraction is [SyncEngine], which keeps the local feature cache
// synchronized with the remote library: it diffs the remote path set against
// the cache, drives the external analyzer over the missing entries, and
// prunes entries whose paths disappeared remotely. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks
