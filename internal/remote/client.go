// Package remote abstracts the music player daemon euphony talks to.
//
// [Client] is the capability the core needs: listing library paths, reading
// the play queue, and issuing position-based queue mutations. The production
// implementation speaks the MPD protocol via gompd; tests use an in-memory
// fake from the internal/testing package.
package remote

import "github.com/euphonyfm/euphony/internal/models"

// Client is the remote queue capability consumed by the sync engine, the
// queue reconciler, and the interactive session.
//
// Positions follow MPD semantics: 0-based, contiguous, and re-assigned after
// every mutation. Callers must therefore never reuse positions taken from a
// snapshot that predates a mutation.
type Client interface {
	// ListPaths returns every path in the remote library.
	ListPaths() ([]string, error)

	// Current returns the currently playing queue item, or nil when the
	// player is stopped with no current song.
	Current() (*models.QueueItem, error)

	// Queue returns a snapshot of the full play queue in order.
	Queue() ([]models.QueueItem, error)

	// DeleteRange removes queue items in [start, end). Remaining items
	// shift left to close the gap.
	DeleteRange(start, end int) error

	// InsertAt inserts a path at pos, shifting items at pos and after one
	// to the right. pos == -1 appends.
	InsertAt(path string, pos int) error

	// MoveRange relocates the contiguous block [srcStart, srcEnd) so that
	// it starts at dest, interpreted against the queue state after the
	// block is lifted out.
	MoveRange(srcStart, srcEnd, dest int) error

	// SetRandom toggles random playback. Ranked playlists are built to be
	// played in order, so reconciliation turns it off.
	SetRandom(enabled bool) error

	// Close releases the connection.
	Close() error
}
