package queue

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/euphonyfm/euphony/internal/cuepath"
	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/remote"
	"github.com/euphonyfm/euphony/internal/shared"
)

// Mode selects what happens to queue content that is not part of the target.
type Mode int

const (
	// Replace discards everything except the anchor; the final queue is
	// exactly the target sequence.
	Replace Mode = iota

	// Preserve keeps the existing queue, merging the target in after the
	// anchor and restoring the anchor's own leftover block to adjacency.
	Preserve
)

func (m Mode) String() string {
	if m == Preserve {
		return "preserve"
	}
	return "replace"
}

// Mutation is one primitive queue operation. Positions are interpreted
// against the queue state immediately preceding the mutation.
type Mutation interface {
	apply(c remote.Client) error
	String() string
}

// DeleteRange removes items [Start, End); remaining items shift left.
type DeleteRange struct {
	Start, End int
}

func (d DeleteRange) apply(c remote.Client) error { return c.DeleteRange(d.Start, d.End) }
func (d DeleteRange) String() string              { return fmt.Sprintf("delete [%d, %d)", d.Start, d.End) }

// InsertAt inserts one path at Pos; items at Pos and after shift right.
type InsertAt struct {
	Path string
	Pos  int
}

func (i InsertAt) apply(c remote.Client) error { return c.InsertAt(i.Path, i.Pos) }
func (i InsertAt) String() string              { return fmt.Sprintf("insert %q at %d", i.Path, i.Pos) }

// MoveRange relocates the contiguous block [SrcStart, SrcEnd) to Dest.
type MoveRange struct {
	SrcStart, SrcEnd, Dest int
}

func (m MoveRange) apply(c remote.Client) error { return c.MoveRange(m.SrcStart, m.SrcEnd, m.Dest) }
func (m MoveRange) String() string {
	return fmt.Sprintf("move [%d, %d) to %d", m.SrcStart, m.SrcEnd, m.Dest)
}

// Options configures one reconciliation.
type Options struct {
	Mode   Mode
	DryRun bool // plan only, issue zero primitives

	// AlbumOf resolves a queue path to its album tag for the Preserve-mode
	// leftover scan. When nil or when the anchor's album is unknown, the
	// leftover block degrades to the single item following the anchor.
	AlbumOf func(path string) string
}

// Result reports what a reconciliation did (or, dry-run, would do).
type Result struct {
	Anchor    models.QueueItem
	Additions []string   // remote paths inserted after the anchor, in order
	Mutations []Mutation // planned primitives; issued unless DryRun
}

// Reconciler applies target sequences to the remote queue.
type Reconciler struct {
	client remote.Client
	logger *log.Logger
}

// NewReconciler creates a Reconciler for the given remote client.
func NewReconciler(client remote.Client, logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Reconciler{client: client, logger: logger}
}

// Reconcile reads the live queue, plans the mutation sequence that realizes
// target, and issues it. target's first element must be the anchor (the
// currently playing song); the anchor itself is never deleted, moved away,
// or duplicated. The number of primitives is O(len(target)).
//
// On a failed primitive the remaining sequence is abandoned and the queue
// is left partially mutated; see the package comment.
func (r *Reconciler) Reconcile(ctx context.Context, target []*models.Song, opts Options) (*Result, error) {
	anchorItem, err := r.client.Current()
	if err != nil {
		return nil, err
	}
	if anchorItem == nil {
		return nil, shared.ErrNoAnchor
	}
	if len(target) == 0 || cuepath.Canonical(target[0].Path) != cuepath.Canonical(anchorItem.Path) {
		return nil, fmt.Errorf("%w: target sequence does not start with the current song", shared.ErrInvalidInput)
	}

	snapshot, err := r.client.Queue()
	if err != nil {
		return nil, err
	}
	if anchorItem.Pos < 0 || anchorItem.Pos >= len(snapshot) {
		return nil, fmt.Errorf("%w: current song position %d outside queue of %d", shared.ErrInvalidInput, anchorItem.Pos, len(snapshot))
	}

	additions := make([]string, 0, len(target)-1)
	for _, song := range target[1:] {
		path, err := song.RemotePath()
		if err != nil {
			return nil, err
		}
		additions = append(additions, path)
	}

	var mutations []Mutation
	switch opts.Mode {
	case Preserve:
		mutations = planPreserve(snapshot, anchorItem.Pos, additions, opts.AlbumOf)
	default:
		mutations = planReplace(len(snapshot), anchorItem.Pos, additions)
	}

	result := &Result{Anchor: *anchorItem, Additions: additions, Mutations: mutations}
	if opts.DryRun {
		return result, nil
	}

	// Ranked sequences are meant to play in order.
	if err := r.client.SetRandom(false); err != nil {
		return nil, err
	}

	for i, m := range mutations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: aborted after %d of %d mutations", err, i, len(mutations))
		}
		r.logger.Debug("queue mutation", "step", i+1, "total", len(mutations), "op", m.String())
		if err := m.apply(r.client); err != nil {
			return nil, fmt.Errorf("aborted after %d of %d mutations, queue partially mutated: %w", i, len(mutations), err)
		}
	}

	return result, nil
}

// planReplace reduces the queue to the anchor alone, then inserts the
// additions right after it. Final queue == target exactly.
func planReplace(queueLen, anchorPos int, additions []string) []Mutation {
	var muts []Mutation

	remaining := queueLen
	if anchorPos > 0 {
		muts = append(muts, DeleteRange{Start: 0, End: anchorPos})
		remaining -= anchorPos
	}
	// Anchor is now first. Drop everything behind it.
	if remaining > 1 {
		muts = append(muts, DeleteRange{Start: 1, End: remaining})
	}

	for i, path := range additions {
		muts = append(muts, InsertAt{Path: path, Pos: 1 + i})
	}
	return muts
}

// planPreserve inserts the additions directly after the anchor, displacing
// the original continuation rightward, then moves the anchor's leftover
// block (the contiguous same-album run that followed it, or its single
// follower) back to adjacency. All positions are derived from the
// pre-mutation snapshot plus the cumulative shift of prior inserts.
func planPreserve(snapshot []models.QueueItem, anchorPos int, additions []string, albumOf func(string) string) []Mutation {
	var muts []Mutation

	shift := 0
	for _, path := range additions {
		muts = append(muts, InsertAt{Path: path, Pos: anchorPos + 1 + shift})
		shift++
	}

	block := leftoverBlock(snapshot, anchorPos, albumOf)
	if block > 0 && shift > 0 {
		// The block sat at [anchorPos+1, anchorPos+1+block) before the
		// inserts; every insert landed at or before its start, pushing it
		// right by the full shift.
		src := anchorPos + 1 + shift
		muts = append(muts, MoveRange{SrcStart: src, SrcEnd: src + block, Dest: anchorPos + 1})
	}
	return muts
}

// leftoverBlock counts how many items directly after the anchor belong with
// it: the contiguous run sharing the anchor's album, or exactly one item
// when album metadata cannot group them.
func leftoverBlock(snapshot []models.QueueItem, anchorPos int, albumOf func(string) string) int {
	rest := len(snapshot) - anchorPos - 1
	if rest <= 0 {
		return 0
	}

	if albumOf == nil {
		return 1
	}
	anchorAlbum := albumOf(snapshot[anchorPos].Path)
	if anchorAlbum == "" {
		return 1
	}

	block := 0
	for i := anchorPos + 1; i < len(snapshot); i++ {
		if albumOf(snapshot[i].Path) != anchorAlbum {
			break
		}
		block++
	}
	return block
}
