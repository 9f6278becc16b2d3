package remote

import (
	"fmt"
	"strconv"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/shared"
)

// MPD implements [Client] over the MPD protocol.
type MPD struct {
	conn *mpd.Client
}

var _ Client = (*MPD)(nil)

// DialMPD connects to an MPD server. password may be empty.
func DialMPD(addr, password string) (*MPD, error) {
	var conn *mpd.Client
	var err error
	if password != "" {
		conn, err = mpd.DialAuthenticated("tcp", addr, password)
	} else {
		conn, err = mpd.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MPD at %s: %w", addr, err)
	}
	return &MPD{conn: conn}, nil
}

// ListPaths returns every file path in the MPD database.
func (m *MPD) ListPaths() ([]string, error) {
	paths, err := m.conn.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list library: %w", err)
	}
	return paths, nil
}

// Current returns the playing queue item, or nil when nothing is playing.
func (m *MPD) Current() (*models.QueueItem, error) {
	attrs, err := m.conn.CurrentSong()
	if err != nil {
		return nil, fmt.Errorf("failed to read current song: %w", err)
	}
	file, ok := attrs["file"]
	if !ok || file == "" {
		return nil, nil
	}

	pos, err := strconv.Atoi(attrs["Pos"])
	if err != nil {
		return nil, fmt.Errorf("current song has no queue position: %w", err)
	}
	return &models.QueueItem{Pos: pos, Path: file}, nil
}

// Queue returns the full play queue in order.
func (m *MPD) Queue() ([]models.QueueItem, error) {
	attrs, err := m.conn.PlaylistInfo(-1, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}

	items := make([]models.QueueItem, 0, len(attrs))
	for i, a := range attrs {
		pos := i
		if p, err := strconv.Atoi(a["Pos"]); err == nil {
			pos = p
		}
		items = append(items, models.QueueItem{Pos: pos, Path: a["file"]})
	}
	return items, nil
}

// DeleteRange removes queue items in [start, end).
func (m *MPD) DeleteRange(start, end int) error {
	if err := m.conn.Delete(start, end); err != nil {
		return fmt.Errorf("%w: delete [%d, %d): %v", shared.ErrRemoteMutation, start, end, err)
	}
	return nil
}

// InsertAt inserts a path at pos; pos == -1 appends.
func (m *MPD) InsertAt(path string, pos int) error {
	if _, err := m.conn.AddID(path, pos); err != nil {
		return fmt.Errorf("%w: insert %q at %d: %v", shared.ErrRemoteMutation, path, pos, err)
	}
	return nil
}

// MoveRange relocates the block [srcStart, srcEnd) to dest.
func (m *MPD) MoveRange(srcStart, srcEnd, dest int) error {
	if err := m.conn.Move(srcStart, srcEnd, dest); err != nil {
		return fmt.Errorf("%w: move [%d, %d) to %d: %v", shared.ErrRemoteMutation, srcStart, srcEnd, dest, err)
	}
	return nil
}

// SetRandom toggles MPD random mode.
func (m *MPD) SetRandom(enabled bool) error {
	if err := m.conn.Random(enabled); err != nil {
		return fmt.Errorf("failed to set random mode: %w", err)
	}
	return nil
}

// Close releases the MPD connection.
func (m *MPD) Close() error {
	return m.conn.Close()
}
