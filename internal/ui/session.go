package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/playlist"
	"github.com/euphonyfm/euphony/internal/remote"
)

// MaxCandidates is how many ranked candidates one screen presents; bounded
// by the digits a single keypress can select.
const MaxCandidates = 9

// SessionState tracks where the interactive loop is.
type SessionState int

const (
	Presenting SessionState = iota
	Queueing
	Finished
)

// MsgKind enumerates all message types in the session.
type MsgKind int

// Msg represents all possible messages in the session (Elm-style union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgSongQueued MsgKind = iota
)

// songQueuedMsg is the constructor for [MsgSongQueued]
func songQueuedMsg(song *models.Song, err error) Msg {
	return Msg{
		kind: MsgSongQueued,
		data: struct {
			song *models.Song
			err  error
		}{song, err},
	}
}

// SessionOpts configures a session.
type SessionOpts struct {
	Metric         playlist.DistanceMetric
	Dedup          bool
	DedupThreshold float64
}

// Model is the interactive session state.
type Model struct {
	client     remote.Client
	opts       SessionOpts
	state      SessionState
	anchor     *models.Song
	pool       []*models.Song
	candidates []*models.Song
	queued     int
	err        error
	help       help.Model
	keys       keyMap
}

var _ tea.Model = Model{}

// NewModel seeds a session with the anchor song and the candidate pool.
// The pool must not contain the anchor.
func NewModel(client remote.Client, anchor *models.Song, pool []*models.Song, opts SessionOpts) Model {
	m := Model{
		client: client,
		opts:   opts,
		state:  Presenting,
		anchor: anchor,
		pool:   pool,
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.present()
	return m
}

// present ranks the pool against the anchor and keeps the top candidates.
func (m *Model) present() {
	seq, err := playlist.BuildFromSeed(m.anchor, m.pool, playlist.Options{
		Metric:         m.opts.Metric,
		Strategy:       playlist.ClosestToSeed{},
		Limit:          MaxCandidates + 1,
		Dedup:          m.opts.Dedup,
		DedupThreshold: m.opts.DedupThreshold,
	})
	if err != nil {
		m.err = err
		m.state = Finished
		return
	}
	m.candidates = seq[1:]
	if len(m.candidates) == 0 {
		m.state = Finished
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Update advances the session state machine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.state = Finished
			return m, tea.Quit
		}
		if m.state != Presenting || !key.Matches(msg, m.keys.digits) {
			return m, nil
		}

		n, err := strconv.Atoi(msg.String())
		if err != nil || n < 1 || n > len(m.candidates) {
			return m, nil
		}
		choice := m.candidates[n-1]
		m.state = Queueing
		return m, m.queueSong(choice)

	case Msg:
		if msg.kind != MsgSongQueued {
			return m, nil
		}
		data := msg.data.(struct {
			song *models.Song
			err  error
		})
		if data.err != nil {
			m.err = data.err
			m.state = Finished
			return m, tea.Quit
		}

		m.queued++
		m.anchor = data.song
		m.pool = removeSong(m.pool, data.song.Path)
		if len(m.pool) <= MaxCandidates {
			m.state = Finished
			return m, tea.Quit
		}
		m.state = Presenting
		m.present()
		if m.state == Finished {
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// queueSong appends the chosen song to the live queue.
func (m Model) queueSong(song *models.Song) tea.Cmd {
	return func() tea.Msg {
		path, err := song.RemotePath()
		if err != nil {
			return songQueuedMsg(nil, err)
		}
		if err := m.client.InsertAt(path, -1); err != nil {
			return songQueuedMsg(nil, err)
		}
		return songQueuedMsg(song, nil)
	}
}

// View renders the candidate list.
func (m Model) View() string {
	var b strings.Builder

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("error: %v", m.err)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styles.title.Render(fmt.Sprintf("Playing: %s", m.anchor.DisplayTitle())))
	b.WriteString("\n")

	switch m.state {
	case Finished:
		b.WriteString(styles.ok.Render(fmt.Sprintf("Queued %d song(s).", m.queued)))
		b.WriteString("\n")
	case Queueing:
		b.WriteString(styles.warn.Render("Queueing..."))
		b.WriteString("\n")
	default:
		for i, c := range m.candidates {
			dist := m.distance(c)
			b.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, c.DisplayTitle(), styles.help.Render(fmt.Sprintf("(%.3f)", dist))))
		}
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) distance(s *models.Song) float64 {
	metric := m.opts.Metric
	if metric == nil {
		metric = playlist.Euclidean
	}
	return metric(m.anchor.Features, s.Features)
}

// Queued reports how many songs the session appended.
func (m Model) Queued() int { return m.queued }

// Err reports the error that ended the session, if any.
func (m Model) Err() error { return m.err }

// removeSong drops the song with the given path from the pool.
func removeSong(pool []*models.Song, path string) []*models.Song {
	out := make([]*models.Song, 0, len(pool))
	for _, s := range pool {
		if s.Path != path {
			out = append(out, s)
		}
	}
	return out
}
