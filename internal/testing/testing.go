// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/euphonyfm/euphony/internal/analysis"
	"github.com/euphonyfm/euphony/internal/models"
	"github.com/euphonyfm/euphony/internal/remote"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

var (
	_ remote.Client     = (*MockQueueClient)(nil)
	_ analysis.Analyzer = (*MockAnalyzer)(nil)
)

// MockQueueClient is an in-memory test double for remote.Client. It keeps a
// real ordered queue and applies mutations with MPD's shift semantics, so
// reconciler tests assert on final queue content rather than on call lists.
type MockQueueClient struct {
	Library []string // paths returned by ListPaths

	queue   []string
	current int // index into queue, -1 when nothing playing

	Random bool
	Ops    []string // every mutation applied, in order

	// FailAt aborts the FailAt-th mutation (1-based) with an error, for
	// partial-failure tests. 0 disables.
	FailAt    int
	mutations int
}

// NewMockQueueClient builds a client with the given queue; current selects
// the playing item (-1 for none).
func NewMockQueueClient(queue []string, current int) *MockQueueClient {
	return &MockQueueClient{queue: append([]string{}, queue...), current: current}
}

// QueuePaths exposes the queue content for assertions.
func (m *MockQueueClient) QueuePaths() []string {
	return append([]string{}, m.queue...)
}

// CurrentPos exposes the tracked current index for assertions.
func (m *MockQueueClient) CurrentPos() int { return m.current }

func (m *MockQueueClient) ListPaths() ([]string, error) {
	return append([]string{}, m.Library...), nil
}

func (m *MockQueueClient) Current() (*models.QueueItem, error) {
	if m.current < 0 || m.current >= len(m.queue) {
		return nil, nil
	}
	return &models.QueueItem{Pos: m.current, Path: m.queue[m.current]}, nil
}

func (m *MockQueueClient) Queue() ([]models.QueueItem, error) {
	items := make([]models.QueueItem, len(m.queue))
	for i, p := range m.queue {
		items[i] = models.QueueItem{Pos: i, Path: p}
	}
	return items, nil
}

func (m *MockQueueClient) mutate(op string) error {
	m.mutations++
	if m.FailAt > 0 && m.mutations == m.FailAt {
		return fmt.Errorf("injected failure at mutation %d (%s)", m.mutations, op)
	}
	m.Ops = append(m.Ops, op)
	return nil
}

func (m *MockQueueClient) DeleteRange(start, end int) error {
	if start < 0 || end > len(m.queue) || start > end {
		return fmt.Errorf("delete [%d, %d) out of bounds (len %d)", start, end, len(m.queue))
	}
	if err := m.mutate(fmt.Sprintf("delete [%d, %d)", start, end)); err != nil {
		return err
	}

	m.queue = append(m.queue[:start], m.queue[end:]...)
	switch {
	case m.current >= end:
		m.current -= end - start
	case m.current >= start:
		m.current = -1
	}
	return nil
}

func (m *MockQueueClient) InsertAt(path string, pos int) error {
	if pos == -1 {
		pos = len(m.queue)
	}
	if pos < 0 || pos > len(m.queue) {
		return fmt.Errorf("insert at %d out of bounds (len %d)", pos, len(m.queue))
	}
	if err := m.mutate(fmt.Sprintf("insert %q at %d", path, pos)); err != nil {
		return err
	}

	m.queue = append(m.queue[:pos], append([]string{path}, m.queue[pos:]...)...)
	if m.current >= pos {
		m.current++
	}
	return nil
}

func (m *MockQueueClient) MoveRange(srcStart, srcEnd, dest int) error {
	if srcStart < 0 || srcEnd > len(m.queue) || srcStart >= srcEnd {
		return fmt.Errorf("move [%d, %d) out of bounds (len %d)", srcStart, srcEnd, len(m.queue))
	}
	size := srcEnd - srcStart
	if dest < 0 || dest > len(m.queue)-size {
		return fmt.Errorf("move dest %d out of bounds (len %d, block %d)", dest, len(m.queue), size)
	}
	if err := m.mutate(fmt.Sprintf("move [%d, %d) to %d", srcStart, srcEnd, dest)); err != nil {
		return err
	}

	block := append([]string{}, m.queue[srcStart:srcEnd]...)
	rest := append(append([]string{}, m.queue[:srcStart]...), m.queue[srcEnd:]...)
	m.queue = append(append(append([]string{}, rest[:dest]...), block...), rest[dest:]...)

	switch {
	case m.current >= srcStart && m.current < srcEnd:
		m.current = dest + (m.current - srcStart)
	case m.current >= 0:
		p := m.current
		if p >= srcEnd {
			p -= size
		}
		if p >= dest {
			p += size
		}
		m.current = p
	}
	return nil
}

func (m *MockQueueClient) SetRandom(enabled bool) error {
	m.Random = enabled
	return nil
}

func (m *MockQueueClient) Close() error { return nil }

// MockAnalyzer is a test double for analysis.Analyzer backed by fixed
// results. Safe for concurrent use by sync-engine worker pools.
type MockAnalyzer struct {
	Results map[string]*analysis.Result
	Errs    map[string]error

	mu    sync.Mutex
	calls []string
}

func (a *MockAnalyzer) Analyze(_ context.Context, path string) (*analysis.Result, error) {
	a.mu.Lock()
	a.calls = append(a.calls, path)
	a.mu.Unlock()

	if err, ok := a.Errs[path]; ok {
		return nil, err
	}
	if res, ok := a.Results[path]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("no mock result for %s", path)
}

// Calls returns every analyzed path, in call order.
func (a *MockAnalyzer) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string{}, a.calls...)
}

// Vector builds a feature vector with every dimension set to v.
func Vector(v float64) models.FeatureVector {
	vec := make(models.FeatureVector, models.NumFeatures)
	for i := range vec {
		vec[i] = v
	}
	return vec
}
