package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/petr-muller/jironimo/internal/jironimo/compare"
	"github.com/petr-muller/jironimo/internal/jironimo/service"
	"github.com/petr-muller/jironimo/internal/jironimo/storage"
)

var (
	// ErrStaleGeneration is returned by a refresh that was superseded by a newer one
	ErrStaleGeneration = errors.New("refresh superseded by a newer one")
	// ErrClosed is returned when refreshing a closed board
	ErrClosed = errors.New("board is closed")
)

// Searcher runs searches for the board
type Searcher interface {
	RunSearch(ctx context.Context, query string, offset, limit int) (*service.Page, error)
}

// Snapshot is a consistent copy of the board state
type Snapshot struct {
	// Generation identifies the refresh the snapshot belongs to
	Generation uint64
	Index      int
	Workspace  storage.Workspace
	Pager      Pager
	Issues     []service.Record
	Changes    compare.Result
	Refreshing bool
	Err        error
}

// Option configures a Board
type Option func(*Board)

// WithClock sets the clock driving the polling timer
func WithClock(clk clock.WithDelayedExecution) Option {
	return func(b *Board) {
		b.clock = clk
	}
}

// WithPollInterval re-runs the refresh the given time after each refresh.
// Zero disables polling.
func WithPollInterval(interval time.Duration) Option {
	return func(b *Board) {
		b.interval = interval
	}
}

// WithPageSize sets the number of issues per page
func WithPageSize(maxResults int) Option {
	return func(b *Board) {
		b.pager = NewPager(maxResults)
	}
}

// WithUpdateHandler registers a function called with a snapshot whenever a
// refresh starts or completes. Snapshots of concurrent refreshes may arrive
// out of order; a handler keeps the one with the highest generation.
func WithUpdateHandler(handler func(Snapshot)) Option {
	return func(b *Board) {
		b.onUpdate = handler
	}
}

// WithPersist registers a function saving the workspaces after the active one changes
func WithPersist(persist func(*storage.Workspaces) error) Option {
	return func(b *Board) {
		b.persist = persist
	}
}

type pageKey struct {
	index   int
	startAt int
}

// Board shows one page of search results of the active workspace
type Board struct {
	lock sync.Mutex

	searcher   Searcher
	workspaces *storage.Workspaces
	persist    func(*storage.Workspaces) error

	index      int
	pager      Pager
	issues     []service.Record
	changes    compare.Result
	refreshing bool
	err        error

	// baseline is the last page fetched successfully, used to highlight changes
	baseline    []service.Record
	baselineKey *pageKey

	generation uint64
	cancel     context.CancelFunc

	clock    clock.WithDelayedExecution
	interval time.Duration
	timer    clock.Timer

	ctx      context.Context
	close    context.CancelFunc
	closed   bool
	onUpdate func(Snapshot)
	logger   *logrus.Entry
}

// NewBoard creates a board showing the active workspace
func NewBoard(searcher Searcher, workspaces *storage.Workspaces, opts ...Option) *Board {
	b := &Board{
		searcher:   searcher,
		workspaces: workspaces,
		index:      workspaces.Active(),
		pager:      NewPager(DefaultMaxResults),
		clock:      clock.RealClock{},
		logger:     logrus.WithField("component", "board"),
	}
	b.ctx, b.close = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot returns a copy of the current board state
func (b *Board) Snapshot() Snapshot {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Generation: b.generation,
		Index:      b.index,
		Pager:      b.pager,
		Issues:     append([]service.Record(nil), b.issues...),
		Changes:    b.changes,
		Refreshing: b.refreshing,
		Err:        b.err,
	}
	if b.index < len(b.workspaces.Entries) {
		snapshot.Workspace = b.workspaces.Entries[b.index]
	}
	return snapshot
}

// Refresh reloads the current page of the active workspace
func (b *Board) Refresh(ctx context.Context) error {
	return b.refresh(ctx, func() int {
		return b.pager.StartAt
	})
}

// Page loads the page starting at offset
func (b *Board) Page(ctx context.Context, offset int) error {
	return b.refresh(ctx, func() int {
		return max(0, offset)
	})
}

// Previous loads the previous page
func (b *Board) Previous(ctx context.Context) error {
	return b.refresh(ctx, func() int {
		return b.pager.BackwardOffset()
	})
}

// Next loads the next page
func (b *Board) Next(ctx context.Context) error {
	return b.refresh(ctx, func() int {
		return b.pager.ForwardOffset()
	})
}

// SwitchTo makes another workspace active and loads its first page. An index
// out of range selects the first workspace.
func (b *Board) SwitchTo(ctx context.Context, index int) error {
	var persistErr error
	err := b.refresh(ctx, func() int {
		previous := b.workspaces.Last
		b.index = b.workspaces.SwitchTo(index)
		b.pager.StartAt = 0
		if b.persist != nil && (previous == nil || *previous != b.index) {
			persistErr = b.persist(b.workspaces)
		}
		return 0
	})
	if persistErr != nil {
		b.logger.WithError(persistErr).Warn("Failed to save the active workspace")
	}
	return err
}

// Reload re-reads the active workspace after the workspace list was changed
func (b *Board) Reload(ctx context.Context) error {
	return b.refresh(ctx, func() int {
		b.index = b.workspaces.Active()
		b.pager.StartAt = 0
		return 0
	})
}

// refresh loads the page at the offset returned by prepare, which runs under
// the lock. The pager only moves to that offset once the search succeeds.
func (b *Board) refresh(ctx context.Context, prepare func() int) error {
	b.lock.Lock()
	if b.closed {
		b.lock.Unlock()
		return ErrClosed
	}
	if len(b.workspaces.Entries) == 0 {
		b.lock.Unlock()
		return storage.ErrNoSuchWorkspace
	}

	startAt := prepare()
	if b.index >= len(b.workspaces.Entries) {
		b.index = 0
	}
	b.generation++
	generation := b.generation
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.stopTimerLocked()

	b.issues = nil
	b.changes = compare.Result{}
	b.refreshing = true
	b.err = nil

	key := pageKey{index: b.index, startAt: startAt}
	query := b.workspaces.Entries[b.index].Query
	limit := b.pager.MaxResults
	started := b.snapshotLocked()
	b.lock.Unlock()
	b.notify(started)

	page, err := b.searcher.RunSearch(ctx, query, key.startAt, limit)
	cancel()

	finished, err := b.complete(generation, key, page, err)
	if errors.Is(err, ErrStaleGeneration) {
		b.logger.WithField("generation", generation).Debug("Discarding stale refresh")
		return err
	}
	b.notify(finished)
	return err
}

// complete applies the result of a refresh unless a newer refresh started meanwhile
func (b *Board) complete(generation uint64, key pageKey, page *service.Page, err error) (Snapshot, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if generation != b.generation {
		return Snapshot{}, ErrStaleGeneration
	}
	b.cancel = nil
	b.refreshing = false
	b.armTimerLocked()

	if err != nil {
		b.err = err
		return b.snapshotLocked(), err
	}

	b.pager.StartAt = page.StartAt
	b.pager.Total = page.Total
	b.issues = page.Issues
	if b.baselineKey != nil && *b.baselineKey == key {
		b.changes = compare.Pages(page.Issues, b.baseline)
	}
	b.baseline = page.Issues
	b.baselineKey = &key
	return b.snapshotLocked(), nil
}

func (b *Board) notify(snapshot Snapshot) {
	if b.onUpdate != nil {
		b.onUpdate(snapshot)
	}
}

// armTimerLocked schedules the next refresh of the current page
func (b *Board) armTimerLocked() {
	if b.interval <= 0 || b.closed || b.index >= len(b.workspaces.Entries) {
		return
	}
	b.timer = b.clock.AfterFunc(b.interval, func() {
		go b.poll()
	})
}

func (b *Board) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Board) poll() {
	if err := b.Refresh(b.ctx); err != nil && !errors.Is(err, ErrStaleGeneration) && !errors.Is(err, ErrClosed) {
		b.logger.WithError(err).Debug("Polling refresh failed")
	}
}

// Close stops polling and cancels the refresh in flight
func (b *Board) Close() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	b.stopTimerLocked()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.close()
}
