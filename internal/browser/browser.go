// Package browser is the movie browser component: it restores or seeds the
// movie list, runs title searches against OMDb, persists every change and
// tracks the pagination, lightbox and layout state the UI renders.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/reelbox/internal/config"
	"github.com/lepinkainen/reelbox/internal/errors"
	"github.com/lepinkainen/reelbox/internal/movie"
	"github.com/lepinkainen/reelbox/internal/observable"
	"github.com/lepinkainen/reelbox/internal/storage"
	"github.com/lepinkainen/reelbox/internal/viewport"
)

// NotFoundText replaces the title input after a manual search miss.
const NotFoundText = "NOT FOUND"

// DefaultLayout is the initial layout selector.
const DefaultLayout = "inline"

// Fetcher looks a movie up by title and optional year. A nil movie with a
// nil error means OMDb had no match.
type Fetcher interface {
	FetchByTitle(ctx context.Context, title, year string) (movie.Movie, error)
}

// Phase is the coarse UI state derived from the browser state.
type Phase string

const (
	PhaseInitializing Phase = "initializing"
	PhaseIdle         Phase = "idle"
	PhaseFetching     Phase = "fetching"
	PhaseLightbox     Phase = "lightbox-open"
)

// AfterFunc runs f once after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Options tunes the browser. Zero values fall back to the defaults used by OptionsFromConfig.
type Options struct {
	StorageKey          string
	SeedCount           int
	Catalog             []string
	SearchNotFoundDelay time.Duration
	SeedNotFoundDelay   time.Duration
	ClearInputs         string
	PersistMode         string
	Dedupe              bool

	// Rand drives seed title selection; nil uses the global source.
	Rand *rand.Rand
	// AfterFunc schedules the not-found auto-clear; nil uses time.AfterFunc.
	AfterFunc AfterFunc
}

// OptionsFromConfig builds Options from the global config.
func OptionsFromConfig() Options {
	return Options{
		StorageKey:          config.StorageKey,
		SeedCount:           config.SeedCount,
		Catalog:             movie.Catalog,
		SearchNotFoundDelay: config.SearchNotFoundDelay,
		SeedNotFoundDelay:   config.SeedNotFoundDelay,
		ClearInputs:         config.ClearInputs,
		PersistMode:         config.PersistMode,
		Dedupe:              config.Dedupe,
	}
}

func (o Options) withDefaults() Options {
	if o.StorageKey == "" {
		o.StorageKey = "omdb"
	}
	if o.SeedCount == 0 {
		o.SeedCount = 8
	}
	if o.Catalog == nil {
		o.Catalog = movie.Catalog
	}
	if o.SearchNotFoundDelay == 0 {
		o.SearchNotFoundDelay = 4 * time.Second
	}
	if o.SeedNotFoundDelay == 0 {
		o.SeedNotFoundDelay = 5 * time.Second
	}
	if o.ClearInputs == "" {
		o.ClearInputs = config.ClearInputsOnIssue
	}
	if o.PersistMode == "" {
		o.PersistMode = config.PersistHistory
	}
	if o.AfterFunc == nil {
		o.AfterFunc = realAfterFunc
	}
	return o
}

// Deps are the collaborators the browser needs.
type Deps struct {
	Fetcher  Fetcher
	Storage  *storage.Adapter
	Viewport *viewport.State
}

// View is a copy of everything the UI renders.
type View struct {
	Movies     movie.List
	Current    int
	Lightbox   bool
	Layout     string
	NotFound   bool
	TitleField string
	YearField  string
	Width      int
	Phase      Phase
	InFlight   int
	Snapshots  int
	// Added counts lookups that put a movie on the list.
	Added int
	// LastError is the most recent lookup failure, cleared by the next
	// completed lookup.
	LastError error
}

type lookupKind int

const (
	searchLookup lookupKind = iota
	seedLookup
)

// Browser is the movie browser component. All methods are safe for
// concurrent use.
type Browser struct {
	fetcher  Fetcher
	store    *storage.Adapter
	viewport *viewport.State
	opts     Options
	id       string
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// wg tracks every goroutine the browser starts; requests tracks
	// outstanding lookups only.
	wg       sync.WaitGroup
	requests sync.WaitGroup

	mu         sync.Mutex
	started    bool
	closed     bool
	movies     movie.List
	history    movie.History
	current    int
	lightbox   bool
	layout     string
	notFound   bool
	titleField string
	yearField  string
	width      int
	inFlight   int
	added      int
	lastErr    error
	timerSeq   int
	timers     map[int]func() bool
	widthSub   *observable.Subscription[int]

	changes chan struct{}
}

// New creates a browser whose requests live until ctx is cancelled or Close is called.
func New(ctx context.Context, deps Deps, opts Options) *Browser {
	lifetime, cancel := context.WithCancel(ctx)
	vp := deps.Viewport
	if vp == nil {
		vp = viewport.New(viewport.DefaultWidth)
	}
	id := uuid.NewString()
	return &Browser{
		fetcher:  deps.Fetcher,
		store:    deps.Storage,
		viewport: vp,
		opts:     opts.withDefaults(),
		id:       id,
		log:      slog.Default().With("session", id),
		ctx:      lifetime,
		cancel:   cancel,
		movies:   movie.List{},
		layout:   DefaultLayout,
		width:    vp.Width(),
		timers:   make(map[int]func() bool),
		changes:  make(chan struct{}, 1),
	}
}

// ID identifies this browser session in log output.
func (b *Browser) ID() string {
	return b.id
}

// Start subscribes to viewport width changes and restores the movie list
// from storage. When storage is empty it starts the seed lookups and returns
// without waiting for them. A stored value that cannot be decoded is
// returned as a CorruptHistoryError and leaves the list empty.
func (b *Browser) Start() error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return fmt.Errorf("browser already started")
	}
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("browser is closed")
	}
	b.started = true
	b.widthSub = b.viewport.SubscribeWidth()
	sub := b.widthSub
	b.wg.Add(1)
	b.mu.Unlock()

	go b.watchWidth(sub)

	raw := b.store.Load(b.opts.StorageKey)
	if raw == "" {
		b.log.Info("No stored movies, seeding from catalog", "count", b.opts.SeedCount)
		b.seed()
		b.notify()
		return nil
	}

	history, err := movie.DecodeHistory(raw)
	if err != nil {
		b.notify()
		return errors.NewCorruptHistoryError(b.opts.StorageKey, err)
	}

	b.mu.Lock()
	b.history = history
	b.movies = history.First()
	if b.opts.Dedupe {
		b.movies = b.movies.Dedupe()
	}
	count := len(b.movies)
	b.mu.Unlock()

	b.log.Info("Restored movies from storage", "key", b.opts.StorageKey, "movies", count, "snapshots", len(history))
	b.notify()
	return nil
}

func (b *Browser) watchWidth(sub *observable.Subscription[int]) {
	defer b.wg.Done()
	for width := range sub.C {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return
		}
		b.width = width
		b.mu.Unlock()
		b.notify()
	}
}

// seed looks up SeedCount random catalog titles concurrently. Failures are
// collected and logged once all lookups have finished; a failing lookup
// never cancels its siblings.
func (b *Browser) seed() {
	titles := movie.RandomTitles(b.opts.Catalog, b.opts.SeedCount, b.opts.Rand)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	for range titles {
		b.beginRequestLocked()
	}
	b.wg.Add(1)
	b.mu.Unlock()

	var g errgroup.Group
	for _, title := range titles {
		g.Go(func() error {
			m, err := b.fetcher.FetchByTitle(b.ctx, title, "")
			b.complete(seedLookup, m, err)
			if err != nil {
				return fmt.Errorf("seed lookup %q: %w", title, err)
			}
			return nil
		})
	}

	go func() {
		defer b.wg.Done()
		if err := g.Wait(); err != nil && b.ctx.Err() == nil {
			b.log.Error("Error fetching movies", "error", err)
		}
	}()
}

// Search looks up title (and year when non-blank). A blank title is a no-op
// and returns false. The lookup runs in the background; Wait blocks until
// it has completed.
func (b *Browser) Search(title, year string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.beginRequestLocked()
	b.wg.Add(1)
	if b.opts.ClearInputs == config.ClearInputsOnIssue {
		b.titleField, b.yearField = "", ""
	} else {
		b.titleField, b.yearField = title, year
	}
	b.mu.Unlock()
	b.notify()

	go func() {
		defer b.wg.Done()
		m, err := b.fetcher.FetchByTitle(b.ctx, title, strings.TrimSpace(year))
		if err != nil && b.ctx.Err() == nil {
			b.log.Warn("Search failed", "title", title, "year", year, "error", err)
		}
		b.complete(searchLookup, m, err)
	}()
	return true
}

// beginRequestLocked must be called with b.mu held.
func (b *Browser) beginRequestLocked() {
	b.requests.Add(1)
	b.inFlight++
}

// complete applies a finished lookup. Nothing is mutated once the browser is closed.
func (b *Browser) complete(kind lookupKind, m movie.Movie, err error) {
	defer b.requests.Done()

	b.mu.Lock()
	b.inFlight--
	if b.closed {
		b.mu.Unlock()
		return
	}

	if kind == searchLookup && b.opts.ClearInputs == config.ClearInputsOnComplete {
		b.titleField, b.yearField = "", ""
	}

	switch {
	case err != nil:
		// the list is untouched on transport and decode failures
		b.lastErr = err
	case m == nil || !m.HasTitle():
		b.notFound = true
		b.lastErr = nil
		delay := b.opts.SeedNotFoundDelay
		if kind == searchLookup {
			b.titleField = NotFoundText
			delay = b.opts.SearchNotFoundDelay
		}
		b.scheduleNotFoundClear(kind, delay)
	default:
		b.notFound = false
		b.lastErr = nil
		b.added++
		b.movies = b.movies.Prepend(m)
		if b.opts.Dedupe {
			b.movies = b.movies.Dedupe()
		}
		b.persistLocked()
		b.log.Debug("Movie added", "title", m.Title(), "movies", len(b.movies))
	}
	b.mu.Unlock()
	b.notify()
}

// scheduleNotFoundClear must be called with b.mu held.
func (b *Browser) scheduleNotFoundClear(kind lookupKind, delay time.Duration) {
	b.timerSeq++
	id := b.timerSeq
	b.timers[id] = b.opts.AfterFunc(delay, func() {
		b.mu.Lock()
		delete(b.timers, id)
		if b.closed {
			b.mu.Unlock()
			return
		}
		b.notFound = false
		if kind == searchLookup {
			b.titleField = ""
		}
		b.mu.Unlock()
		b.notify()
	})
}

// persistLocked records the current list and saves the snapshot sequence.
// Must be called with b.mu held.
func (b *Browser) persistLocked() {
	if b.opts.PersistMode == config.PersistLatest {
		b.history = movie.History{b.movies.Copy()}
	} else {
		b.history = b.history.Append(b.movies)
	}

	raw, err := b.history.Encode()
	if err != nil {
		b.log.Warn("Failed to encode movie history", "error", err)
		return
	}
	b.store.Save(b.opts.StorageKey, raw)
}

// Dedupe removes duplicate movies by identity, keeping the newest copy, and
// persists the result when anything was removed. It returns the number of
// movies removed.
func (b *Browser) Dedupe() int {
	b.mu.Lock()
	before := len(b.movies)
	b.movies = b.movies.Dedupe()
	removed := before - len(b.movies)
	if removed > 0 && !b.closed {
		b.persistLocked()
	}
	b.mu.Unlock()

	if removed > 0 {
		b.notify()
	}
	return removed
}

// Previous moves to the previous movie unless already at the first one.
func (b *Browser) Previous() {
	b.update(func() {
		if b.current > 0 {
			b.current--
		}
	})
}

// Next moves to the next movie while the index is below the list length.
func (b *Browser) Next() {
	b.update(func() {
		if b.current < len(b.movies) {
			b.current++
		}
	})
}

// OpenLightbox selects movie i and opens the full view. i is not range checked.
func (b *Browser) OpenLightbox(i int) {
	b.update(func() {
		b.current = i
		b.lightbox = true
	})
}

// CloseLightbox closes the full view.
func (b *Browser) CloseLightbox() {
	b.update(func() { b.lightbox = false })
}

// SetLayout sets the free-form layout selector.
func (b *Browser) SetLayout(layout string) {
	b.update(func() { b.layout = layout })
}

// SetInputs mirrors the title and year inputs without searching.
func (b *Browser) SetInputs(title, year string) {
	b.update(func() { b.titleField, b.yearField = title, year })
}

// Resize pushes a new viewport width to the broadcaster.
func (b *Browser) Resize(width int) {
	b.viewport.SetWidth(width)
}

func (b *Browser) update(fn func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	fn()
	b.mu.Unlock()
	b.notify()
}

// Current returns the selected movie, if the index is within the list.
func (b *Browser) Current() (movie.Movie, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current < 0 || b.current >= len(b.movies) {
		return nil, false
	}
	return b.movies[b.current], true
}

// State returns a copy of the current UI state.
func (b *Browser) State() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	phase := PhaseIdle
	switch {
	case !b.started:
		phase = PhaseInitializing
	case b.inFlight > 0:
		phase = PhaseFetching
	case b.lightbox:
		phase = PhaseLightbox
	}

	return View{
		Movies:     b.movies.Copy(),
		Current:    b.current,
		Lightbox:   b.lightbox,
		Layout:     b.layout,
		NotFound:   b.notFound,
		TitleField: b.titleField,
		YearField:  b.yearField,
		Width:      b.width,
		Phase:      phase,
		InFlight:   b.inFlight,
		Snapshots:  len(b.history),
		Added:      b.added,
		LastError:  b.lastErr,
	}
}

// Changes delivers a coalesced signal after every state change.
func (b *Browser) Changes() <-chan struct{} {
	return b.changes
}

// Done is closed once the browser is closed or its parent context ends.
func (b *Browser) Done() <-chan struct{} {
	return b.ctx.Done()
}

func (b *Browser) notify() {
	select {
	case b.changes <- struct{}{}:
	default:
	}
}

// Wait blocks until every lookup issued so far has completed.
func (b *Browser) Wait() {
	b.requests.Wait()
}

// Close cancels in-flight lookups, stops pending not-found timers and the
// width subscription, and waits for background goroutines to exit. After
// Close returns no completion, timer or width update changes the state.
func (b *Browser) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, stop := range b.timers {
		stop()
		delete(b.timers, id)
	}
	sub := b.widthSub
	b.mu.Unlock()

	b.cancel()
	if sub != nil {
		sub.Unsubscribe()
	}
	b.wg.Wait()
}
