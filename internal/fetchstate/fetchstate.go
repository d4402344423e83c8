// Package fetchstate tracks one asynchronous fetch as Bubble Tea state.
//
// A State starts loading, runs its producer as a tea.Cmd and settles when
// the resulting message is fed back through Apply. Dependencies are compared
// by value: Load dispatches exactly one fetch per distinct dependency set.
// Every dispatch carries a generation number and only the latest generation
// may settle the state, so a slow response never overwrites a newer one.
//
// There is no caching, deduplication or retry.
package fetchstate

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/eventlog"
)

// Producer computes the value of a fetch.
type Producer[T any] func(ctx context.Context) (T, error)

// Result is the message a fetch command resolves to.
type Result[T any] struct {
	Key   string
	Gen   uint64
	Value T
	Err   error

	owner uint64
	dur   time.Duration
}

// Option configures a State.
type Option func(*options)

type options struct {
	ctx    context.Context
	events *eventlog.Logger
}

// WithContext sets the parent context of every fetch.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithEvents records fetch transitions to an event log.
func WithEvents(l *eventlog.Logger) Option {
	return func(o *options) { o.events = l }
}

var owners atomic.Uint64

// State is the data/loading/error triple of one fetch. It is owned by a
// single Bubble Tea model and must only be touched from its Update.
type State[T any] struct {
	key   string
	owner uint64
	opts  options

	data    T
	hasData bool
	loading bool
	err     error

	gen      uint64
	started  bool
	deps     []any
	produce  Producer[T]
	cancel   context.CancelFunc
	disposed bool
	fetches  int
}

// New returns a State in its initial loading state with no data.
func New[T any](key string, opts ...Option) *State[T] {
	o := options{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	return &State[T]{
		key:     key,
		owner:   owners.Add(1),
		opts:    o,
		loading: true,
	}
}

// Load starts a fetch when deps differ from the last dispatched set, or on
// the first call. Otherwise it returns nil.
func (s *State[T]) Load(deps []any, produce Producer[T]) tea.Cmd {
	if s.disposed {
		return nil
	}
	s.produce = produce
	if s.started && reflect.DeepEqual(s.deps, deps) {
		return nil
	}
	s.deps = append([]any(nil), deps...)
	s.started = true
	return s.dispatch()
}

// Refetch re-runs the last producer regardless of deps.
func (s *State[T]) Refetch() tea.Cmd {
	if s.disposed || s.produce == nil {
		return nil
	}
	return s.dispatch()
}

func (s *State[T]) dispatch() tea.Cmd {
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.opts.ctx)
	s.cancel = cancel

	s.gen++
	s.fetches++
	s.loading = true
	s.err = nil

	key, gen, owner, produce := s.key, s.gen, s.owner, s.produce
	s.opts.events.Emit(eventlog.Event{
		Level: eventlog.LevelDebug,
		Kind:  eventlog.KindFetchStart,
		Comp:  "fetch",
		Key:   key,
		Gen:   gen,
	})

	return func() tea.Msg {
		start := time.Now()
		v, err := run(ctx, key, produce)
		return Result[T]{Key: key, Gen: gen, Value: v, Err: err, owner: owner, dur: time.Since(start)}
	}
}

func run[T any](ctx context.Context, key string, produce Producer[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("fetch %s: panic: %v", key, r)
		}
	}()
	return produce(ctx)
}

// Owns reports whether r was produced by this State.
func (s *State[T]) Owns(r Result[T]) bool {
	return r.owner == s.owner
}

// Apply settles the state with r. It returns false, leaving the state
// untouched, when r belongs to another State, to a superseded generation,
// or arrives after Dispose. On failure the previous data is kept.
func (s *State[T]) Apply(r Result[T]) bool {
	if r.owner != s.owner {
		return false
	}
	if s.disposed || r.Gen != s.gen {
		s.opts.events.Emit(eventlog.Event{
			Level: eventlog.LevelDebug,
			Kind:  eventlog.KindFetchStale,
			Comp:  "fetch",
			Key:   s.key,
			Gen:   r.Gen,
		})
		return false
	}

	s.loading = false
	ev := eventlog.Event{
		Level: eventlog.LevelDebug,
		Kind:  eventlog.KindFetchSettle,
		Comp:  "fetch",
		Key:   s.key,
		Gen:   r.Gen,
		Dur:   r.dur,
	}
	if r.Err != nil {
		s.err = r.Err
		ev.Level = eventlog.LevelWarn
		ev.Err = r.Err.Error()
	} else {
		s.data = r.Value
		s.hasData = true
		s.err = nil
	}
	s.opts.events.Emit(ev)
	return true
}

// Update applies msg when it is a Result of this State.
func (s *State[T]) Update(msg tea.Msg) bool {
	r, ok := msg.(Result[T])
	if !ok {
		return false
	}
	return s.Apply(r)
}

// Dispose cancels the in-flight fetch. Later results are ignored.
func (s *State[T]) Dispose() {
	s.disposed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Data returns the last successful value.
func (s *State[T]) Data() (T, bool) {
	return s.data, s.hasData
}

func (s *State[T]) Loading() bool { return s.loading }
func (s *State[T]) Err() error    { return s.err }
func (s *State[T]) Key() string   { return s.key }

// Fetches counts dispatched fetches.
func (s *State[T]) Fetches() int { return s.fetches }

// Gen is the generation of the latest dispatch.
func (s *State[T]) Gen() uint64 { return s.gen }

// Disposed reports whether Dispose was called.
func (s *State[T]) Disposed() bool { return s.disposed }
