// Package pager drives a server-sorted, offset-paginated table.
//
// The first page is a fetchstate keyed on (filter, column, order). Further
// pages are appended to an accumulator by LoadMore. Changing the sort or the
// filter starts a new epoch: the accumulator is cleared and any load-more
// still in flight is ignored when it lands.
package pager

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/campaignwatch/internal/eventlog"
	"github.com/abelbrown/campaignwatch/internal/fetchstate"
)

// DefaultPageSize is the number of rows per request.
const DefaultPageSize = 20

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// SortSpec is the active sort column and direction.
type SortSpec struct {
	Column string
	Order  Order
}

// Toggle returns the spec after clicking column: the same column flips
// the order, a new column starts descending.
func (s SortSpec) Toggle(column string) SortSpec {
	if column == s.Column {
		if s.Order == Desc {
			return SortSpec{Column: column, Order: Asc}
		}
		return SortSpec{Column: column, Order: Desc}
	}
	return SortSpec{Column: column, Order: Desc}
}

// Query is one page request.
type Query struct {
	Filter string
	Column string
	Order  Order
	Limit  int
	Offset int
}

// Page is one page response.
type Page[T any] struct {
	Rows  []T
	Total int
}

// FetchFunc loads one page.
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

// MoreResult is the message a LoadMore command resolves to.
type MoreResult[T any] struct {
	Offset int
	Page   Page[T]
	Err    error

	owner uint64
	epoch uint64
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	pageSize int
	filter   string
	ctx      context.Context
	events   *eventlog.Logger
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithFilter sets the initial filter.
func WithFilter(filter string) Option {
	return func(o *options) { o.filter = filter }
}

// WithContext sets the parent context of every page fetch.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithEvents records sort and load-more activity.
func WithEvents(l *eventlog.Logger) Option {
	return func(o *options) { o.events = l }
}

var owners atomic.Uint64

// Controller owns the sort, filter and accumulated rows of one table.
// Like fetchstate.State it must only be used from one Update loop.
type Controller[T any] struct {
	key   string
	fetch FetchFunc[T]
	opts  options
	owner uint64

	sort   SortSpec
	filter string
	first  *fetchstate.State[Page[T]]

	extra       []T
	offset      int
	total       int
	loadingMore bool
	epoch       uint64
	cancelMore  context.CancelFunc
	disposed    bool
}

// New creates a Controller sorted by initial. An empty order means Desc.
func New[T any](key string, fetch FetchFunc[T], initial SortSpec, opts ...Option) *Controller[T] {
	o := options{pageSize: DefaultPageSize, ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	if initial.Order == "" {
		initial.Order = Desc
	}
	return &Controller[T]{
		key:    key,
		fetch:  fetch,
		opts:   o,
		owner:  owners.Add(1),
		sort:   initial,
		filter: o.filter,
		first: fetchstate.New[Page[T]](key,
			fetchstate.WithContext(o.ctx),
			fetchstate.WithEvents(o.events),
		),
	}
}

// Mount fetches the first page for the current sort and filter.
func (c *Controller[T]) Mount() tea.Cmd {
	if c.disposed {
		return nil
	}
	q := Query{Filter: c.filter, Column: c.sort.Column, Order: c.sort.Order, Limit: c.opts.pageSize}
	fetch := c.fetch
	return c.first.Load([]any{q.Filter, q.Column, q.Order}, func(ctx context.Context) (Page[T], error) {
		return fetch(ctx, q)
	})
}

// SetSort applies a column click and refetches the first page.
func (c *Controller[T]) SetSort(column string) tea.Cmd {
	if c.disposed {
		return nil
	}
	c.sort = c.sort.Toggle(column)
	c.reset()
	c.opts.events.Emit(eventlog.Event{
		Level: eventlog.LevelInfo,
		Kind:  eventlog.KindSort,
		Comp:  "pager",
		Key:   c.key,
		Msg:   c.sort.Column + " " + string(c.sort.Order),
	})
	return c.Mount()
}

// SetFilter switches the candidate filter. Unchanged filters are a no-op.
func (c *Controller[T]) SetFilter(filter string) tea.Cmd {
	if c.disposed || filter == c.filter {
		return nil
	}
	c.filter = filter
	c.reset()
	return c.Mount()
}

// Refetch reloads the first page and drops accumulated rows.
func (c *Controller[T]) Refetch() tea.Cmd {
	if c.disposed {
		return nil
	}
	c.reset()
	return c.first.Refetch()
}

func (c *Controller[T]) reset() {
	c.epoch++
	c.extra = nil
	c.offset = 0
	c.loadingMore = false
	if c.cancelMore != nil {
		c.cancelMore()
		c.cancelMore = nil
	}
}

// LoadMore fetches the page after the current offset. It returns nil while
// another load-more is in flight, while the first page is loading or failed,
// or when every row is already loaded.
func (c *Controller[T]) LoadMore() tea.Cmd {
	if c.disposed || c.loadingMore || !c.HasMore() {
		return nil
	}
	c.loadingMore = true

	ctx, cancel := context.WithCancel(c.opts.ctx)
	c.cancelMore = cancel

	q := Query{
		Filter: c.filter,
		Column: c.sort.Column,
		Order:  c.sort.Order,
		Limit:  c.opts.pageSize,
		Offset: c.offset + c.opts.pageSize,
	}
	fetch, owner, epoch := c.fetch, c.owner, c.epoch
	return func() tea.Msg {
		page, err := fetch(ctx, q)
		return MoreResult[T]{Offset: q.Offset, Page: page, Err: err, owner: owner, epoch: epoch}
	}
}

// Update routes first-page and load-more results. It reports whether the
// controller's state changed.
func (c *Controller[T]) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case fetchstate.Result[Page[T]]:
		if !c.first.Apply(msg) {
			return false
		}
		if msg.Err == nil {
			c.total = msg.Value.Total
		}
		return true

	case MoreResult[T]:
		if msg.owner != c.owner || c.disposed {
			return false
		}
		if msg.epoch != c.epoch {
			return false
		}
		c.loadingMore = false
		c.cancelMore = nil
		ev := eventlog.Event{Level: eventlog.LevelDebug, Kind: eventlog.KindPageMore, Comp: "pager", Key: c.key}
		if msg.Err != nil {
			// Load-more failures leave the table as it was.
			ev.Level = eventlog.LevelWarn
			ev.Err = msg.Err.Error()
			c.opts.events.Emit(ev)
			return true
		}
		c.extra = append(c.extra, msg.Page.Rows...)
		c.offset = msg.Offset
		c.total = msg.Page.Total
		ev.Count = len(msg.Page.Rows)
		c.opts.events.Emit(ev)
		return true
	}
	return false
}

// Rows returns the first page followed by every appended page.
func (c *Controller[T]) Rows() []T {
	page, _ := c.first.Data()
	if len(c.extra) == 0 {
		return page.Rows
	}
	rows := make([]T, 0, len(page.Rows)+len(c.extra))
	rows = append(rows, page.Rows...)
	return append(rows, c.extra...)
}

// Total is the server-reported row count for the current query.
func (c *Controller[T]) Total() int { return c.total }

// HasMore reports whether rows remain beyond those loaded. It is false
// until the first page for the current query has settled successfully.
func (c *Controller[T]) HasMore() bool {
	if c.first.Loading() || c.first.Err() != nil {
		return false
	}
	n := len(c.Rows())
	return n > 0 && n < c.total
}

func (c *Controller[T]) LoadingMore() bool { return c.loadingMore }
func (c *Controller[T]) Sort() SortSpec    { return c.sort }
func (c *Controller[T]) Filter() string    { return c.filter }
func (c *Controller[T]) PageSize() int     { return c.opts.pageSize }
func (c *Controller[T]) Offset() int       { return c.offset }

// State exposes the first-page fetch for loading and error rendering.
func (c *Controller[T]) State() *fetchstate.State[Page[T]] { return c.first }

// Dispose cancels every in-flight fetch.
func (c *Controller[T]) Dispose() {
	c.disposed = true
	c.first.Dispose()
	if c.cancelMore != nil {
		c.cancelMore()
		c.cancelMore = nil
	}
}
