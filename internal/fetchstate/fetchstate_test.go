package fetchstate

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func value[T any](v T) Producer[T] {
	return func(context.Context) (T, error) { return v, nil }
}

func failing[T any](err error) Producer[T] {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

// resolve runs cmd synchronously and returns its Result.
func resolve[T any](t *testing.T, cmd tea.Cmd) Result[T] {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a fetch command")
	}
	r, ok := cmd().(Result[T])
	if !ok {
		t.Fatalf("command produced unexpected message type")
	}
	return r
}

func TestInitialState(t *testing.T) {
	s := New[string]("overview")
	if !s.Loading() {
		t.Error("new state should be loading")
	}
	if _, ok := s.Data(); ok {
		t.Error("new state should have no data")
	}
	if s.Err() != nil {
		t.Error("new state should have no error")
	}
}

func TestSuccessSettles(t *testing.T) {
	s := New[int]("n")
	r := resolve[int](t, s.Load(nil, value(42)))
	if !s.Apply(r) {
		t.Fatal("Apply should accept the current generation")
	}
	if v, ok := s.Data(); !ok || v != 42 {
		t.Errorf("Data() = %v,%v want 42,true", v, ok)
	}
	if s.Loading() || s.Err() != nil {
		t.Errorf("loading=%v err=%v after success", s.Loading(), s.Err())
	}
}

func TestFailureKeepsPreviousData(t *testing.T) {
	s := New[int]("n")
	s.Apply(resolve[int](t, s.Load([]any{1}, value(7))))

	boom := errors.New("API error: 500 Internal Server Error")
	s.Apply(resolve[int](t, s.Load([]any{2}, failing[int](boom))))

	if !errors.Is(s.Err(), boom) {
		t.Errorf("Err() = %v, want %v", s.Err(), boom)
	}
	if s.Loading() {
		t.Error("should not be loading after failure")
	}
	if v, ok := s.Data(); !ok || v != 7 {
		t.Errorf("Data() = %v,%v want previous value 7", v, ok)
	}
}

func TestFailureWithoutDataLeavesNil(t *testing.T) {
	s := New[*string]("p")
	s.Apply(resolve[*string](t, s.Load(nil, failing[*string](errors.New("API error: 500 Internal Server Error")))))
	if v, _ := s.Data(); v != nil {
		t.Errorf("Data() = %v, want nil", v)
	}
	if s.Err() == nil || !strings.Contains(s.Err().Error(), "500") {
		t.Errorf("Err() = %v, want message containing 500", s.Err())
	}
}

func TestRefetchReentersLoading(t *testing.T) {
	s := New[int]("n")
	calls := 0
	produce := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	s.Apply(resolve[int](t, s.Load(nil, produce)))

	cmd := s.Refetch()
	if !s.Loading() || s.Err() != nil {
		t.Errorf("after Refetch loading=%v err=%v", s.Loading(), s.Err())
	}
	if v, _ := s.Data(); v != 1 {
		t.Errorf("data should be untouched while loading, got %d", v)
	}
	s.Apply(resolve[int](t, cmd))
	if v, _ := s.Data(); v != 2 {
		t.Errorf("Data() = %d, want 2", v)
	}
	if s.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2", s.Fetches())
	}
}

func TestRefetchClearsError(t *testing.T) {
	s := New[int]("n")
	s.Apply(resolve[int](t, s.Load(nil, failing[int](errors.New("down")))))
	if s.Err() == nil {
		t.Fatal("expected error")
	}
	s.Refetch()
	if s.Err() != nil {
		t.Error("Refetch should clear the error")
	}
}

func TestSameDepsDoNotRefetch(t *testing.T) {
	s := New[int]("n")
	deps := []any{"uuid-1", "comment_count", "desc"}
	if s.Load(deps, value(1)) == nil {
		t.Fatal("first Load should dispatch")
	}
	if s.Load([]any{"uuid-1", "comment_count", "desc"}, value(1)) != nil {
		t.Error("equal deps should not dispatch again")
	}
	if s.Load([]any{"uuid-2", "comment_count", "desc"}, value(1)) == nil {
		t.Error("changed deps should dispatch")
	}
	if s.Fetches() != 2 {
		t.Errorf("Fetches() = %d, want 2", s.Fetches())
	}
}

func TestStaleGenerationIsDropped(t *testing.T) {
	s := New[string]("posts")
	first := s.Load([]any{"a"}, value("old"))
	second := s.Load([]any{"b"}, value("new"))

	// The newer fetch settles first, then the older one arrives.
	if !s.Apply(resolve[string](t, second)) {
		t.Fatal("latest generation should apply")
	}
	if s.Apply(resolve[string](t, first)) {
		t.Error("superseded generation should be dropped")
	}
	if v, _ := s.Data(); v != "new" {
		t.Errorf("Data() = %q, want new", v)
	}
}

func TestSupersededFetchIsCanceled(t *testing.T) {
	s := New[int]("n")
	var firstCtx context.Context
	first := s.Load([]any{1}, func(ctx context.Context) (int, error) {
		firstCtx = ctx
		return 0, ctx.Err()
	})
	s.Load([]any{2}, value(2))

	r := resolve[int](t, first)
	if !errors.Is(firstCtx.Err(), context.Canceled) {
		t.Error("superseded fetch context should be canceled")
	}
	if s.Apply(r) {
		t.Error("canceled result should not apply")
	}
}

func TestDisposeDropsResults(t *testing.T) {
	s := New[int]("n")
	var ctx context.Context
	cmd := s.Load(nil, func(c context.Context) (int, error) {
		ctx = c
		return 5, nil
	})
	s.Dispose()

	r := resolve[int](t, cmd)
	if s.Apply(r) {
		t.Error("result after Dispose should be dropped")
	}
	if _, ok := s.Data(); ok {
		t.Error("disposed state should not receive data")
	}
	if ctx.Err() == nil {
		t.Error("Dispose should cancel the fetch context")
	}
	if s.Load([]any{1}, value(1)) != nil || s.Refetch() != nil {
		t.Error("disposed state should not dispatch")
	}
}

func TestPanicIsRecovered(t *testing.T) {
	s := New[int]("n")
	r := resolve[int](t, s.Load(nil, func(context.Context) (int, error) {
		panic("boom")
	}))
	s.Apply(r)
	if s.Err() == nil || !strings.Contains(s.Err().Error(), "panic: boom") {
		t.Errorf("Err() = %v, want recovered panic", s.Err())
	}
}

func TestOtherOwnersIgnored(t *testing.T) {
	a := New[int]("overview")
	b := New[int]("overview")
	r := resolve[int](t, a.Load(nil, value(1)))
	b.Load(nil, value(2))

	if b.Apply(r) || b.Owns(r) {
		t.Error("result of another state should be ignored")
	}
	if !a.Update(r) {
		t.Error("Update should route the owner's result")
	}
	if a.Update(tea.KeyMsg{}) {
		t.Error("unrelated messages should be ignored")
	}
}

func TestWithContextCancelsFetch(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := New[int]("n", WithContext(parent))
	cmd := s.Load(nil, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	cancel()
	s.Apply(resolve[int](t, cmd))
	if !errors.Is(s.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", s.Err())
	}
}
