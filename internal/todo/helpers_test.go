package todo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/todo-list/internal/storage/memory"
)

type fakeTimer struct {
	fn      func()
	d       time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fire runs the callback even when the timer was stopped, which is what
// happens when Stop races with an expiring time.AfterFunc.
func (t *fakeTimer) fire() {
	t.fired = true
	t.fn()
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{fn: fn, d: d}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *logRecorder) logger() lgr.L {
	return lgr.Func(func(format string, args ...interface{}) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.lines = append(r.lines, fmt.Sprintf(format, args...))
	})
}

type failingKV struct {
	*memory.Store
	failSet bool
	failGet bool
}

var errStorageDown = errors.New("storage is down")

func (f *failingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errStorageDown
	}
	return f.Store.Get(ctx, key)
}

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errStorageDown
	}
	return f.Store.Set(ctx, key, value)
}

type testEnv struct {
	kv    *memory.Store
	sched *fakeScheduler
	logs  *logRecorder
	now   time.Time
	store *Store
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:    memory.NewStore(),
		sched: &fakeScheduler{},
		logs:  &logRecorder{},
		now:   time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
	}
	env.store = NewStore(env.kv, cfg,
		WithScheduler(env.sched),
		WithLogger(env.logs.logger()),
		WithClock(func() time.Time { return env.now }),
	)
	if err := env.store.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return env
}
