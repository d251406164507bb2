// Package todo keeps the task list view-model: the ordered task collection,
// ephemeral view state and the transient notification. Every mutation writes
// the whole collection back to a model.KeyValueStore.
package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/text/cases"

	"github.com/agalitsyn/todo-list/internal/model"
)

const DefaultKey = "tasks"

type Config struct {
	// Key the collection is stored under.
	Key string
	// Categories enables the category field. When off every task has an
	// empty category and filters are ignored.
	Categories     bool
	NotifyDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		Key:            DefaultKey,
		Categories:     true,
		NotifyDuration: DefaultNotifyDuration,
	}
}

type Option func(*Store)

func WithLogger(l lgr.L) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithScheduler(sch Scheduler) Option {
	return func(s *Store) { s.scheduler = sch }
}

// WithOnChange registers a callback run after every state change, including
// the notification being cleared by its timer. It is called without the
// store lock held.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// State is the ephemeral part of the view. It is never persisted.
type State struct {
	Input  string
	Search string
	Filter model.CategoryFilter
}

// View is an immutable snapshot handed to renderers.
type View struct {
	Tasks        []model.Task
	Stats        model.TaskStats
	State        State
	Notification Notification
	Categories   bool
}

type Store struct {
	kv  model.KeyValueStore
	cfg Config

	logger    lgr.L
	now       func() time.Time
	scheduler Scheduler
	onChange  func()

	mu           sync.Mutex
	tasks        []model.Task
	lastID       int64
	state        State
	notification Notification
	pending      Timer
	generation   uint64
}

func NewStore(kv model.KeyValueStore, cfg Config, opts ...Option) *Store {
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	if cfg.NotifyDuration <= 0 {
		cfg.NotifyDuration = DefaultNotifyDuration
	}

	s := &Store{
		kv:        kv,
		cfg:       cfg,
		logger:    lgr.Std,
		now:       time.Now,
		scheduler: timeScheduler{},
		state:     State{Filter: model.FilterAll},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOnChange replaces the change callback. Frontends that are created after
// the store use it to hook re-rendering.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Initialize loads the stored collection. A corrupt value is logged and
// ignored, the store starts empty. Only storage failures are returned.
func (s *Store) Initialize(ctx context.Context) error {
	value, ok, err := s.kv.Get(ctx, s.cfg.Key)
	if err != nil {
		return fmt.Errorf("could not load tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	if !ok {
		return nil
	}

	tasks, err := Decode(value)
	if err != nil {
		var perr *model.ParseError
		if errors.As(err, &perr) {
			perr.Key = s.cfg.Key
		}
		s.logger.Logf("WARN %s, starting with empty list", err)
		return nil
	}

	s.tasks = tasks
	for _, t := range tasks {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	s.logger.Logf("DEBUG loaded %d tasks from %q", len(tasks), s.cfg.Key)
	return nil
}

// AddTask validates rawText and appends a new task. Validation failures are
// shown as a warning and returned; the collection is left as is.
func (s *Store) AddTask(ctx context.Context, rawText string, category model.Category) (model.Task, error) {
	s.mu.Lock()
	task, err := model.NewTask(0, rawText, category, s.cfg.Categories, s.now().UTC())
	if err != nil {
		s.notifyLocked(validationMessage(err), SeverityWarning, 0)
		s.mu.Unlock()
		s.changed()
		return model.Task{}, err
	}
	task.ID = s.nextIDLocked()

	s.tasks = append(s.tasks, *task)
	s.state.Input = ""
	s.notifyLocked("Task added", SeveritySuccess, 0)
	s.syncLocked(ctx)
	s.mu.Unlock()

	s.changed()
	return *task, nil
}

// DeleteTask removes the task with id. Unknown ids are ignored.
func (s *Store) DeleteTask(ctx context.Context, id int64) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	s.notifyLocked("Task deleted", SeverityInfo, 0)
	s.syncLocked(ctx)
	s.mu.Unlock()

	s.changed()
}

// ToggleComplete flips the completion flag of the task with id. Unknown ids
// are ignored.
func (s *Store) ToggleComplete(ctx context.Context, id int64) {
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Toggle()
			break
		}
	}
	s.syncLocked(ctx)
	s.mu.Unlock()

	s.changed()
}

// ClearCompleted removes every completed task and returns how many were removed.
func (s *Store) ClearCompleted(ctx context.Context) int {
	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	s.tasks = kept
	s.notifyLocked(fmt.Sprintf("%d completed tasks cleared", removed), SeverityInfo, 0)
	s.syncLocked(ctx)
	s.mu.Unlock()

	s.changed()
	return removed
}

func (s *Store) SetInput(text string) {
	s.mu.Lock()
	s.state.Input = text
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	s.state.Search = query
	s.mu.Unlock()
	s.changed()
}

func (s *Store) SetFilter(filter model.CategoryFilter) {
	if filter != model.FilterAll && !model.Category(filter).Valid() {
		filter = model.FilterAll
	}
	s.mu.Lock()
	s.state.Filter = filter
	s.mu.Unlock()
	s.changed()
}

// Tasks returns a copy of the whole collection in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Store) Task(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Filter returns tasks whose text contains search (case-insensitive) and
// whose category matches filter, keeping insertion order.
func (s *Store) Filter(search string, filter model.CategoryFilter) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(search, filter)
}

// Visible applies the current search and filter.
func (s *Store) Visible() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(s.state.Search, s.state.Filter)
}

func (s *Store) Stats() model.TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.NewTaskStats(s.tasks)
}

func (s *Store) Notification() Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notification
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Store) viewLocked() View {
	return View{
		Tasks:        s.filterLocked(s.state.Search, s.state.Filter),
		Stats:        model.NewTaskStats(s.tasks),
		State:        s.state,
		Notification: s.notification,
		Categories:   s.cfg.Categories,
	}
}

func (s *Store) filterLocked(search string, filter model.CategoryFilter) []model.Task {
	if !s.cfg.Categories {
		filter = model.FilterAll
	}
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))

	res := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !filter.Match(t.Category) {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(t.Text), needle) {
			continue
		}
		res = append(res, t)
	}
	return res
}

// nextIDLocked hands out millisecond timestamps, bumped past the last id so
// two tasks created within the same millisecond never collide.
func (s *Store) nextIDLocked() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// syncLocked overwrites the stored collection, or removes the key once the
// collection is empty.
func (s *Store) syncLocked(ctx context.Context) {
	var err error
	if len(s.tasks) == 0 {
		err = s.kv.Remove(ctx, s.cfg.Key)
	} else {
		var value string
		value, err = Encode(s.tasks)
		if err == nil {
			err = s.kv.Set(ctx, s.cfg.Key, value)
		}
	}
	if err != nil {
		s.logger.Logf("ERROR could not save tasks to %q: %s", s.cfg.Key, err)
		s.notifyLocked("Could not save tasks", SeverityError, 0)
	}
}

func (s *Store) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrTextEmpty):
		return "Task cannot be empty"
	case errors.Is(err, model.ErrTextTooLong):
		return fmt.Sprintf("Task is too long (max %d characters)", model.MaxTaskTextLength)
	case errors.Is(err, model.ErrUnknownCategory):
		return "Unknown category"
	default:
		return err.Error()
	}
}
