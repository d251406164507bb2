package todo

import (
	"context"
	"strconv"
	"strings"

	"github.com/agalitsyn/todo-list/internal/model"
)

// Intent is a user action forwarded by a frontend.
type Intent interface {
	apply(ctx context.Context, s *Store) error
}

// AddIntent adds a task. An empty Text takes the current input text.
type AddIntent struct {
	Text     string
	Category model.Category
}

type DeleteIntent struct{ ID int64 }

type ToggleIntent struct{ ID int64 }

type InputIntent struct{ Text string }

type SearchIntent struct{ Query string }

type FilterIntent struct{ Filter model.CategoryFilter }

type ClearCompletedIntent struct{}

func (i AddIntent) apply(ctx context.Context, s *Store) error {
	text := i.Text
	if text == "" {
		s.mu.Lock()
		text = s.state.Input
		s.mu.Unlock()
	}
	_, err := s.AddTask(ctx, text, i.Category)
	return err
}

func (i DeleteIntent) apply(ctx context.Context, s *Store) error {
	s.DeleteTask(ctx, i.ID)
	return nil
}

func (i ToggleIntent) apply(ctx context.Context, s *Store) error {
	s.ToggleComplete(ctx, i.ID)
	return nil
}

func (i InputIntent) apply(_ context.Context, s *Store) error {
	s.SetInput(i.Text)
	return nil
}

func (i SearchIntent) apply(_ context.Context, s *Store) error {
	s.SetSearch(i.Query)
	return nil
}

func (i FilterIntent) apply(_ context.Context, s *Store) error {
	s.SetFilter(i.Filter)
	return nil
}

func (ClearCompletedIntent) apply(ctx context.Context, s *Store) error {
	s.ClearCompleted(ctx)
	return nil
}

// Dispatch applies intent and returns the resulting view. The error is a
// *model.ValidationError for rejected input; the view already carries the
// matching warning.
func (s *Store) Dispatch(ctx context.Context, intent Intent) (View, error) {
	err := intent.apply(ctx, s)
	return s.View(), err
}

// ResolveRef turns a user reference into a task id. A number within
// 1..len(tasks) is a position in tasks, anything larger is taken as an id.
func ResolveRef(tasks []model.Task, ref string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n <= int64(len(tasks)) {
		return tasks[n-1].ID, true
	}
	return n, true
}
