package todo

import "time"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const DefaultNotifyDuration = 3 * time.Second

type Notification struct {
	Message  string
	Severity Severity
	Visible  bool
}

// Timer is a pending deferred call that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler defers calls. The default one is backed by time.AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notify shows a transient message. It replaces the current one and restarts
// the clear timer; only one clear is ever pending.
func (s *Store) Notify(message string, severity Severity, d time.Duration) {
	s.mu.Lock()
	s.notifyLocked(message, severity, d)
	s.mu.Unlock()

	s.changed()
}

func (s *Store) notifyLocked(message string, severity Severity, d time.Duration) {
	if d <= 0 {
		d = s.cfg.NotifyDuration
	}

	if s.pending != nil {
		s.pending.Stop()
	}
	s.generation++
	gen := s.generation

	s.notification = Notification{Message: message, Severity: severity, Visible: true}
	s.pending = s.scheduler.AfterFunc(d, func() { s.expire(gen) })
}

// expire clears the notification scheduled under gen. A timer that fired
// after being replaced finds a newer generation and does nothing.
func (s *Store) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.notification = Notification{}
	s.pending = nil
	s.mu.Unlock()

	s.changed()
}

// DismissNotification hides the current message and cancels its timer.
func (s *Store) DismissNotification() {
	s.mu.Lock()
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.generation++
	s.notification = Notification{}
	s.mu.Unlock()

	s.changed()
}
