package engine

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/phyten/todoreview/internal/progress"
)

// State はスキャンの進行状態。
//
// A Handle only ever reports StateRunning or StateCompleted. StateIdle (no
// scan requested yet) and StateFailed (Start returned a ConfigurationError)
// are never observable on a Handle, since Start returns none in those cases.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Session は 1 回のスキャンの状態。処理済みファイル数だけがゴルーチンを
// またいで共有されるので atomic で保持する。
type Session struct {
	ID        string
	StartedAt time.Time

	processed atomic.Int64
	estimator *progress.Estimator
	observer  progress.Observer
}

func newSession(obs progress.Observer) *Session {
	if obs == nil {
		obs = progress.NoopObserver{}
	}
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		estimator: progress.NewEstimator(progress.Unknown, progress.Config{}),
		observer:  obs,
	}
}

// visit counts one attempted file.
func (s *Session) visit() {
	s.processed.Add(1)
	if snap, notify := s.estimator.Advance(1); notify {
		s.observer.Publish(snap)
	}
}

// Processed returns the number of files attempted so far. It may lag behind
// the scanning goroutine by one file.
func (s *Session) Processed() int {
	return int(s.processed.Load())
}

func (s *Session) finish() {
	s.observer.Done(s.estimator.Complete())
}
