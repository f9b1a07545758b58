package export

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// State is the phase an export job is in.
type State uint8

const (
	StateIdle State = iota
	StateCapturing
	StateUploading
	StateConverting
	StateWriting
	StateDone
	StateFailed
	StateCanceled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateUploading:
		return "uploading"
	case StateConverting:
		return "converting"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further progress follows s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateCanceled
}

// Progress is a snapshot of a running job.
type Progress struct {
	State   State
	Percent float64
	Err     error
}

// Report publishes intermediate progress from inside a job.
type Report func(State, float64)

// Job is the body of an export. It must return promptly once ctx is done.
type Job func(ctx context.Context, report Report) error

// Runner executes at most one export job at a time off the caller's
// goroutine. Progress is delivered on a buffered channel that keeps only the
// most recent update, so a slow reader never blocks the job.
type Runner struct {
	busy   atomic.Bool
	latest atomic.Pointer[Progress]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Busy reports whether a job is running.
func (r *Runner) Busy() bool { return r.busy.Load() }

// Latest returns the most recent progress, or an idle snapshot.
func (r *Runner) Latest() Progress {
	if p := r.latest.Load(); p != nil {
		return *p
	}
	return Progress{State: StateIdle}
}

// Go starts job. It returns ErrBusy if another job has not finished. The
// returned channel is closed after the terminal update.
func (r *Runner) Go(ctx context.Context, job Job) (<-chan Progress, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	ch := make(chan Progress, 1)
	publish := func(p Progress) {
		r.latest.Store(&p)
		for {
			select {
			case ch <- p:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
	publish(Progress{State: StateCapturing})

	go func() {
		defer func() {
			cancel()
			r.mu.Lock()
			r.cancel = nil
			r.mu.Unlock()
			r.busy.Store(false)
			close(ch)
		}()
		err := job(ctx, func(s State, pct float64) {
			publish(Progress{State: s, Percent: pct})
		})
		switch {
		case err == nil:
			publish(Progress{State: StateDone, Percent: 100})
		case errors.Is(err, context.Canceled):
			publish(Progress{State: StateCanceled, Err: err})
		default:
			publish(Progress{State: StateFailed, Err: err})
		}
	}()
	return ch, nil
}

// Cancel stops the running job, if any.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}
