// Package eventloop provides a single-threaded cooperative task loop. All
// tasks posted to a Loop run one at a time on the goroutine that drives it,
// which is how a host serializes access to its live document.
package eventloop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Run when the loop was closed before it started.
var ErrClosed = errors.New("event loop closed")

// DefaultQueueSize is the number of tasks Post can buffer before blocking.
const DefaultQueueSize = 64

// Loop is a FIFO task queue drained by a single goroutine.
type Loop struct {
	tasks  chan func()
	closed chan struct{}
	once   sync.Once
}

// New creates a Loop that buffers up to size tasks. Non-positive sizes use
// DefaultQueueSize.
func New(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		tasks:  make(chan func(), size),
		closed: make(chan struct{}),
	}
}

// Post queues fn to run on the loop. It may be called from any goroutine and
// blocks while the queue is full. It reports false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.closed:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.closed:
		return false
	}
}

// Run executes queued tasks in order until ctx is cancelled or the loop is
// closed. Tasks still queued at close are discarded.
func (l *Loop) Run(ctx context.Context) error {
	select {
	case <-l.closed:
		return ErrClosed
	default:
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.closed:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// RunPending executes the tasks queued right now on the calling goroutine
// and returns how many ran. Hosts that drive the loop from their own frame
// callback use it instead of Run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		select {
		case fn := <-l.tasks:
			fn()
			n++
		default:
			return n
		}
	}
}

// Close stops the loop. It is safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.closed)
	})
}
