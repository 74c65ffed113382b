package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

// PollFunc fetches the current message sequence for a process code.
type PollFunc func(ctx context.Context, processCode string) ([]domain.Message, error)

// Poller runs cancellable periodic poll tasks. Each Start fires an
// immediate poll followed by one per interval. Transient errors are
// logged and polling continues; a not-found error is terminal and the
// task stops itself so a dead conversation is never retried unboundedly.
type Poller struct {
	interval time.Duration
	poll     PollFunc
}

// NewPoller creates a poller with the given cadence.
func NewPoller(interval time.Duration, poll PollFunc) *Poller {
	return &Poller{interval: interval, poll: poll}
}

// Handle controls one running poll task.
type Handle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// Stop cancels the task. It is idempotent and safe to call from any
// goroutine except the task's own callbacks.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
}

// Done is closed when the task's loop has exited, whether by Stop or by a
// terminal poll condition.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Active reports whether the task loop is still running.
func (h *Handle) Active() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Start launches a poll task for processCode. deliver receives each
// successful snapshot; onTerminal, if non-nil, is called once when a
// terminal fetch error halts the task.
func (p *Poller) Start(ctx context.Context, processCode string, deliver func([]domain.Message), onTerminal func(error)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		if stop := p.pollOnce(ctx, processCode, deliver, onTerminal); stop {
			return
		}

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if stop := p.pollOnce(ctx, processCode, deliver, onTerminal); stop {
					return
				}
			}
		}
	}()

	return h
}

// pollOnce performs one poll and reports whether the task should stop.
func (p *Poller) pollOnce(ctx context.Context, processCode string, deliver func([]domain.Message), onTerminal func(error)) bool {
	if ctx.Err() != nil {
		return true
	}

	messages, err := p.poll(ctx, processCode)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("Poll hit terminal condition, stopping", "process_code", processCode, "error", err)
			if onTerminal != nil {
				onTerminal(err)
			}
			return true
		}
		slog.Warn("Poll failed, will retry", "process_code", processCode, "error", err)
		return false
	}

	deliver(messages)
	return false
}

// Selector guarantees at most one active poll task per client: selecting
// a new process code always stops the previous task first.
type Selector struct {
	poller *Poller

	mu     sync.Mutex
	handle *Handle
	code   string
}

// NewSelector creates a selector over p.
func NewSelector(p *Poller) *Selector {
	return &Selector{poller: p}
}

// Select switches the polling target to processCode, stopping any prior
// task before the new one starts.
func (s *Selector) Select(ctx context.Context, processCode string, deliver func([]domain.Message), onTerminal func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		s.handle.Stop()
		<-s.handle.Done()
	}

	s.handle = s.poller.Start(ctx, processCode, deliver, onTerminal)
	s.code = processCode
}

// Stop halts the current task, if any. Idempotent.
func (s *Selector) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		s.handle.Stop()
		s.handle = nil
		s.code = ""
	}
}

// Active returns the currently polled process code, if a task is running.
func (s *Selector) Active() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle == nil || !s.handle.Active() {
		return "", false
	}
	return s.code, true
}
