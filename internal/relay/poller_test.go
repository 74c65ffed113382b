package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/quickdatapro/core/internal/domain"
)

func TestPoller_ImmediateFirstPoll(t *testing.T) {
	delivered := make(chan []domain.Message, 1)
	p := NewPoller(time.Hour, func(_ context.Context, code string) ([]domain.Message, error) {
		return []domain.Message{{Sender: domain.SenderAgent, Text: "hi"}}, nil
	})

	h := p.Start(context.Background(), "pc-1", func(msgs []domain.Message) {
		delivered <- msgs
	}, nil)
	defer h.Stop()

	select {
	case msgs := <-delivered:
		if len(msgs) != 1 || msgs[0].Text != "hi" {
			t.Errorf("unexpected first snapshot %v", msgs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first poll must fire immediately, not after the interval")
	}
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := NewPoller(time.Millisecond, func(_ context.Context, code string) ([]domain.Message, error) {
		return nil, nil
	})

	h := p.Start(context.Background(), "pc-1", func([]domain.Message) {}, nil)
	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task did not exit after Stop")
	}
	if h.Active() {
		t.Error("stopped task must not report active")
	}
}

func TestPoller_TransientErrorKeepsPolling(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	delivered := make(chan []domain.Message, 1)

	p := NewPoller(time.Millisecond, func(_ context.Context, code string) ([]domain.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return nil, fmt.Errorf("%w: upstream hiccup", domain.ErrTransient)
		}
		return []domain.Message{{Sender: domain.SenderUser, Text: "back"}}, nil
	})

	h := p.Start(context.Background(), "pc-1", func(msgs []domain.Message) {
		select {
		case delivered <- msgs:
		default:
		}
	}, nil)
	defer h.Stop()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("poller must survive a transient error and keep polling")
	}
}

func TestPoller_NotFoundIsTerminal(t *testing.T) {
	terminal := make(chan error, 1)
	p := NewPoller(time.Hour, func(_ context.Context, code string) ([]domain.Message, error) {
		return nil, fmt.Errorf("%w: conversation ended", domain.ErrNotFound)
	})

	h := p.Start(context.Background(), "pc-1", func([]domain.Message) {
		t.Error("terminal poll must not deliver")
	}, func(err error) {
		terminal <- err
	})

	select {
	case err := <-terminal:
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("unexpected terminal error %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("terminal condition not reported")
	}

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("task must stop itself on a terminal condition")
	}
}

func TestSelector_SingleActiveTask(t *testing.T) {
	var mu sync.Mutex
	active := make(map[string]int) // running poll loops per code

	p := NewPoller(time.Millisecond, func(ctx context.Context, code string) ([]domain.Message, error) {
		return nil, nil
	})
	sel := NewSelector(p)
	defer sel.Stop()

	track := func(code string) func([]domain.Message) {
		first := true
		return func([]domain.Message) {
			mu.Lock()
			defer mu.Unlock()
			if first {
				active[code]++
				first = false
			}
		}
	}

	sel.Select(context.Background(), "pc-a", track("pc-a"), nil)
	if code, ok := sel.Active(); !ok || code != "pc-a" {
		t.Fatalf("expected pc-a active, got %q %v", code, ok)
	}

	prevHandle := func() *Handle {
		sel.mu.Lock()
		defer sel.mu.Unlock()
		return sel.handle
	}()

	sel.Select(context.Background(), "pc-b", track("pc-b"), nil)

	// Switching must have fully stopped the previous task before the new
	// one started.
	select {
	case <-prevHandle.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("previous task still running after switch")
	}
	if prevHandle.Active() {
		t.Error("previous task must be inactive after switch")
	}

	if code, ok := sel.Active(); !ok || code != "pc-b" {
		t.Errorf("expected pc-b active, got %q %v", code, ok)
	}
}

func TestSelector_StopClearsActive(t *testing.T) {
	p := NewPoller(time.Millisecond, func(context.Context, string) ([]domain.Message, error) {
		return nil, nil
	})
	sel := NewSelector(p)

	sel.Select(context.Background(), "pc-1", func([]domain.Message) {}, nil)
	sel.Stop()
	sel.Stop()

	if _, ok := sel.Active(); ok {
		t.Error("expected no active task after Stop")
	}
}
