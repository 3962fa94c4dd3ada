package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cesargomez89/strume/internal/domain"
	"github.com/cesargomez89/strume/internal/logger"
)

func newTestRegistry(retention time.Duration) *Registry {
	return NewRegistry(retention, logger.Discard())
}

func TestGetUnknownIsZero(t *testing.T) {
	r := newTestRegistry(time.Minute)

	if got := r.Get("nope"); got != 0 {
		t.Errorf("Expected 0 for unknown id, got %d", got)
	}
	if r.Len() != 0 {
		t.Errorf("Get must not create entries, got Len %d", r.Len())
	}
}

func TestSetAndGet(t *testing.T) {
	r := newTestRegistry(time.Minute)

	for _, p := range []domain.Progress{10, 30, 70, 95} {
		if !r.Set("t1", p) {
			t.Fatalf("Set(%d) was rejected", p)
		}
		if got := r.Get("t1"); got != p {
			t.Errorf("Expected %d, got %d", p, got)
		}
	}
}

func TestTerminalIsFinal(t *testing.T) {
	tests := []struct {
		name     string
		terminal domain.Progress
	}{
		{"complete", domain.ProgressComplete},
		{"failed", domain.ProgressFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry(time.Minute)
			r.Set("t", 30)
			r.Set("t", tt.terminal)

			if r.Set("t", 70) {
				t.Error("Expected write after terminal to be dropped")
			}
			if r.Set("t", domain.ProgressComplete) && tt.terminal == domain.ProgressFailed {
				t.Error("Expected failed task to stay failed")
			}
			if got := r.Get("t"); got != tt.terminal {
				t.Errorf("Expected %d, got %d", tt.terminal, got)
			}
		})
	}
}

func TestDistinctTasksDoNotInterfere(t *testing.T) {
	r := newTestRegistry(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%d", n)
			for _, p := range []domain.Progress{10, 30, 70, 95} {
				r.Set(id, p)
				_ = r.Get(id)
			}
			if n%2 == 0 {
				r.Set(id, domain.ProgressFailed)
			} else {
				r.Set(id, domain.ProgressComplete)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		want := domain.ProgressComplete
		if i%2 == 0 {
			want = domain.ProgressFailed
		}
		if got := r.Get(fmt.Sprintf("task-%d", i)); got != want {
			t.Errorf("task-%d: expected %d, got %d", i, want, got)
		}
	}
}

func TestClaim(t *testing.T) {
	r := newTestRegistry(time.Minute)

	if err := r.Claim("t"); err != nil {
		t.Fatalf("Claim on fresh id failed: %v", err)
	}
	if err := r.Claim("t"); !errors.Is(err, domain.ErrTaskInUse) {
		t.Errorf("Expected ErrTaskInUse for live task, got %v", err)
	}

	r.Set("t", 30)
	if err := r.Claim("t"); !errors.Is(err, domain.ErrTaskInUse) {
		t.Errorf("Expected ErrTaskInUse while running, got %v", err)
	}

	r.Set("t", domain.ProgressComplete)
	if err := r.Claim("t"); err != nil {
		t.Fatalf("Expected finished id to be claimable, got %v", err)
	}
	if got := r.Get("t"); got != 0 {
		t.Errorf("Expected reclaimed task to read 0, got %d", got)
	}
	if !r.Set("t", 10) {
		t.Error("Expected reclaimed task to accept writes")
	}
}

func TestWatch(t *testing.T) {
	r := newTestRegistry(time.Minute)

	if v, ch := r.Watch("missing"); v != 0 || ch != nil {
		t.Errorf("Expected (0, nil) for unknown id, got (%d, %v)", v, ch)
	}

	r.Set("t", 10)
	v, ch := r.Watch("t")
	if v != 10 {
		t.Errorf("Expected 10, got %d", v)
	}

	select {
	case <-ch:
		t.Fatal("Channel closed before any write")
	default:
	}

	r.Set("t", 30)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Expected watch channel to close after write")
	}

	if v, _ := r.Watch("t"); v != 30 {
		t.Errorf("Expected 30 after wake, got %d", v)
	}
}

func TestEvict(t *testing.T) {
	r := newTestRegistry(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.Set("done", domain.ProgressComplete)
	r.Set("failed", domain.ProgressFailed)
	r.Set("running", 70)

	if n := r.Evict(); n != 0 {
		t.Errorf("Expected nothing evicted inside retention, got %d", n)
	}

	now = now.Add(2 * time.Minute)
	if n := r.Evict(); n != 2 {
		t.Errorf("Expected 2 evicted, got %d", n)
	}

	if r.Len() != 1 {
		t.Errorf("Expected only the running task to remain, got %d", r.Len())
	}
	if got := r.Get("done"); got != 0 {
		t.Errorf("Expected evicted task to read 0, got %d", got)
	}
	if got := r.Get("running"); got != 70 {
		t.Errorf("Expected running task untouched, got %d", got)
	}
}

func TestRunEvictsUntilCancelled(t *testing.T) {
	r := newTestRegistry(0)
	r.Set("done", domain.ProgressComplete)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		r.run(ctx, 5*time.Millisecond)
		close(finished)
	}()

	deadline := time.Now().Add(time.Second)
	for r.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.Len() != 0 {
		t.Error("Expected janitor to evict the finished task")
	}

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
