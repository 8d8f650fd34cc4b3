package jobmgr

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAcquire_NonWaiting(t *testing.T) {
	m := NewManager(1, nil)

	release, err := m.Acquire("images:1")
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if _, err := m.Acquire("images:1"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Acquire err = %v, want ErrBusy", err)
	}
	if _, err := m.Acquire("images:2"); err != nil {
		t.Fatalf("other scope should be free: %v", err)
	}

	release()
	release()

	again, err := m.Acquire("images:1")
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}

func TestOffload_BoundsWorkers(t *testing.T) {
	m := NewManager(2, nil)

	var running, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Offload(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestOffload_ReturnsError(t *testing.T) {
	m := NewManager(1, nil)
	want := errors.New("boom")
	if err := m.Offload(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Offload err = %v, want %v", err, want)
	}
}

func TestOffload_RecoversPanic(t *testing.T) {
	m := NewManager(1, nil)
	err := m.Offload(context.Background(), func(context.Context) error {
		var counts map[string]int
		counts["x"]++
		return nil
	})

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Offload err = %v, want *PanicError", err)
	}
	if !strings.Contains(pe.Error(), "nil map") {
		t.Errorf("panic message = %q", pe.Error())
	}
	if !strings.Contains(string(pe.Stack), "TestOffload_RecoversPanic") {
		t.Error("stack does not include the panicking function")
	}

	// The worker slot is released after a panic.
	if err := m.Offload(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("Offload after panic: %v", err)
	}
}

func TestStartAsync_RecoversPanic(t *testing.T) {
	events := make(chan string, 4)
	m := NewManager(1, func(s string) { events <- s })

	if err := m.StartAsync(context.Background(), "pins:7", func(context.Context) error {
		panic("archive exploded")
	}); err != nil {
		t.Fatalf("StartAsync: %v", err)
	}

	var last string
	for last == "" || last == "running:pins:7" {
		select {
		case last = <-events:
		case <-time.After(time.Second):
			t.Fatal("job never finished")
		}
	}
	if !strings.HasPrefix(last, "error:pins:7:panic: archive exploded") {
		t.Errorf("last event = %q", last)
	}
	deadline := time.Now().Add(time.Second)
	for len(m.List()) != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := m.List(); len(got) != 0 {
		t.Errorf("job still listed after panic: %v", got)
	}
}

func TestStartAsync_Stop(t *testing.T) {
	var mu sync.Mutex
	var events []string
	m := NewManager(1, func(s string) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	stopped := make(chan struct{})
	err := m.StartAsync(context.Background(), "pins:42", func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})
	if err != nil {
		t.Fatalf("StartAsync: %v", err)
	}
	if err := m.StartAsync(context.Background(), "pins:42", func(context.Context) error { return nil }); err == nil {
		t.Fatal("duplicate job name should fail")
	}
	if got := m.List(); len(got) != 1 || got[0] != "pins:42" {
		t.Fatalf("List = %v", got)
	}

	if err := m.Stop("pins:42"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("job did not observe cancellation")
	}
	if err := m.Stop("pins:42"); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop err = %v, want ErrNotRunning", err)
	}
	if m.Status() != "No jobs are running." {
		t.Errorf("Status = %q", m.Status())
	}
}
