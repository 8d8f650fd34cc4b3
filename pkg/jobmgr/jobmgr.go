// Package jobmgr runs the bot's work outside the gateway goroutines: named
// cancellable background jobs, non-waiting per-scope gates, and a bounded pool
// for CPU-heavy work.
//
// Typical usage:
//
//	jm := jobmgr.NewManager(2, func(msg string) {
//	    log.Debug().Msg(msg)
//	})
//
//	release, err := jm.Acquire("images:" + guildID)
//	if err != nil {
//	    return err // ErrBusy
//	}
//	defer release()
//
//	err = jm.Offload(ctx, func(ctx context.Context) error {
//	    // heavy work
//	    return nil
//	})
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
)

// ErrBusy is returned by Acquire when the scope is already held.
var ErrBusy = errors.New("jobmgr: scope busy")

// ErrNotRunning is returned by Stop for unknown jobs.
var ErrNotRunning = errors.New("jobmgr: job not running")

// PanicError is a panic recovered from an offloaded function or a job.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// call runs fn, turning a panic into a *PanicError.
func call(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}

// Job is a running background job.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events for jobs:
//
//	running:pins:1234
//	error:pins:1234:missing access
//	done:pins:1234
type StatusReporter func(string)

// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	jobs     map[string]*Job
	held     map[string]struct{}
	pool     chan struct{}
	Reporter StatusReporter
}

// NewManager creates a Manager whose Offload pool runs at most workers
// functions at a time. The reporter may be nil.
func NewManager(workers int, reporter StatusReporter) *Manager {
	if workers <= 0 {
		workers = 1
	}
	return &Manager{
		jobs:     make(map[string]*Job),
		held:     make(map[string]struct{}),
		pool:     make(chan struct{}, workers),
		Reporter: reporter,
	}
}

// StartAsync runs runner in its own goroutine under a context derived from
// parent. A job with the same name already running is an error.
func (m *Manager) StartAsync(parent context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job '%s' is already running", name)
	}
	ctx, cancel := context.WithCancel(parent)
	job := &Job{Name: name, Cancel: cancel}
	m.jobs[name] = job
	m.mu.Unlock()

	go func() {
		defer cancel()
		m.report("running:" + name)

		if err := call(ctx, runner); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if m.jobs[name] == job {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}

	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// Acquire takes the gate for scope without waiting. The returned release must
// be called exactly once; extra calls are no-ops.
func (m *Manager) Acquire(scope string) (release func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.held[scope]; busy {
		return nil, ErrBusy
	}
	m.held[scope] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, scope)
			m.mu.Unlock()
		})
	}, nil
}

// Offload runs fn on the worker pool and waits for it. It gives up waiting for
// a free worker when ctx is done. A panic in fn is returned as a *PanicError.
func (m *Manager) Offload(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case m.pool <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-m.pool }()
		done <- call(ctx, fn)
	}()
	return <-done
}

// List returns the names of active jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Busy returns the scopes currently held through Acquire, sorted.
func (m *Manager) Busy() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.held))
	for k := range m.held {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.Reporter != nil {
		m.Reporter(s)
	}
}
