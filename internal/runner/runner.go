// Package runner keeps at most one cargo test run in flight per project.
package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/chmouel/apollo/internal/log"
	"github.com/chmouel/apollo/internal/models"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrAlreadyRunning is returned by Start under PolicyReject when the
	// project already has a run in flight.
	ErrAlreadyRunning = errors.New("tests are already running for this project")
	// ErrNotRunning is returned by Cancel when there is nothing to cancel.
	ErrNotRunning = errors.New("no test run in progress")
)

// Policy decides what happens when a run is started for a busy project.
type Policy string

const (
	// PolicyReject refuses the second run.
	PolicyReject Policy = "reject"
	// PolicyRestart cancels the in-flight run and starts a new one.
	PolicyRestart Policy = "restart"
)

// ParsePolicy maps a config value to a Policy, defaulting to PolicyReject.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyRestart {
		return PolicyRestart
	}
	return PolicyReject
}

// Executor runs the test suite of one project.
type Executor interface {
	Run(ctx context.Context, dir string, args []string) ([]models.ParsedTestGroup, error)
}

// Result is the outcome of one run.
type Result struct {
	ProjectID uint32
	RunID     ulid.ULID
	Groups    []models.ParsedTestGroup
	Err       error
	Started   time.Time
	Duration  time.Duration

	generation uint64
}

// Handle tracks a started run.
type Handle struct {
	ProjectID uint32
	RunID     ulid.ULID
	Started   time.Time

	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	result     Result
}

// Wait blocks until the run finishes and returns its result.
func (h *Handle) Wait() Result {
	<-h.done
	return h.result
}

// Done is closed when the run finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Runner owns the in-flight runs.
type Runner struct {
	exec   Executor
	policy Policy

	mu         sync.Mutex
	active     map[uint32]*Handle
	generation map[uint32]uint64
}

// New creates a Runner.
func New(exec Executor, policy Policy) *Runner {
	return &Runner{
		exec:       exec,
		policy:     policy,
		active:     make(map[uint32]*Handle),
		generation: make(map[uint32]uint64),
	}
}

// Policy returns the overlap policy in use.
func (r *Runner) Policy() Policy {
	return r.policy
}

// Start launches a run for projectID in dir. The run is canceled when ctx
// is done.
func (r *Runner) Start(ctx context.Context, projectID uint32, dir string, args []string) (*Handle, error) {
	r.mu.Lock()
	if prev, ok := r.active[projectID]; ok {
		if r.policy != PolicyRestart {
			r.mu.Unlock()
			return nil, ErrAlreadyRunning
		}
		log.Printf("runner: restarting project %d, canceling run %s", projectID, prev.RunID)
		prev.cancel()
	}
	r.generation[projectID]++
	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ProjectID:  projectID,
		RunID:      ulid.Make(),
		Started:    time.Now(),
		generation: r.generation[projectID],
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	r.active[projectID] = h
	r.mu.Unlock()

	log.Printf("runner: run %s started for project %d in %s", h.RunID, projectID, dir)
	go r.run(runCtx, h, dir, slices.Clone(args))
	return h, nil
}

func (r *Runner) run(ctx context.Context, h *Handle, dir string, args []string) {
	groups, err := r.exec.Run(ctx, dir, args)
	h.cancel()

	r.mu.Lock()
	if r.active[h.ProjectID] == h {
		delete(r.active, h.ProjectID)
	}
	r.mu.Unlock()

	h.result = Result{
		ProjectID:  h.ProjectID,
		RunID:      h.RunID,
		Groups:     groups,
		Err:        err,
		Started:    h.Started,
		Duration:   time.Since(h.Started),
		generation: h.generation,
	}
	log.Printf("runner: run %s finished in %s (err=%v)", h.RunID, h.result.Duration.Round(time.Millisecond), err)
	close(h.done)
}

// IsCurrent reports whether res belongs to the latest run started for its
// project. Results of replaced or forgotten runs must be dropped.
func (r *Runner) IsCurrent(res Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return res.generation != 0 && r.generation[res.ProjectID] == res.generation
}

// Running reports whether projectID has a run in flight.
func (r *Runner) Running(projectID uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[projectID]
	return ok
}

// Cancel stops the in-flight run of projectID. Its result is still
// delivered, with a canceled error.
func (r *Runner) Cancel(projectID uint32) error {
	r.mu.Lock()
	h, ok := r.active[projectID]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("project %d: %w", projectID, ErrNotRunning)
	}
	h.cancel()
	return nil
}

// Forget cancels any run of projectID and invalidates its pending result,
// used when the project is closed.
func (r *Runner) Forget(projectID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.active[projectID]; ok {
		h.cancel()
		delete(r.active, projectID)
	}
	r.generation[projectID]++
}

// CancelAll cancels every in-flight run.
func (r *Runner) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.active {
		h.cancel()
	}
}
