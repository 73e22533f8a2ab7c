package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrStopped is returned by Do when the coordinator is not running.
var ErrStopped = errors.New("coordinator stopped")

// Job is one unit of work run on the coordinator goroutine.
type Job func(ctx context.Context) error

type request struct {
	ctx  context.Context
	job  Job
	done chan error
}

// Coordinator runs every working-set mutation, repository call and change
// notification on a single goroutine, so concurrent callers (HTTP handlers)
// observe them in one serialized order.
type Coordinator struct {
	requests        chan request
	refresh         Job
	refreshInterval time.Duration
	running         bool
	mu              sync.Mutex
	stopChan        chan struct{}
	stopped         chan struct{}
	logger          *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRefresh runs refresh on the loop every interval. A zero interval disables it.
func WithRefresh(interval time.Duration, refresh Job) Option {
	return func(c *Coordinator) {
		c.refreshInterval = interval
		c.refresh = refresh
	}
}

func New(logger *slog.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		requests: make(chan request),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the loop. Calling it on a running coordinator is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.stopChan = make(chan struct{})
	c.stopped = make(chan struct{})

	c.logger.Info("coordinator started", "refresh_interval", c.refreshInterval)
	go c.run(c.stopChan, c.stopped)
}

// Stop ends the loop and waits for the job in flight to finish.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopChan)
	stopped := c.stopped
	c.mu.Unlock()

	<-stopped
	c.logger.Info("coordinator stopped")
}

// Do runs job on the loop and waits for its result.
func (c *Coordinator) Do(ctx context.Context, job Job) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return ErrStopped
	}
	stopChan := c.stopChan
	c.mu.Unlock()

	req := request{ctx: ctx, job: job, done: make(chan error, 1)}

	select {
	case c.requests <- req:
	case <-stopChan:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// A job that was accepted always runs to completion.
	return <-req.done
}

func (c *Coordinator) run(stopChan <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	var tick <-chan time.Time
	if c.refresh != nil && c.refreshInterval > 0 {
		ticker := time.NewTicker(c.refreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case req := <-c.requests:
			req.done <- c.runJob(req.ctx, req.job)
		case <-tick:
			if err := c.runJob(context.Background(), c.refresh); err != nil {
				c.logger.Warn("periodic refresh failed", "error", err)
			}
		case <-stopChan:
			return
		}
	}
}

// runJob turns a panicking job into an error so the loop keeps serving.
func (c *Coordinator) runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("coordinator job panicked", "panic", p)
			err = fmt.Errorf("coordinator job panicked: %v", p)
		}
	}()
	return job(ctx)
}
