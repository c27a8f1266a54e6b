package mediajob

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"festive/internal/config"
	"festive/internal/logging"
)

// Controller drives one image job at a time against the hosted API.
type Controller struct {
	api         API
	job         config.Job
	interval    time.Duration
	maxAttempts int
	prefix      string
	logger      *slog.Logger
	sleep       func(context.Context, time.Duration) error
	now         func() time.Time

	mu        sync.Mutex
	state     State
	label     string
	asset     *UploadedAsset
	result    *ResultAsset
	jobID     string
	busy      bool
	epoch     uint64
	listeners []subscription
	nextSub   int
}

type subscription struct {
	id       int
	listener Listener
}

// Option configures optional Controller behavior.
type Option func(*Controller)

// WithSleeper replaces the wait between status polls.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Controller) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithPollInterval overrides the configured poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithMaxAttempts overrides the configured poll ceiling.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// New constructs a controller for the supplied configuration and API.
func New(cfg *config.Config, api API, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		api:         api,
		job:         cfg.Job,
		interval:    cfg.PollInterval(),
		maxAttempts: cfg.Polling.MaxAttempts,
		prefix:      cfg.Download.FilenamePrefix,
		logger:      logging.NewComponentLogger(logger, "controller"),
		sleep:       sleepContext,
		now:         time.Now,
		state:       StateIdle,
		label:       LabelInitial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a listener and returns a function that removes it.
func (c *Controller) Subscribe(listener Listener) (unsubscribe func()) {
	if listener == nil {
		return func() {}
	}
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.listeners = append(c.listeners, subscription{id: id, listener: listener})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, sub := range c.listeners {
				if sub.id == id {
					c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// State returns the current workflow state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Label returns the current status label.
func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// Asset returns the current asset slot.
func (c *Controller) Asset() (UploadedAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.asset == nil {
		return UploadedAsset{}, false
	}
	return *c.asset, true
}

// Result returns the last completed result.
func (c *Controller) Result() (ResultAsset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return ResultAsset{}, false
	}
	return *c.result, true
}

// Snapshot is a consistent view of the controller for presentation layers.
type Snapshot struct {
	State     State  `json:"state"`
	Label     string `json:"label"`
	Busy      bool   `json:"busy"`
	AssetURL  string `json:"asset_url,omitempty"`
	JobID     string `json:"job_id,omitempty"`
	ResultURL string `json:"result_url,omitempty"`
}

// Snapshot returns the current controller view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{State: c.state, Label: c.label, Busy: c.busy, JobID: c.jobID}
	if c.asset != nil {
		snap.AssetURL = c.asset.URL
	}
	if c.result != nil {
		snap.ResultURL = c.result.URL
	}
	return snap
}

// Reset clears the asset slot and the last result and returns to idle. A job
// still in flight keeps running but its outcome no longer touches the
// controller.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.epoch++
	epoch := c.epoch
	c.asset = nil
	c.result = nil
	c.jobID = ""
	c.busy = false
	c.mu.Unlock()

	c.transition(epoch, Event{State: StateIdle, Label: LabelInitial})
	c.logger.Info("workflow reset", logging.String(logging.FieldEventType, "workflow_reset"))
}

func (c *Controller) begin() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return 0, ErrBusy
	}
	c.busy = true
	return c.epoch, nil
}

func (c *Controller) end(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch {
		c.busy = false
	}
}

// mutate applies fn under the lock unless a Reset happened since epoch.
func (c *Controller) mutate(epoch uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	fn()
	return true
}

// transition records the new state and notifies listeners in registration order.
func (c *Controller) transition(epoch uint64, event Event) {
	if event.At.IsZero() {
		event.At = c.now()
	}
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.state = event.State
	c.label = event.Label
	if event.JobID != "" {
		c.jobID = event.JobID
	}
	listeners := make([]Listener, 0, len(c.listeners))
	for _, sub := range c.listeners {
		listeners = append(listeners, sub.listener)
	}
	c.mu.Unlock()

	for _, listener := range listeners {
		listener.OnStateChange(event)
	}
}

func (c *Controller) fail(ctx context.Context, epoch uint64, state State, jobID string, err error) {
	logging.ErrorWithContext(logging.WithContext(ctx, c.logger), "job step failed", "job_failed",
		logging.Error(err),
		logging.String("state", string(state)),
		logging.String(logging.FieldErrorHint, hintFor(state)),
	)
	c.transition(epoch, Event{State: state, Label: LabelError, JobID: jobID, Err: err})
}

func hintFor(state State) string {
	if state == StateTimedOut {
		return "the job may still finish remotely; retry or raise polling.max_attempts"
	}
	return "retry the action; check api endpoints and network access if it keeps failing"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
