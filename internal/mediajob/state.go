package mediajob

import (
	"fmt"
	"time"
)

// State is a controller workflow state.
type State string

const (
	StateIdle       State = "idle"
	StateUploading  State = "uploading"
	StateReady      State = "ready"
	StateSubmitting State = "submitting"
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimedOut   State = "timedOut"
)

// Status labels shown by presentation layers.
const (
	LabelInitial    = "Generate Festive Photo"
	LabelUploading  = "UPLOADING..."
	LabelReady      = "READY"
	LabelSubmitting = "SUBMITTING JOB..."
	LabelQueued     = "JOB QUEUED..."
	LabelComplete   = "COMPLETE"
	LabelError      = "ERROR"
)

// ProcessingLabel is the label for the nth status poll.
func ProcessingLabel(attempt int) string {
	return fmt.Sprintf("PROCESSING... (%d)", attempt)
}

// Terminal reports whether no further transitions follow without a new action.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}

func (s State) String() string { return string(s) }

// Event describes one controller state transition.
type Event struct {
	State     State     `json:"state"`
	Label     string    `json:"label"`
	AssetURL  string    `json:"asset_url,omitempty"`
	JobID     string    `json:"job_id,omitempty"`
	Attempt   int       `json:"attempt,omitempty"`
	ResultURL string    `json:"result_url,omitempty"`
	Err       error     `json:"-"`
	At        time.Time `json:"at"`
}

// Listener receives controller state changes. Calls happen synchronously in
// registration order on the goroutine performing the action, so
// implementations must not call back into the controller's action methods.
type Listener interface {
	OnStateChange(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnStateChange(e Event) { f(e) }
