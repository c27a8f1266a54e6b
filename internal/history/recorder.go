package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"festive/internal/logging"
	"festive/internal/mediajob"
)

const recorderWriteTimeout = 5 * time.Second

// Recorder mirrors controller events into one ledger record. It implements
// mediajob.Listener. Write failures are logged and never interrupt the job.
type Recorder struct {
	store  *Store
	logger *slog.Logger

	mu     sync.Mutex
	record *Record
}

var _ mediajob.Listener = (*Recorder)(nil)

// NewRecorder returns a recorder that updates record.
func NewRecorder(store *Store, record *Record, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		record: record,
		logger: logging.NewComponentLogger(logger, "history"),
	}
}

// Record returns a copy of the tracked record.
func (r *Recorder) Record() Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.record
}

// OnStateChange applies a controller transition to the record.
func (r *Recorder) OnStateChange(event mediajob.Event) {
	status, ok := statusForState(event.State)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.record.Status = status
	if event.AssetURL != "" && r.record.AssetURL == "" {
		r.record.AssetURL = event.AssetURL
	}
	if event.JobID != "" {
		r.record.JobID = event.JobID
	}
	if event.ResultURL != "" {
		r.record.ResultURL = event.ResultURL
	}
	if event.Err != nil {
		r.record.ErrorMessage = event.Err.Error()
	}
	r.persistLocked()
}

// MarkDownloaded records where the result was saved.
func (r *Recorder) MarkDownloaded(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record.Status = StatusDownloaded
	r.record.OutputPath = path
	r.persistLocked()
}

// MarkFailed records a failure that happened outside the controller, such as
// a download that exhausted both strategies.
func (r *Recorder) MarkFailed(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.record.IsTerminal() {
		r.record.Status = StatusFailed
	}
	r.record.ErrorMessage = err.Error()
	r.persistLocked()
}

func (r *Recorder) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()
	if err := r.store.Update(ctx, r.record); err != nil {
		logging.WarnWithContext(r.logger, "history update failed; ledger may be stale", "history_update_failed",
			logging.Error(err),
			logging.Int64("record_id", r.record.ID),
			logging.String(logging.FieldImpact, "festive history shows an outdated status for this run"),
			logging.String(logging.FieldErrorHint, "check permissions on "+r.store.Path()),
		)
	}
}

// statusForState maps controller states to ledger statuses. Idle has no
// ledger meaning and is skipped.
func statusForState(state mediajob.State) (Status, bool) {
	switch state {
	case mediajob.StateUploading:
		return StatusUploading, true
	case mediajob.StateReady:
		return StatusReady, true
	case mediajob.StateSubmitting, mediajob.StateQueued:
		return StatusSubmitted, true
	case mediajob.StateProcessing:
		return StatusProcessing, true
	case mediajob.StateCompleted:
		return StatusCompleted, true
	case mediajob.StateFailed:
		return StatusFailed, true
	case mediajob.StateTimedOut:
		return StatusTimedOut, true
	default:
		return "", false
	}
}
