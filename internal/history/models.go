package history

import (
	"strings"
	"time"
)

// Status is the ledger state of a job.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusReady      Status = "ready"
	StatusSubmitted  Status = "submitted"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusDownloaded Status = "downloaded"
	StatusFailed     Status = "failed"
	StatusTimedOut   Status = "timed_out"
)

var allStatuses = []Status{
	StatusUploading,
	StatusReady,
	StatusSubmitted,
	StatusProcessing,
	StatusCompleted,
	StatusDownloaded,
	StatusFailed,
	StatusTimedOut,
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// ParseStatus converts a user-supplied name into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, status := range allStatuses {
		if string(status) == normalized {
			return status, true
		}
	}
	return "", false
}

// Record is one row of the ledger.
type Record struct {
	ID           int64
	SourcePath   string
	AssetURL     string
	JobID        string
	Status       Status
	ResultURL    string
	OutputPath   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal reports whether the record reached an end state.
func (r *Record) IsTerminal() bool {
	switch r.Status {
	case StatusCompleted, StatusDownloaded, StatusFailed, StatusTimedOut:
		return true
	default:
		return false
	}
}
