package mediajob

import (
	"context"
	"errors"
	"io"

	"festive/internal/effects"
)

var (
	// ErrBusy is returned when an action starts while another job is in flight.
	ErrBusy = errors.New("a job is already in progress")
	// ErrNoAsset is returned when generating before anything was uploaded.
	ErrNoAsset = errors.New("please upload an image first")
)

// API is the hosted effects service as the controller uses it.
// *effects.Client satisfies it.
type API interface {
	RequestUploadURL(ctx context.Context, fileName string) (string, error)
	PutObject(ctx context.Context, signedURL string, body io.Reader, size int64, contentType string) error
	CDNURL(fileName string) string
	SubmitJob(ctx context.Context, request effects.SubmitRequest) (string, error)
	JobStatus(ctx context.Context, model, userID, jobID string) (*effects.StatusResponse, error)
	FetchViaProxy(ctx context.Context, target string) (*effects.Media, error)
	FetchDirect(ctx context.Context, target string) (*effects.Media, error)
}

var _ API = (*effects.Client)(nil)

// File is an upload source.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadedAsset is the CDN location of an uploaded file.
type UploadedAsset struct {
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
}

// JobStatus mirrors the remote job lifecycle.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// GenerationJob is a submitted job.
type GenerationJob struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}

// ResultAsset is the final media location of a completed job.
type ResultAsset struct {
	URL string `json:"url"`
}

// Download strategies.
const (
	StrategyProxy  = "proxy"
	StrategyDirect = "direct"
)

// DownloadedFile describes a result saved to disk.
type DownloadedFile struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Bytes       int64  `json:"bytes"`
	Strategy    string `json:"strategy"`
}
