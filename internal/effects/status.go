package effects

import (
	"encoding/json"
	"strings"
)

// Remote job status values.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusErrored    = "error"
)

// StatusResponse is the body of a job status call.
type StatusResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

// Completed reports whether the job finished successfully.
func (s *StatusResponse) Completed() bool {
	return strings.EqualFold(s.Status, StatusCompleted)
}

// Failed reports whether the remote side gave up on the job.
func (s *StatusResponse) Failed() bool {
	return strings.EqualFold(s.Status, StatusFailed) || strings.EqualFold(s.Status, StatusErrored)
}

// ErrorText returns the remote failure message, if any. Both string and
// {"message": "..."} shapes are accepted.
func (s *StatusResponse) ErrorText() string {
	if len(s.Error) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(s.Error, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(s.Error, &obj); err == nil && obj.Message != "" {
		return strings.TrimSpace(obj.Message)
	}
	if string(s.Error) == "null" {
		return ""
	}
	return strings.TrimSpace(string(s.Error))
}

type resultEntry struct {
	MediaURL string `json:"mediaUrl"`
	Video    string `json:"video"`
	Image    string `json:"image"`
}

// MediaURL extracts the result location from a completed payload. When result
// is an array its first element is used; the URL is the first non-empty of
// mediaUrl, video, image.
func (s *StatusResponse) MediaURL() (string, bool) {
	raw := []byte(strings.TrimSpace(string(s.Result)))
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var entry resultEntry
	if raw[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil || len(entries) == 0 {
			return "", false
		}
		if err := json.Unmarshal(entries[0], &entry); err != nil {
			return "", false
		}
	} else if err := json.Unmarshal(raw, &entry); err != nil {
		return "", false
	}
	for _, candidate := range []string{entry.MediaURL, entry.Video, entry.Image} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return candidate, true
		}
	}
	return "", false
}
