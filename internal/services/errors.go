package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUpload        = errors.New("upload error")
	ErrSubmit        = errors.New("submit error")
	ErrJob           = errors.New("job error")
	ErrTimeout       = errors.New("timeout")
	ErrDownload      = errors.New("download error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

var markers = []error{ErrUpload, ErrSubmit, ErrJob, ErrTimeout, ErrDownload, ErrValidation, ErrConfiguration}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrJob
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the short name of the marker carried by err, or "unknown".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, marker := range markers {
		if errors.Is(err, marker) {
			return strings.ReplaceAll(marker.Error(), " error", "")
		}
	}
	return "unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
