package mediajob_test

import (
	"context"
	"io"
	"strings"
	"sync"

	"festive/internal/effects"
)

type fakeAPI struct {
	mu sync.Mutex

	signedURLErr error
	putErr       error
	submitErr    error
	statusErr    error

	fileNames []string
	putBody   string
	putType   string
	putSize   int64
	submitted []effects.SubmitRequest
	jobID     string

	// statuses are returned in order; the last one repeats.
	statuses    []effects.StatusResponse
	statusCalls int

	proxy       func(target string) (*effects.Media, error)
	direct      func(target string) (*effects.Media, error)
	proxyCalls  int
	directCalls int
}

func (f *fakeAPI) RequestUploadURL(_ context.Context, fileName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileNames = append(f.fileNames, fileName)
	if f.signedURLErr != nil {
		return "", f.signedURLErr
	}
	return "https://signed.example/" + fileName + "?sig=1", nil
}

func (f *fakeAPI) PutObject(_ context.Context, _ string, body io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putBody = string(data)
	f.putType = contentType
	f.putSize = size
	return f.putErr
}

func (f *fakeAPI) CDNURL(fileName string) string {
	return "https://cdn.example/" + fileName
}

func (f *fakeAPI) SubmitJob(_ context.Context, request effects.SubmitRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, request)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if f.jobID == "" {
		return "job-1", nil
	}
	return f.jobID, nil
}

func (f *fakeAPI) JobStatus(_ context.Context, _, _, _ string) (*effects.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statuses) == 0 {
		return &effects.StatusResponse{Status: effects.StatusProcessing}, nil
	}
	idx := f.statusCalls - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	status := f.statuses[idx]
	return &status, nil
}

func (f *fakeAPI) FetchViaProxy(_ context.Context, target string) (*effects.Media, error) {
	f.mu.Lock()
	f.proxyCalls++
	fn := f.proxy
	f.mu.Unlock()
	if fn == nil {
		return media("image/png", "proxy-bytes"), nil
	}
	return fn(target)
}

func (f *fakeAPI) FetchDirect(_ context.Context, target string) (*effects.Media, error) {
	f.mu.Lock()
	f.directCalls++
	fn := f.direct
	f.mu.Unlock()
	if fn == nil {
		return media("image/png", "direct-bytes"), nil
	}
	return fn(target)
}

func (f *fakeAPI) calls() (status, proxy, direct int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls, f.proxyCalls, f.directCalls
}

func media(contentType, body string) *effects.Media {
	return &effects.Media{
		Body:        io.NopCloser(strings.NewReader(body)),
		ContentType: contentType,
		Size:        int64(len(body)),
	}
}

func completed(url string) effects.StatusResponse {
	return effects.StatusResponse{
		Status: effects.StatusCompleted,
		Result: []byte(`[{"mediaUrl":"` + url + `"}]`),
	}
}
