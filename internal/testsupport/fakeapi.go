package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeAPI is an httptest server that speaks the hosted effects API. Point a
// config at it with WithAPIBase(fake.URL()).
type FakeAPI struct {
	mu                sync.Mutex
	pendingPolls      int
	failJob           string
	proxyDown         bool
	resultContentType string
	server      *httptest.Server
	objects     map[string][]byte
	submissions []map[string]json.RawMessage
	statusCalls int
	proxyCalls  int
}

// NewFakeAPI starts a fake hosted API and registers cleanup.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{objects: make(map[string][]byte)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /upload", f.handleSignedURL)
	mux.HandleFunc("PUT /signed/{name}", f.handlePut)
	mux.HandleFunc("POST /image-gen", f.handleSubmit)
	mux.HandleFunc("POST /video-gen", f.handleSubmit)
	mux.HandleFunc("GET /image-gen/{user}/{job}/status", f.handleStatus)
	mux.HandleFunc("GET /video-gen/{user}/{job}/status", f.handleStatus)
	mux.HandleFunc("GET /proxy", f.handleProxy)
	mux.HandleFunc("GET /cdn/{name}", f.handleCDN)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

// SetPendingPolls sets how many status calls answer "processing" before
// the job completes. A negative value never completes.
func (f *FakeAPI) SetPendingPolls(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingPolls = n
}

// FailJobWith makes terminal status polls report failure with message.
func (f *FakeAPI) FailJobWith(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failJob = message
}

// SetProxyDown makes the download proxy answer 502.
func (f *FakeAPI) SetProxyDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.proxyDown = down
}

// SetResultContentType changes the content type served for results.
// The default is image/png.
func (f *FakeAPI) SetResultContentType(contentType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultContentType = contentType
}

// URL returns the base URL of the fake API.
func (f *FakeAPI) URL() string {
	return f.server.URL
}

// ResultURL is the media URL reported for completed jobs.
func (f *FakeAPI) ResultURL() string {
	return f.server.URL + "/cdn/result.png"
}

// Object returns the bytes uploaded under name.
func (f *FakeAPI) Object(name string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[name]
	return data, ok
}

// Submissions returns the decoded bodies of every job submission.
func (f *FakeAPI) Submissions() []map[string]json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]json.RawMessage(nil), f.submissions...)
}

// StatusCalls returns how many status polls were answered.
func (f *FakeAPI) StatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// ProxyCalls returns how many proxy downloads were attempted.
func (f *FakeAPI) ProxyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.proxyCalls
}

func (f *FakeAPI) handleSignedURL(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("fileName")
	if name == "" {
		http.Error(w, "fileName required", http.StatusBadRequest)
		return
	}
	_, _ = io.WriteString(w, f.server.URL+"/signed/"+name)
}

func (f *FakeAPI) handlePut(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.objects[r.PathValue("name")] = data
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (f *FakeAPI) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.submissions = append(f.submissions, body)
	f.statusCalls = 0
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"jobId":"fake-job"}`)
}

func (f *FakeAPI) handleStatus(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.statusCalls++
	calls := f.statusCalls
	pending, failJob := f.pendingPolls, f.failJob
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if pending < 0 || calls <= pending {
		_, _ = io.WriteString(w, `{"status":"processing"}`)
		return
	}
	if failJob != "" {
		payload, _ := json.Marshal(map[string]string{"status": "failed", "error": failJob})
		_, _ = w.Write(payload)
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"status": "completed",
		"result": []map[string]string{{"mediaUrl": f.ResultURL()}},
	})
	_, _ = w.Write(payload)
}

func (f *FakeAPI) handleProxy(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.proxyCalls++
	down := f.proxyDown
	f.mu.Unlock()
	if down {
		http.Error(w, "proxy down", http.StatusBadGateway)
		return
	}
	f.serveResult(w)
}

func (f *FakeAPI) handleCDN(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	data, ok := f.objects[r.PathValue("name")]
	f.mu.Unlock()
	if ok {
		_, _ = w.Write(data)
		return
	}
	f.serveResult(w)
}

func (f *FakeAPI) serveResult(w http.ResponseWriter) {
	f.mu.Lock()
	contentType := f.resultContentType
	f.mu.Unlock()
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.WriteString(w, PNGHeader+"festive-result")
}
