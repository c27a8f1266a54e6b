package mediajob_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"festive/internal/effects"
	"festive/internal/logging"
	"festive/internal/mediajob"
	"festive/internal/testsupport"
)

// fakeService emulates the hosted API: signed upload, CDN, generation, status, proxy.
type fakeService struct {
	mu          sync.Mutex
	objects     map[string][]byte
	statusCalls int
	imageURL    json.RawMessage
	server      *httptest.Server
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	svc := &fakeService{objects: make(map[string][]byte)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /upload", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, svc.server.URL+"/signed/"+r.URL.Query().Get("fileName"))
	})
	mux.HandleFunc("PUT /signed/{name}", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		svc.mu.Lock()
		svc.objects[r.PathValue("name")] = data
		svc.mu.Unlock()
	})
	mux.HandleFunc("POST /video-gen", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		svc.mu.Lock()
		svc.imageURL = body["imageUrl"]
		svc.mu.Unlock()
		_, _ = io.WriteString(w, `{"jobId":"vid-1"}`)
	})
	mux.HandleFunc("GET /video-gen/{user}/{job}/status", func(w http.ResponseWriter, r *http.Request) {
		svc.mu.Lock()
		svc.statusCalls++
		calls := svc.statusCalls
		svc.mu.Unlock()
		if calls < 3 {
			_, _ = io.WriteString(w, `{"status":"processing"}`)
			return
		}
		_, _ = io.WriteString(w, `{"status":"completed","result":{"video":"`+svc.server.URL+`/cdn/out.jpg"}}`)
	})
	mux.HandleFunc("GET /proxy", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "proxy down", http.StatusBadGateway)
	})
	mux.HandleFunc("GET /cdn/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("t") == "" {
			http.Error(w, "missing cache buster", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = io.WriteString(w, "festive-jpeg")
	})
	svc.server = httptest.NewServer(mux)
	t.Cleanup(svc.server.Close)
	return svc
}

func TestFullWorkflowAgainstHTTPService(t *testing.T) {
	svc := newFakeService(t)
	cfg := testsupport.NewConfig(t, testsupport.WithModel("video-effects"), testsupport.WithAPIBase(svc.server.URL))

	client, err := effects.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	ctrl := mediajob.New(cfg, client, logging.NewNop(), mediajob.WithPollInterval(time.Millisecond))

	asset, err := ctrl.Upload(context.Background(), mediajob.File{Name: "me.png", Size: 4, Body: strings.NewReader("data")})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if string(svc.objects[asset.FileName]) != "data" {
		t.Fatalf("object not stored under %q", asset.FileName)
	}
	if asset.URL != svc.server.URL+"/cdn/"+asset.FileName {
		t.Fatalf("unexpected CDN url %q", asset.URL)
	}

	result, err := ctrl.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if string(svc.imageURL) != `["`+asset.URL+`"]` {
		t.Fatalf("expected imageUrl array for video model, got %s", svc.imageURL)
	}
	if svc.statusCalls != 3 {
		t.Fatalf("expected 3 status calls, got %d", svc.statusCalls)
	}

	saved, err := ctrl.Download(context.Background(), result.URL, cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if saved.Strategy != mediajob.StrategyDirect || !strings.HasSuffix(saved.Path, ".jpg") {
		t.Fatalf("unexpected download %+v", saved)
	}
	data, _ := os.ReadFile(saved.Path)
	if string(data) != "festive-jpeg" {
		t.Fatalf("unexpected content %q", data)
	}
}
