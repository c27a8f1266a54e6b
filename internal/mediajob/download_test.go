package mediajob_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"festive/internal/effects"
	"festive/internal/mediajob"
	"festive/internal/services"
)

var downloadName = regexp.MustCompile(`^festive_[A-Za-z0-9]{8}\.(png|jpg)$`)

func TestDownloadViaProxy(t *testing.T) {
	api := &fakeAPI{proxy: func(target string) (*effects.Media, error) {
		if target != "https://cdn.example/out.jpg" {
			t.Errorf("unexpected proxy target %q", target)
		}
		return media("image/jpeg", "jpeg-bytes"), nil
	}}
	ctrl, _, rec := newController(t, api)
	dir := t.TempDir()

	saved, err := ctrl.Download(context.Background(), "https://cdn.example/out.jpg", dir)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if saved.Strategy != mediajob.StrategyProxy || saved.Bytes != 10 {
		t.Fatalf("unexpected download %+v", saved)
	}
	if !downloadName.MatchString(filepath.Base(saved.Path)) || !strings.HasSuffix(saved.Path, ".jpg") {
		t.Fatalf("unexpected file name %q", saved.Path)
	}
	data, err := os.ReadFile(saved.Path)
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected saved content %q (%v)", data, err)
	}
	if _, _, direct := api.calls(); direct != 0 {
		t.Fatalf("direct fetch should not run when proxy succeeds, got %d", direct)
	}
	if len(rec.labels()) != 0 {
		t.Fatalf("download must not change workflow state, got %v", rec.labels())
	}
}

func TestDownloadFallsBackToDirect(t *testing.T) {
	api := &fakeAPI{
		proxy: func(string) (*effects.Media, error) {
			return nil, &effects.StatusError{Operation: "proxy download", StatusCode: 502}
		},
		direct: func(string) (*effects.Media, error) {
			return media("application/octet-stream", "raw"), nil
		},
	}
	ctrl, _, _ := newController(t, api)

	saved, err := ctrl.Download(context.Background(), "https://cdn.example/out", t.TempDir())
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if saved.Strategy != mediajob.StrategyDirect {
		t.Fatalf("expected direct strategy, got %q", saved.Strategy)
	}
	if !strings.HasSuffix(saved.Path, ".png") {
		t.Fatalf("expected default png extension, got %q", saved.Path)
	}
	_, proxy, direct := api.calls()
	if proxy != 1 || direct != 1 {
		t.Fatalf("expected one attempt each, got proxy=%d direct=%d", proxy, direct)
	}
}

func TestDownloadFallsBackWhenProxyBodyTruncated(t *testing.T) {
	api := &fakeAPI{
		proxy: func(string) (*effects.Media, error) {
			m := media("image/png", "short")
			m.Size = 1000
			return m, nil
		},
	}
	ctrl, _, _ := newController(t, api)
	dir := t.TempDir()

	saved, err := ctrl.Download(context.Background(), "https://cdn.example/out.png", dir)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if saved.Strategy != mediajob.StrategyDirect {
		t.Fatalf("expected direct strategy after truncated proxy body, got %q", saved.Strategy)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in output dir, got %d", len(entries))
	}
}

func TestDownloadBothStrategiesFail(t *testing.T) {
	proxyErr := errors.New("proxy unreachable")
	directErr := errors.New("cors")
	api := &fakeAPI{
		proxy:  func(string) (*effects.Media, error) { return nil, proxyErr },
		direct: func(string) (*effects.Media, error) { return nil, directErr },
	}
	ctrl, _, _ := newController(t, api)
	dir := t.TempDir()

	_, err := ctrl.Download(context.Background(), "https://cdn.example/out.png", dir)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
	if !errors.Is(err, proxyErr) || !errors.Is(err, directErr) {
		t.Fatalf("expected both causes to be kept, got %v", err)
	}
	if !strings.Contains(err.Error(), "save the image manually") {
		t.Fatalf("expected manual-save instruction, got %q", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no files after failed download, got %d", len(entries))
	}
}

func TestDownloadDefaultsToLastResult(t *testing.T) {
	var proxied string
	api := &fakeAPI{
		statuses: []effects.StatusResponse{completed("https://cdn.example/last.png")},
		proxy: func(target string) (*effects.Media, error) {
			proxied = target
			return media("image/png", "x"), nil
		},
	}
	ctrl, _, _ := newController(t, api)

	if _, err := ctrl.Download(context.Background(), "", t.TempDir()); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error with no result, got %v", err)
	}
	if _, err := ctrl.Poll(context.Background(), "job-1"); err != nil {
		t.Fatalf("Poll returned error: %v", err)
	}
	if _, err := ctrl.Download(context.Background(), "", t.TempDir()); err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	if proxied != "https://cdn.example/last.png" {
		t.Fatalf("expected last result to be downloaded, got %q", proxied)
	}
}

func TestExtensionForContentType(t *testing.T) {
	tests := map[string]string{
		"image/jpeg":               "jpg",
		"image/JPG":                "jpg",
		"image/png":                "png",
		"image/webp":               "png",
		"":                         "png",
		"application/octet-stream": "png",
	}
	for contentType, want := range tests {
		if got := mediajob.ExtensionForContentType(contentType); got != want {
			t.Fatalf("ExtensionForContentType(%q) = %q, want %q", contentType, got, want)
		}
	}
}
