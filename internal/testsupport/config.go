package testsupport

import (
	"path/filepath"
	"strings"
	"testing"

	"festive/internal/config"
)

// UserID is the job user id stamped into every generated test config.
const UserID = "test-user"

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Endpoints keep their defaults unless WithAPIBase is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Job.UserID = UserID
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithAPIBase points every hosted API endpoint at base, typically an
// httptest server URL. Paths mirror the production layout.
func WithAPIBase(base string) ConfigOption {
	return func(b *configBuilder) {
		base = strings.TrimRight(base, "/")
		b.cfg.API.UploadURL = base + "/upload"
		b.cfg.API.ImageGenURL = base + "/image-gen"
		b.cfg.API.VideoGenURL = base + "/video-gen"
		b.cfg.API.CDNURL = base + "/cdn"
		b.cfg.API.ProxyURL = base + "/proxy"
	}
}

// WithModel sets the job model.
func WithModel(model string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Job.Model = model
	}
}

// WithPolling overrides the poll interval and ceiling.
func WithPolling(intervalSeconds, maxAttempts int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Polling.IntervalSeconds = intervalSeconds
		b.cfg.Polling.MaxAttempts = maxAttempts
	}
}

// WithAPIToken sets the web surface bearer token.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.APIToken = token
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
