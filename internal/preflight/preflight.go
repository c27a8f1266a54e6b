package preflight

import (
	"context"

	"festive/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for cfg. Endpoint probes are skipped
// when offline is true.
func RunAll(ctx context.Context, cfg *config.Config, offline bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if offline {
		return results
	}

	endpoints := []struct {
		name string
		url  string
	}{
		{"Upload endpoint", cfg.API.UploadURL},
		{"Generation endpoint", generationURL(cfg)},
		{"Download proxy", cfg.API.ProxyURL},
	}
	for _, endpoint := range endpoints {
		results = append(results, CheckEndpoint(ctx, endpoint.name, endpoint.url))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

func generationURL(cfg *config.Config) string {
	if cfg.IsVideoModel() {
		return cfg.API.VideoGenURL
	}
	return cfg.API.ImageGenURL
}
