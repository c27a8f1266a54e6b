package mediajob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"festive/internal/assetid"
	"festive/internal/effects"
	"festive/internal/fileutil"
	"festive/internal/logging"
	"festive/internal/services"
)

// Download saves target into dir, trying the download proxy first and a direct
// fetch second. An empty target means the last completed result. Download does
// not take the job slot and never changes the workflow state.
func (c *Controller) Download(ctx context.Context, target, dir string) (DownloadedFile, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		if result, ok := c.Result(); ok {
			target = result.URL
		}
	}
	if target == "" {
		return DownloadedFile{}, services.Wrap(services.ErrValidation, "download", "", "no result to download", nil)
	}
	if strings.TrimSpace(dir) == "" {
		return DownloadedFile{}, services.Wrap(services.ErrValidation, "download", "", "output directory required", nil)
	}

	ctx = services.WithStage(ctx, "download")
	logger := logging.WithContext(ctx, c.logger)

	saved, proxyErr := c.save(dir, StrategyProxy, func() (*effects.Media, error) {
		return c.api.FetchViaProxy(ctx, target)
	})
	if proxyErr == nil {
		logSaved(logger, saved)
		return saved, nil
	}
	logging.WarnWithContext(logger, "proxy download failed; trying direct fetch", "download_proxy_failed",
		logging.Error(proxyErr),
		logging.String("result_url", target),
		logging.String(logging.FieldImpact, "falling back to a direct fetch of the result"),
		logging.String(logging.FieldErrorHint, "check api.proxy_url"),
	)

	saved, directErr := c.save(dir, StrategyDirect, func() (*effects.Media, error) {
		return c.api.FetchDirect(ctx, target)
	})
	if directErr == nil {
		logSaved(logger, saved)
		return saved, nil
	}
	return DownloadedFile{}, services.Wrap(services.ErrDownload, "download", "",
		fmt.Sprintf("proxy and direct fetch both failed; open %s in a browser and save the image manually", target),
		errors.Join(proxyErr, directErr))
}

func (c *Controller) save(dir, strategy string, fetch func() (*effects.Media, error)) (DownloadedFile, error) {
	media, err := fetch()
	if err != nil {
		return DownloadedFile{}, err
	}
	defer media.Body.Close()

	id, err := assetid.NewN(8)
	if err != nil {
		return DownloadedFile{}, err
	}
	name := fmt.Sprintf("%s_%s.%s", c.prefix, id, ExtensionForContentType(media.ContentType))
	path := filepath.Join(dir, name)
	written, err := fileutil.WriteStream(path, media.Body, media.Size)
	if err != nil {
		return DownloadedFile{}, fmt.Errorf("%s download: write %s: %w", strategy, name, err)
	}
	return DownloadedFile{Path: path, ContentType: media.ContentType, Bytes: written, Strategy: strategy}, nil
}

func logSaved(logger *slog.Logger, saved DownloadedFile) {
	logger.Info("result saved",
		logging.String(logging.FieldEventType, "result_downloaded"),
		logging.String("output_path", saved.Path),
		logging.String("strategy", saved.Strategy),
		logging.Int64("bytes", saved.Bytes),
	)
}

// ExtensionForContentType maps a response content type to a file extension:
// jpeg/jpg -> jpg, everything else (png included) -> png.
func ExtensionForContentType(contentType string) string {
	lowered := strings.ToLower(contentType)
	if strings.Contains(lowered, "jpeg") || strings.Contains(lowered, "jpg") {
		return "jpg"
	}
	return "png"
}
