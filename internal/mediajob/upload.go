package mediajob

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"festive/internal/assetid"
	"festive/internal/logging"
	"festive/internal/services"
)

// UploadPath opens a local file and uploads it.
func (c *Controller) UploadPath(ctx context.Context, path string) (UploadedAsset, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadedAsset{}, services.Wrap(services.ErrValidation, "upload", "open", "cannot read image", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return UploadedAsset{}, services.Wrap(services.ErrValidation, "upload", "stat", "cannot read image", err)
	}
	if info.IsDir() {
		return UploadedAsset{}, services.Wrap(services.ErrValidation, "upload", "stat", fmt.Sprintf("%s is a directory", path), nil)
	}
	return c.Upload(ctx, File{Name: filepath.Base(path), Size: info.Size(), Body: f})
}

// Upload stores file under a fresh "<id>.<ext>" name and makes it the current
// asset. A failed upload leaves the asset slot empty.
func (c *Controller) Upload(ctx context.Context, file File) (UploadedAsset, error) {
	epoch, err := c.begin()
	if err != nil {
		return UploadedAsset{}, err
	}
	defer c.end(epoch)

	ctx = services.WithStage(ctx, "upload")
	c.transition(epoch, Event{State: StateUploading, Label: LabelUploading})

	asset, err := c.upload(ctx, file)
	if err != nil {
		c.mutate(epoch, func() { c.asset = nil })
		c.fail(ctx, epoch, StateFailed, "", err)
		return UploadedAsset{}, err
	}
	c.mutate(epoch, func() {
		c.asset = &asset
		c.result = nil
		c.jobID = ""
	})
	c.transition(epoch, Event{State: StateReady, Label: LabelReady, AssetURL: asset.URL})
	logging.WithContext(ctx, c.logger).Info("image uploaded",
		logging.String(logging.FieldEventType, "asset_uploaded"),
		logging.String("asset_url", asset.URL),
	)
	return asset, nil
}

func (c *Controller) upload(ctx context.Context, file File) (UploadedAsset, error) {
	if file.Body == nil {
		return UploadedAsset{}, services.Wrap(services.ErrValidation, "upload", "", "no file selected", nil)
	}
	fileName, err := assetid.FileName(file.Name)
	if err != nil {
		return UploadedAsset{}, services.Wrap(services.ErrUpload, "upload", "name", "failed to name upload", err)
	}
	contentType, body := detectContentType(file)

	signedURL, err := c.api.RequestUploadURL(ctx, fileName)
	if err != nil {
		return UploadedAsset{}, services.Wrap(services.ErrUpload, "upload", "signed url", "failed to get signed URL", err)
	}
	logging.WithContext(ctx, c.logger).Debug("signed url issued",
		logging.String("file_name", fileName),
		logging.String(logging.FieldSignedURL, signedURL),
		logging.String("content_type", contentType),
	)

	size := file.Size
	if size <= 0 {
		size = -1
	}
	if err := c.api.PutObject(ctx, signedURL, body, size, contentType); err != nil {
		return UploadedAsset{}, services.Wrap(services.ErrUpload, "upload", "put", "failed to upload file", err)
	}
	return UploadedAsset{URL: c.api.CDNURL(fileName), FileName: fileName}, nil
}

// detectContentType prefers the declared type, then the file extension, then
// the leading bytes of the body. The returned reader replaces file.Body.
func detectContentType(file File) (string, io.Reader) {
	if declared := strings.TrimSpace(file.ContentType); declared != "" {
		return declared, file.Body
	}
	if ext := strings.ToLower(filepath.Ext(file.Name)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt, file.Body
		}
	}
	buffered := bufio.NewReader(file.Body)
	head, _ := buffered.Peek(512)
	return http.DetectContentType(head), buffered
}
