package application

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

var errEmptyImageURL = errors.New("empty image url")

// ImageStatus is the outcome of importing one remote image.
type ImageStatus string

const (
	ImageImported       ImageStatus = "imported"
	ImageDuplicate      ImageStatus = "duplicate"
	ImageDownloadFailed ImageStatus = "download_failed"
	ImageUploadFailed   ImageStatus = "upload_failed"
)

// ImageOutcome records what happened to a single source URL.
type ImageOutcome struct {
	SourceURL string
	LocalURL  string
	Hash      string
	Status    ImageStatus
	Err       error
}

// ImageImportResult lists the local URLs in source order alongside every per-URL outcome.
type ImageImportResult struct {
	URLs     []string
	Outcomes []ImageOutcome
}

// Failed counts URLs that could not be downloaded or uploaded.
func (r ImageImportResult) Failed() int {
	failed := 0
	for _, outcome := range r.Outcomes {
		if outcome.Status == ImageDownloadFailed || outcome.Status == ImageUploadFailed {
			failed++
		}
	}
	return failed
}

// ImageImporter copies remote vehicle photos into our object storage.
type ImageImporter struct {
	downloader ports.ImageDownloader
	uploader   ports.ImageUploader
	flags      ports.FeatureFlags
	logger     *slog.Logger
}

// NewImageImporter wires the importer. A nil flag store leaves image sync enabled.
func NewImageImporter(downloader ports.ImageDownloader, uploader ports.ImageUploader, flags ports.FeatureFlags, logger *slog.Logger) *ImageImporter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ImageImporter{downloader: downloader, uploader: uploader, flags: flags, logger: logger}
}

// ImportAll downloads, de-duplicates by content hash and uploads every URL. It never fails as a whole.
func (i *ImageImporter) ImportAll(ctx context.Context, urls []string, vehicleID int64) ImageImportResult {
	var result ImageImportResult
	if i == nil || len(urls) == 0 || !i.enabled(ctx) {
		return result
	}
	seen := make(map[string]struct{}, len(urls))
	for _, source := range urls {
		outcome := i.importOne(ctx, source, vehicleID, seen)
		if outcome.Err != nil {
			i.logger.LogAttrs(ctx, slog.LevelWarn, "image import skipped",
				slog.Int64("vehicle.id", vehicleID),
				slog.String("image.url", source),
				slog.String("image.status", string(outcome.Status)),
				slog.String("error", outcome.Err.Error()))
		}
		if outcome.Status == ImageImported {
			result.URLs = append(result.URLs, outcome.LocalURL)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result
}

func (i *ImageImporter) enabled(ctx context.Context) bool {
	if i.flags == nil {
		return true
	}
	return i.flags.GetBool(ctx, ports.ImageSyncFlag, true)
}

func (i *ImageImporter) importOne(ctx context.Context, source string, vehicleID int64, seen map[string]struct{}) ImageOutcome {
	outcome := ImageOutcome{SourceURL: source}
	source = strings.TrimSpace(source)
	if source == "" {
		outcome.Status = ImageDownloadFailed
		outcome.Err = errEmptyImageURL
		return outcome
	}
	data, contentType, err := i.downloader.Download(ctx, source)
	if err != nil {
		outcome.Status = ImageDownloadFailed
		outcome.Err = err
		return outcome
	}
	sum := md5.Sum(data)
	outcome.Hash = hex.EncodeToString(sum[:])
	if _, dup := seen[outcome.Hash]; dup {
		outcome.Status = ImageDuplicate
		return outcome
	}
	seen[outcome.Hash] = struct{}{}

	name := fmt.Sprintf("vehicles/%d/%s%s", vehicleID, outcome.Hash, imageExtension(source, contentType))
	local, err := i.uploader.Upload(ctx, bytes.NewReader(data), contentType, name)
	if err != nil {
		outcome.Status = ImageUploadFailed
		outcome.Err = err
		return outcome
	}
	outcome.Status = ImageImported
	outcome.LocalURL = local
	return outcome
}

func imageExtension(source, contentType string) string {
	if parsed, err := url.Parse(source); err == nil {
		if ext := strings.ToLower(path.Ext(parsed.Path)); ext != "" && len(ext) <= 5 {
			return ext
		}
	}
	if contentType != "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ".jpg"
}
