// package tasks implements bulk media operations against the tagging APIs.
//
// The core abstraction is TagEngine, which orchestrates batch uploads, tag edits, deletions, and downloads.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/repositories"
	"github.com/mbb-dev/birdtag/internal/services"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// UploadOutcome is the per-file result of a batch upload.
type UploadOutcome struct {
	Item   services.UploadItem    // Validated source file
	Result *services.UploadResult // Storage location (nil on failure)
	Error  error                  // Error if the upload failed
}

// UploadRunResult contains all data from a batch upload operation.
type UploadRunResult struct {
	Outcomes     []UploadOutcome // Individual file outcomes
	SuccessCount int             // Number of uploaded files
	FailedCount  int             // Number of failed files
	TotalFiles   int             // Total files processed
}

// DownloadOutcome is the per-file result of a batch download.
type DownloadOutcome struct {
	Filename string // Remote filename
	Path     string // Local destination path (empty on failure)
	Size     int64  // Bytes written
	Error    error  // Error if the download failed
}

// DownloadRunResult contains all data from a batch download operation.
type DownloadRunResult struct {
	Outcomes     []DownloadOutcome // Individual file outcomes
	SuccessCount int               // Number of downloaded files
	FailedCount  int               // Number of failed files
}

// TagEngine defines bulk operations over selections of media files.
type TagEngine interface {
	// UploadAll validates the given paths and uploads each file, reporting byte-level progress.
	UploadAll(ctx context.Context, progress chan<- ProgressUpdate, paths []string) (*UploadRunResult, error)

	// EditTags adds or removes species tags on every given file URL.
	EditTags(ctx context.Context, progress chan<- ProgressUpdate, urls []string, add bool, tags []models.TagSpec) error

	// DeleteFiles removes the given files remotely and purges matching local upload history.
	DeleteFiles(ctx context.Context, progress chan<- ProgressUpdate, urls []string) error

	// Download saves each result's file into dir.
	Download(ctx context.Context, progress chan<- ProgressUpdate, results []models.SearchResult, dir string) (*DownloadRunResult, error)
}

// MediaEngine implements TagEngine.
// Contains dependencies on the upload and tagging services plus local history.
type MediaEngine struct {
	uploads    *services.UploadService
	api        *services.BirdTagService
	history    *repositories.UploadRepository
	httpClient *http.Client
}

// NewMediaEngine creates a new MediaEngine with the provided services.
// history may be nil; httpClient defaults to http.DefaultClient.
func NewMediaEngine(uploads *services.UploadService, api *services.BirdTagService, history *repositories.UploadRepository, httpClient *http.Client) *MediaEngine {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MediaEngine{
		uploads:    uploads,
		api:        api,
		history:    history,
		httpClient: httpClient,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *MediaEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// UploadAll validates every path up front, then uploads file by file.
// Both validation and upload failures are recorded per file and the
// batch continues past them.
func (e *MediaEngine) UploadAll(ctx context.Context, progress chan<- ProgressUpdate, paths []string) (*UploadRunResult, error) {
	e.sendProgress(progress, validateUpdate(len(paths)))

	checks, err := e.uploads.HandleFiles(paths)
	if err != nil {
		return nil, err
	}

	run := &UploadRunResult{TotalFiles: len(checks)}
	for i, check := range checks {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}

		step := i + 1
		filename := filepath.Base(check.Path)

		if check.Err != nil {
			run.Outcomes = append(run.Outcomes, UploadOutcome{
				Item:  services.UploadItem{Path: check.Path, Filename: filename},
				Error: check.Err,
			})
			run.FailedCount++
			e.sendProgress(progress, uploadFailedUpdate(step, len(checks), filename, check.Err))
			continue
		}

		item := check.Item
		e.sendProgress(progress, uploadStartUpdate(step, len(checks), item.Filename, item.Size))

		result, err := e.uploads.Upload(ctx, item, func(sent, total int64) {
			e.sendProgress(progress, uploadBytesUpdate(step, len(checks), item.Filename, sent, total))
		})

		outcome := UploadOutcome{Item: item, Result: result, Error: err}
		run.Outcomes = append(run.Outcomes, outcome)

		if err != nil {
			run.FailedCount++
			e.sendProgress(progress, uploadFailedUpdate(step, len(checks), item.Filename, err))
			continue
		}

		run.SuccessCount++
		e.sendProgress(progress, uploadDoneUpdate(step, len(checks), item.Filename, result))
	}

	return run, nil
}

// EditTags applies one tag operation to every URL in a single API call.
func (e *MediaEngine) EditTags(ctx context.Context, progress chan<- ProgressUpdate, urls []string, add bool, tags []models.TagSpec) error {
	e.sendProgress(progress, editTagsUpdate(len(urls), len(tags), add))

	if err := e.api.EditTags(ctx, urls, add, tags); err != nil {
		return err
	}

	e.sendProgress(progress, editTagsDoneUpdate(len(urls)))
	return nil
}

// DeleteFiles removes the files remotely, then purges any matching local
// upload history entries.
func (e *MediaEngine) DeleteFiles(ctx context.Context, progress chan<- ProgressUpdate, urls []string) error {
	e.sendProgress(progress, deleteUpdate(len(urls)))

	if err := e.api.DeleteFiles(ctx, urls); err != nil {
		return err
	}

	if e.history != nil {
		if err := e.history.DeleteByS3URL(urls); err != nil {
			// History is advisory; the remote delete already happened.
			e.sendProgress(progress, ProgressUpdate{
				Phase:   DeleteFilesPhase,
				Total:   len(urls),
				Message: fmt.Sprintf("warning: failed to update local history: %v", err),
			})
		}
	}

	e.sendProgress(progress, deleteDoneUpdate(len(urls)))
	return nil
}
