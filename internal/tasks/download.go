package tasks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// Download fetches each result's file into dir. File URLs are presigned,
// so requests carry no Authorization header. Failures are recorded per
// file and the batch continues.
func (e *MediaEngine) Download(ctx context.Context, progress chan<- ProgressUpdate, results []models.SearchResult, dir string) (*DownloadRunResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: nothing selected to download", shared.ErrMissingArgument)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	run := &DownloadRunResult{}
	for i, result := range results {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}

		step := i + 1
		filename := result.Filename
		if filename == "" {
			filename = shared.GenerateID()
		}

		e.sendProgress(progress, downloadStartUpdate(step, len(results), filename))

		outcome := e.downloadOne(ctx, result, dir, filename)
		run.Outcomes = append(run.Outcomes, outcome)

		if outcome.Error != nil {
			run.FailedCount++
			e.sendProgress(progress, downloadFailedUpdate(step, len(results), filename, outcome.Error))
			continue
		}

		run.SuccessCount++
		e.sendProgress(progress, downloadDoneUpdate(step, len(results), filename, outcome.Size))
	}

	return run, nil
}

func (e *MediaEngine) downloadOne(ctx context.Context, result models.SearchResult, dir, filename string) DownloadOutcome {
	outcome := DownloadOutcome{Filename: filename}

	url := result.DownloadURL
	if url == "" {
		url = result.BestURL()
	}
	if url == "" {
		outcome.Error = fmt.Errorf("%w: no URL for %s", shared.ErrFileNotFound, filename)
		return outcome
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		outcome.Error = fmt.Errorf("failed to create request: %w", err)
		return outcome
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		outcome.Error = fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		return outcome
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome.Error = fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
		return outcome
	}

	path := filepath.Join(dir, filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		outcome.Error = fmt.Errorf("failed to create %s: %w", path, err)
		return outcome
	}

	size, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err != nil {
		os.Remove(path)
		outcome.Error = fmt.Errorf("failed to write %s: %w", path, err)
		return outcome
	}
	if closeErr != nil {
		os.Remove(path)
		outcome.Error = fmt.Errorf("failed to write %s: %w", path, closeErr)
		return outcome
	}

	outcome.Path = path
	outcome.Size = size
	return outcome
}
