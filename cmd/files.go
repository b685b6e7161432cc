package main

import (
	"context"
	"fmt"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/mbb-dev/birdtag/internal/tasks"
	"github.com/urfave/cli/v3"
)

// FilesDelete permanently removes files from remote storage.
func (r *Runner) FilesDelete(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one file URL is required", shared.ErrMissingArgument)
	}

	r.logger.Info("deleting files", "count", len(urls))
	r.writePlain("Deleting %d file(s)...\n", len(urls))

	// Drain progress here so the engine goroutine never writes output.
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan error, 1)
	go func() {
		err := r.engine.DeleteFiles(ctx, progressCh, urls)
		close(progressCh)
		done <- err
	}()

	for update := range progressCh {
		r.writePlain("  %s\n", update.Message)
	}

	if err := <-done; err != nil {
		return err
	}

	return r.writePlain("✓ Deleted %d file(s)\n", len(urls))
}

// FilesDownload saves the given file URLs into a local directory.
func (r *Runner) FilesDownload(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one file URL is required", shared.ErrMissingArgument)
	}
	dir := cmd.String("dir")

	results := make([]models.SearchResult, 0, len(urls))
	for _, url := range urls {
		filename := models.FilenameFromURL(url)
		results = append(results, models.SearchResult{
			Filename:    filename,
			FileType:    models.DetectFileType(filename),
			DownloadURL: url,
		})
	}

	r.logger.Info("downloading files", "count", len(urls), "dir", dir)
	r.writePlain("Downloading %d file(s) to %s...\n", len(urls), dir)

	progressCh := make(chan tasks.ProgressUpdate, 10)
	type downloadDone struct {
		result *tasks.DownloadRunResult
		err    error
	}
	done := make(chan downloadDone, 1)
	go func() {
		result, err := r.engine.Download(ctx, progressCh, results, dir)
		close(progressCh)
		done <- downloadDone{result, err}
	}()

	for update := range progressCh {
		r.writePlain("  %s\n", update.Message)
	}

	finished := <-done
	result, err := finished.result, finished.err
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Download Complete")
	r.writePlain("Saved: %d  Failed: %d\n", result.SuccessCount, result.FailedCount)
	for _, outcome := range result.Outcomes {
		if outcome.Error != nil {
			r.writePlain("  ✗ %s: %v\n", outcome.Filename, outcome.Error)
		} else {
			r.writePlain("  ✓ %s (%s)\n", outcome.Path, shared.FormatFileSize(outcome.Size))
		}
	}

	return nil
}
