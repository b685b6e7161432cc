package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/mbb-dev/birdtag/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Upload validates and uploads the given files, printing per-file progress.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one file path is required", shared.ErrMissingArgument)
	}

	r.logger.Info("starting upload", "files", len(paths))
	r.writePlain("Uploading %d file(s)...\n\n", len(paths))

	// The engine runs in the background while this goroutine owns all
	// output, so progress lines never interleave with the summary.
	progressCh := make(chan tasks.ProgressUpdate, 50)
	type uploadDone struct {
		result *tasks.UploadRunResult
		err    error
	}
	done := make(chan uploadDone, 1)
	go func() {
		result, err := r.engine.UploadAll(ctx, progressCh, paths)
		close(progressCh)
		done <- uploadDone{result, err}
	}()

	for update := range progressCh {
		switch update.Phase {
		case tasks.ValidateFiles:
			r.writePlain("📋 %s\n", update.Message)
		case tasks.UploadFiles:
			if update.Sent == 0 || update.Sent == update.Size {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}

	outcome := <-done
	result, err := outcome.result, outcome.err
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Upload Complete")
	r.writePlain("Uploaded: %d/%d\n", result.SuccessCount, result.TotalFiles)

	if result.FailedCount > 0 {
		r.writePlain("\nFailed files:\n")
		for _, outcome := range result.Outcomes {
			if outcome.Error != nil {
				r.writePlain("  - %s: %v\n", outcome.Item.Filename, outcome.Error)
			}
		}
	}

	for _, outcome := range result.Outcomes {
		if outcome.Result != nil {
			r.writePlain("  %s → %s\n", outcome.Item.Filename, outcome.Result.S3URL)
		}
	}

	return nil
}

// UploadHistory lists previously uploaded files from the local history.
func (r *Runner) UploadHistory(ctx context.Context, cmd *cli.Command) error {
	records, err := r.uploads.History()
	if err != nil {
		return fmt.Errorf("failed to read upload history: %w", err)
	}

	if cmd.Bool("json") {
		type entry struct {
			Filename string `json:"filename"`
			Size     int64  `json:"size"`
			MimeType string `json:"mimeType"`
			S3URL    string `json:"s3Url"`
			Uploaded string `json:"uploadedAt"`
		}
		entries := make([]entry, len(records))
		for i, record := range records {
			entries[i] = entry{
				Filename: record.Filename(),
				Size:     record.Size(),
				MimeType: record.MimeType(),
				S3URL:    record.S3URL(),
				Uploaded: record.CreatedAt().Format(time.RFC3339),
			}
		}
		return r.writeJSON(entries, true)
	}

	if len(records) == 0 {
		return r.writePlain("No uploads recorded yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Upload History (%d)", len(records)))
	for _, record := range records {
		r.writePlain("%s  %s  %s\n", record.Filename(), shared.FormatFileSize(record.Size()), record.CreatedAt().Format(time.RFC1123))
		if record.S3URL() != "" {
			r.writePlain("  %s\n", record.S3URL())
		}
	}

	return nil
}
