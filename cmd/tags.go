package main

import (
	"context"
	"fmt"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/mbb-dev/birdtag/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TagsAdd adds species tags to the given file URLs.
func (r *Runner) TagsAdd(ctx context.Context, cmd *cli.Command) error {
	return r.editTags(ctx, cmd, true)
}

// TagsRemove removes species tags from the given file URLs.
func (r *Runner) TagsRemove(ctx context.Context, cmd *cli.Command) error {
	return r.editTags(ctx, cmd, false)
}

func (r *Runner) editTags(ctx context.Context, cmd *cli.Command, add bool) error {
	urls := cmd.StringSlice("url")
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one species tag is required", shared.ErrMissingArgument)
	}

	specs := make([]models.TagSpec, 0, len(args))
	for _, arg := range args {
		spec, err := models.ParseTagSpec(arg)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	verb := "Removing"
	if add {
		verb = "Adding"
	}
	r.logger.Info("editing tags", "urls", len(urls), "tags", len(specs), "add", add)
	r.writePlain("%s %d tag(s) on %d file(s)...\n", verb, len(specs), len(urls))

	// Drain progress here so the engine goroutine never writes output.
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan error, 1)
	go func() {
		err := r.engine.EditTags(ctx, progressCh, urls, add, specs)
		close(progressCh)
		done <- err
	}()

	for update := range progressCh {
		r.writePlain("  %s\n", update.Message)
	}

	if err := <-done; err != nil {
		return err
	}

	return r.writePlain("✓ Tags updated\n")
}
