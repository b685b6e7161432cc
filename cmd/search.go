package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mbb-dev/birdtag/internal/formatter"
	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/urfave/cli/v3"
)

// SearchTags finds files tagged with every given species.
func (r *Runner) SearchTags(ctx context.Context, cmd *cli.Command) error {
	species := cmd.Args().Slice()
	if len(species) == 0 {
		return fmt.Errorf("%w: at least one species is required", shared.ErrMissingArgument)
	}

	r.logger.Info("searching by tags", "species", species)
	results, err := r.api.SearchTags(ctx, species)
	if err != nil {
		return err
	}

	return r.emitResults(results, "Search Results", cmd.String("format"), cmd.String("output"))
}

// SearchCounts finds files with at least the given count per species.
func (r *Runner) SearchCounts(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: at least one species,count pair is required", shared.ErrMissingArgument)
	}

	specs := make([]models.TagSpec, 0, len(args))
	for _, arg := range args {
		spec, err := models.ParseTagSpec(arg)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	r.logger.Info("searching by tag counts", "specs", len(specs))
	results, err := r.api.SearchTagCounts(ctx, specs)
	if err != nil {
		return err
	}

	return r.emitResults(results, "Search Results", cmd.String("format"), cmd.String("output"))
}

// SearchThumbnail resolves a thumbnail URL to its full-size counterpart.
func (r *Runner) SearchThumbnail(ctx context.Context, cmd *cli.Command) error {
	thumbnailURL := cmd.Args().First()
	if thumbnailURL == "" {
		return fmt.Errorf("%w: a thumbnail URL is required", shared.ErrMissingArgument)
	}

	results, err := r.api.SearchThumbnail(ctx, thumbnailURL)
	if err != nil {
		return err
	}

	return r.emitResults(results, "Thumbnail Lookup", cmd.String("format"), cmd.String("output"))
}

// SearchSpecies lists the species the tagging model can detect.
func (r *Runner) SearchSpecies(ctx context.Context, cmd *cli.Command) error {
	var (
		species []string
		err     error
	)
	if cmd.Bool("refresh") {
		species, err = r.api.RefreshSpecies(ctx)
	} else {
		species, err = r.api.Species(ctx)
	}
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Known Species (%d)", len(species)))
	for _, name := range species {
		r.writePlain("  • %s\n", name)
	}
	return nil
}

// emitResults renders search results in the requested format, either to
// the runner's output or to a file.
func (r *Runner) emitResults(results []models.SearchResult, title, format, outputPath string) error {
	if len(results) == 0 {
		return r.writePlain("No matching files found.\n")
	}

	var (
		rendered []byte
		err      error
	)
	switch format {
	case "csv":
		rendered, err = formatter.ExportToCSV(results)
	case "markdown", "md":
		rendered, err = formatter.ExportToMarkdown(results, title)
	case "json":
		rendered, err = formatter.ExportToJSON(results)
	case "text", "":
		rendered, err = formatter.ExportToText(results)
	default:
		return fmt.Errorf("%w: unknown format '%s'", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, rendered, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return r.writePlain("✓ Wrote %d result(s) to %s\n", len(results), outputPath)
	}

	return r.writePlain("%s", rendered)
}
