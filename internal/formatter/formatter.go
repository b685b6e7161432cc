// package formatter provides functions to export search results to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// ExportToCSV converts search results to CSV format with columns: ID, Filename, Type, Tags, Thumbnail URL, Full URL
func ExportToCSV(results []models.SearchResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Filename", "Type", "Tags", "Thumbnail URL", "Full URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, result := range results {
		record := []string{
			result.ID,
			result.Filename,
			string(result.FileType),
			tagString(result.TagCounts),
			result.ThumbnailURL,
			result.FullURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts search results to a Markdown listing with an optional title
func ExportToMarkdown(results []models.SearchResult, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Search Results"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Files**: %d\n\n", len(results)))

	for i, result := range results {
		buf.WriteString(fmt.Sprintf("%d. **%s** (%s)\n", i+1, result.Filename, result.FileType))
		if tags := tagString(result.TagCounts); tags != "" {
			buf.WriteString(fmt.Sprintf("   - Tags: %s\n", tags))
		}
		if url := result.BestURL(); url != "" {
			buf.WriteString(fmt.Sprintf("   - [View](%s)\n", url))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts search results to indented JSON
func ExportToJSON(results []models.SearchResult) ([]byte, error) {
	return shared.MarshalJSON(map[string]any{"results": results}, true)
}

// ExportToText converts search results to plain text format
func ExportToText(results []models.SearchResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Files: %d\n\n", len(results)))
	for i, result := range results {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]", i+1, result.Filename, result.FileType))
		if tags := tagString(result.TagCounts); tags != "" {
			buf.WriteString(" " + tags)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// tagString renders tag counts as "crow:2, owl:1", species sorted for
// stable output.
func tagString(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}

	species := make([]string, 0, len(counts))
	for name := range counts {
		species = append(species, name)
	}
	sort.Strings(species)

	parts := make([]string, 0, len(species))
	for _, name := range species {
		parts = append(parts, name+":"+strconv.Itoa(counts[name]))
	}
	return strings.Join(parts, ", ")
}
