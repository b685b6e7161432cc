package tasks

import (
	"fmt"

	"github.com/mbb-dev/birdtag/internal/shared"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Sent    int64  // Bytes transferred for the current file, when applicable
	Size    int64  // Size of the current file, when applicable
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ValidateFiles Phase = iota
	UploadFiles
	EditTagsPhase
	DeleteFilesPhase
	DownloadFiles
)

func (p Phase) String() string {
	switch p {
	case ValidateFiles:
		return "validate"
	case UploadFiles:
		return "upload"
	case EditTagsPhase:
		return "edit_tags"
	case DeleteFilesPhase:
		return "delete"
	case DownloadFiles:
		return "download"
	default:
		return ""
	}
}

func validateUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidateFiles,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Validating %d file(s)...", total),
	}
}

func uploadStartUpdate(step, total int, filename string, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Size:    size,
		Message: fmt.Sprintf("[%d/%d] Uploading %s (%s)...", step, total, filename, shared.FormatFileSize(size)),
	}
}

func uploadBytesUpdate(step, total int, filename string, sent, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Sent:    sent,
		Size:    size,
		Message: fmt.Sprintf("[%d/%d] %s: %s of %s", step, total, filename, shared.FormatFileSize(sent), shared.FormatFileSize(size)),
	}
}

func uploadDoneUpdate(step, total int, filename string, result any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, filename),
		Data:    result,
	}
}

func uploadFailedUpdate(step, total int, filename string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filename, err),
	}
}

func editTagsUpdate(fileCount, tagCount int, add bool) ProgressUpdate {
	verb := "Removing"
	if add {
		verb = "Adding"
	}
	return ProgressUpdate{
		Phase:   EditTagsPhase,
		Step:    0,
		Total:   fileCount,
		Message: fmt.Sprintf("%s %d tag(s) on %d file(s)...", verb, tagCount, fileCount),
	}
}

func editTagsDoneUpdate(fileCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EditTagsPhase,
		Step:    fileCount,
		Total:   fileCount,
		Message: fmt.Sprintf("✓ Updated tags on %d file(s)", fileCount),
	}
}

func deleteUpdate(fileCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteFilesPhase,
		Step:    0,
		Total:   fileCount,
		Message: fmt.Sprintf("Deleting %d file(s)...", fileCount),
	}
}

func deleteDoneUpdate(fileCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DeleteFilesPhase,
		Step:    fileCount,
		Total:   fileCount,
		Message: fmt.Sprintf("✓ Deleted %d file(s)", fileCount),
	}
}

func downloadStartUpdate(step, total int, filename string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading %s...", step, total, filename),
	}
}

func downloadDoneUpdate(step, total int, filename string, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadFiles,
		Step:    step,
		Total:   total,
		Size:    size,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, filename, shared.FormatFileSize(size)),
	}
}

func downloadFailedUpdate(step, total int, filename string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, filename, err),
	}
}
