package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/repositories"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// acceptedMimeTypes lists the content types the upload endpoint accepts,
// keyed by file extension.
var acceptedMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

// UploadItem is a local file that passed validation and is ready to send.
type UploadItem struct {
	Path     string
	Filename string
	Size     int64
	MimeType string
}

// UploadResult is the storage location assigned to an uploaded file.
type UploadResult struct {
	S3URL  string `json:"s3Url"`
	S3Key  string `json:"s3Key"`
	FileID string `json:"fileId"`
}

// ProgressFunc receives byte counts as an upload streams. total is the
// file size; sent grows monotonically until it reaches total.
type ProgressFunc func(sent, total int64)

// UploadService validates local media files and streams them to the
// upload endpoint, recording successful uploads in the local history.
type UploadService struct {
	client  *Client
	cfg     shared.UploadConfig
	api     shared.APIConfig
	history *repositories.UploadRepository
	logger  *log.Logger
}

// NewUploadService creates an UploadService. history may be nil, in which
// case uploads are not recorded locally.
func NewUploadService(api shared.APIConfig, cfg shared.UploadConfig, client *Client, history *repositories.UploadRepository, logger *log.Logger) *UploadService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &UploadService{client: client, cfg: cfg, api: api, history: history, logger: logger}
}

// FileCheck is the validation outcome for a single path.
type FileCheck struct {
	Path string
	Item UploadItem // Zero value when Err is set
	Err  error
}

// HandleFiles validates the given paths. Every file must exist, be
// non-empty, carry an accepted media extension, and fit under the size
// ceiling. Each path gets its own outcome; an invalid file does not
// block the rest of the batch. No network traffic happens here.
func (s *UploadService) HandleFiles(paths []string) ([]FileCheck, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", shared.ErrMissingArgument)
	}

	checks := make([]FileCheck, 0, len(paths))
	for _, path := range paths {
		item, err := s.inspect(path)
		checks = append(checks, FileCheck{Path: path, Item: item, Err: err})
	}

	return checks, nil
}

// inspect validates one path and builds its UploadItem.
func (s *UploadService) inspect(path string) (UploadItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return UploadItem{}, fmt.Errorf("%w: %s", shared.ErrFileNotFound, path)
	}
	if info.IsDir() {
		return UploadItem{}, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, path)
	}
	if info.Size() == 0 {
		return UploadItem{}, fmt.Errorf("%w: %s", shared.ErrEmptyFile, path)
	}
	if info.Size() > s.cfg.MaxSize() {
		return UploadItem{}, fmt.Errorf("%w: %s is %s, limit is %s", shared.ErrFileTooLarge,
			path, shared.FormatFileSize(info.Size()), shared.FormatFileSize(s.cfg.MaxSize()))
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := acceptedMimeTypes[ext]
	if !ok {
		return UploadItem{}, fmt.Errorf("%w: %s", shared.ErrUnsupportedType, path)
	}

	return UploadItem{
		Path:     path,
		Filename: filepath.Base(path),
		Size:     info.Size(),
		MimeType: mimeType,
	}, nil
}

// Upload streams a validated file to the upload endpoint. progress may be
// nil. On success the upload is appended to the local history.
func (s *UploadService) Upload(ctx context.Context, item UploadItem, progress ProgressFunc) (*UploadResult, error) {
	f, err := os.Open(item.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrFileNotFound, item.Path)
	}
	defer f.Close()

	body := &progressReader{r: f, total: item.Size, report: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.api.UploadURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.ContentLength = item.Size

	contentType := item.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Filename", item.Filename)

	if err := s.client.authorize(req); err != nil {
		return nil, err
	}

	data, err := s.client.send(req)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: unexpected upload response: %v", shared.ErrAPIRequest, err)
	}

	s.record(item, result)
	s.logger.Info("uploaded", "file", item.Filename, "size", shared.FormatFileSize(item.Size))

	return &result, nil
}

// record appends the upload to the local history. History is advisory, a
// failed write does not fail the upload.
func (s *UploadService) record(item UploadItem, result UploadResult) {
	if s.history == nil {
		return
	}

	fileID := result.FileID
	if fileID == "" {
		fileID = shared.GenerateID()
	}

	record := models.NewUploadRecord(0, fileID, item.Filename, item.Size, item.MimeType, result.S3URL, result.S3Key)
	if err := s.history.Create(record); err != nil {
		s.logger.Warn("failed to record upload history", "error", err)
	}
}

// History lists previously recorded uploads, newest first.
func (s *UploadService) History() ([]*models.UploadRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(nil)
}

// progressReader counts bytes as the HTTP transport drains the file.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.report != nil {
			p.report(p.sent, p.total)
		}
	}
	return n, err
}
