package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbb-dev/birdtag/internal/repositories"
	"github.com/mbb-dev/birdtag/internal/shared"
	tu "github.com/mbb-dev/birdtag/internal/testing"
)

func newUploadService(t *testing.T, handler http.HandlerFunc, withHistory bool) *UploadService {
	t.Helper()

	var url string
	if handler != nil {
		server := httptest.NewServer(handler)
		t.Cleanup(server.Close)
		url = server.URL + "/upload"
	}

	api := shared.APIConfig{UploadURL: url}
	cfg := shared.UploadConfig{MaxSizeMB: 1}
	logger := shared.NewLogger(io.Discard)
	client := NewClient(api, nil, StaticToken("test-token"), logger)

	var history *repositories.UploadRepository
	if withHistory {
		history = repositories.NewUploadRepository(tu.MustOpenDB(t))
	}

	return NewUploadService(api, cfg, client, history, logger)
}

func TestHandleFiles(t *testing.T) {
	svc := newUploadService(t, nil, false)
	dir := t.TempDir()

	// checkOne validates a single path and returns its outcome.
	checkOne := func(t *testing.T, path string) FileCheck {
		t.Helper()
		checks, err := svc.HandleFiles([]string{path})
		if err != nil {
			t.Fatalf("failed to validate: %v", err)
		}
		if len(checks) != 1 {
			t.Fatalf("expected 1 outcome, got %d", len(checks))
		}
		return checks[0]
	}

	t.Run("accepts valid media files", func(t *testing.T) {
		jpg := tu.MustWriteFile(t, dir, "crow.jpg", bytes.Repeat([]byte("x"), 100))
		wav := tu.MustWriteFile(t, dir, "dawn.WAV", bytes.Repeat([]byte("x"), 200))

		checks, err := svc.HandleFiles([]string{jpg, wav})
		if err != nil {
			t.Fatalf("failed to validate files: %v", err)
		}
		if len(checks) != 2 {
			t.Fatalf("expected 2 outcomes, got %d", len(checks))
		}
		for _, check := range checks {
			if check.Err != nil {
				t.Fatalf("unexpected validation error for %s: %v", check.Path, check.Err)
			}
		}
		if checks[0].Item.MimeType != "image/jpeg" {
			t.Errorf("unexpected mime type: %s", checks[0].Item.MimeType)
		}
		if checks[1].Item.MimeType != "audio/wav" {
			t.Errorf("extension matching should ignore case: %s", checks[1].Item.MimeType)
		}
		if checks[0].Item.Filename != "crow.jpg" || checks[0].Item.Size != 100 {
			t.Errorf("unexpected item: %+v", checks[0].Item)
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		txt := tu.MustWriteFile(t, dir, "notes.txt", []byte("notes"))

		if check := checkOne(t, txt); !errors.Is(check.Err, shared.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", check.Err)
		}
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		big := tu.MustWriteFile(t, dir, "big.jpg", bytes.Repeat([]byte("x"), 2<<20))

		if check := checkOne(t, big); !errors.Is(check.Err, shared.ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", check.Err)
		}
	})

	t.Run("rejects empty file", func(t *testing.T) {
		empty := tu.MustWriteFile(t, dir, "empty.jpg", nil)

		if check := checkOne(t, empty); !errors.Is(check.Err, shared.ErrEmptyFile) {
			t.Errorf("expected ErrEmptyFile, got %v", check.Err)
		}
	})

	t.Run("rejects missing file", func(t *testing.T) {
		if check := checkOne(t, dir+"/ghost.jpg"); !errors.Is(check.Err, shared.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", check.Err)
		}
	})

	t.Run("one bad file does not block the rest", func(t *testing.T) {
		good := tu.MustWriteFile(t, dir, "good.png", []byte("png"))
		bad := tu.MustWriteFile(t, dir, "bad.exe", []byte("exe"))

		checks, err := svc.HandleFiles([]string{good, bad})
		if err != nil {
			t.Fatalf("failed to validate files: %v", err)
		}
		if len(checks) != 2 {
			t.Fatalf("expected 2 outcomes, got %d", len(checks))
		}
		if checks[0].Err != nil {
			t.Errorf("valid file should pass despite the invalid one: %v", checks[0].Err)
		}
		if !errors.Is(checks[1].Err, shared.ErrUnsupportedType) {
			t.Errorf("expected ErrUnsupportedType, got %v", checks[1].Err)
		}
	})

	t.Run("no files", func(t *testing.T) {
		if _, err := svc.HandleFiles(nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("streams bytes and records history", func(t *testing.T) {
		content := bytes.Repeat([]byte("x"), 1000)
		svc := newUploadService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "image/jpeg" {
				t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
			}
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("unexpected authorization: %s", r.Header.Get("Authorization"))
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				t.Errorf("failed to read body: %v", err)
			}
			if !bytes.Equal(body, content) {
				t.Errorf("body does not match file content: %d bytes", len(body))
			}

			w.Write([]byte(`{"s3Url":"https://bucket/crow.jpg","s3Key":"crow.jpg","fileId":"f-1"}`))
		}, true)

		path := tu.MustWriteFile(t, t.TempDir(), "crow.jpg", content)
		checks, err := svc.HandleFiles([]string{path})
		if err != nil || checks[0].Err != nil {
			t.Fatalf("failed to validate: %v %v", err, checks[0].Err)
		}

		var lastSent, lastTotal int64
		result, err := svc.Upload(ctx, checks[0].Item, func(sent, total int64) {
			if sent < lastSent {
				t.Errorf("progress went backwards: %d after %d", sent, lastSent)
			}
			lastSent, lastTotal = sent, total
		})
		if err != nil {
			t.Fatalf("failed to upload: %v", err)
		}

		if result.FileID != "f-1" || result.S3URL != "https://bucket/crow.jpg" {
			t.Errorf("unexpected result: %+v", result)
		}
		if lastSent != 1000 || lastTotal != 1000 {
			t.Errorf("expected progress to reach 1000/1000, got %d/%d", lastSent, lastTotal)
		}

		records, err := svc.History()
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(records) != 1 || records[0].FileID() != "f-1" {
			t.Errorf("expected upload in history: %+v", records)
		}
	})

	t.Run("nil progress is fine", func(t *testing.T) {
		svc := newUploadService(t, func(w http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			w.Write([]byte(`{"s3Url":"u","s3Key":"k","fileId":"f"}`))
		}, false)

		path := tu.MustWriteFile(t, t.TempDir(), "crow.jpg", []byte("data"))
		checks, err := svc.HandleFiles([]string{path})
		if err != nil || checks[0].Err != nil {
			t.Fatalf("failed to validate: %v %v", err, checks[0].Err)
		}
		if _, err := svc.Upload(ctx, checks[0].Item, nil); err != nil {
			t.Fatalf("failed to upload: %v", err)
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		svc := newUploadService(t, func(w http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			http.Error(w, "bucket unavailable", http.StatusServiceUnavailable)
		}, false)

		path := tu.MustWriteFile(t, t.TempDir(), "crow.jpg", []byte("data"))
		checks, err := svc.HandleFiles([]string{path})
		if err != nil || checks[0].Err != nil {
			t.Fatalf("failed to validate: %v %v", err, checks[0].Err)
		}
		if _, err := svc.Upload(ctx, checks[0].Item, nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("non-JSON response is an error", func(t *testing.T) {
		svc := newUploadService(t, func(w http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			w.Write([]byte("ok"))
		}, false)

		path := tu.MustWriteFile(t, t.TempDir(), "crow.jpg", []byte("data"))
		checks, err := svc.HandleFiles([]string{path})
		if err != nil || checks[0].Err != nil {
			t.Fatalf("failed to validate: %v %v", err, checks[0].Err)
		}
		if _, err := svc.Upload(ctx, checks[0].Item, nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
