package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
	tu "github.com/mbb-dev/birdtag/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			db := tu.MustOpenDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				DB:         db,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.db != db {
				t.Error("expected db to be set")
			}
			if runner.api == nil || runner.uploads == nil || runner.settings == nil {
				t.Error("expected services to be constructed")
			}
			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
			if runner.sessions == nil {
				t.Error("expected session store to be constructed")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("requireGateway", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		err := runner.requireGateway()
		if err == nil {
			t.Fatal("expected error without gateway")
		}
		if !strings.Contains(err.Error(), "client_id") {
			t.Errorf("expected client_id hint in error, got %v", err)
		}
	})
}

func TestAuthStatus(t *testing.T) {
	t.Run("reports logged out with empty session", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{DB: tu.MustOpenDB(t), Output: output})

		if err := runner.AuthStatus(context.Background(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Not logged in") {
			t.Errorf("expected logged out message, got %q", output.String())
		}
	})

	t.Run("reports active session with expiry", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{DB: tu.MustOpenDB(t), Output: output})

		tokens := models.Tokens{
			IDToken:     "id-token",
			AccessToken: "access-token",
			ExpiresAt:   time.Now().Add(time.Hour),
		}
		user := models.User{Email: "finch@example.com", GivenName: "Darwin"}
		if err := runner.sessions.SetSession(tokens, user); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}

		if err := runner.AuthStatus(context.Background(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Darwin") {
			t.Errorf("expected user name in output, got %q", result)
		}
		if !strings.Contains(result, "Active until") {
			t.Errorf("expected active session message, got %q", result)
		}
	})

	t.Run("reports expired session", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{DB: tu.MustOpenDB(t), Output: output})

		tokens := models.Tokens{
			IDToken:     "id-token",
			AccessToken: "access-token",
			ExpiresAt:   time.Now().Add(-time.Hour),
		}
		user := models.User{Email: "finch@example.com", GivenName: "Darwin"}
		if err := runner.sessions.SetSession(tokens, user); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}

		if err := runner.AuthStatus(context.Background(), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Expired") {
			t.Errorf("expected expired message, got %q", output.String())
		}
	})
}

func TestEmitResults(t *testing.T) {
	results := []models.SearchResult{
		{
			ID:        "file-1",
			Filename:  "crow.jpg",
			FileType:  models.FileTypeImage,
			TagCounts: map[string]int{"crow": 2},
			FullURL:   "https://example.com/crow.jpg",
		},
	}

	t.Run("renders text by default", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.emitResults(results, "Results", "text", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "crow.jpg") {
			t.Errorf("expected filename in output, got %q", output.String())
		}
	})

	t.Run("renders json", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.emitResults(results, "Results", "json", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"crow.jpg"`) {
			t.Errorf("expected JSON output, got %q", output.String())
		}
	})

	t.Run("renders csv", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.emitResults(results, "Results", "csv", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Filename") {
			t.Errorf("expected CSV header, got %q", output.String())
		}
	})

	t.Run("renders markdown", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.emitResults(results, "Results", "markdown", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "# Results") {
			t.Errorf("expected markdown title, got %q", output.String())
		}
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		err := runner.emitResults(results, "Results", "yaml", "")
		if err == nil {
			t.Fatal("expected error for unknown format")
		}
	})

	t.Run("writes to file when output path given", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		path := filepath.Join(t.TempDir(), "results.csv")

		if err := runner.emitResults(results, "Results", "csv", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected confirmation with path, got %q", output.String())
		}
	})

	t.Run("reports empty result set", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.emitResults(nil, "Results", "text", ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "No matching files") {
			t.Errorf("expected empty message, got %q", output.String())
		}
	})
}
