package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *BirdTagService {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := shared.APIConfig{
		SearchURL:       server.URL + "/search",
		ThumbSearchURL:  server.URL + "/search-t",
		TagsURL:         server.URL + "/tags",
		DeleteURL:       server.URL + "/delete",
		SpeciesCacheMin: 30,
	}
	logger := shared.NewLogger(io.Discard)
	client := NewClient(cfg, nil, StaticToken("test-token"), logger)
	return NewBirdTagService(cfg, client, logger)
}

func TestSpecies(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and caches", func(t *testing.T) {
		calls := 0
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if r.URL.Path != "/search" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.URL.RawQuery != "" {
				t.Errorf("species listing should carry no parameters, got %q", r.URL.RawQuery)
			}
			if r.Header.Get("Authorization") != "Bearer test-token" {
				t.Errorf("unexpected authorization header: %s", r.Header.Get("Authorization"))
			}
			w.Write([]byte(`{"species":["crow","owl"]}`))
		})

		first, err := svc.Species(ctx)
		if err != nil {
			t.Fatalf("failed to fetch species: %v", err)
		}
		second, err := svc.Species(ctx)
		if err != nil {
			t.Fatalf("failed to fetch cached species: %v", err)
		}

		if len(first) != 2 || first[0] != "crow" {
			t.Errorf("unexpected species: %v", first)
		}
		if len(second) != 2 {
			t.Errorf("unexpected cached species: %v", second)
		}
		if calls != 1 {
			t.Errorf("expected 1 API call, got %d", calls)
		}
	})

	t.Run("normalizes casing, duplicates and order", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"species":["Owl","crow","Eagle"," crow ",""]}`))
		})

		species, err := svc.Species(ctx)
		if err != nil {
			t.Fatalf("failed to fetch species: %v", err)
		}
		want := []string{"crow", "eagle", "owl"}
		if len(species) != len(want) {
			t.Fatalf("unexpected species: %v", species)
		}
		for i := range want {
			if species[i] != want[i] {
				t.Errorf("unexpected species: %v", species)
				break
			}
		}
	})

	t.Run("refresh bypasses cache", func(t *testing.T) {
		calls := 0
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"species":["crow"]}`))
		})

		if _, err := svc.Species(ctx); err != nil {
			t.Fatalf("failed to fetch species: %v", err)
		}
		if _, err := svc.RefreshSpecies(ctx); err != nil {
			t.Fatalf("failed to refresh species: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 API calls, got %d", calls)
		}
	})

	t.Run("stale cache refetches", func(t *testing.T) {
		calls := 0
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"species":["crow"]}`))
		})

		if _, err := svc.Species(ctx); err != nil {
			t.Fatalf("failed to fetch species: %v", err)
		}
		svc.mu.Lock()
		svc.speciesFetched = time.Now().Add(-time.Hour)
		svc.mu.Unlock()

		if _, err := svc.Species(ctx); err != nil {
			t.Fatalf("failed to refetch species: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 API calls, got %d", calls)
		}
	})

	t.Run("fallback on API failure", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		species, err := svc.Species(ctx)
		if err != nil {
			t.Fatalf("fallback should not error: %v", err)
		}
		if len(species) != len(fallbackSpecies) {
			t.Errorf("expected fallback list, got %v", species)
		}
	})

	t.Run("fallback is not cached", func(t *testing.T) {
		calls := 0
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"species":["crow"]}`))
		})

		if _, err := svc.Species(ctx); err != nil {
			t.Fatalf("first fetch: %v", err)
		}
		species, err := svc.Species(ctx)
		if err != nil {
			t.Fatalf("second fetch: %v", err)
		}
		if len(species) != 1 {
			t.Errorf("expected real list once the API recovers, got %v", species)
		}
	})
}

func TestSearchTags(t *testing.T) {
	ctx := context.Background()

	t.Run("builds numbered tag parameters", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("tag1") != "crow" || q.Get("tag2") != "owl" {
				t.Errorf("unexpected query: %s", r.URL.RawQuery)
			}
			w.Write([]byte(`{"links":["https://bucket/crow.jpg"]}`))
		})

		results, err := svc.SearchTags(ctx, []string{"Crow", " owl "})
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].TagCounts["crow"] != 1 || results[0].TagCounts["owl"] != 1 {
			t.Errorf("expected searched species annotated at count 1: %v", results[0].TagCounts)
		}
	})

	t.Run("keeps tag counts from rich responses", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"file_url":"https://bucket/crow.jpg","tags":{"crow":5}}]`))
		})

		results, err := svc.SearchTags(ctx, []string{"crow"})
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if results[0].TagCounts["crow"] != 5 {
			t.Errorf("server-provided counts should win: %v", results[0].TagCounts)
		}
	})

	t.Run("no species", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if _, err := svc.SearchTags(ctx, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("no session token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected without a token")
		}))
		defer server.Close()

		cfg := shared.APIConfig{SearchURL: server.URL + "/search"}
		logger := shared.NewLogger(io.Discard)
		svc := NewBirdTagService(cfg, NewClient(cfg, nil, StaticToken(""), logger), logger)

		if _, err := svc.SearchTags(ctx, []string{"crow"}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("expired session token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected with an expired token")
		}))
		defer server.Close()

		cfg := shared.APIConfig{SearchURL: server.URL + "/search"}
		logger := shared.NewLogger(io.Discard)
		token := unsignedToken(t, map[string]any{"exp": time.Now().Add(-time.Hour).Unix()})
		svc := NewBirdTagService(cfg, NewClient(cfg, nil, StaticToken(token), logger), logger)

		_, err := svc.SearchTags(ctx, []string{"crow"})
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected an expired token to read as not authenticated, got %v", err)
		}
	})
}

// unsignedToken builds an unsigned JWT with the given claims.
func unsignedToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	if err != nil {
		t.Fatalf("failed to marshal header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("failed to marshal claims: %v", err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + "."
}

func TestSearchTagCounts(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("tag1") != "crow" || q.Get("count1") != "3" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("tag2") != "owl" || q.Get("count2") != "1" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"links":["https://bucket/flock.jpg"]}`))
	})

	results, err := svc.SearchTagCounts(ctx, []models.TagSpec{
		{Species: "crow", Count: 3},
		{Species: "owl", Count: 1},
	})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "flock.jpg" {
		t.Errorf("unexpected results: %+v", results)
	}

	if _, err := svc.SearchTagCounts(ctx, nil); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestSearchThumbnail(t *testing.T) {
	ctx := context.Background()

	t.Run("sends lowercased thumbnail filename", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search-t" {
				t.Errorf("expected the thumbnail endpoint, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("turl1"); got != "thumb_crow_01.jpg" {
				t.Errorf("unexpected turl1: %s", got)
			}
			w.Write([]byte(`{"links":["https://bucket/crow_01.jpg"]}`))
		})

		results, err := svc.SearchThumbnail(ctx, "https://bucket/thumbs/Thumb_Crow_01.JPG?sig=abc")
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(results) != 1 || results[0].Filename != "crow_01.jpg" {
			t.Errorf("unexpected results: %+v", results)
		}
	})

	t.Run("rejects non-thumbnail URLs without network traffic", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := svc.SearchThumbnail(ctx, "https://bucket/crow.jpg")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("requires a configured endpoint", func(t *testing.T) {
		cfg := shared.APIConfig{SearchURL: "https://api.example.com/search"}
		logger := shared.NewLogger(io.Discard)
		svc := NewBirdTagService(cfg, NewClient(cfg, nil, StaticToken("test-token"), logger), logger)

		_, err := svc.SearchThumbnail(ctx, "https://bucket/thumbs/thumb_crow.jpg")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}

func TestEditTags(t *testing.T) {
	ctx := context.Background()

	t.Run("add operation", func(t *testing.T) {
		var got map[string]any
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/tags" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := jsonDecode(r.Body, &got); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			w.Write([]byte(`{}`))
		})

		err := svc.EditTags(ctx, []string{"https://bucket/crow.jpg"}, true, []models.TagSpec{{Species: "crow", Count: 2}})
		if err != nil {
			t.Fatalf("failed to edit tags: %v", err)
		}

		if got["operation"].(float64) != 1 {
			t.Errorf("expected operation 1, got %v", got["operation"])
		}
		tags := got["tags"].([]any)
		if len(tags) != 1 || tags[0] != "crow,2" {
			t.Errorf("unexpected tags: %v", tags)
		}
		urls := got["url"].([]any)
		if len(urls) != 1 || urls[0] != "https://bucket/crow.jpg" {
			t.Errorf("unexpected urls: %v", urls)
		}
	})

	t.Run("remove operation", func(t *testing.T) {
		var got map[string]any
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if err := jsonDecode(r.Body, &got); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			w.Write([]byte(`{}`))
		})

		err := svc.EditTags(ctx, []string{"https://bucket/crow.jpg"}, false, []models.TagSpec{{Species: "crow", Count: 1}})
		if err != nil {
			t.Fatalf("failed to edit tags: %v", err)
		}
		if got["operation"].(float64) != 0 {
			t.Errorf("expected operation 0, got %v", got["operation"])
		}
	})

	t.Run("missing arguments", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		if err := svc.EditTags(ctx, nil, true, []models.TagSpec{{Species: "crow", Count: 1}}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if err := svc.EditTags(ctx, []string{"u"}, true, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestDeleteFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("posts links payload", func(t *testing.T) {
		var got map[string]any
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/delete" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := jsonDecode(r.Body, &got); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			w.Write([]byte(`{}`))
		})

		err := svc.DeleteFiles(ctx, []string{"https://bucket/crow.jpg", "https://bucket/owl.mp4"})
		if err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		links := got["links"].([]any)
		if len(links) != 2 {
			t.Errorf("unexpected links: %v", links)
		}
	})

	t.Run("no URLs", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		if err := svc.DeleteFiles(ctx, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("API error surfaces", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		if err := svc.DeleteFiles(ctx, []string{"u"}); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("expired token maps to auth error", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "token expired", http.StatusUnauthorized)
		})
		if err := svc.DeleteFiles(ctx, []string{"u"}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func jsonDecode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
