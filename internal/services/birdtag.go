package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/shared"
)

// fallbackSpecies is shown when the species endpoint is unreachable so
// tag searches remain usable offline from the API.
var fallbackSpecies = []string{"crow", "duck", "eagle", "hawk", "owl", "pigeon", "robin", "sparrow"}

// BirdTagService talks to the media search, tag editing, and deletion
// endpoints. The known species list is cached between calls.
type BirdTagService struct {
	client *Client
	cfg    shared.APIConfig
	logger *log.Logger

	mu             sync.Mutex
	species        []string
	speciesFetched time.Time
}

// NewBirdTagService creates a BirdTagService using the given client.
func NewBirdTagService(cfg shared.APIConfig, client *Client, logger *log.Logger) *BirdTagService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BirdTagService{client: client, cfg: cfg, logger: logger}
}

// Species returns the known species list. A fresh cached copy is served
// without a network call; when the endpoint fails the fallback list is
// returned and a warning logged, so the search flow never dead-ends.
func (s *BirdTagService) Species(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	if len(s.species) > 0 && time.Since(s.speciesFetched) < s.cfg.SpeciesCacheTTL() {
		cached := s.species
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	return s.fetchSpecies(ctx)
}

// RefreshSpecies discards the cached species list and fetches a new one.
func (s *BirdTagService) RefreshSpecies(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	s.species = nil
	s.mu.Unlock()

	return s.fetchSpecies(ctx)
}

func (s *BirdTagService) fetchSpecies(ctx context.Context) ([]string, error) {
	// The search endpoint with no tag parameters lists every known species.
	data, err := s.client.doJSON(ctx, http.MethodGet, s.cfg.SearchURL, nil)
	if err != nil {
		s.logger.Warn("species list unavailable, using fallback", "error", err)
		return fallbackSpecies, nil
	}

	var payload struct {
		Species []string `json:"species"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.Species) == 0 {
		s.logger.Warn("species list unavailable, using fallback")
		return fallbackSpecies, nil
	}

	species := normalizeSpecies(payload.Species)

	s.mu.Lock()
	s.species = species
	s.speciesFetched = time.Now()
	s.mu.Unlock()

	return species, nil
}

// normalizeSpecies lowercases, de-duplicates and alphabetizes a species
// list so cached names match the lowercased tag parameters.
func normalizeSpecies(names []string) []string {
	seen := make(map[string]bool, len(names))
	species := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		species = append(species, name)
	}
	sort.Strings(species)
	return species
}

// SearchTags finds files tagged with every given species. Entries that
// come back without tag information are annotated with the searched
// species at count 1.
func (s *BirdTagService) SearchTags(ctx context.Context, species []string) ([]models.SearchResult, error) {
	if len(species) == 0 {
		return nil, fmt.Errorf("%w: at least one species is required", shared.ErrMissingArgument)
	}

	params := url.Values{}
	for i, name := range species {
		params.Set("tag"+strconv.Itoa(i+1), strings.ToLower(strings.TrimSpace(name)))
	}

	results, err := s.search(ctx, params)
	if err != nil {
		return nil, err
	}

	for i := range results {
		if len(results[i].TagCounts) == 0 {
			counts := make(map[string]int, len(species))
			for _, name := range species {
				counts[strings.ToLower(strings.TrimSpace(name))] = 1
			}
			results[i].TagCounts = counts
		}
	}

	return results, nil
}

// SearchTagCounts finds files with at least the given count of each species.
func (s *BirdTagService) SearchTagCounts(ctx context.Context, specs []models.TagSpec) ([]models.SearchResult, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one species is required", shared.ErrMissingArgument)
	}

	params := url.Values{}
	for i, spec := range specs {
		n := strconv.Itoa(i + 1)
		params.Set("tag"+n, strings.ToLower(strings.TrimSpace(spec.Species)))
		params.Set("count"+n, strconv.Itoa(spec.Count))
	}

	return s.search(ctx, params)
}

// SearchThumbnail resolves a thumbnail URL to its full-size file through
// the thumbnail correlation endpoint. The input must actually be a
// thumbnail; anything else is rejected before any network traffic.
func (s *BirdTagService) SearchThumbnail(ctx context.Context, thumbnailURL string) ([]models.SearchResult, error) {
	filename := strings.ToLower(models.FilenameFromURL(thumbnailURL))
	if !strings.HasPrefix(filename, models.ThumbnailPrefix) {
		return nil, fmt.Errorf("%w: %q is not a thumbnail URL", shared.ErrInvalidInput, thumbnailURL)
	}
	if s.cfg.ThumbSearchURL == "" {
		return nil, fmt.Errorf("%w: api.thumb_search_url is not set", shared.ErrMissingConfig)
	}

	params := url.Values{}
	params.Set("turl1", filename)

	return s.searchAt(ctx, s.cfg.ThumbSearchURL, params)
}

func (s *BirdTagService) search(ctx context.Context, params url.Values) ([]models.SearchResult, error) {
	return s.searchAt(ctx, s.cfg.SearchURL, params)
}

func (s *BirdTagService) searchAt(ctx context.Context, endpoint string, params url.Values) ([]models.SearchResult, error) {
	data, err := s.client.doJSON(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	results, err := DecodeResults(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return results, nil
}

// Tag edit operations understood by the tags endpoint.
const (
	operationRemove = 0
	operationAdd    = 1
)

// EditTags adds or removes species tags on the given file URLs.
func (s *BirdTagService) EditTags(ctx context.Context, urls []string, add bool, tags []models.TagSpec) error {
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one file URL is required", shared.ErrMissingArgument)
	}
	if len(tags) == 0 {
		return fmt.Errorf("%w: at least one tag is required", shared.ErrMissingArgument)
	}

	operation := operationRemove
	if add {
		operation = operationAdd
	}

	wire := make([]string, 0, len(tags))
	for _, tag := range tags {
		wire = append(wire, tag.String())
	}

	payload := map[string]any{
		"url":       urls,
		"operation": operation,
		"tags":      wire,
	}

	_, err := s.client.doJSON(ctx, http.MethodPost, s.cfg.TagsURL, payload)
	return err
}

// DeleteFiles permanently removes the given files and their thumbnails.
func (s *BirdTagService) DeleteFiles(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one file URL is required", shared.ErrMissingArgument)
	}

	payload := map[string]any{"links": urls}

	_, err := s.client.doJSON(ctx, http.MethodPost, s.cfg.DeleteURL, payload)
	return err
}
