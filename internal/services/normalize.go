package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mbb-dev/birdtag/internal/models"
)

// The search endpoints answer in several shapes depending on which lambda
// served the request: a results array of full records, a bare links list,
// a proxy envelope with a JSON string body, or raw database items.
// DecodeResults tries each shape in order and returns the first that
// yields entries. Already-normalized input round-trips unchanged.
func DecodeResults(data []byte) ([]models.SearchResult, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var sniff any
	if err := json.Unmarshal(data, &sniff); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	var envelope struct {
		Results []models.SearchResult `json:"results"`
		Links   []string              `json:"links"`
		Body    json.RawMessage       `json:"body"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		if len(envelope.Results) > 0 {
			results := envelope.Results
			for i := range results {
				fillDerived(&results[i])
			}
			return results, nil
		}
		if len(envelope.Links) > 0 {
			results := make([]models.SearchResult, 0, len(envelope.Links))
			for _, link := range envelope.Links {
				results = append(results, resultFromURL(link))
			}
			return results, nil
		}
		if len(envelope.Body) > 0 {
			// Lambda proxy envelopes wrap the real payload in a JSON string.
			var inner string
			if err := json.Unmarshal(envelope.Body, &inner); err == nil {
				return DecodeResults([]byte(inner))
			}
			return DecodeResults(envelope.Body)
		}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		results := make([]models.SearchResult, 0, len(items))
		for _, item := range items {
			if r, ok := resultFromItem(item); ok {
				results = append(results, r)
			}
		}
		return results, nil
	}

	return nil, nil
}

// urlKeys are the field names under which database items carry their file
// location, in priority order.
var urlKeys = []string{"file_url", "thumb_url", "url", "s3Url", "s3_url", "link"}

func resultFromItem(item map[string]json.RawMessage) (models.SearchResult, bool) {
	var rawURL string
	for _, key := range urlKeys {
		if v, ok := item[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil && s != "" {
				rawURL = s
				break
			}
		}
	}
	if rawURL == "" {
		return models.SearchResult{}, false
	}

	result := resultFromURL(rawURL)

	for _, key := range []string{"id", "fileId", "file_id"} {
		if v, ok := item[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil && s != "" {
				result.ID = s
				break
			}
		}
	}

	if v, ok := item["tags"]; ok {
		var tags map[string]int
		if err := json.Unmarshal(v, &tags); err == nil {
			result.TagCounts = tags
		}
	}

	return result, true
}

// resultFromURL builds a normalized entry from a bare file URL. Thumbnail
// URLs identify themselves by filename prefix; the full-size location is
// the same key without the prefix and without the signed query string.
func resultFromURL(rawURL string) models.SearchResult {
	filename := models.FilenameFromURL(rawURL)

	result := models.SearchResult{
		ID:       filename,
		Filename: filename,
		FileType: models.DetectFileType(filename),
	}

	if strings.HasPrefix(filename, models.ThumbnailPrefix) {
		result.ThumbnailURL = rawURL
		result.FullURL = fullURLFromThumbnail(rawURL)
	} else {
		result.FullURL = rawURL
		result.DownloadURL = rawURL
	}

	return result
}

// fullURLFromThumbnail derives the original file URL from a thumbnail URL
// by stripping the query string and the filename prefix.
func fullURLFromThumbnail(rawURL string) string {
	if idx := strings.IndexByte(rawURL, '?'); idx >= 0 {
		rawURL = rawURL[:idx]
	}
	if idx := strings.LastIndexByte(rawURL, '/'); idx >= 0 {
		dir, name := rawURL[:idx+1], rawURL[idx+1:]
		return dir + strings.TrimPrefix(name, models.ThumbnailPrefix)
	}
	return strings.TrimPrefix(rawURL, models.ThumbnailPrefix)
}

func fillDerived(r *models.SearchResult) {
	if r.Filename == "" && r.FullURL != "" {
		r.Filename = models.FilenameFromURL(r.FullURL)
	}
	if r.FileType == "" {
		r.FileType = models.DetectFileType(r.Filename)
	}
	if r.ID == "" {
		r.ID = r.Filename
	}
}
