package models

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// FileType classifies a media file by its content category.
type FileType string

const (
	FileTypeImage   FileType = "image"
	FileTypeVideo   FileType = "video"
	FileTypeAudio   FileType = "audio"
	FileTypeUnknown FileType = "unknown"
)

// ThumbnailPrefix marks S3 keys that point at generated image thumbnails.
const ThumbnailPrefix = "thumb_"

var extensionTypes = map[string]FileType{
	".jpg":  FileTypeImage,
	".jpeg": FileTypeImage,
	".png":  FileTypeImage,
	".gif":  FileTypeImage,
	".bmp":  FileTypeImage,
	".webp": FileTypeImage,
	".mp4":  FileTypeVideo,
	".mpeg": FileTypeVideo,
	".mpg":  FileTypeVideo,
	".mov":  FileTypeVideo,
	".avi":  FileTypeVideo,
	".webm": FileTypeVideo,
	".mkv":  FileTypeVideo,
	".mp3":  FileTypeAudio,
	".wav":  FileTypeAudio,
	".ogg":  FileTypeAudio,
	".flac": FileTypeAudio,
	".m4a":  FileTypeAudio,
}

// DetectFileType classifies a filename by its extension. Filenames carrying
// the thumbnail prefix are always images regardless of extension.
func DetectFileType(filename string) FileType {
	if strings.HasPrefix(filename, ThumbnailPrefix) {
		return FileTypeImage
	}
	ext := strings.ToLower(path.Ext(filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return FileTypeUnknown
}

// FilenameFromURL extracts the final path segment of a URL, dropping any
// query string.
func FilenameFromURL(rawURL string) string {
	trimmed := rawURL
	if idx := strings.IndexByte(trimmed, '?'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

// SearchResult is a normalized media file entry produced from any of the
// search API response shapes.
type SearchResult struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename"`
	FileType     FileType       `json:"fileType"`
	TagCounts    map[string]int `json:"tags,omitempty"`
	ThumbnailURL string         `json:"thumbnailUrl,omitempty"`
	FullURL      string         `json:"fullUrl,omitempty"`
	DownloadURL  string         `json:"downloadUrl,omitempty"`
}

// BestURL returns the most useful URL for viewing the file: the full-size
// URL when present, otherwise the thumbnail, otherwise the download link.
func (r SearchResult) BestURL() string {
	if r.FullURL != "" {
		return r.FullURL
	}
	if r.ThumbnailURL != "" {
		return r.ThumbnailURL
	}
	return r.DownloadURL
}

// Species returns the tagged species names in no particular order.
func (r SearchResult) Species() []string {
	names := make([]string, 0, len(r.TagCounts))
	for name := range r.TagCounts {
		names = append(names, name)
	}
	return names
}

// TagSpec is a species name paired with a minimum count, used both for
// count-constrained searches and for tag edit operations.
type TagSpec struct {
	Species string
	Count   int
}

// String renders the tag in the comma-joined wire format ("crow,2").
func (t TagSpec) String() string {
	return t.Species + "," + strconv.Itoa(t.Count)
}

// ParseTagSpec parses "species,count" into a TagSpec. A bare species name
// defaults the count to 1.
func ParseTagSpec(s string) (TagSpec, error) {
	name, count, ok := strings.Cut(s, ",")
	name = strings.TrimSpace(name)
	if name == "" {
		return TagSpec{}, fmt.Errorf("empty species name in tag %q", s)
	}
	if !ok {
		return TagSpec{Species: name, Count: 1}, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n < 1 {
		return TagSpec{}, fmt.Errorf("invalid count in tag %q", s)
	}
	return TagSpec{Species: name, Count: n}, nil
}
