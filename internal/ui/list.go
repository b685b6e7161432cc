package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/mbb-dev/birdtag/internal/models"
)

var (
	_ list.Item = speciesItem{}
	_ list.Item = resultItem{}
)

// speciesItem wraps a species name to implement [list.Item].
type speciesItem struct {
	name    string
	checked bool
}

func (i speciesItem) FilterValue() string { return i.name }
func (i speciesItem) Title() string       { return checkbox(i.checked) + " " + i.name }
func (i speciesItem) Description() string {
	if i.checked {
		return "included in search"
	}
	return "press space to include"
}

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result  models.SearchResult
	checked bool
}

func (i resultItem) FilterValue() string { return i.result.Filename }
func (i resultItem) Title() string {
	name := i.result.Filename
	if name == "" {
		name = i.result.ID
	}
	return fmt.Sprintf("%s %s (%s)", checkbox(i.checked), name, i.result.FileType)
}

func (i resultItem) Description() string {
	if len(i.result.TagCounts) == 0 {
		return "no tags"
	}
	species := make([]string, 0, len(i.result.TagCounts))
	for name, count := range i.result.TagCounts {
		species = append(species, fmt.Sprintf("%s ×%d", name, count))
	}
	sort.Strings(species)
	return strings.Join(species, " • ")
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}
