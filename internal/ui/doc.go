// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing tagged media:
//  1. [SpeciesListView] : Browse detected species and build a tag query
//  2. [ResultListView] : Multi-select matching files with space
//  3. [DetailView] : Inspect a single file and copy its URL
//  4. [DownloadView] : Monitor real-time download progress
//  5. [DoneView] : Display per-file download outcomes
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the media engine, providing non-blocking status reporting during downloads.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
