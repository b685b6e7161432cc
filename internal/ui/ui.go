package ui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mbb-dev/birdtag/internal/models"
	"github.com/mbb-dev/birdtag/internal/services"
	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/mbb-dev/birdtag/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SpeciesListView ViewState = iota
	ResultListView
	DetailView
	TagSpeciesView
	ConfirmDeleteView
	DownloadView
	DoneView
)

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	api            *services.BirdTagService
	engine         tasks.TagEngine
	downloadDir    string
	width          int
	height         int
	speciesList    list.Model
	species        []string
	resultList     list.Model
	results        []models.SearchResult
	detail         *models.SearchResult
	tagList        list.Model
	tagTargets     []models.SearchResult
	tagAdd         bool
	deleteTargets  []models.SearchResult
	status         string
	progressChan   chan tasks.ProgressUpdate
	progress       tasks.ProgressUpdate
	downloadResult *tasks.DownloadRunResult
	err            error
	help           help.Model
	keys           keyMap
}

type speciesFetchedMsg struct {
	species []string
	err     error
}

type resultsFetchedMsg struct {
	results []models.SearchResult
	err     error
}

type progressUpdateMsg tasks.ProgressUpdate

type tagsAppliedMsg struct {
	count int
	add   bool
	err   error
}

type filesDeletedMsg struct {
	urls []string
	err  error
}

type downloadCompleteMsg struct {
	result *tasks.DownloadRunResult
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, api *services.BirdTagService, engine tasks.TagEngine, downloadDir string) *Model {
	return &Model{
		ctx:         ctx,
		view:        SpeciesListView,
		api:         api,
		engine:      engine,
		downloadDir: downloadDir,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init initializes the TUI by fetching the known species list.
func (m *Model) Init() tea.Cmd {
	return m.fetchSpecies(false)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.speciesList.Width() == 0 {
			m.speciesList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.resultList.Width() == 0 {
			m.resultList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SpeciesListView:
			return m.handleSpeciesListKeys(msg)
		case ResultListView:
			return m.handleResultListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case TagSpeciesView:
			return m.handleTagSpeciesKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmDeleteKeys(msg)
		case DoneView:
			return m.handleDoneKeys(msg)
		}

	case speciesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.species = msg.species
		items := make([]list.Item, len(msg.species))
		for i, name := range msg.species {
			items[i] = speciesItem{name: name}
		}
		m.speciesList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.speciesList.Title = "Species"
		m.speciesList.SetSize(m.width-4, m.height-8)
		return m, nil

	case resultsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = SpeciesListView
			return m, nil
		}
		m.results = msg.results
		items := make([]list.Item, len(msg.results))
		for i, result := range msg.results {
			items[i] = resultItem{result: result}
		}
		m.resultList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.resultList.Title = fmt.Sprintf("%d matching files", len(msg.results))
		m.resultList.SetSize(m.width-4, m.height-8)
		m.view = ResultListView
		m.status = ""
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case tagsAppliedMsg:
		m.view = ResultListView
		if msg.err != nil {
			m.status = fmt.Sprintf("Tag update failed: %v", msg.err)
			return m, nil
		}
		verb := "removed from"
		if msg.add {
			verb = "added to"
		}
		m.status = fmt.Sprintf("Tags %s %d file(s)", verb, msg.count)
		return m, nil

	case filesDeletedMsg:
		m.view = ResultListView
		if msg.err != nil {
			m.status = fmt.Sprintf("Delete failed: %v", msg.err)
			return m, nil
		}
		m.removeResults(msg.urls)
		m.status = fmt.Sprintf("Deleted %d file(s)", len(msg.urls))
		return m, nil

	case downloadCompleteMsg:
		m.downloadResult = msg.result
		m.err = msg.err
		m.view = DoneView
		m.progressChan = nil
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != DoneView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SpeciesListView:
		return m.renderSpeciesList()
	case ResultListView:
		return m.renderResultList()
	case DetailView:
		return m.renderDetail()
	case TagSpeciesView:
		return m.renderTagSpecies()
	case ConfirmDeleteView:
		return m.renderConfirmDelete()
	case DownloadView:
		return m.renderDownload()
	case DoneView:
		return m.renderDone()
	default:
		return ""
	}
}

func (m *Model) handleSpeciesListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		index := m.speciesList.Index()
		if item, ok := m.speciesList.SelectedItem().(speciesItem); ok {
			item.checked = !item.checked
			return m, m.speciesList.SetItem(index, item)
		}
	case "r":
		return m, m.fetchSpecies(true)
	case "enter":
		species := m.checkedSpecies()
		if len(species) == 0 {
			if item, ok := m.speciesList.SelectedItem().(speciesItem); ok {
				species = []string{item.name}
			}
		}
		if len(species) > 0 {
			return m, m.searchSpecies(species)
		}
	}

	var cmd tea.Cmd
	m.speciesList, cmd = m.speciesList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = SpeciesListView
		m.err = nil
		return m, nil
	case " ":
		index := m.resultList.Index()
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			item.checked = !item.checked
			return m, m.resultList.SetItem(index, item)
		}
	case "enter":
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			result := item.result
			m.detail = &result
			m.view = DetailView
			m.status = ""
		}
		return m, nil
	case "o":
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			m.openResult(item.result)
		}
		return m, nil
	case "d":
		selected := m.checkedResults()
		if len(selected) == 0 {
			if item, ok := m.resultList.SelectedItem().(resultItem); ok {
				selected = []models.SearchResult{item.result}
			}
		}
		if len(selected) > 0 {
			m.view = DownloadView
			return m, m.startDownload(selected)
		}
		return m, nil
	case "a":
		return m.enterTagView(true), nil
	case "x":
		return m.enterTagView(false), nil
	case "D":
		selected := m.selectedResults()
		if len(selected) > 0 {
			m.deleteTargets = selected
			m.view = ConfirmDeleteView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

// selectedResults is the checked selection, falling back to the
// highlighted row when nothing is checked.
func (m *Model) selectedResults() []models.SearchResult {
	selected := m.checkedResults()
	if len(selected) == 0 {
		if item, ok := m.resultList.SelectedItem().(resultItem); ok {
			selected = []models.SearchResult{item.result}
		}
	}
	return selected
}

func (m *Model) enterTagView(add bool) tea.Model {
	selected := m.selectedResults()
	if len(selected) == 0 {
		return m
	}

	items := make([]list.Item, len(m.species))
	for i, name := range m.species {
		items[i] = speciesItem{name: name}
	}
	m.tagList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	if add {
		m.tagList.Title = "Add which species tags?"
	} else {
		m.tagList.Title = "Remove which species tags?"
	}
	m.tagList.SetSize(m.width-4, m.height-8)
	m.tagTargets = selected
	m.tagAdd = add
	m.view = TagSpeciesView
	m.status = ""
	return m
}

func (m *Model) handleTagSpeciesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ResultListView
		m.tagTargets = nil
		return m, nil
	case " ":
		index := m.tagList.Index()
		if item, ok := m.tagList.SelectedItem().(speciesItem); ok {
			item.checked = !item.checked
			return m, m.tagList.SetItem(index, item)
		}
	case "enter":
		var species []string
		for _, item := range m.tagList.Items() {
			if s, ok := item.(speciesItem); ok && s.checked {
				species = append(species, s.name)
			}
		}
		if len(species) == 0 {
			if item, ok := m.tagList.SelectedItem().(speciesItem); ok {
				species = []string{item.name}
			}
		}
		if len(species) > 0 {
			return m, m.applyTags(m.tagTargets, m.tagAdd, species)
		}
	}

	var cmd tea.Cmd
	m.tagList, cmd = m.tagList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y":
		return m, m.deleteFiles(m.deleteTargets)
	case "n", "q", "esc":
		m.view = ResultListView
		m.deleteTargets = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ResultListView
		m.detail = nil
		return m, nil
	case "c":
		if m.detail != nil {
			if err := clipboard.WriteAll(m.detail.BestURL()); err != nil {
				m.status = fmt.Sprintf("Copy failed: %v", err)
			} else {
				m.status = "URL copied to clipboard"
			}
		}
		return m, nil
	case "o":
		if m.detail != nil {
			m.openResult(*m.detail)
		}
		return m, nil
	case "d":
		if m.detail != nil {
			selected := []models.SearchResult{*m.detail}
			m.view = DownloadView
			return m, m.startDownload(selected)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleDoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = ResultListView
		m.downloadResult = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SpeciesListView:
		m.speciesList, cmd = m.speciesList.Update(msg)
	case ResultListView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) checkedSpecies() []string {
	var species []string
	for _, item := range m.speciesList.Items() {
		if s, ok := item.(speciesItem); ok && s.checked {
			species = append(species, s.name)
		}
	}
	return species
}

func (m *Model) checkedResults() []models.SearchResult {
	var results []models.SearchResult
	for _, item := range m.resultList.Items() {
		if r, ok := item.(resultItem); ok && r.checked {
			results = append(results, r.result)
		}
	}
	return results
}

// openResult hands the file's URL to the platform browser, which also
// covers video and audio playback.
func (m *Model) openResult(result models.SearchResult) {
	url := result.BestURL()
	if url == "" {
		m.status = "No URL available for this file"
		return
	}
	if err := shared.OpenBrowser(url); err != nil {
		m.status = fmt.Sprintf("Open failed: %v", err)
		return
	}
	m.status = "Opened in browser"
}

func (m *Model) fetchSpecies(refresh bool) tea.Cmd {
	return func() tea.Msg {
		var (
			species []string
			err     error
		)
		if refresh {
			species, err = m.api.RefreshSpecies(m.ctx)
		} else {
			species, err = m.api.Species(m.ctx)
		}
		return speciesFetchedMsg{species: species, err: err}
	}
}

func (m *Model) searchSpecies(species []string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.api.SearchTags(m.ctx, species)
		return resultsFetchedMsg{results: results, err: err}
	}
}

// applyTags runs the tag edit without a progress channel; the result
// list only needs the final outcome.
func (m *Model) applyTags(targets []models.SearchResult, add bool, species []string) tea.Cmd {
	urls := resultURLs(targets)
	specs := make([]models.TagSpec, len(species))
	for i, name := range species {
		specs[i] = models.TagSpec{Species: name, Count: 1}
	}

	return func() tea.Msg {
		err := m.engine.EditTags(m.ctx, nil, urls, add, specs)
		return tagsAppliedMsg{count: len(urls), add: add, err: err}
	}
}

func (m *Model) deleteFiles(targets []models.SearchResult) tea.Cmd {
	urls := resultURLs(targets)
	return func() tea.Msg {
		err := m.engine.DeleteFiles(m.ctx, nil, urls)
		return filesDeletedMsg{urls: urls, err: err}
	}
}

func resultURLs(results []models.SearchResult) []string {
	urls := make([]string, 0, len(results))
	for _, result := range results {
		if url := result.BestURL(); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

// removeResults drops the deleted files from the result list.
func (m *Model) removeResults(urls []string) {
	deleted := make(map[string]bool, len(urls))
	for _, url := range urls {
		deleted[url] = true
	}

	kept := m.results[:0]
	for _, result := range m.results {
		if !deleted[result.BestURL()] {
			kept = append(kept, result)
		}
	}
	m.results = kept
	m.deleteTargets = nil

	items := make([]list.Item, len(kept))
	for i, result := range kept {
		items[i] = resultItem{result: result}
	}
	m.resultList.SetItems(items)
	m.resultList.Title = fmt.Sprintf("%d matching files", len(kept))
}

func (m *Model) startDownload(selected []models.SearchResult) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func(progress chan tasks.ProgressUpdate) {
		result, err := m.engine.Download(m.ctx, progress, selected, m.downloadDir)
		m.downloadResult = result
		m.err = err
		close(progress)
	}(m.progressChan)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return downloadCompleteMsg{result: m.downloadResult, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return downloadCompleteMsg{result: m.downloadResult, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSpeciesList() string {
	searchKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	helpKeys := []key.Binding{m.keys.toggle, searchKey, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.speciesList.View(), helpView)
}

func (m *Model) renderResultList() string {
	detailKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "detail"))
	helpKeys := []key.Binding{m.keys.toggle, detailKey, m.keys.download, m.keys.open, m.keys.addTags, m.keys.removeTags, m.keys.del, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	bar := ""
	if count := len(m.checkedResults()); count > 0 {
		bar = styles.ok.Render(fmt.Sprintf("%d files selected", count)) + "\n"
	}
	if m.status != "" {
		bar += styles.warn.Render(m.status) + "\n"
	}

	return fmt.Sprintf("%s\n%s\n%s", m.resultList.View(), bar, helpView)
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}

	title := styles.title.Render(m.detail.Filename)
	info := fmt.Sprintf("\nType: %s\nID: %s\n", m.detail.FileType, m.detail.ID)
	if m.detail.ThumbnailURL != "" {
		info += fmt.Sprintf("Thumbnail: %s\n", m.detail.ThumbnailURL)
	}
	if m.detail.FullURL != "" {
		info += fmt.Sprintf("Full size: %s\n", m.detail.FullURL)
	}
	for _, species := range m.detail.Species() {
		info += fmt.Sprintf("  • %s ×%d\n", species, m.detail.TagCounts[species])
	}

	status := ""
	if m.status != "" {
		status = "\n" + styles.warn.Render(m.status) + "\n"
	}

	helpKeys := []key.Binding{m.keys.copyURL, m.keys.open, m.keys.download, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s", title, info, status, helpView)
}

func (m *Model) renderTagSpecies() string {
	applyKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply"))
	helpKeys := []key.Binding{m.keys.toggle, applyKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	bar := styles.help.Render(fmt.Sprintf("%d file(s) selected", len(m.tagTargets)))
	return fmt.Sprintf("%s\n%s\n\n%s", m.tagList.View(), bar, helpView)
}

func (m *Model) renderConfirmDelete() string {
	title := styles.err.Render("Delete Files")
	prompt := fmt.Sprintf("\nPermanently delete %d file(s)? This cannot be undone.\n", len(m.deleteTargets))

	var names string
	for _, result := range m.deleteTargets {
		names += fmt.Sprintf("  • %s\n", result.Filename)
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, prompt, names, styles.help.Render("y confirm • n cancel"))
}

func (m *Model) renderDownload() string {
	title := styles.title.Render("Downloading Files")

	var phase string
	switch m.progress.Phase {
	case tasks.DownloadFiles:
		phase = fmt.Sprintf("Downloading (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderDone() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Download failed: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.downloadResult == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Download Complete")
	info := fmt.Sprintf(
		"\nSaved to: %s\nSucceeded: %d\nFailed: %d\n",
		m.downloadDir,
		m.downloadResult.SuccessCount,
		m.downloadResult.FailedCount,
	)

	var failed string
	if m.downloadResult.FailedCount > 0 {
		failed = "\n" + styles.warn.Render("Failed files:")
		for _, outcome := range m.downloadResult.Outcomes {
			if outcome.Error != nil {
				failed += fmt.Sprintf("\n  • %s: %v", outcome.Filename, outcome.Error)
			}
		}
		failed += "\n"
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s%s\n%s", title, info, failed, helpView)
}
