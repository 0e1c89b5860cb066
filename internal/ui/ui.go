package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	FavoritesView
	PlaylistsView
	PlaylistItemsView
	PickerView
	NameView
	ConfirmView
)

// Options configures playlist exports started from the TUI.
type Options struct {
	ExportFormat formatter.Format
	ExportDir    string // empty lets the engine pick crate_export_{epoch}
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	engine *tasks.Engine
	opts   Options
	view   ViewState
	kind   models.Kind
	width  int
	height int

	input     textinput.Model
	nameInput textinput.Model
	results   list.Model
	favorites list.Model
	playlists list.Model
	items     list.Model
	picker    list.Model

	found        []models.CatalogItem
	searchSeq    int
	pending      models.CatalogItem // item waiting for a playlist choice
	returnTo     ViewState          // view restored when the picker closes
	nameReturn   ViewState          // view restored when the name input closes
	openPlaylist string
	confirmID    string
	confirmName  string

	exporting    bool
	progressChan <-chan tasks.ProgressUpdate
	exportDone   func() tea.Msg

	status tasks.Status
	help   help.Model
	keys   keyMap
	now    func() time.Time
}

// NewModel creates a new TUI model over one engine session.
func NewModel(ctx context.Context, engine *tasks.Engine, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Search the catalog"
	input.Prompt = "› "
	input.CharLimit = 200
	input.Focus()

	nameInput := textinput.New()
	nameInput.Placeholder = "Playlist name"
	nameInput.Prompt = "› "
	nameInput.CharLimit = 100

	if opts.ExportFormat == "" {
		opts.ExportFormat = formatter.FormatJSON
	}

	return &Model{
		ctx:       ctx,
		engine:    engine,
		opts:      opts,
		view:      SearchView,
		kind:      models.KindTrack,
		input:     input,
		nameInput: nameInput,
		results:   newList("Results", "result", "results"),
		favorites: newList("Favorites", "favorite", "favorites"),
		playlists: newList("Playlists", "playlist", "playlists"),
		items:     newList("Playlist", "item", "items"),
		picker:    newList("Add to playlist", "playlist", "playlists"),
		status:    tasks.Status{Level: tasks.LevelInfo, Message: "Type a query and press enter"},
		help:      help.New(),
		keys:      newKeyMap(),
		now:       time.Now,
	}
}

// Init starts the cursor blink of the search input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}

		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case FavoritesView:
			return m.handleFavoritesKeys(msg)
		case PlaylistsView:
			return m.handlePlaylistsKeys(msg)
		case PlaylistItemsView:
			return m.handleItemsKeys(msg)
		case PickerView:
			return m.handlePickerKeys(msg)
		case NameView:
			return m.handleNameKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SearchView:
		body = m.renderSearch()
	case FavoritesView:
		body = m.favorites.View()
	case PlaylistsView:
		body = m.playlists.View()
	case PlaylistItemsView:
		body = m.items.View()
	case PickerView:
		body = m.picker.View()
	case NameView:
		body = m.renderName()
	case ConfirmView:
		body = m.renderConfirm()
	}

	sections := []string{m.renderHeader(), body}
	if m.exporting {
		sections = append(sections, styles.help.Render(fmt.Sprintf("Exporting %s...", m.opts.ExportFormat)))
	}
	sections = append(sections, styles.Status(m.status), m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.enter):
			return m, m.runSearch()
		case key.Matches(msg, m.keys.kind):
			m.kind = m.kind.Next()
			return m, nil
		case key.Matches(msg, m.keys.back):
			m.input.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.kind):
		m.kind = m.kind.Next()
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		return m, m.runSearch()
	case key.Matches(msg, m.keys.favorite):
		if it, ok := selectedCard(m.results); ok {
			return m, m.toggleFavorite(it.item)
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		if it, ok := selectedCard(m.results); ok {
			m.openPicker(it.item, SearchView)
		}
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		m.showFavorites()
		return m, nil
	case key.Matches(msg, m.keys.playlists):
		m.showPlaylists()
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.search):
		m.showSearch()
		return m, nil
	case key.Matches(msg, m.keys.playlists):
		m.showPlaylists()
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if it, ok := selectedCard(m.favorites); ok {
			title, err := m.engine.RemoveFavorite(it.item.Key())
			m.status = tasks.StatusFor(err, fmt.Sprintf("Removed %q from favorites", title))
			m.refreshFavorites()
			m.refreshResults()
		}
		return m, nil
	case key.Matches(msg, m.keys.add):
		if it, ok := selectedCard(m.favorites); ok {
			m.openPicker(it.item, FavoritesView)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.favorites, cmd = m.favorites.Update(msg)
	return m, cmd
}

func (m *Model) handlePlaylistsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.search):
		m.showSearch()
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		m.showFavorites()
		return m, nil
	case key.Matches(msg, m.keys.create):
		return m, m.openNameInput(PlaylistsView)
	case key.Matches(msg, m.keys.enter):
		if it, ok := selectedPlaylist(m.playlists); ok {
			m.openPlaylist = it.playlist.ID
			m.refreshItems()
			m.view = PlaylistItemsView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if it, ok := selectedPlaylist(m.playlists); ok {
			m.confirmID = it.playlist.ID
			m.confirmName = it.playlist.Name
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.export):
		if it, ok := selectedPlaylist(m.playlists); ok {
			return m, m.startExport([]string{it.playlist.ID})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlists, cmd = m.playlists.Update(msg)
	return m, cmd
}

func (m *Model) handleItemsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.showPlaylists()
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if it, ok := selectedCard(m.items); ok {
			title, err := m.engine.RemoveFromPlaylist(m.openPlaylist, it.item.Key())
			m.status = tasks.StatusFor(err, fmt.Sprintf("Removed %q from %s", title, m.items.Title))
			m.refreshItems()
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if it, ok := selectedCard(m.items); ok {
			return m, m.toggleFavorite(it.item)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = m.returnTo
		m.status = tasks.Status{Level: tasks.LevelInfo, Message: "Cancelled"}
		return m, nil
	case key.Matches(msg, m.keys.create):
		return m, m.openNameInput(PickerView)
	case key.Matches(msg, m.keys.enter):
		it, ok := selectedPlaylist(m.picker)
		if !ok {
			m.status = tasks.Status{Level: tasks.LevelWarning, Message: "Create a playlist first (n)"}
			return m, nil
		}
		m.view = m.returnTo
		return m, m.addToPlaylist(it.playlist, m.pending)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleNameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.closeNameInput()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		p, err := m.engine.CreatePlaylist(m.nameInput.Value())
		m.status = tasks.StatusFor(err, fmt.Sprintf("Created playlist %q", p.Name))
		if err != nil {
			return m, nil
		}

		m.closeNameInput()
		m.refreshPlaylists()
		if m.view == PickerView {
			m.picker.Select(len(m.picker.Items()) - 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		name, err := m.engine.DeletePlaylist(m.confirmID)
		m.status = tasks.StatusFor(err, fmt.Sprintf("Deleted playlist %q", name))
		if m.openPlaylist == m.confirmID {
			m.openPlaylist = ""
		}
	case key.Matches(msg, m.keys.no):
		m.status = tasks.Status{Level: tasks.LevelInfo, Message: fmt.Sprintf("Kept playlist %q", m.confirmName)}
	default:
		return m, nil
	}

	m.confirmID, m.confirmName = "", ""
	m.showPlaylists()
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchDone:
		res := msg.data.(searchResult)
		if res.seq != m.searchSeq {
			return m, nil
		}
		if res.err != nil {
			m.status = tasks.StatusFor(res.err, "")
			return m, nil
		}

		m.found = res.items
		m.refreshResults()
		m.results.Select(0)
		if len(res.items) == 0 {
			m.status = tasks.Status{Level: tasks.LevelInfo, Message: fmt.Sprintf("No %s found for %q", m.kind.Plural(), strings.TrimSpace(res.query))}
			return m, nil
		}
		m.input.Blur()
		m.status = tasks.StatusFor(nil, fmt.Sprintf("%d %s for %q", len(res.items), m.kind.Plural(), strings.TrimSpace(res.query)))

	case MsgFavoriteToggled:
		res := msg.data.(toggleResult)
		ok := fmt.Sprintf("Removed %q from favorites", res.title)
		if res.on {
			ok = fmt.Sprintf("Added %q to favorites", res.title)
		}
		m.status = tasks.StatusFor(res.err, ok)
		m.refreshResults()
		m.refreshFavorites()
		m.refreshItems()

	case MsgPlaylistItemAdded:
		res := msg.data.(addResult)
		m.status = tasks.StatusFor(res.err, fmt.Sprintf("Added %q to %s", res.item.Title, res.playlist))
		m.refreshPlaylists()
		m.refreshItems()

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.status = tasks.Status{Level: tasks.LevelInfo, Message: update.Message}
		return m, m.waitForProgress()

	case MsgExportComplete:
		res := msg.data.(exportResult)
		m.exporting = false
		m.progressChan = nil
		m.exportDone = nil

		switch {
		case res.err != nil:
			m.status = tasks.StatusFor(res.err, "")
		case res.result.FailedExports > 0:
			m.status = tasks.Status{
				Level:   tasks.LevelWarning,
				Message: fmt.Sprintf("Exported %d of %d playlists to %s", res.result.SuccessfulExports, res.result.TotalPlaylists, res.result.OutputDirectory),
			}
		default:
			m.status = tasks.StatusFor(nil, fmt.Sprintf("Exported %d playlist(s) to %s", res.result.SuccessfulExports, res.result.OutputDirectory))
		}
	}

	return m, nil
}

// updateInputs forwards non-key messages (cursor blinks, list spinners) to the active components.
func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		if m.input.Focused() {
			m.input, cmd = m.input.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
	case NameView:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) runSearch() tea.Cmd {
	m.searchSeq++
	seq, query, kind := m.searchSeq, m.input.Value(), m.kind
	m.status = tasks.Status{Level: tasks.LevelInfo, Message: fmt.Sprintf("Searching %s for %q...", kind.Plural(), strings.TrimSpace(query))}

	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		items, err := engine.Search(ctx, query, kind)
		return searchDoneMsg(seq, query, items, err)
	}
}

func (m *Model) toggleFavorite(item models.CatalogItem) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		on, title, err := engine.ToggleFavorite(ctx, item)
		return favoriteToggledMsg(on, title, err)
	}
}

func (m *Model) addToPlaylist(p models.Playlist, item models.CatalogItem) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		detail, err := engine.AddToPlaylist(ctx, p.ID, item)
		return playlistItemAddedMsg(p.Name, detail, err)
	}
}

// startExport runs the export in the background and streams its progress updates back as messages.
func (m *Model) startExport(ids []string) tea.Cmd {
	if m.exporting {
		m.status = tasks.Status{Level: tasks.LevelInfo, Message: "An export is already running"}
		return nil
	}
	m.exporting = true

	progress := make(chan tasks.ProgressUpdate, 50)
	engine, ctx := m.engine, m.ctx
	opts := tasks.ExportOpts{Format: m.opts.ExportFormat, OutputDir: m.opts.ExportDir}

	var (
		result *tasks.ExportResult
		err    error
	)
	go func() {
		result, err = engine.ExportPlaylists(ctx, progress, ids, opts)
		close(progress)
	}()

	m.progressChan = progress
	m.exportDone = func() tea.Msg { return exportCompleteMsg(result, err) }
	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.exportDone
	if progress == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return done()
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) openPicker(item models.CatalogItem, from ViewState) {
	m.pending = item
	m.returnTo = from
	m.refreshPlaylists()
	m.picker.Title = fmt.Sprintf("Add %q to", item.Title)
	m.view = PickerView
}

func (m *Model) openNameInput(from ViewState) tea.Cmd {
	m.nameInput.Reset()
	m.view = NameView
	m.nameReturn = from
	return m.nameInput.Focus()
}

func (m *Model) closeNameInput() {
	m.nameInput.Reset()
	m.nameInput.Blur()
	m.view = m.nameReturn
}

func (m *Model) showSearch() {
	m.refreshResults()
	m.view = SearchView
}

func (m *Model) showFavorites() {
	m.refreshFavorites()
	m.view = FavoritesView
}

func (m *Model) showPlaylists() {
	m.refreshPlaylists()
	m.view = PlaylistsView
}

func (m *Model) refreshResults() {
	m.results.SetItems(cardItems(m.found, m.engine.IsFavorite))
	m.results.Title = fmt.Sprintf("Results · %s", m.kind.Plural())
}

func (m *Model) refreshFavorites() {
	now := m.now()
	entries := m.engine.Favorites()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = cardItem{item: e.Item, card: formatter.FavoriteCard(e, now)}
	}
	m.favorites.SetItems(items)
}

func (m *Model) refreshPlaylists() {
	playlists := m.engine.Playlists()
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, card: formatter.PlaylistCard(p)}
	}
	m.playlists.SetItems(items)
	m.picker.SetItems(items)
}

func (m *Model) refreshItems() {
	if m.openPlaylist == "" {
		m.items.SetItems(nil)
		return
	}

	p, err := m.engine.Playlist(m.openPlaylist)
	if err != nil {
		m.openPlaylist = ""
		m.items.SetItems(nil)
		return
	}
	m.items.Title = p.Name
	m.items.SetItems(cardItems(p.Items, m.engine.IsFavorite))
}

func (m *Model) resize() {
	w, h := max(m.width-4, 0), max(m.height-10, 0)
	for _, l := range []*list.Model{&m.results, &m.favorites, &m.playlists, &m.items, &m.picker} {
		l.SetSize(w, h)
	}
	m.input.Width = max(w-4, 0)
	m.nameInput.Width = max(w-4, 0)
}

func (m *Model) renderHeader() string {
	title := styles.title.Render(fmt.Sprintf("crate · %s", m.engine.Source()))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", styles.help.Render(m.engine.Summary()))
}

func (m *Model) renderSearch() string {
	kinds := make([]string, len(models.Kinds))
	for i, k := range models.Kinds {
		if k == m.kind {
			kinds[i] = styles.kind.Render(k.Plural())
		} else {
			kinds[i] = styles.help.Render(" " + k.Plural() + " ")
		}
	}

	return fmt.Sprintf("%s\n%s\n\n%s", strings.Join(kinds, " "), m.input.View(), m.results.View())
}

func (m *Model) renderName() string {
	title := styles.title.Render("New playlist")
	return fmt.Sprintf("%s\n%s", title, m.nameInput.View())
}

func (m *Model) renderConfirm() string {
	title := styles.warn.Render(fmt.Sprintf("Delete playlist %q?", m.confirmName))
	info := "\nIts items stay in your favorites.\n"
	return fmt.Sprintf("%s\n%s", title, info)
}

func (m *Model) renderHelp() string {
	var keys []key.Binding
	switch m.view {
	case SearchView:
		if m.input.Focused() {
			keys = []key.Binding{m.keys.enter, m.keys.kind, m.keys.back}
		} else {
			keys = []key.Binding{m.keys.search, m.keys.kind, m.keys.favorite, m.keys.add, m.keys.favorites, m.keys.playlists, m.keys.quit}
		}
	case FavoritesView:
		keys = []key.Binding{m.keys.remove, m.keys.add, m.keys.back, m.keys.playlists, m.keys.quit}
	case PlaylistsView:
		keys = []key.Binding{m.keys.enter, m.keys.create, m.keys.remove, m.keys.export, m.keys.back, m.keys.quit}
	case PlaylistItemsView:
		keys = []key.Binding{m.keys.remove, m.keys.favorite, m.keys.back, m.keys.quit}
	case PickerView:
		keys = []key.Binding{m.keys.enter, m.keys.create, m.keys.back}
	case NameView:
		keys = []key.Binding{m.keys.enter, m.keys.back}
	case ConfirmView:
		keys = []key.Binding{m.keys.yes, m.keys.no}
	}
	return m.help.ShortHelpView(keys)
}
