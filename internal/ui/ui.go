package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/flow/internal/models"
	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/desertthunder/flow/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SourceView ViewState = iota
	GenreView
	SearchView
	LoadingView
	TrackView
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	engine tasks.Engine
	logger *log.Logger
	opts   tasks.FetchOpts

	view   ViewState
	origin ViewState // view to return to from the loading and track views
	width  int
	height int

	sourceList list.Model
	genreList  list.Model
	trackList  list.Model
	search     textinput.Model
	source     sourceItem

	seq          int
	cancel       context.CancelFunc
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate

	request  models.Request
	export   *models.PlaylistExport
	selected *trackItem
	status   string
	err      error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model. genres fills the genre menu; opts is passed to every fetch.
func NewModel(
	ctx context.Context,
	engine tasks.Engine,
	genres []services.Genre,
	logger *log.Logger,
	opts tasks.FetchOpts,
) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	search := textinput.New()
	search.CharLimit = 200
	search.Width = 40

	return &Model{
		ctx:        ctx,
		engine:     engine,
		logger:     logger,
		opts:       opts,
		view:       SourceView,
		sourceList: newList(sourceItems(), "Audio"),
		genreList:  newList(genreItems(genres), "Popular by genre"),
		trackList:  newList(nil, ""),
		search:     search,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Init has nothing to load; the source menu is static.
func (m *Model) Init() tea.Cmd {
	return nil
}

// View returns the active view.
func (m *Model) View() string {
	if m.err != nil {
		return m.renderError()
	}

	switch m.view {
	case SourceView:
		return m.renderList(m.sourceList, m.keys.enter, m.keys.quit)
	case GenreView:
		return m.renderList(m.genreList, m.keys.enter, m.keys.back, m.keys.quit)
	case SearchView:
		return m.renderSearch()
	case LoadingView:
		return m.renderLoading()
	case TrackView:
		details := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details"))
		return m.renderList(m.trackList, details, m.keys.reload, m.keys.back, m.keys.quit)
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := max(msg.Width-4, 0), max(msg.Height-6, 0)
		m.sourceList.SetSize(w, h)
		m.genreList.SetSize(w, h)
		m.trackList.SetSize(w, h)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stopFetch()
			return m, tea.Quit
		}
		if m.err != nil {
			return m.handleErrorKeys(msg)
		}
		switch m.view {
		case SourceView:
			return m.handleSourceKeys(msg)
		case GenreView:
			return m.handleGenreKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case LoadingView:
			return m.handleLoadingKeys(msg)
		case TrackView:
			return m.handleTrackKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			data := msg.data.(progressData)
			if data.seq != m.seq {
				return m, nil
			}
			m.progress = data.update
			return m, m.waitForProgress()
		case MsgPlaylistFetched:
			return m.handleFetched(msg.data.(fetchedData))
		}
	}

	return m.updateLists(msg)
}

func (m *Model) handleFetched(data fetchedData) (tea.Model, tea.Cmd) {
	if data.seq != m.seq {
		return m, nil
	}
	m.stopFetch()

	if data.result == nil || data.result.Export == nil {
		err := data.err
		if err == nil {
			err = fmt.Errorf("%w: no playlist returned", shared.ErrAPIRequest)
		}
		m.logger.Error("failed to fetch playlist", "request", m.request.Name(), "error", err)
		m.err = err
		m.view = m.origin
		return m, nil
	}

	result := data.result
	m.export = result.Export
	m.status = ""
	switch {
	case data.err != nil:
		m.logger.Warn("fetched playlist with errors", "request", m.request.Name(), "error", data.err)
		m.status = styles.warn.Render(data.err.Error())
	case result.FromCache:
		m.status = styles.help.Render("Loaded from cache")
	case result.Cached != nil:
		m.status = styles.ok.Render(fmt.Sprintf("Saved to cache as #%d", result.Cached.Sequence()))
	}

	m.logger.Info("fetched playlist", "request", m.request.Name(), "items", len(m.export.Items), "dropped", m.export.Dropped)

	title := fmt.Sprintf("%s • %d tracks • %s",
		m.export.Name, len(m.export.Items), shared.FormatDuration(m.export.Items.TotalSeconds()))
	m.trackList.SetItems(trackItems(m.export.Items))
	m.trackList.Title = title
	m.trackList.ResetSelected()
	m.view = TrackView
	return m, nil
}

func (m *Model) handleErrorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.err = nil
	}
	return m, nil
}

func (m *Model) handleSourceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		src, ok := m.sourceList.SelectedItem().(sourceItem)
		if !ok {
			return m, nil
		}
		m.source = src
		switch src.kind {
		case models.KindPopular:
			m.view = GenreView
			return m, nil
		case models.KindSearch:
			m.search.Reset()
			m.search.Placeholder = "search text"
			if src.artistOnly {
				m.search.Placeholder = "artist name"
			}
			m.view = SearchView
			return m, m.search.Focus()
		default:
			return m, m.fetch(models.Request{Kind: src.kind})
		}
	}

	var cmd tea.Cmd
	m.sourceList, cmd = m.sourceList.Update(msg)
	return m, cmd
}

func (m *Model) handleGenreKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SourceView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if g, ok := m.genreList.SelectedItem().(genreItem); ok {
			return m, m.fetch(models.Request{Kind: models.KindPopular, Genre: g.genre.Name})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.genreList, cmd = m.genreList.Update(msg)
	return m, cmd
}

// handleSearchKeys routes typing to the text input, so q does not quit here.
func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		m.view = SourceView
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.search.Value())
		if text == "" {
			return m, nil
		}
		m.search.Blur()
		return m, m.fetch(models.Request{Kind: models.KindSearch, Query: text, ArtistOnly: m.source.artistOnly})
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleLoadingKeys lets esc abandon the fetch in flight.
func (m *Model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.stopFetch()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.stopFetch()
		m.seq++
		m.view = m.origin
	}
	return m, nil
}

func (m *Model) handleTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.origin
		if m.view == SearchView {
			return m, m.search.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		origin := m.origin
		cmd := m.fetch(m.request)
		m.origin = origin
		return m, cmd
	case key.Matches(msg, m.keys.enter):
		if t, ok := m.trackList.SelectedItem().(trackItem); ok {
			m.selected = &t
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = TrackView
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SourceView:
		m.sourceList, cmd = m.sourceList.Update(msg)
	case GenreView:
		m.genreList, cmd = m.genreList.Update(msg)
	case SearchView:
		m.search, cmd = m.search.Update(msg)
	case TrackView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

// fetch starts an engine fetch for req in the background and switches to the loading view.
func (m *Model) fetch(req models.Request) tea.Cmd {
	m.stopFetch()
	m.seq++
	seq := m.seq

	ctx, cancel := context.WithCancel(m.ctx)
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)

	m.cancel = cancel
	m.progressChan, m.done = progress, done
	m.request = req
	m.origin = m.view
	m.view = LoadingView
	m.err = nil
	m.progress = tasks.ProgressUpdate{Phase: tasks.FetchPlaylist, Message: fmt.Sprintf("Fetching %s...", req.Name())}

	m.logger.Debug("fetching playlist", "request", req.Name(), "offline", m.opts.Offline, "save", m.opts.Save)

	engine, opts := m.engine, m.opts
	go func() {
		var (
			result *tasks.FetchResult
			err    error
		)
		if engine == nil {
			err = fmt.Errorf("%w: playlist engine not initialized", shared.ErrServiceUnavailable)
		} else {
			result, err = engine.Fetch(ctx, progress, req, opts)
		}
		close(progress)
		done <- playlistFetchedMsg(seq, result, err)
	}()

	return m.waitForProgress()
}

// waitForProgress relays the next progress update, then the fetch result once the progress channel closes.
func (m *Model) waitForProgress() tea.Cmd {
	progress, done, seq := m.progressChan, m.done, m.seq
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(seq, update)
	}
}

func (m *Model) stopFetch() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.progressChan, m.done = nil, nil
}

func (m *Model) renderList(l list.Model, bindings ...key.Binding) string {
	out := l.View()
	if m.view == TrackView && m.status != "" {
		out += "\n" + m.status
	}
	return fmt.Sprintf("%s\n\n%s", out, m.help.ShortHelpView(bindings))
}

func (m *Model) renderSearch() string {
	title := "Search"
	if m.source.artistOnly {
		title = "Search by artist"
	}
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	helpView := m.help.ShortHelpView([]key.Binding{submit, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(title), m.search.View(), helpView)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(fmt.Sprintf("Loading %s", m.request.Name()))

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Requesting playlist..."
	case tasks.LoadCached:
		phase = "Reading cache..."
	case tasks.CachePlaylist:
		phase = "Saving to cache..."
	default:
		phase = "Processing..."
	}

	cancel := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	helpView := m.help.ShortHelpView([]key.Binding{cancel, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, phase, styles.help.Render(m.progress.Message), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	t := m.selected.item
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), value)
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.title.Render(fmt.Sprintf("Track %d of %d", m.selected.position, len(m.export.Items))),
		row("Artist", t.Artist),
		row("Title", t.Title),
		row("Duration", shared.FormatDuration(t.Seconds())),
		row("URL", t.URL),
	)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", styles.box.Render(body), helpView)
}

func (m *Model) renderError() string {
	msg := styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	if tasks.IsAuthError(m.err) {
		msg += "\n\n" + styles.warn.Render("Run `flow auth login` to authorize again.")
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", msg, helpView)
}
