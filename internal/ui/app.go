package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/whisker/internal/cache"
	"github.com/five82/whisker/internal/catapi"
	"github.com/five82/whisker/internal/collection"
	"github.com/five82/whisker/internal/favorites"
	"github.com/five82/whisker/internal/loader"
	"github.com/five82/whisker/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewBrowse View = iota
	ViewLogs
)

// BreedSource lists the breeds offered by the breed filter.
type BreedSource interface {
	Breeds(ctx context.Context) ([]catapi.Breed, error)
}

// ImageCache is the picture cache as seen by the header and the clear key.
type ImageCache interface {
	Stats() cache.Stats
	Clear()
}

// LoadStats reports loader group counters.
type LoadStats interface {
	Stats() loader.Stats
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Collection *collection.Controller
	Slots      *collection.Slots
	Bridge     *Bridge
	Breeds     BreedSource
	Favorites  *favorites.Book
	Cache      ImageCache
	Loads      LoadStats
	LogPath    string
	Prefs      prefs.Prefs
	PrefsPath  string
	Logger     zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx        context.Context
	collection *collection.Controller
	slots      *collection.Slots
	breedSrc   BreedSource
	favorites  *favorites.Book
	cache      ImageCache
	loads      LoadStats
	logPath    string
	prefs      prefs.Prefs
	prefsPath  string
	logger     zerolog.Logger
	keys       keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	spinner     spinner.Model
	previews    *previewCache
	notice      string
	noticeErr   bool

	// Collection state
	snapshot    collection.Snapshot
	selectedRow int
	listOffset  int
	breeds      []catapi.Breed
	breedIdx    int // -1 shows every breed

	// Log state
	logViewport viewport.Model
	logState    logState

	// Help overlay
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:         ctx,
		collection:  opts.Collection,
		slots:       opts.Slots,
		breedSrc:    opts.Breeds,
		favorites:   opts.Favorites,
		cache:       opts.Cache,
		loads:       opts.Loads,
		logPath:     opts.LogPath,
		prefs:       opts.Prefs,
		prefsPath:   prefsPath,
		logger:      opts.Logger.With().Str("component", "ui").Logger(),
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.Prefs.Theme),
		currentView: ViewBrowse,
		spinner:     sp,
		previews:    newPreviewCache(),
		breedIdx:    -1,
	}
	m.initLogState()
	if m.collection != nil {
		m.snapshot = m.collection.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(DefaultUIInterval),
		m.spinner.Tick,
	}
	if m.collection != nil {
		cmds = append(cmds, func() tea.Msg { return listChangedMsg{} })
	}
	if m.breedSrc != nil {
		cmds = append(cmds, fetchBreedsCmd(m.ctx, m.breedSrc))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogViewport()
		}
		m.ready = true
		m.clampSelection()
		m.syncObserved()
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listChangedMsg:
		if m.collection != nil {
			m.snapshot = m.collection.Snapshot()
		}
		m.clampSelection()
		m.syncObserved()
		return m, nil

	case pictureChangedMsg:
		// Picture state is read from the slots while rendering.
		return m, nil

	case breedsMsg:
		m.handleBreeds(msg)
		return m, nil

	case favoriteMsg:
		m.handleFavorite(msg)
		return m, nil

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	// Search input owns the keyboard while active.
	if m.currentView == ViewLogs && m.logState.searchActive {
		return m.handleLogSearchInput(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		if m.currentView == ViewBrowse {
			return m.enterLogs()
		}
		m.currentView = ViewBrowse
		return m, nil

	case key.Matches(msg, m.keys.ViewBrowse):
		m.currentView = ViewBrowse
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		return m.enterLogs()

	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewLogs && m.logState.searchRegex != nil {
			m.clearLogSearch()
			m.updateLogViewport()
			return m, nil
		}
		m.currentView = ViewBrowse
		m.notice = ""
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

// handleBrowseKey processes keyboard input for the browse view.
func (m Model) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.report(m.collection.Refresh(), "")
		return m, nil

	case key.Matches(msg, m.keys.RetryImage):
		if item, ok := m.selectedItem(); ok && !m.slots.Retry(item.ID) {
			m.setNotice("Image is not on screen", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Favorite):
		item, ok := m.selectedItem()
		if !ok || m.favorites == nil {
			return m, nil
		}
		return m, toggleFavoriteCmd(m.ctx, m.favorites, item)

	case key.Matches(msg, m.keys.CycleBreed):
		m.cycleBreed()
		return m, nil

	case key.Matches(msg, m.keys.ClearCache):
		if m.cache != nil {
			m.cache.Clear()
			m.previews.Clear()
			m.logger.Info().Msg("image cache cleared")
			m.setNotice("Image cache cleared", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.MoreItems):
		m.resize(PageStep)
		return m, nil

	case key.Matches(msg, m.keys.FewerItems):
		m.resize(-PageStep)
		return m, nil
	}

	count := len(m.snapshot.Items)
	if count == 0 {
		return m, nil
	}
	page := max(m.listRows(), 1)

	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow += page
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow -= page
	default:
		return m, nil
	}
	m.clampSelection()
	m.syncObserved()
	return m, nil
}

// handleTick processes the UI clock.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(DefaultUIInterval)}
	if m.currentView == ViewLogs && m.logState.follow {
		cmds = append(cmds, refreshLogsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) enterLogs() (tea.Model, tea.Cmd) {
	m.currentView = ViewLogs
	m.notice = ""
	return m, refreshLogsCmd(m.logPath)
}

// cycleBreed moves the breed filter to the next breed, wrapping to all breeds.
func (m *Model) cycleBreed() {
	if len(m.breeds) == 0 {
		m.setNotice("Breed list not loaded", true)
		return
	}
	m.breedIdx++
	if m.breedIdx >= len(m.breeds) {
		m.breedIdx = -1
	}
	breedID := ""
	if m.breedIdx >= 0 {
		breedID = m.breeds[m.breedIdx].ID
	}
	if err := m.collection.Filter(breedID); err != nil {
		m.report(err, "")
		return
	}
	m.selectedRow, m.listOffset = 0, 0
	m.prefs.Breed = breedID
	m.savePrefs()
}

// resize changes the page size by delta and reloads the collection.
func (m *Model) resize(delta int) {
	current := m.snapshot.Limit()
	if current <= 0 {
		current = m.collection.Query().Limit
	}
	next := min(max(current+delta, MinPageSize), MaxPageSize)
	if next == current {
		return
	}
	if err := m.collection.LoadAll(next); err != nil {
		m.report(err, "")
		return
	}
	m.prefs.PageSize = next
	m.savePrefs()
	m.setNotice("Page size "+strconv.Itoa(next), false)
}

func (m *Model) handleBreeds(msg breedsMsg) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Msg("breed list unavailable")
		return
	}
	m.breeds = msg.breeds
	m.breedIdx = -1
	current := m.collection.Query().BreedID
	for i, b := range m.breeds {
		if b.ID == current {
			m.breedIdx = i
			break
		}
	}
}

func (m *Model) handleFavorite(msg favoriteMsg) {
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Str("image", msg.id).Msg("favorite not saved")
		m.setNotice("Favorite not saved: "+msg.err.Error(), true)
		return
	}
	m.setNotice(ternary(msg.added, "Saved to favorites", "Removed from favorites"), false)
}

// report surfaces err in the header; ok is shown when err is nil and ok is set.
func (m *Model) report(err error, ok string) {
	if err != nil {
		msg := err.Error()
		var apiErr *catapi.Error
		if errors.As(err, &apiErr) {
			msg = catapi.Message(err)
		}
		m.setNotice(msg, true)
		return
	}
	if ok != "" {
		m.setNotice(ok, false)
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = strings.TrimSpace(text)
	m.noticeErr = isErr
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn().Err(err).Msg("save preferences")
	}
}

// selectedItem returns the highlighted image.
func (m Model) selectedItem() (catapi.Image, bool) {
	if m.selectedRow < 0 || m.selectedRow >= len(m.snapshot.Items) {
		return catapi.Image{}, false
	}
	return m.snapshot.Items[m.selectedRow], true
}

// clampSelection keeps the selection inside the list and visible.
func (m *Model) clampSelection() {
	count := len(m.snapshot.Items)
	if count == 0 {
		m.selectedRow, m.listOffset = 0, 0
		return
	}
	m.selectedRow = min(max(m.selectedRow, 0), count-1)
	rows := max(m.listRows(), 1)
	if m.selectedRow < m.listOffset {
		m.listOffset = m.selectedRow
	}
	if m.selectedRow >= m.listOffset+rows {
		m.listOffset = m.selectedRow - rows + 1
	}
	m.listOffset = min(max(m.listOffset, 0), max(count-rows, 0))
}

// visibleItems returns the rows currently drawn in the list pane.
func (m Model) visibleItems() []catapi.Image {
	items := m.snapshot.Items
	if len(items) == 0 {
		return nil
	}
	start := min(m.listOffset, len(items))
	end := min(start+max(m.listRows(), 1), len(items))
	return items[start:end]
}

// syncObserved makes the visible rows the observed set so only their
// pictures are fetched.
func (m Model) syncObserved() {
	if m.slots == nil || !m.ready {
		return
	}
	m.slots.Observe(m.visibleItems())
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderBrowse()
	}
}

// Messages

type tickMsg time.Time

type breedsMsg struct {
	breeds []catapi.Breed
	err    error
}

type favoriteMsg struct {
	id    string
	added bool
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchBreedsCmd(ctx context.Context, src BreedSource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, BreedFetchTimeout)
		defer cancel()
		breeds, err := src.Breeds(ctx)
		return breedsMsg{breeds: breeds, err: err}
	}
}

func toggleFavoriteCmd(ctx context.Context, book *favorites.Book, item catapi.Image) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, FavoriteSaveTimeout)
		defer cancel()
		added, err := book.Toggle(ctx, item)
		return favoriteMsg{id: item.ID, added: added, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	if opts.Bridge != nil {
		go opts.Bridge.pump(p.Send)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
