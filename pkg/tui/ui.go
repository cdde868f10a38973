package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/irfansharif/headlines/pkg/browser"
	"github.com/irfansharif/headlines/pkg/feed"
	"github.com/irfansharif/headlines/pkg/news"
)

// Lines taken by everything but the grid: header, search bar and the blank
// line after it, status line and its separator, category bar (two lines with
// its border) and help.
const chromeLines = 9

// Options configures the TUI.
type Options struct {
	// Viewer is the text browser used to read articles in place. When empty,
	// articles open in the system browser instead.
	Viewer string
	Logger *slog.Logger
	Now    func() time.Time
}

// Model is the main TUI model.
type Model struct {
	feed   *feed.Controller
	src    feed.Source
	viewer string
	logger *slog.Logger
	now    func() time.Time
	keys   KeyMap
	styles Styles
	width  int
	height int

	cursor int

	// Components
	searchInput SearchInputModel
	spinner     spinner.Model
	article     *ArticleViewer

	// Status
	err       error
	statusMsg string
}

// Messages
type (
	fetchResultMsg struct{ res feed.Result }
	clearStatusMsg struct{}
)

// New creates the TUI over ctrl, fetching pages from src.
func New(ctrl *feed.Controller, src feed.Source, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	styles := DefaultStyles()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		feed:        ctrl,
		src:         src,
		viewer:      opts.Viewer,
		logger:      opts.Logger,
		now:         opts.Now,
		keys:        DefaultKeyMap(),
		styles:      styles,
		searchInput: NewSearchInput(styles),
		spinner:     s,
	}
}

// Init loads the first page of the starting category.
func (m Model) Init() tea.Cmd {
	return m.fetch(m.feed.Start())
}

// fetch runs req off the UI goroutine. The spinner tick is batched in so that
// it animates for as long as the feed is loading.
func (m Model) fetch(req feed.Request) tea.Cmd {
	src := m.src
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return fetchResultMsg{res: req.Do(context.Background(), src)}
		},
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput = m.searchInput.SetWidth(msg.Width)
		if m.article != nil {
			m.article.Resize(m.viewerSize())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if m.feed.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case fetchResultMsg:
		if m.feed.Apply(msg.res) {
			m.clampCursor()
		}
		return m, nil

	case viewerTickMsg:
		if m.article == nil {
			return m, nil
		}
		return m, m.article.Update(msg)

	case viewerExitMsg:
		if m.article == nil {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("viewer exited", "url", m.article.URL(), "error", msg.err)
			m.err = fmt.Errorf("viewer: %w", msg.err)
		}
		m.closeArticle()
		return m, nil

	case clearStatusMsg:
		m.statusMsg = ""
		m.err = nil
		return m, nil
	}

	// Cursor blinks and the like.
	var cmd tea.Cmd
	if m.searchInput.IsActive() {
		m.searchInput, cmd = m.searchInput.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.article != nil {
		if key.Matches(msg, m.keys.Back) {
			m.closeArticle()
			return m, nil
		}
		return m, m.article.Update(msg)
	}
	if m.searchInput.IsActive() {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor >= gridColumns {
			m.cursor -= gridColumns
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor+gridColumns < len(m.feed.Visible()) {
			m.cursor += gridColumns
		}
		return m, nil

	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.cursor < len(m.feed.Visible())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		return m.openArticle()

	case key.Matches(msg, m.keys.External):
		a, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := browser.Open(a.URL); err != nil {
			m.err = err
			return m, nil
		}
		return m.setStatus("Opened in browser")

	case key.Matches(msg, m.keys.Like):
		if a, ok := m.selected(); ok {
			m.feed.ToggleLike(a.URL)
		}
		return m, nil

	case key.Matches(msg, m.keys.LoadMore):
		return m, m.fetch(m.feed.LoadMore())

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch(m.feed.Refresh())

	case key.Matches(msg, m.keys.Search):
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Activate()
		return m, cmd

	case key.Matches(msg, m.keys.DateFilter):
		m.feed.SetDateFilter(m.feed.DateFilter().Toggle())
		m.clampCursor()
		return m, nil

	case key.Matches(msg, m.keys.NextCat):
		return m.selectCategory(m.feed.Category() + 1)

	case key.Matches(msg, m.keys.PrevCat):
		return m.selectCategory(m.feed.Category() - 1)

	case key.Matches(msg, m.keys.CategoryNum):
		n := int(msg.Runes[0] - '1')
		return m.selectCategory(news.Categories()[n])

	case key.Matches(msg, m.keys.Cancel):
		if m.feed.SearchQuery() != "" {
			m.searchInput = m.searchInput.Clear()
			m.feed.SetSearchQuery("")
			m.clampCursor()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.searchInput = m.searchInput.Deactivate()
		m.searchInput = m.searchInput.Clear()
		m.feed.SetSearchQuery("")
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		m.searchInput = m.searchInput.Deactivate()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.feed.SetSearchQuery(m.searchInput.Value())
	m.clampCursor()
	return m, cmd
}

// selectCategory switches category, wrapping around at either end.
func (m Model) selectCategory(cat news.Category) (tea.Model, tea.Cmd) {
	cats := news.Categories()
	switch {
	case cat < cats[0]:
		cat = cats[len(cats)-1]
	case cat > cats[len(cats)-1]:
		cat = cats[0]
	}
	req, err := m.feed.SelectCategory(cat)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.cursor = 0
	return m, m.fetch(req)
}

func (m Model) openArticle() (tea.Model, tea.Cmd) {
	a, ok := m.selected()
	if !ok {
		return m, nil
	}
	if err := browser.Validate(a.URL); err != nil {
		m.err = err
		return m, nil
	}
	if m.viewer == "" {
		if err := browser.Open(a.URL); err != nil {
			m.err = err
			return m, nil
		}
		return m.setStatus("Opened in browser")
	}

	m.logger.Info("opening article", "url", a.URL, "viewer", m.viewer)
	m.feed.SelectArticle(a.URL)
	w, h := m.viewerSize()
	var cmd tea.Cmd
	m.article, cmd = NewArticleViewer(a.URL, w, h, exec.Command(m.viewer, a.URL))
	m.article.Focus()
	return m, cmd
}

func (m *Model) closeArticle() {
	m.article.Close()
	m.article = nil
	m.feed.ClearSelectedArticle()
}

func (m Model) setStatus(s string) (tea.Model, tea.Cmd) {
	m.statusMsg = s
	m.err = nil
	return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// selected returns the article under the cursor.
func (m Model) selected() (news.Article, bool) {
	visible := m.feed.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return news.Article{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	if n := len(m.feed.Visible()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// viewerSize is the emulator size, leaving a line for the viewer header.
func (m Model) viewerSize() (int, int) {
	return max(1, m.width), max(1, m.height-1)
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.article != nil {
		return m.viewArticle()
	}

	var sb strings.Builder

	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(m.searchInput.View())
	sb.WriteString("\n\n")
	sb.WriteString(m.renderContent())

	var statusLine string
	switch {
	case m.err != nil:
		statusLine = m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.feed.Err() != nil:
		statusLine = m.styles.Error.Render(fmt.Sprintf("Error: %v", m.feed.Err()))
	case m.feed.Loading() && m.feed.Page() > 1:
		statusLine = m.spinner.View() + m.styles.Muted.Render(fmt.Sprintf(" Loading page %d...", m.feed.Page()))
	case m.statusMsg != "":
		statusLine = m.styles.Muted.Render(m.statusMsg)
	}

	// Push the status, category bar and help to the bottom.
	content := sb.String()
	contentHeight := strings.Count(content, "\n") + 1
	bottom := 4 // category bar with border, help
	if statusLine != "" {
		bottom += 2
	}
	if remaining := m.height - contentHeight - bottom; remaining > 0 {
		sb.WriteString(strings.Repeat("\n", remaining))
	}

	if statusLine != "" {
		sb.WriteString("\n")
		sb.WriteString(statusLine)
	}
	sb.WriteString("\n")
	sb.WriteString(renderCategoryBar(m.feed.Category(), m.width-2, m.styles))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(m.renderHelp()))

	return m.styles.App.Render(sb.String())
}

func (m Model) renderHeader() string {
	cat := m.feed.Category()
	total := len(m.feed.Articles())
	title := fmt.Sprintf("%s %s (%d)", cat.Glyph(), cat, total)
	if m.feed.SearchQuery() != "" || m.feed.DateFilter() == news.Last24Hours {
		title = fmt.Sprintf("%s %s (%d of %d)", cat.Glyph(), cat, len(m.feed.Visible()), total)
	}

	header := m.styles.Header.Render(title)
	header += " " + m.styles.HeartLiked.Render(fmt.Sprintf("♥ %d", m.feed.LikedCount()))
	if m.feed.DateFilter() == news.Last24Hours {
		header += " " + m.styles.Badge.Render("24h")
	}
	if m.feed.HasMore() {
		header += " " + m.styles.Muted.Render("more available")
	}
	return header
}

func (m Model) renderContent() string {
	if m.feed.Loading() && m.feed.Page() == 1 {
		return m.spinner.View() + " Fetching headlines..."
	}

	visible := m.feed.Visible()
	if len(visible) == 0 {
		if len(m.feed.Articles()) == 0 {
			return renderEmptyState(m.styles)
		}
		return renderNoResults(m.feed.SearchQuery(), m.feed.DateFilter(), m.styles)
	}

	rows := (m.height - chromeLines) / tileHeight
	return renderGrid(visible, m.feed.IsLiked, m.cursor, m.width-2, rows, m.now(), m.styles)
}

func (m Model) viewArticle() string {
	header := m.styles.ViewerHeader.Width(m.width).Render(
		truncateString(m.article.URL(), m.width-len(" ctrl+] back")-4) + "  ctrl+] back",
	)
	return header + "\n" + m.article.View()
}

func (m Model) renderHelp() string {
	if m.searchInput.IsActive() {
		return "[enter] done  [esc] clear"
	}
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return strings.Join(parts, "  ")
}
