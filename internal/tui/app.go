// Package tui is the terminal catalog browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/fbettag/mdb/internal/browser"
	"github.com/fbettag/mdb/internal/catalog"
	"github.com/fbettag/mdb/internal/config"
	"github.com/fbettag/mdb/internal/events"
	"github.com/fbettag/mdb/internal/export"
	"github.com/fbettag/mdb/internal/render"
	"github.com/fbettag/mdb/internal/route"
	"github.com/fbettag/mdb/internal/selection"
	"github.com/fbettag/mdb/internal/theme"
	"github.com/fbettag/mdb/internal/viewport"
)

const (
	// chrome is the number of lines around the table body: title, search,
	// suggestions, column header and status.
	chrome       = 5
	wheelStep    = 3
	statusLinger = 4 * time.Second
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// Options configure the interactive browser.
type Options struct {
	Fetcher catalog.Fetcher
	// Open is a shareable link fragment restored once the catalog loads.
	Open     string
	LinkBase string
	Theme    string
	Logger   *log.Logger
	// SavePrefs persists the theme; nil disables persistence.
	SavePrefs func(config.Prefs) error
}

// Run launches the browser in the alternate screen.
func Run(ctx context.Context, opts Options) error {
	m := newModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type model struct {
	ctx     context.Context
	opts    Options
	log     *log.Logger
	bus     *events.Bus
	session *browser.Session
	err     error
	styles  theme.Styles
	spinner spinner.Model

	search   searchBar
	layout   layout
	buffer   *render.Buffer
	renderer *render.Renderer
	frames   viewport.Coalescer

	width    int
	height   int
	offset   int
	cursor   int
	focus    int
	status   string
	statusAt time.Time
}

type sessionMsg struct {
	session *browser.Session
	err     error
}

type busMsg struct {
	env events.Envelope
}

type frameMsg struct{}

type statusMsg string

func newModel(ctx context.Context, opts Options) model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	st := theme.For(opts.Theme)
	spin.Style = lipgloss.NewStyle().Foreground(st.Palette.Accent)
	buf := &render.Buffer{}
	return model{
		ctx:      ctx,
		opts:     opts,
		log:      logger,
		bus:      events.NewBus(),
		styles:   st,
		spinner:  spin,
		search:   newSearchBar(),
		buffer:   buf,
		renderer: render.New(buf, 1, viewport.Overscan),
		width:    120,
		height:   40,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCatalog(m.ctx, m.opts, m.bus, m.log), listenBus(m.ctx, m.bus))
}

func loadCatalog(ctx context.Context, opts Options, bus *events.Bus, logger *log.Logger) tea.Cmd {
	return func() tea.Msg {
		s, err := browser.Open(ctx, opts.Fetcher,
			browser.WithBus(bus),
			browser.WithTheme(opts.Theme),
			browser.WithLogger(logger),
		)
		return sessionMsg{session: s, err: err}
	}
}

// listenBus delivers the next bus event; Update re-arms it after each one so
// events arrive in publish order.
func listenBus(ctx context.Context, bus *events.Bus) tea.Cmd {
	if bus == nil {
		return nil
	}
	return func() tea.Msg {
		env, err := bus.Next(ctx)
		if err != nil {
			return nil
		}
		return busMsg{env: env}
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(viewport.FrameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.input.Width = max(10, m.width/2)
		m.clampScroll()
		m.redraw()
		return m, nil
	case spinner.TickMsg:
		if m.session != nil || m.err != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case sessionMsg:
		return m.handleSession(msg)
	case busMsg:
		cmd := m.handleEvent(msg.env.Event)
		return m, tea.Batch(cmd, listenBus(m.ctx, m.bus))
	case frameMsg:
		if m.frames.Fire() {
			m.draw()
		}
		return m, nil
	case statusMsg:
		m.setStatus(string(msg))
		return m, nil
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.session = msg.session
	store := m.session.Store()
	m.layout = newLayout(store)
	m.search.setCatalog(store)
	m.redraw()
	if m.opts.Open != "" {
		if err := m.session.OpenLink(m.opts.Open); err != nil {
			m.log.Debug("startup link ignored", "link", m.opts.Open, "err", err)
		}
	}
	return m, nil
}

// handleEvent reacts to a published domain event.
func (m *model) handleEvent(ev events.Event) tea.Cmd {
	switch ev := ev.(type) {
	case events.LoadFailed:
		m.err = ev.Err
	case events.DatasetLoaded:
		m.setStatus(fmt.Sprintf("Loaded %d models from %d providers", ev.Records, ev.Providers))
	case events.SortChanged, events.FilterChanged:
		m.refreshTable()
	case events.SelectionChanged:
		if !ev.Accepted {
			m.setStatus(fmt.Sprintf("Compare holds at most %d models", selection.Max))
			return nil
		}
		if ev.Key == "" {
			m.redraw()
			return nil
		}
		m.renderer.PatchSelection(ev.Key, ev.Selected)
	case events.ThemeChanged:
		m.styles = theme.For(ev.Theme)
		m.spinner.Style = lipgloss.NewStyle().Foreground(m.styles.Palette.Accent)
		return m.savePrefs(ev.Theme)
	}
	return nil
}

func (m model) savePrefs(name string) tea.Cmd {
	save := m.opts.SavePrefs
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		if err := save(config.Prefs{Theme: name}); err != nil {
			return statusMsg("Saving theme failed: " + err.Error())
		}
		return nil
	}
}

func (m model) bodyHeight() int {
	return max(1, m.height-chrome)
}

func (m model) total() int {
	if m.session == nil {
		return 0
	}
	return m.session.Store().Filtered().Len()
}

// draw renders the window for the current scroll state; unchanged windows
// are skipped by the renderer.
func (m *model) draw() {
	if m.session == nil {
		return
	}
	m.renderer.Draw(m.session.Store().Filtered(), m.session.Selection(), m.offset, m.bodyHeight())
}

// redraw forces a full render, used after sort, filter and resize.
func (m *model) redraw() {
	m.renderer.Invalidate()
	m.draw()
}

// refreshTable re-renders after the rows changed identity. It runs in the
// same update as the sort or filter; the bus event repeats it harmlessly.
func (m *model) refreshTable() {
	m.clampScroll()
	m.redraw()
}

// scrolled schedules at most one frame per burst of scroll input.
func (m *model) scrolled() tea.Cmd {
	if m.frames.Request() {
		return frameTick()
	}
	return nil
}

func (m *model) clampScroll() {
	total := m.total()
	h := m.bodyHeight()
	m.cursor = min(max(m.cursor, 0), max(total-1, 0))
	m.offset = min(max(m.offset, 0), max(total-h, 0))
}

// moveCursor moves the highlighted row and scrolls it into view.
func (m *model) moveCursor(delta int) tea.Cmd {
	total := m.total()
	if total == 0 {
		return nil
	}
	m.cursor = min(max(m.cursor+delta, 0), total-1)
	h := m.bodyHeight()
	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+h:
		m.offset = m.cursor - h + 1
	}
	return m.scrolled()
}

// scrollBy moves the viewport and drags the cursor along when it leaves.
func (m *model) scrollBy(delta int) tea.Cmd {
	m.offset += delta
	m.clampScroll()
	h := m.bodyHeight()
	if m.cursor < m.offset {
		m.cursor = m.offset
	} else if m.cursor >= m.offset+h {
		m.cursor = m.offset + h - 1
	}
	m.clampScroll()
	return m.scrolled()
}

func (m model) cursorRecord() *catalog.Record {
	if m.session == nil {
		return nil
	}
	view := m.session.Store().Filtered()
	if m.cursor < 0 || m.cursor >= view.Len() {
		return nil
	}
	return view.At(m.cursor)
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusAt = time.Now()
}

func (m *model) copy(label, text string) {
	if err := writeClipboard(text); err != nil {
		m.setStatus("Clipboard unavailable: " + err.Error())
		return
	}
	m.setStatus("Copied " + label)
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.session == nil || m.session.View().Kind != route.None {
		return m, nil
	}
	var cmd tea.Cmd
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		cmd = m.scrollBy(-wheelStep)
	case msg.Button == tea.MouseButtonWheelDown:
		cmd = m.scrollBy(wheelStep)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		line := msg.Y - (chrome - 1)
		if line >= 0 && line < m.bodyHeight() {
			idx := m.offset + line
			if idx < m.total() {
				m.cursor = idx
			}
		}
	}
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.session == nil {
		if key == "q" || key == "esc" {
			return m, tea.Quit
		}
		return m, nil
	}
	switch m.session.View().Kind {
	case route.Detail:
		return m.handleDetailKey(key)
	case route.Compare:
		return m.handleCompareKey(key)
	}
	if m.search.focused() {
		return m.handleSearchKey(msg)
	}

	var cmd tea.Cmd
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		cmd = m.moveCursor(-1)
	case "down", "j":
		cmd = m.moveCursor(1)
	case "pgup":
		cmd = m.moveCursor(-m.bodyHeight())
	case "pgdown":
		cmd = m.moveCursor(m.bodyHeight())
	case "home", "g":
		cmd = m.moveCursor(-m.total())
	case "end", "G":
		cmd = m.moveCursor(m.total())
	case "left", "h":
		m.focus = max(0, m.focus-1)
	case "right", "l":
		m.focus = min(len(catalog.Columns)-1, m.focus+1)
	case "s":
		if _, err := m.session.ToggleSort(catalog.Columns[m.focus].ID); err != nil {
			m.setStatus(err.Error())
		}
		m.refreshTable()
	case " ":
		if r := m.cursorRecord(); r != nil {
			m.session.Toggle(r.Key())
		}
	case "X":
		m.session.ClearSelection()
	case "enter":
		if r := m.cursorRecord(); r != nil {
			_ = m.session.OpenDetail(r.Key())
		}
	case "c", "ctrl+e":
		if err := m.session.OpenCompare(); err != nil {
			m.setStatus(err.Error())
		}
	case "y":
		if r := m.cursorRecord(); r != nil {
			m.copy("model id", r.ModelID)
		}
	case "L":
		m.copy("link", m.session.Link(m.opts.LinkBase))
	case "t":
		m.session.ToggleTheme()
	case "/", "ctrl+k":
		cmd = m.search.focus()
	case "esc":
		if !m.session.Store().ActiveFilter().Empty() {
			m.search.clear()
			m.session.Filter(m.search.filter())
			m.refreshTable()
		}
	}
	return m, cmd
}

func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "down", "up":
		m.search.blur()
		return m, nil
	}
	changed, cmd := m.search.update(msg)
	if changed {
		m.cursor, m.offset = 0, 0
		m.session.Filter(m.search.filter())
		m.refreshTable()
	}
	return m, cmd
}

func (m model) handleDetailKey(key string) (tea.Model, tea.Cmd) {
	r, ok := m.session.Store().Lookup(m.session.View().Key())
	switch key {
	case "esc", "q", "enter":
		m.session.CloseView()
	case "C":
		if ok {
			m.copy("details", export.DetailText(r, m.session.Store().ProviderName(r.ProviderID)))
		}
	case "y":
		if ok {
			m.copy("model id", r.ModelID)
		}
	case "L":
		m.copy("link", m.session.Link(m.opts.LinkBase))
	case "t":
		m.session.ToggleTheme()
	}
	return m, nil
}

func (m model) handleCompareKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q", "c":
		m.session.CloseView()
	case "C":
		m.copy("comparison", export.CompareText(m.compared()))
	case "M":
		m.copy("markdown comparison", export.CompareMarkdown(m.compared()))
	case "L":
		m.copy("link", m.session.Link(m.opts.LinkBase))
	case "t":
		m.session.ToggleTheme()
	}
	return m, nil
}

// compared resolves the keys of the open comparison.
func (m model) compared() []*catalog.Record {
	keys := m.session.View().Keys
	out := make([]*catalog.Record, 0, len(keys))
	for _, k := range keys {
		if r, ok := m.session.Store().Lookup(k); ok {
			out = append(out, r)
		}
	}
	return out
}

func (m model) View() string {
	st := m.styles
	switch {
	case m.err != nil:
		return st.Error.Render("Failed: " + m.err.Error())
	case m.session == nil:
		return "\n  " + m.spinner.View() + " Loading models.dev catalog…\n"
	}

	switch v := m.session.View(); v.Kind {
	case route.Detail:
		if r, ok := m.session.Store().Lookup(v.Key()); ok {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, detailView(st, r, m.width))
		}
	case route.Compare:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, compareView(st, m.compared(), m.width))
	}

	lines := []string{
		m.titleLine(),
		m.searchLine(),
		m.suggestionLine(),
		clip(m.layout.header(st, m.session.Store().Sorting(), m.focus), m.width),
	}
	lines = append(lines, m.bodyLines()...)
	lines = append(lines, m.statusLine())
	return strings.Join(lines, "\n")
}

func (m model) titleLine() string {
	st := m.styles
	view := m.session.Store().Filtered()
	counts := fmt.Sprintf("(%d models · %d providers)", view.Len(), catalog.ProviderCount(view))
	sel := m.session.Selection()
	compare := fmt.Sprintf("compare %d/%d", sel.Len(), selection.Max)
	left := st.Title.Render("models.dev") + " " + st.Dim.Render(counts)
	right := st.Dim.Render(compare) + "  " + theme.Glyph(st.Name)
	if frag := m.session.Location(); frag != "" {
		right = st.Dim.Render(frag) + "  " + right
	}
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return clip(left+strings.Repeat(" ", gap)+right, m.width)
}

func (m model) searchLine() string {
	st := m.styles
	var parts []string
	for _, p := range m.search.pills {
		parts = append(parts, st.Pill.Render(p.String()))
	}
	parts = append(parts, m.search.input.View())
	return clip(strings.Join(parts, " "), m.width)
}

func (m model) suggestionLine() string {
	st := m.styles
	if len(m.search.suggested) == 0 {
		if m.search.focused() {
			return st.Dim.Render("  tab accepts a suggestion · backspace removes a pill · enter done")
		}
		return ""
	}
	labels := make([]string, len(m.search.suggested))
	for i, s := range m.search.suggested {
		label := string(s.Pill.Kind) + ":" + s.Label
		if i == 0 {
			label = st.Suggestion.Bold(true).Render(label)
		} else {
			label = st.Suggestion.Render(label)
		}
		labels[i] = label
	}
	return clip("  "+strings.Join(labels, "  "), m.width)
}

func (m model) bodyLines() []string {
	h := m.bodyHeight()
	total := m.total()
	bar := scrollbar(m.styles, m.offset, h, m.renderer.ScrollHeight())
	rowWidth := max(0, m.width-1)
	lines := make([]string, h)
	if total == 0 {
		lines[0] = m.styles.Dim.Render("  No models match.")
	}
	for i := 0; i < h; i++ {
		idx := m.offset + i
		line := lines[i]
		if idx < total {
			node, ok := m.buffer.Row(idx)
			if !ok {
				// Scrolled past the last frame; the next one catches up.
				r := m.session.Store().Filtered().At(idx)
				node = render.Node{Kind: render.RowNode, Index: idx, Record: r, Selected: m.session.Selection().Has(r.Key())}
			}
			line = m.layout.row(m.styles, node, idx == m.cursor)
		}
		lines[i] = padRight(clip(line, rowWidth), rowWidth) + bar[i]
	}
	return lines
}

func (m model) statusLine() string {
	help := "↑↓ move · ←→ column · s sort · space compare · enter details · c compare · / search · t theme · q quit"
	text := help
	if m.status != "" && time.Since(m.statusAt) < statusLinger {
		text = m.status
	}
	return m.styles.Status.Width(max(0, m.width)).Render(clip(text, max(0, m.width-2)))
}
