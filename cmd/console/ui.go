package main

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/piously-console/internal/config"
	"github.com/jwebster45206/piously-console/internal/controller"
	"github.com/jwebster45206/piously-console/internal/input"
	"github.com/jwebster45206/piously-console/internal/scheduler"
	"github.com/jwebster45206/piously-console/internal/session"
	"github.com/jwebster45206/piously-console/pkg/board"
	"github.com/jwebster45206/piously-console/pkg/game"
)

const (
	headerHeight = 2
	footerHeight = 3
	sideMinWidth = 28
)

// setup form focus order
const (
	focusGameID = iota
	focusLight
	focusDark
	focusCount
)

type stateMsg struct{ state game.GameState }

type syncMsg struct{ status scheduler.Status }

type actionDoneMsg struct {
	sent bool
	err  error
}

type sessionStartedMsg struct{ err error }

type sessionEndedMsg struct{ err error }

// hexRef identifies a hex by coordinates so hover survives board updates.
type hexRef struct{ X, Y int }

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx    context.Context
	cfg    *config.Config
	ctl    *controller.Controller
	sched  *scheduler.Scheduler
	router *input.Router
	store  session.Store
	logger *slog.Logger

	width  int
	height int
	ready  bool

	// Setup form state
	inSetup  bool
	gameID   textinput.Model
	factions map[game.Faction]bool
	focus    int
	setupErr string

	// Game state. The router reads the snapshot; each widget renders from
	// its own controller view.
	state      game.GameState
	status     controller.StatusView
	spells     controller.SpellView
	board      controller.BoardView
	sync       scheduler.Status
	scale      board.Scale
	hover      *hexRef
	hoverSpell int
	flash      string
	spellsVp   viewport.Model
	infoVp     viewport.Model

	showQuitModal bool
}

func NewConsoleUI(ctx context.Context, cfg *config.Config, ctl *controller.Controller, sched *scheduler.Scheduler,
	router *input.Router, store session.Store, logger *slog.Logger) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = "letters and numbers"
	ti.CharLimit = 32
	ti.Width = 20
	ti.Prompt = promptStyle.Render(":: ")

	state := ctl.State()
	factions := map[game.Faction]bool{game.FactionLight: true, game.FactionDark: false}
	inSetup := state.GameID == ""
	if inSetup {
		ti.Focus()
	} else {
		ti.SetValue(state.GameID)
		factions = state.EnabledFactions
	}

	m := ConsoleUI{
		ctx:        ctx,
		cfg:        cfg,
		ctl:        ctl,
		sched:      sched,
		router:     router,
		store:      store,
		logger:     logger,
		inSetup:    inSetup,
		gameID:     ti,
		factions:   factions,
		state:      state,
		scale:      board.NewScale(cfg.HexScale),
		hoverSpell: -1,
		spellsVp:   viewport.New(sideMinWidth, 10),
		infoVp:     viewport.New(sideMinWidth, 10),
	}
	m.syncViews()
	return m
}

// syncViews refreshes the per-widget views from the controller.
func (m *ConsoleUI) syncViews() {
	m.status = m.ctl.StatusView()
	m.spells = m.ctl.SpellView()
	m.board = m.ctl.BoardView()
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.inSetup {
		return textinput.Blink
	}
	return m.resumeSession()
}

// resumeSession restarts polling for a restored snapshot and fetches the
// board right away.
func (m ConsoleUI) resumeSession() tea.Cmd {
	ctx, ctl, sched := m.ctx, m.ctl, m.sched
	return func() tea.Msg {
		sched.Start(ctx)
		return sessionStartedMsg{err: ctl.Poll(ctx)}
	}
}

func (m ConsoleUI) startSession(gameID string, factions map[game.Faction]bool) tea.Cmd {
	ctx, ctl, sched, store := m.ctx, m.ctl, m.sched, m.store
	logger := m.logger
	return func() tea.Msg {
		if err := store.Save(ctx, session.Snapshot{EnabledFactions: factions, GameID: gameID}); err != nil {
			logger.Warn("Failed to save session snapshot", "error", err)
		}
		sched.Start(ctx)
		return sessionStartedMsg{err: ctl.Start(ctx, gameID, factions)}
	}
}

func (m ConsoleUI) endSession() tea.Cmd {
	ctx, ctl, sched, store := m.ctx, m.ctl, m.sched, m.store
	return func() tea.Msg {
		sched.Stop()
		ctl.Abandon()
		return sessionEndedMsg{err: store.Clear(ctx)}
	}
}

func (m ConsoleUI) execute(cmd input.Command) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		sent, err := input.Execute(ctx, cmd, ctl)
		return actionDoneMsg{sent: sent, err: err}
	}
}

// resumeIfStopped restarts a stopped auto-refresh. Any key or click counts
// as activity while the game is live.
func (m ConsoleUI) resumeIfStopped() tea.Cmd {
	if !m.sync.State.Stopped() || m.status.GameOver || m.status.GameID == "" {
		return nil
	}
	return m.resume()
}

func (m ConsoleUI) resume() tea.Cmd {
	sched := m.sched
	return func() tea.Msg {
		sched.Resume()
		return nil
	}
}

func (m ConsoleUI) submitHex(h game.Hex) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		sent, err := ctl.SubmitHex(ctx, h)
		return actionDoneMsg{sent: sent, err: err}
	}
}

func (m ConsoleUI) submitSpell(idx int) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		sent, err := ctl.SubmitSpell(ctx, idx)
		return actionDoneMsg{sent: sent, err: err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.syncViews()
		m.clampHover()
		m.refreshPanels()
		return m, nil

	case syncMsg:
		m.sync = msg.status
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Debug("Action failed", "error", msg.err)
		}
		return m, nil

	case sessionStartedMsg:
		if msg.err != nil {
			m.logger.Warn("Session request failed", "error", msg.err)
		}
		return m, nil

	case sessionEndedMsg:
		if msg.err != nil {
			m.logger.Warn("Failed to clear session snapshot", "error", msg.err)
		}
		m.inSetup = true
		m.state = game.GameState{}
		m.syncViews()
		m.hover, m.hoverSpell = nil, -1
		m.setupErr = ""
		m.focus = focusGameID
		m.gameID.Focus()
		return m, textinput.Blink
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.inSetup {
		return m.updateSetup(msg)
	}
	return m.updateGame(msg)
}

func (m ConsoleUI) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.gameID, cmd = m.gameID.Update(msg)
		return m, cmd
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case tea.KeyEnter:
		id := strings.TrimSpace(m.gameID.Value())
		if err := session.Validate(id, m.factions); err != nil {
			m.setupErr = "Error: " + err.Error()
			return m, nil
		}
		m.inSetup = false
		m.setupErr = ""
		m.gameID.Blur()
		m.state = game.NewGameState(id, m.factions)
		m.refreshPanels()
		return m, m.startSession(id, maps.Clone(m.factions))
	}

	if m.focus != focusGameID {
		if key.Type == tea.KeySpace || key.String() == "x" {
			f := game.FactionLight
			if m.focus == focusDark {
				f = game.FactionDark
			}
			m.factions[f] = !m.factions[f]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.gameID, cmd = m.gameID.Update(msg)
	m.setupErr = ""
	if err := session.ValidateGameID(m.gameID.Value()); err != nil && m.gameID.Value() != "" {
		m.setupErr = "Error: " + err.Error()
	}
	return m, cmd
}

func (m *ConsoleUI) setFocus(f int) {
	m.focus = f
	if f == focusGameID {
		m.gameID.Focus()
	} else {
		m.gameID.Blur()
	}
}

func (m ConsoleUI) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		m.flash = ""
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, m.resumeIfStopped()
		case tea.KeyCtrlN:
			return m, m.endSession()
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(m.status.GameID); err != nil {
				m.flash = "Could not copy game ID"
				m.logger.Debug("Clipboard unavailable", "error", err)
			} else {
				m.flash = "Game ID copied"
			}
			m.refreshPanels()
			return m, m.resumeIfStopped()
		}

		key := msg.String()
		if m.status.GameOver && key == "n" {
			return m, m.endSession()
		}

		cmd := m.router.Route(key, m.state)
		var cmds []tea.Cmd
		if cmd.Resume && m.sync.State.Stopped() {
			cmds = append(cmds, m.resume())
		}
		switch cmd.Kind {
		case input.ZoomIn:
			m.scale = m.scale.ZoomIn()
		case input.ZoomOut:
			m.scale = m.scale.ZoomOut()
		}
		if cmd.Sends() {
			cmds = append(cmds, m.execute(cmd))
		}
		m.refreshPanels()
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m ConsoleUI) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	cols, rows := m.boardSize()
	l, cells := boardGrid(m.board.Hexes, m.scale, cols, rows)

	var hovered *game.Hex
	m.hover, m.hoverSpell = nil, -1
	col, row := msg.X-1, msg.Y-headerHeight-1
	if cell, ok := board.HitTest(cells, m.scale.Float(), col, row); ok && col < cols {
		h := l.Hexes[cell.Index].Hex
		hovered = &h
		m.hover = &hexRef{X: h.X, Y: h.Y}
	}
	if idx, ok := m.spellAt(msg.X, msg.Y); ok {
		m.hoverSpell = idx
	}

	var cmd tea.Cmd
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		switch {
		case hovered != nil:
			cmd = m.submitHex(*hovered)
		case m.hoverSpell >= 0:
			cmd = m.submitSpell(m.hoverSpell)
		}
		if cmd != nil {
			cmd = tea.Batch(m.resumeIfStopped(), cmd)
		}
	}

	if msg.Action == tea.MouseActionPress && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown) {
		var vpCmd tea.Cmd
		m.infoVp, vpCmd = m.infoVp.Update(msg)
		cmd = tea.Batch(cmd, vpCmd)
	}

	m.refreshPanels()
	return m, cmd
}

// spellAt maps a screen position onto a spell row in the side panel.
func (m ConsoleUI) spellAt(x, y int) (int, bool) {
	cols, _ := m.boardSize()
	left := cols + 2 + 1
	top := headerHeight + 1
	if x < left || y < top || y >= top+m.spellsVp.Height {
		return 0, false
	}
	idx := y - top + m.spellsVp.YOffset
	if idx < 0 || idx >= len(m.spells.Spells) {
		return 0, false
	}
	return idx, true
}

func (m *ConsoleUI) clampHover() {
	if m.hover != nil {
		if _, ok := m.state.FindHex(m.hover.X, m.hover.Y); !ok {
			m.hover = nil
		}
	}
	if m.hoverSpell >= len(m.spells.Spells) {
		m.hoverSpell = -1
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
		return m, tea.Quit
	}
	switch key.String() {
	case "y", "Y":
		return m, tea.Quit
	case "n", "N":
		m.showQuitModal = false
	}
	return m, nil
}

// boardSize is the board panel's inner size.
func (m ConsoleUI) boardSize() (int, int) {
	side := max(m.width/3, sideMinWidth)
	cols := m.width - side - 4
	rows := m.height - headerHeight - footerHeight - 2
	return max(cols, 0), max(rows, 0)
}

func (m ConsoleUI) sideWidth() int {
	cols, _ := m.boardSize()
	return max(m.width-cols-4-2, 0)
}

// spellsHeight gives the spell list one row per spell, up to half the panel.
func (m ConsoleUI) spellsHeight() int {
	_, rows := m.boardSize()
	return max(min(len(m.spells.Spells), rows/2), 3)
}

func (m *ConsoleUI) resize() {
	_, rows := m.boardSize()
	w := m.sideWidth()
	spellsHeight := m.spellsHeight()

	m.spellsVp.Width = w
	m.spellsVp.Height = spellsHeight
	m.infoVp.Width = w
	m.infoVp.Height = max(rows-spellsHeight-1, 1)
	m.refreshPanels()
}

func (m *ConsoleUI) refreshPanels() {
	if !m.ready {
		return
	}
	if m.spellsVp.Height != m.spellsHeight() {
		m.resize()
		return
	}

	m.spellsVp.SetContent(renderSpells(m.spells, m.hoverSpell, m.spellsVp.Width))

	var hoverLabel, spellText string
	if m.hover != nil {
		if h, ok := m.state.FindHex(m.hover.X, m.hover.Y); ok {
			hoverLabel = game.HoverLabel(h)
		}
	}
	if m.hoverSpell >= 0 && m.hoverSpell < len(m.spells.Spells) {
		spellText = spellDetail(m.spells.Spells[m.hoverSpell])
	}
	m.infoVp.SetContent(renderInfo(hoverLabel, spellText, m.status.Info, m.status.Error, m.flash, m.infoVp.Width))
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.inSetup {
		return m.renderSetup()
	}

	header := m.renderHeader()

	cols, rows := m.boardSize()
	l, cells := boardGrid(m.board.Hexes, m.scale, cols, rows)
	boardPanel := panelStyle.Width(cols).Height(rows).Render(
		renderBoard(l, cells, cols, rows, hoverIndex(l, m.hover), m.board.AcceptsTarget),
	)

	sidePanel := panelStyle.Width(m.sideWidth()).Height(rows).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.spellsVp.View(),
			promptStyle.Render(strings.Repeat("─", m.sideWidth())),
			m.infoVp.View(),
		),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, boardPanel, sidePanel)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m ConsoleUI) renderHeader() string {
	title := titleStyle.Render("PIOUSLY")
	id := promptStyle.Render(fmt.Sprintf("game %s (ctrl+y to copy)", m.status.GameID))
	status := statusText(m.status)
	if name := m.status.CurrentAction; !m.status.GameOver && name != "" && name != game.ActionNone.String() {
		status += " · " + actionLabel(name)
	}
	if hint := turnHint(m.status.Phase); hint != "" {
		status += " · " + promptStyle.Render(hint)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", status, "  ", id) + "\n"
}

func (m ConsoleUI) renderFooter() string {
	var sync string
	switch label := m.sync.Label(); {
	case m.sync.State == scheduler.Running:
		sync = activeSyncStyle.Render(label)
	case m.sync.State == scheduler.Terminated:
		sync = promptStyle.Render(label)
	case label != "":
		sync = pausedSyncStyle.Render(label + " (press any key to resume)")
	}

	hints := actionHints(m.router, m.status)
	keys := promptStyle.Render(fmt.Sprintf("zoom +/- (%.1fx) · ctrl+n new game · esc quit", m.scale.Float()))
	return lipgloss.JoinVertical(lipgloss.Left, hints, lipgloss.JoinHorizontal(lipgloss.Top, keys, "  ", sync))
}

func (m ConsoleUI) renderSetup() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("PIOUSLY"))
	content.WriteString("\n\n")
	content.WriteString("Game ID: " + m.gameID.View())
	content.WriteString("\n\n")

	for i, f := range game.Factions {
		box := "[ ]"
		if m.factions[f] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, f)
		if m.focus == focusLight+i {
			line = selectedSpellStyle.Render(line)
		}
		content.WriteString(line + "\n")
	}

	if m.setupErr != "" {
		content.WriteString("\n" + errorStyle.Render(m.setupErr) + "\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Tab to move, Space to toggle a faction, Enter to start, Esc to quit"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Your game stays on the server. Restart the console to rejoin it.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
