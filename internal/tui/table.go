package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/pokerclient/internal/connection"
	"github.com/lox/pokerclient/internal/protocol"
	"github.com/lox/pokerclient/internal/session"
)

// Table is the part of the connection manager the table view drives.
type Table interface {
	Connect(roomID string)
	Disconnect()
	SendPlayerAction(action string, opts ...connection.ActionOption)
}

const maxLogEntries = 500

// TableModel renders one room's game state and forwards the player's
// actions. All state arrives through hub messages.
type TableModel struct {
	table   Table
	session session.Session
	room    protocol.Room
	logger  *log.Logger

	logViewport viewport.Model
	actionInput textinput.Model
	focusedPane int // 0 = log, 1 = input

	entries   []string
	state     *protocol.GameState
	connected bool
	banner    string
	lastError string

	width  int
	height int
}

// NewTableModel creates the view for room. Nothing connects until Init.
func NewTableModel(table Table, sess session.Session, room protocol.Room, logger *log.Logger) *TableModel {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "fold, check, call, bet 50, all-in or /help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(focusColor).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TableModel{
		table:       table,
		session:     sess,
		room:        room,
		logger:      logger.WithPrefix("tui").With("room", room.ID),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		banner:      "Connecting...",
	}
}

// Init connects to the room.
func (m *TableModel) Init() tea.Cmd {
	roomID := m.room.ID
	return tea.Batch(textinput.Blink, func() tea.Msg {
		m.table.Connect(roomID)
		return nil
	})
}

// Update handles hub notifications and keyboard input.
func (m *TableModel) Update(msg tea.Msg) (*TableModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case GameStateMsg:
		m.applyState(msg.State)

	case StatusMsg:
		m.connected = msg.Connected
		if msg.Connected {
			m.banner = ""
			m.lastError = ""
		} else if m.banner == "" {
			m.banner = "Disconnected"
		}

	case ErrorMsg:
		m.lastError = msg.Message

	case NoticeMsg:
		n := msg.Notice
		if n.Level == connection.LevelWarning {
			m.banner = n.Description
		}
		if n.Title == "Connection Failed" || n.Title == "Server Unavailable" {
			m.banner = n.Description + " Type /retry to try again."
		}
		m.addLogEntry(noticeStyle(n.Level).Render(n.Title) + ": " + n.Description)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
			return m, nil
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				return m, m.submit(input)
			}
		case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
			if m.focusedPane == 0 {
				var cmd tea.Cmd
				m.logViewport, cmd = m.logViewport.Update(msg)
				return m, cmd
			}
		}
	}

	if m.focusedPane == 1 {
		var cmd tea.Cmd
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *TableModel) applyState(state protocol.GameState) {
	prev := m.state
	m.state = &state

	if prev == nil || prev.Phase != state.Phase {
		m.addLogEntry(HandInfoStyle.Render(fmt.Sprintf("*** %s ***", strings.ToUpper(string(state.Phase)))))
	}
	if state.Winner != nil && (prev == nil || prev.Winner == nil) {
		m.addLogEntry(SuccessStyle.Render(fmt.Sprintf("%s wins $%d", state.Winner.Username, state.Pot)))
	}
	if state.CurrentPlayer != "" && (prev == nil || prev.CurrentPlayer != state.CurrentPlayer) {
		if state.IsPlayerTurn(m.session.PlayerID) {
			m.addLogEntry(ActionsStyle.Render("Your turn"))
		} else {
			m.addLogEntry(InfoStyle.Render("Waiting for " + state.PlayerName(state.CurrentPlayer)))
		}
	}
}

// submit parses input and returns the command that performs it.
func (m *TableModel) submit(input string) tea.Cmd {
	c, err := parseCommand(input)
	if err != nil {
		m.addLogEntry(ErrorStyle.Render(err.Error()))
		return nil
	}

	switch c.kind {
	case cmdHelp:
		m.addLogEntry(InfoStyle.Render(helpText))
		return nil
	case cmdQuit:
		return tea.Quit
	case cmdLeave:
		m.logger.Info("Leaving room")
		return func() tea.Msg {
			m.table.Disconnect()
			return LeaveRoomMsg{}
		}
	case cmdRetry:
		m.logger.Info("Manual reconnect")
		m.banner = "Connecting..."
		m.lastError = ""
		roomID := m.room.ID
		return func() tea.Msg {
			m.table.Connect(roomID)
			return nil
		}
	}

	var opts []connection.ActionOption
	label := c.action
	if c.amount != nil {
		opts = append(opts, connection.WithAmount(*c.amount))
		label = fmt.Sprintf("%s $%d", c.action, *c.amount)
	}
	m.addLogEntry(InfoStyle.Render("You: " + label))
	action := c.action
	return func() tea.Msg {
		m.table.SendPlayerAction(action, opts...)
		return nil
	}
}

func (m *TableModel) addLogEntry(entry string) {
	m.entries = append(m.entries, entry)
	if len(m.entries) > maxLogEntries {
		m.entries = m.entries[len(m.entries)-maxLogEntries:]
	}
	m.logViewport.SetContent(strings.Join(m.entries, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the table
func (m *TableModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Width(m.width).Render(fmt.Sprintf(" %s  %s  %s", m.room.Name, m.room.Stakes(), m.statusText()))

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := paneBorder.
		BorderForeground(focusColor).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 30)
	paneHeight := max(m.height-actionHeight-6, 1)

	sidebar := paneBorder.Width(sidebarWidth).Height(paneHeight).Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight
	logStyle := paneBorder.Width(m.logViewport.Width).Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(focusColor)
	}
	logPane := logStyle.Render(m.logViewport.View())

	top := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, header, top, actionPane)
}

func (m *TableModel) statusText() string {
	switch {
	case m.connected:
		return "● connected"
	case m.banner != "":
		return "○ " + m.banner
	default:
		return "○ disconnected"
	}
}

func (m *TableModel) renderSidebar() string {
	var b strings.Builder

	if m.state == nil {
		b.WriteString(InfoStyle.Render("Waiting for game state..."))
		return b.String()
	}
	s := m.state

	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", s.Pot)))
	b.WriteString("  ")
	b.WriteString(InfoStyle.Render(string(s.Phase)))
	b.WriteString("\n")
	if len(s.CommunityCards) > 0 {
		b.WriteString("Board: " + formatCards(s.CommunityCards) + "\n")
	}
	b.WriteString("\n")

	for _, p := range s.Players {
		b.WriteString(m.renderPlayer(s, p))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *TableModel) renderPlayer(s *protocol.GameState, p protocol.Player) string {
	marker := "  "
	if p.ID == s.CurrentPlayer {
		marker = "▶ "
	}

	var tags []string
	if p.ID == s.Dealer || p.IsDealer {
		tags = append(tags, "D")
	}
	if p.ID == s.SmallBlind || p.IsSmallBlind {
		tags = append(tags, "SB")
	}
	if p.ID == s.BigBlind || p.IsBigBlind {
		tags = append(tags, "BB")
	}

	line := fmt.Sprintf("%s%s $%d", marker, p.Username, p.Balance)
	if len(tags) > 0 {
		line += " [" + strings.Join(tags, ",") + "]"
	}
	if p.Bet > 0 {
		line += fmt.Sprintf(" bet $%d", p.Bet)
	}

	switch {
	case p.Folded:
		return InfoStyle.Render(line + " (folded)")
	case p.IsAllIn:
		return WarningStyle.Render(line + " (all-in)")
	case p.ID == m.session.PlayerID:
		return SelectedStyle.Render(line)
	default:
		return line
	}
}

func (m *TableModel) renderActionPane() string {
	var b strings.Builder

	if m.lastError != "" {
		b.WriteString(ErrorStyle.Render(m.lastError))
		b.WriteString("\n")
	}

	if me, ok := m.state.LocalPlayer(m.session.PlayerID); ok && len(me.Cards) > 0 {
		b.WriteString(HandInfoStyle.Render("Hand: ") + formatCards(me.Cards) + "\n")
	}

	if m.state.IsPlayerTurn(m.session.PlayerID) {
		b.WriteString(m.renderAvailableActions())
	} else {
		b.WriteString(HandInfoStyle.Render("Waiting..."))
	}
	b.WriteString("\n")

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • /leave to return to lobby • Ctrl+C to quit"))
	}
	return b.String()
}

func (m *TableModel) renderAvailableActions() string {
	id := m.session.PlayerID
	actions := []string{ErrorStyle.Render("[fold]")}
	if m.state.CanCheck(id) {
		actions = append(actions, SuccessStyle.Render("[check]"))
	} else {
		actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", m.state.CallAmount(id))))
	}
	actions = append(actions, WarningStyle.Render(fmt.Sprintf("[bet min $%d]", m.state.MinBet)))
	actions = append(actions, WarningStyle.Render("[all-in]"))

	text := "Your turn: " + strings.Join(actions, " ")
	if m.state.TimeLeft > 0 {
		text += InfoStyle.Render(fmt.Sprintf("  %ds left", m.state.TimeLeft))
	}
	return ActionsStyle.Render(text)
}

func formatCards(cards []protocol.Card) string {
	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}
