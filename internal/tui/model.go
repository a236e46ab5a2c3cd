package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/park285/cheese-connect4/internal/board"
	"github.com/park285/cheese-connect4/internal/control"
	"github.com/park285/cheese-connect4/internal/msgcat"
	"github.com/park285/cheese-connect4/internal/session"
)

const cellWidth = 4

// Model is the bubbletea model for one player's screen. It never touches the
// session; everything it draws comes from FrameMsg snapshots.
type Model struct {
	keys    KeyMap
	help    help.Model
	cat     *msgcat.Catalog
	name    string
	intents chan<- control.Intent
	done    <-chan struct{}

	snap   session.Snapshot
	notice control.Notice
	width  int
}

// NewModel builds the screen. Intents are delivered on intents until done is
// closed.
func NewModel(cat *msgcat.Catalog, name string, initial session.Snapshot, intents chan<- control.Intent, done <-chan struct{}) Model {
	return Model{
		keys:    DefaultKeyMap(),
		help:    help.New(),
		cat:     cat,
		name:    name,
		intents: intents,
		done:    done,
		snap:    initial,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case FrameMsg:
		stale := msg.Snap.Version < m.snap.Version
		if stale && msg.Notice.Kind == control.NoticeNone {
			return m, nil
		}
		if !stale {
			m.snap = msg.Snap
		}
		if msg.Notice.Kind != control.NoticeNone || !m.snap.Outcome.Terminal() {
			m.notice = msg.Notice
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.emit(control.Quit)
			return m, tea.Quit
		case key.Matches(msg, m.keys.Left):
			m.emit(control.MoveCursorLeft)
		case key.Matches(msg, m.keys.Right):
			m.emit(control.MoveCursorRight)
		case key.Matches(msg, m.keys.Place):
			m.emit(control.PlaceAtCursor)
		}
	}
	return m, nil
}

func (m Model) emit(in control.Intent) {
	select {
	case m.intents <- in:
	case <-m.done:
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.cat.Text("title", nil)))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	grid := lipgloss.JoinVertical(lipgloss.Left, m.cursorLine(), m.gridView(), m.columnLabels())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, m.rulesPanel()))
	b.WriteString("\n")

	if n := m.noticeLine(); n != "" {
		b.WriteString(NoticeStyle.Render(n))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) playerLabel(p board.Player) string {
	switch p {
	case board.PlayerA:
		return DiscAStyle.Render(m.cat.Text("player.a", nil))
	case board.PlayerB:
		return DiscBStyle.Render(m.cat.Text("player.b", nil))
	default:
		return ""
	}
}

func (m Model) statusLine() string {
	out := m.snap.Outcome
	data := map[string]any{"Name": m.name}
	switch out.Status {
	case session.StatusWin:
		data["Player"] = m.playerLabel(out.Winner)
		if out.Winner == m.snap.Local {
			return GameOverStyle.Render(m.cat.Text("status.win_local", data))
		}
		return GameOverStyle.Render(m.cat.Text("status.win_remote", data))
	case session.StatusDraw:
		return GameOverStyle.Render(m.cat.Text("status.draw", data))
	case session.StatusPeerLost:
		return GameOverStyle.Render(m.cat.Text("status.peer_lost", data))
	}
	data["Player"] = m.playerLabel(m.snap.Turn)
	if m.snap.MyTurn() {
		return StatusStyle.Render(m.cat.Text("status.your_turn", data))
	}
	return StatusStyle.Render(m.cat.Text("status.their_turn", data))
}

// cursorLine puts "^^^" above the selected column while the game runs.
func (m Model) cursorLine() string {
	if m.snap.Outcome.Terminal() {
		return ""
	}
	pad := strings.Repeat(" ", 1+m.snap.Cursor*cellWidth)
	return pad + CursorStyle.Render("^^^")
}

func (m Model) gridView() string {
	sep := FrameStyle.Render("│")
	var b strings.Builder
	for r := 0; r < board.Rows; r++ {
		b.WriteString(sep)
		for c := 0; c < board.Cols; c++ {
			b.WriteString(disc(m.snap.Cells.Cell(r, c)))
			b.WriteString(sep)
		}
		b.WriteString("\n")
	}
	b.WriteString(FrameStyle.Render("└" + strings.Repeat("───┴", board.Cols-1) + "───┘"))
	return b.String()
}

func disc(p board.Player) string {
	switch p {
	case board.PlayerA:
		return DiscAStyle.Render(" ● ")
	case board.PlayerB:
		return DiscBStyle.Render(" ● ")
	default:
		return EmptyStyle.Render(" · ")
	}
}

func (m Model) columnLabels() string {
	var b strings.Builder
	b.WriteString(" ")
	for c := 0; c < board.Cols; c++ {
		b.WriteString(" ")
		b.WriteByte(byte('1' + c))
		b.WriteString("  ")
	}
	return EmptyStyle.Render(b.String())
}

func (m Model) rulesPanel() string {
	body := RulesTitleStyle.Render(m.cat.Text("rules.title", nil)) + "\n" +
		strings.TrimRight(m.cat.Text("rules.lines", nil), "\n")
	return RulesStyle.Render(body)
}

func (m Model) noticeLine() string {
	n := m.notice
	data := map[string]any{"Reason": reason(n.Err)}
	switch n.Kind {
	case control.NoticeRejected:
		return m.cat.Text("notice.rejected", data)
	case control.NoticeSendFailed:
		return m.cat.Text("notice.send_failed", data)
	case control.NoticePeerLost:
		return m.cat.Text("notice.peer_lost", data)
	default:
		return ""
	}
}

// reason strips the shared "move rejected: " prefix from session errors.
func reason(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if errors.Is(err, session.ErrRejected) {
		s = strings.TrimPrefix(s, session.ErrRejected.Error()+": ")
	}
	return s
}
