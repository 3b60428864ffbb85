package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/event"
)

const boardSide = 3

type poster interface {
	Post(ev event.Event) bool
}

// Model renders the board and turns key presses into game loop events. It
// never changes the board itself: marks arrive from the controller.
type Model struct {
	poster poster

	board    entity.Board
	enabled  [entity.BoardSize]bool
	taken    [entity.BoardSize]bool
	status   string
	gameOver bool
	line     *entity.Line
	cursor   int
}

func NewModel(poster poster) Model {
	return Model{
		poster: poster,
		board:  entity.NewBoard(),
		status: "Connecting...",
		cursor: entity.BoardSize / 2,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case markMsg:
		m.board[msg.cell] = msg.mark
	case enabledMsg:
		m.enabled[msg.cell] = msg.enabled
	case takenMsg:
		m.taken[msg.cell] = msg.taken
	case statusMsg:
		m.status = string(msg)
	case gameOverMsg:
		m.gameOver = bool(msg)
	case lineMsg:
		m.line = msg.line
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Sequence(m.post(event.Quit{}), tea.Quit)
	case "up", "k":
		if m.cursor >= boardSide {
			m.cursor -= boardSide
		}
	case "down", "j":
		if m.cursor < entity.BoardSize-boardSide {
			m.cursor += boardSide
		}
	case "left", "h":
		if m.cursor%boardSide > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%boardSide < boardSide-1 {
			m.cursor++
		}
	case "r":
		return m, m.post(event.RestartRequested{})
	case "enter", " ":
		if !m.enabled[m.cursor] {
			break
		}
		// until the controller answers
		m.enabled[m.cursor] = false
		return m, m.post(event.CellActivated{Cell: m.cursor})
	}

	return m, nil
}

// post - hands ev to the game loop off the bubbletea goroutine.
func (m Model) post(ev event.Event) tea.Cmd {
	return func() tea.Msg {
		m.poster.Post(ev)
		return nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Tic-Tac-Toe"))
	b.WriteString("\n\n")

	for row := range boardSide {
		b.WriteString("  ")
		for col := range boardSide {
			b.WriteString(m.renderCell(row*boardSide + col))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")

	if m.line != nil {
		b.WriteString(winStyle.Render(describeLine(*m.line)))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render("\narrows/hjkl move, enter place, r restart, q quit\n"))

	return b.String()
}

func (m Model) renderCell(cell int) string {
	mark := m.board[cell]

	content := " "
	if mark != entity.EmptyCell {
		content = string(mark)
	}
	text := "[" + content + "]"

	switch {
	case m.onWinningLine(cell):
		return winStyle.Render(text)
	case cell == m.cursor && !m.gameOver:
		if mark == entity.EmptyCell {
			return cursorStyle.Render(text)
		}
		return cursorStyle.Foreground(markStyle(mark).GetForeground()).Render(text)
	case !m.taken[cell] && !m.enabled[cell]:
		return disabledCell.Render(text)
	default:
		return markStyle(mark).Render(text)
	}
}

func (m Model) onWinningLine(cell int) bool {
	if m.line == nil {
		return false
	}

	for _, c := range entity.WinCombos[m.line.Combo] {
		if c == cell {
			return true
		}
	}

	return false
}

var rowNames = [boardSide]string{"top", "middle", "bottom"}
var columnNames = [boardSide]string{"left", "middle", "right"}

func describeLine(line entity.Line) string {
	switch line.Kind {
	case entity.LineHorizontal:
		return fmt.Sprintf("Winning line: %s row", rowNames[line.Combo])
	case entity.LineVertical:
		return fmt.Sprintf("Winning line: %s column", columnNames[line.Combo-boardSide])
	default:
		return fmt.Sprintf("Winning line: diagonal (%+d°)", line.Angle)
	}
}
