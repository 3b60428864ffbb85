package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

type (
	markMsg struct {
		cell int
		mark entity.Mark
	}
	enabledMsg struct {
		cell    int
		enabled bool
	}
	takenMsg struct {
		cell  int
		taken bool
	}
	statusMsg   string
	gameOverMsg bool
	lineMsg     struct{ line *entity.Line }
)

type messenger interface {
	Send(msg tea.Msg)
}

// Screen is what the game controller draws on. Every call becomes a message
// for the bubbletea program, so the model is only touched by its own loop.
type Screen struct {
	program messenger
}

func NewScreen(program messenger) *Screen {
	return &Screen{program: program}
}

func (that *Screen) SetMark(cell int, mark entity.Mark) {
	that.program.Send(markMsg{cell: cell, mark: mark})
}

func (that *Screen) SetCellEnabled(cell int, enabled bool) {
	that.program.Send(enabledMsg{cell: cell, enabled: enabled})
}

func (that *Screen) SetTaken(cell int, taken bool) {
	that.program.Send(takenMsg{cell: cell, taken: taken})
}

func (that *Screen) SetStatus(text string) {
	that.program.Send(statusMsg(text))
}

func (that *Screen) SetGameOver(over bool) {
	that.program.Send(gameOverMsg(over))
}

func (that *Screen) ShowWinningLine(line entity.Line) {
	that.program.Send(lineMsg{line: &line})
}

func (that *Screen) ClearWinningLine() {
	that.program.Send(lineMsg{})
}
