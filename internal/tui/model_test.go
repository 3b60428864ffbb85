package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	events []event.Event
}

func (that *fakePoster) Post(ev event.Event) bool {
	that.events = append(that.events, ev)
	return true
}

type fakeProgram struct {
	msgs []tea.Msg
}

func (that *fakeProgram) Send(msg tea.Msg) {
	that.msgs = append(that.msgs, msg)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func update(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}

	return m, cmd
}

func TestModel_Cursor(t *testing.T) {
	// Given: the cursor in the center
	m := NewModel(&fakePoster{})
	require.Equal(t, 4, m.cursor)

	// When: moving up twice, the second press hits the edge
	m, _ = update(t, m, key("up"), key("k"))

	// Then: the cursor stops on the top row
	assert.Equal(t, 1, m.cursor)

	// When: moving left twice and down three times
	m, _ = update(t, m, key("left"), key("h"), key("down"), key("j"), key("j"))

	// Then: the cursor sits in the bottom left corner
	assert.Equal(t, 6, m.cursor)

	m, _ = update(t, m, key("l"), key("right"), key("right"))
	assert.Equal(t, 8, m.cursor)
}

func TestModel_Activate(t *testing.T) {
	t.Run("Activate_EnabledCell", func(t *testing.T) {
		poster := &fakePoster{}
		m := NewModel(poster)

		// Given: the center cell is enabled
		m, _ = update(t, m, enabledMsg{cell: 4, enabled: true})

		// When: enter is pressed
		m, cmd := update(t, m, key("enter"))

		// Then: the cell is posted to the game loop and disabled until the controller answers
		require.NotNil(t, cmd)
		cmd()
		assert.Equal(t, []event.Event{event.CellActivated{Cell: 4}}, poster.events)
		assert.False(t, m.enabled[4])
	})

	t.Run("Activate_DisabledCell", func(t *testing.T) {
		poster := &fakePoster{}
		m := NewModel(poster)

		// When: space is pressed on a disabled cell
		_, cmd := update(t, m, key(" "))

		// Then: nothing is posted
		assert.Nil(t, cmd)
		assert.Empty(t, poster.events)
	})
}

func TestModel_Restart(t *testing.T) {
	poster := &fakePoster{}
	m := NewModel(poster)

	// When: r is pressed
	_, cmd := update(t, m, key("r"))

	// Then: a restart is requested
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []event.Event{event.RestartRequested{}}, poster.events)
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(&fakePoster{})

	// When: q is pressed
	_, cmd := update(t, m, key("q"))

	// Then: a command quitting both the game loop and the program is returned
	assert.NotNil(t, cmd)
}

func TestModel_View(t *testing.T) {
	program := &fakeProgram{}
	screen := NewScreen(program)

	// Given: the controller draws a won game through the screen
	for _, cell := range []int{2, 4, 6} {
		screen.SetMark(cell, entity.PlayerX)
		screen.SetTaken(cell, true)
	}
	screen.SetMark(0, entity.PlayerO)
	screen.SetStatus("You win!")
	screen.SetGameOver(true)
	screen.ShowWinningLine(entity.LineFor(7))

	// When: the messages reach the model
	m, _ := update(t, NewModel(&fakePoster{}), program.msgs...)

	// Then: the view shows the marks, the status and the line
	view := m.View()
	assert.Contains(t, view, "[X]")
	assert.Contains(t, view, "[O]")
	assert.Contains(t, view, "You win!")
	assert.Contains(t, view, "Winning line: diagonal (-45°)")
	assert.True(t, m.gameOver)
	assert.True(t, m.onWinningLine(2))
	assert.False(t, m.onWinningLine(0))

	// When: the line is cleared
	screen.ClearWinningLine()
	m, _ = update(t, m, program.msgs[len(program.msgs)-1])

	// Then: no line is described
	assert.NotContains(t, m.View(), "Winning line")
}

func TestDescribeLine(t *testing.T) {
	tests := []struct {
		combo int
		want  string
	}{
		{0, "Winning line: top row"},
		{2, "Winning line: bottom row"},
		{3, "Winning line: left column"},
		{4, "Winning line: middle column"},
		{6, "Winning line: diagonal (+45°)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, describeLine(entity.LineFor(tt.combo)))
	}
}
