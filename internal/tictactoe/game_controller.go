package tictactoe

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-client/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

const (
	StatusYourTurn        = "Your turn"
	StatusYouMoveFirst    = "You move first, your turn"
	StatusOpponentFirst   = "Opponent moves first..."
	StatusWaitingOpponent = "Waiting for opponent..."
	StatusAssigning       = "Waiting for first-player assignment..."
	StatusYouWin          = "You win!"
	StatusOpponentWins    = "Opponent wins!"
	StatusDraw            = "Draw!"
	StatusReconnecting    = "Connection lost, reconnecting..."
	StatusDisconnected    = "Disconnected"
	StatusConnectFailed   = "Connection failed, restart the app to retry"
)

type view interface {
	SetMark(cell int, mark entity.Mark)
	SetCellEnabled(cell int, enabled bool)
	SetTaken(cell int, taken bool)
	SetStatus(text string)
	SetGameOver(over bool)
	ShowWinningLine(line entity.Line)
	ClearWinningLine()
}

type sender interface {
	Send(msg entity.Message)
	IsOpen() bool
}

type journal interface {
	Record(event *entity.GameEvent)
}

// GameController owns the board and the turn-taking state machine. All of its
// methods must be called from the game loop goroutine.
type GameController struct {
	logger  *slog.Logger
	view    view
	sender  sender
	journal journal

	gameID   string
	board    entity.Board
	state    entity.GameState
	winner   entity.Mark
	line     *entity.Line
	lastMove *int

	// status of a connection that will not come back; cleared on open
	connStatus string
}

func NewGameController(logger *slog.Logger, view view, journal journal) *GameController {
	if journal == nil {
		journal = nopJournal{}
	}

	return &GameController{
		logger:  logger.With("component", "game_controller"),
		view:    view,
		journal: journal,

		gameID: uuid.NewString(),
		board:  entity.NewBoard(),
		state:  entity.StatePlaying,
	}
}

// SetSender - attaches the connection used for outbound messages.
func (that *GameController) SetSender(sender sender) {
	that.sender = sender
}

func (that *GameController) State() entity.GameState {
	return that.state
}

func (that *GameController) Board() entity.Board {
	return that.board
}

func (that *GameController) Winner() entity.Mark {
	return that.winner
}

// ApplyLocalMove - places X for the local player. Anything but an empty cell
// on the local player's turn is dropped without side effects.
func (that *GameController) ApplyLocalMove(cell int) {
	log := that.logger.With("method", "ApplyLocalMove", "cell", cell)

	if that.state.IsFinished() {
		log.Debug("move ignored", "error", apperror.ErrGameFinished, "state", that.state.String())
		return
	}

	if that.connStatus != "" {
		log.Debug("move ignored", "error", apperror.ErrSessionNotOpen, "status", that.connStatus)
		return
	}

	if that.state != entity.StatePlaying {
		log.Debug("move ignored", "error", apperror.ErrNotYourTurn, "state", that.state.String())
		return
	}

	if err := that.board.ValidateCell(cell); err != nil {
		log.Debug("move ignored", "error", err)
		return
	}

	that.placeMark(cell, entity.PlayerX)

	switch {
	case that.CheckWin(entity.PlayerX):
		that.finish(entity.StateWin, entity.PlayerX, StatusYouWin)
	case that.CheckDraw():
		that.finish(entity.StateDraw, entity.EmptyCell, StatusDraw)
	default:
		that.state = entity.StateWaiting
		that.lastMove = &cell
		that.disableAllCells()
		that.view.SetStatus(StatusWaitingOpponent)
		that.send(entity.NewMoveMessage(cell, that.board))
	}
}

// ApplyRemoteMove - places O for the opponent. Only accepted while waiting
// for the opponent and only on an empty cell.
func (that *GameController) ApplyRemoteMove(cell int) {
	log := that.logger.With("method", "ApplyRemoteMove", "cell", cell)

	if that.state != entity.StateWaiting {
		log.Warn("protocol violation", "error", apperror.ErrNotWaiting, "state", that.state.String())
		return
	}

	if err := that.board.ValidateCell(cell); err != nil {
		log.Warn("protocol violation", "error", err)
		return
	}

	that.placeMark(cell, entity.PlayerO)
	that.lastMove = nil

	switch {
	case that.CheckWin(entity.PlayerO):
		that.finish(entity.StateWin, entity.PlayerO, StatusOpponentWins)
	case that.CheckDraw():
		that.finish(entity.StateDraw, entity.EmptyCell, StatusDraw)
	default:
		that.state = entity.StatePlaying
		that.enableEmptyCells()
		that.view.SetStatus(StatusYourTurn)
	}
}

// AssignFirstPlayer - applies the opponent service's answer to a start request.
func (that *GameController) AssignFirstPlayer(firstPlayer string) {
	log := that.logger.With("method", "AssignFirstPlayer", "first_player", firstPlayer)

	if that.state != entity.StateAssigning {
		log.Warn("protocol violation", "error", apperror.ErrNotAssigning, "state", that.state.String())
		return
	}

	side := entity.ParseFirstPlayer(firstPlayer)
	if side == entity.SideOpponent {
		that.state = entity.StateWaiting
		that.disableAllCells()
		that.view.SetStatus(StatusOpponentFirst)
	} else {
		that.state = entity.StatePlaying
		that.enableEmptyCells()
		that.view.SetStatus(StatusYouMoveFirst)
	}

	that.record(entity.GameEventAssigned, side.Mark(), nil)
	log.Info("first player assigned", "mark", side.Mark())
}

// CheckWin - reports whether player owns a full combo. The lowest matching
// combo is decorated with a winning line.
func (that *GameController) CheckWin(player entity.Mark) bool {
	combo := that.board.WinningCombo(player)
	if combo < 0 {
		return false
	}

	line := entity.LineFor(combo)
	that.line = &line
	that.view.ShowWinningLine(line)

	return true
}

// CheckDraw - board is full. Only meaningful after CheckWin returned false.
func (that *GameController) CheckDraw() bool {
	return that.board.IsFull()
}

// ResetGame - starts a new game. With an open session the first player is
// requested from the opponent service, otherwise the local player starts.
// After the connection ended for good the board stays disabled.
func (that *GameController) ResetGame() {
	that.gameID = uuid.NewString()
	that.board = entity.NewBoard()
	that.winner = entity.EmptyCell
	that.lastMove = nil

	if that.line != nil {
		that.line = nil
		that.view.ClearWinningLine()
	}
	that.view.SetGameOver(false)

	for cell := range that.board {
		that.view.SetMark(cell, entity.EmptyCell)
		that.view.SetTaken(cell, false)
	}

	that.record(entity.GameEventReset, entity.EmptyCell, nil)
	that.logger.Info("game reset", "game_id", that.gameID)

	if that.sender == nil || !that.sender.IsOpen() {
		that.state = entity.StatePlaying

		if that.connStatus != "" {
			that.disableAllCells()
			that.view.SetStatus(that.connStatus)
			return
		}

		that.enableEmptyCells()
		that.view.SetStatus(StatusYourTurn)
		return
	}

	that.requestAssignment()
}

// OnReady - the session to the opponent service has just opened. Anything
// the opponent service may have missed while disconnected is sent again.
func (that *GameController) OnReady() {
	log := that.logger.With("method", "OnReady", "state", that.state.String())

	that.connStatus = ""

	switch that.state {
	case entity.StateAssigning:
		that.requestAssignment()
	case entity.StatePlaying:
		if len(that.board.EmptyCells()) == entity.BoardSize {
			that.requestAssignment()
			return
		}
		that.enableEmptyCells()
		that.view.SetStatus(StatusYourTurn)
	case entity.StateWaiting:
		if that.lastMove == nil {
			that.requestAssignment()
			return
		}
		log.Info("resending last move", "cell", *that.lastMove)
		that.view.SetStatus(StatusWaitingOpponent)
		that.send(entity.NewMoveMessage(*that.lastMove, that.board))
	case entity.StateWin, entity.StateDraw:
	}
}

// OnConnectionLost - the session closed abnormally and a retry is scheduled.
func (that *GameController) OnConnectionLost() {
	that.view.SetStatus(StatusReconnecting)
}

// OnDisconnected - the session closed normally, no retry follows.
func (that *GameController) OnDisconnected() {
	that.endConnection(StatusDisconnected)
}

// OnConnectionFailed - the reconnect budget is exhausted.
func (that *GameController) OnConnectionFailed() {
	that.endConnection(StatusConnectFailed)
}

// endConnection - no session will open again, so input stays off and the
// status is kept across resets.
func (that *GameController) endConnection(status string) {
	that.connStatus = status
	that.disableAllCells()
	that.view.SetStatus(status)
}

func (that *GameController) requestAssignment() {
	that.state = entity.StateAssigning
	that.disableAllCells()
	that.send(entity.NewResetMessage())
	that.send(entity.NewStartMessage())
	that.view.SetStatus(StatusAssigning)
}

func (that *GameController) placeMark(cell int, mark entity.Mark) {
	that.board[cell] = mark
	that.view.SetMark(cell, mark)
	that.view.SetTaken(cell, true)
	that.view.SetCellEnabled(cell, false)

	that.record(entity.GameEventMove, mark, &cell)
}

func (that *GameController) finish(state entity.GameState, winner entity.Mark, status string) {
	that.state = state
	that.winner = winner
	that.lastMove = nil
	that.disableAllCells()
	that.view.SetStatus(status)

	if state == entity.StateWin {
		that.view.SetGameOver(true)
	}

	that.record(entity.GameEventFinished, winner, nil)
	that.logger.Info("game finished", "game_id", that.gameID, "state", state.String(), "winner", winner)
}

func (that *GameController) enableEmptyCells() {
	for cell, mark := range that.board {
		that.view.SetCellEnabled(cell, mark == entity.EmptyCell)
	}
}

func (that *GameController) disableAllCells() {
	for cell := range that.board {
		that.view.SetCellEnabled(cell, false)
	}
}

func (that *GameController) send(msg entity.Message) {
	if that.sender == nil {
		that.logger.Warn("message dropped", "action", msg.Action, "error", apperror.ErrSessionNotOpen)
		return
	}

	that.sender.Send(msg)
}

func (that *GameController) record(eventType string, player entity.Mark, cell *int) {
	event := &entity.GameEvent{
		GameID: that.gameID,
		Type:   eventType,
		Player: player,
		Board:  that.board,
		State:  that.state.String(),
		Line:   that.line,
		Time:   time.Now().UTC(),
	}

	if cell != nil {
		position := *cell
		event.Position = &position
	}

	if eventType == entity.GameEventFinished {
		event.Winner = player
		event.Player = entity.EmptyCell
	}

	that.journal.Record(event)
}

type nopJournal struct{}

func (nopJournal) Record(*entity.GameEvent) {}
