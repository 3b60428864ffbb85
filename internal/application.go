package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rocketscienceinc/tictactoe-client/internal/config"
	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/event"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository"
	"github.com/rocketscienceinc/tictactoe-client/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-client/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-client/internal/tui"
	"github.com/rocketscienceinc/tictactoe-client/internal/usecase"
)

const eventQueueSize = 64

var (
	ErrAddrNotFound = errors.New("redis address string is empty")
	ErrURLNotFound  = errors.New("opponent service url is empty")
)

type recorder interface {
	Record(event *entity.GameEvent)
}

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	if conf.Server.URL == "" {
		return ErrURLNotFound
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	var journal recorder
	if conf.Journal.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		gameJournal := repository.NewGameJournal(logger, redisStorage.Connection, conf.Journal.Channel, conf.Journal.Buffer)
		go gameJournal.Start(ctx)

		journal = gameJournal
		log.Info("game journal enabled", "channel", gameJournal.Channel())
	}

	queue := event.NewQueue(eventQueueSize)
	program := tea.NewProgram(tui.NewModel(queue), tea.WithAltScreen())

	connManager := websocket.NewManager(logger, websocket.Options{
		URL:          conf.Server.URL,
		MaxAttempts:  conf.Reconnect.MaxAttempts,
		RetryDelay:   conf.Reconnect.Delay,
		DialTimeout:  conf.Reconnect.DialTimeout,
		WriteTimeout: conf.Reconnect.WriteTimeout,
	}, queue)
	gameController := tictactoe.NewGameController(logger, tui.NewScreen(program), journal)
	gameController.SetSender(connManager)
	connManager.SetHandler(gameController)

	gameLoop := usecase.NewGameLoop(logger, queue, connManager, gameController)

	loopErrCh := make(chan error, 1)
	go func() {
		loopErrCh <- gameLoop.Run(ctx)
		program.Quit()
	}()

	log.Info("Starting game", "url", conf.Server.URL)

	if _, err := program.Run(); err != nil {
		cancel()
		<-loopErrCh
		return fmt.Errorf("terminal UI error: %w", err)
	}

	cancel()

	if err := <-loopErrCh; err != nil {
		return fmt.Errorf("game loop error: %w", err)
	}

	log.Info("Application stopped")
	return nil
}
