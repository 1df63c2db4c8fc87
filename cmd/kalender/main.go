package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/kalender/internal/application"
	"github.com/example/kalender/internal/cli"
	"github.com/example/kalender/internal/config"
	"github.com/example/kalender/internal/logging"
	"github.com/example/kalender/internal/persistence"
	"github.com/example/kalender/internal/persistence/filestore"
	"github.com/example/kalender/internal/persistence/sqlite"
)

func main() {
	os.Exit(realMain(os.Stdin, os.Stdout, os.Stderr))
}

// realMain runs the program and returns its exit code, so deferred cleanup
// has run before the process exits.
func realMain(in io.Reader, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	logOut, closeLog, err := openLogOutput(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer closeLog()
	logger := logging.New(logOut, cfg.LogFormat, cfg.LogLevel)

	if err := run(ctx, cfg, in, out, logger); err != nil {
		if !errors.Is(err, cli.ErrInputClosed) {
			fmt.Fprintln(errOut, err)
		}
		logger.Error("calendar session ended with error", "error", err, "error_kind", application.ErrorKind(err))
		return 1
	}
	return 0
}

// run performs one interactive session: it picks the storage encoding,
// opens the store and hands control to the menu loop.
func run(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	ui := cli.New(in, out)
	ui.Welcome()

	format := cfg.Storage
	if format == "" {
		chosen, err := ui.ChooseFormat()
		if err != nil {
			return err
		}
		format = chosen
	}

	store, closeStore, err := openStore(cfg, format, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	logger.Info("calendar session started", "format", string(format), "location", store.Location())
	svc := application.NewCalendarServiceWithLogger(store, time.Now, logger)
	return ui.Run(logging.ContextWithLogger(ctx, logger), svc)
}

// openStore returns the store for format along with a function releasing it.
func openStore(cfg config.Config, format persistence.Format, logger *slog.Logger) (persistence.Store, func() error, error) {
	noop := func() error { return nil }
	switch format {
	case persistence.FormatFile:
		return filestore.NewAggregateStore(cfg.DataFile), noop, nil
	case persistence.FormatFolder:
		return filestore.NewSplitStore(cfg.DataDir, nil), noop, nil
	case persistence.FormatSQLite:
		store, err := sqlite.Open(sqlite.DefaultConfig(cfg.SQLiteDSN), nil, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("okänt lagringsformat %q", format)
	}
}

func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("kunde inte öppna loggfilen: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
