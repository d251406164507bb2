package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/todo-list/internal/app"
	"github.com/agalitsyn/todo-list/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	setupLog(cfg.Debug)

	if cfg.Debug {
		log.Printf("DEBUG running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}

	kv, closer, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("FATAL could not open storage: %s", err)
	}
	defer closer.Close()

	bot, err := app.NewBot(
		app.BotConfig{UpdateTimeout: cfg.UpdateTimeout, Store: cfg.StoreConfig()},
		cfg.Token.Unmask(),
		&BotDebugLogger{},
		kv,
	)
	if err != nil {
		log.Fatalf("FATAL could not init bot: %s", err)
	}
	bot.SetDebug(cfg.Debug)
	log.Printf("INFO authorized as %s", bot.GetSelf().UserName)

	bot.Start(ctx)
}

func setupLog(debug bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if debug {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces}
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

// BotDebugLogger routes telegram client logs through lgr at debug level.
type BotDebugLogger struct{}

func (l BotDebugLogger) Printf(msg string, args ...interface{}) {
	lgr.Printf("DEBUG "+msg, args...)
}

func (l BotDebugLogger) Println(v ...interface{}) {
	lgr.Printf("DEBUG %s", fmt.Sprintln(v...))
}
