package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-pkgz/lgr"

	"github.com/agalitsyn/todo-list/internal/storage"
	"github.com/agalitsyn/todo-list/internal/todo"
	"github.com/agalitsyn/todo-list/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()

	args := flag.Args()
	command := "tui"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	// Logs would tear the alternate screen apart.
	var logOut io.Writer = os.Stderr
	if command == "tui" && !cfg.Debug {
		logOut = io.Discard
	}
	setupLog(cfg.Debug, logOut)

	kv, closer, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("FATAL could not open storage: %s", err)
	}
	defer closer.Close()

	store := todo.NewStore(kv, cfg.StoreConfig())
	if err := store.Initialize(ctx); err != nil {
		log.Fatalf("FATAL %s", err)
	}

	if command == "tui" {
		err = ui.RunTUI(ctx, store)
	} else {
		cli := newCLI(store, os.Stdout, cfg.Categories)
		err = cli.Run(ctx, command, args)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		closer.Close()
		os.Exit(1)
	}
}

func setupLog(debug bool, out io.Writer) {
	logOpts := []lgr.Option{lgr.Out(out), lgr.Err(out), lgr.LevelBraces}
	if debug {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec)
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
