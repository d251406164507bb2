package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agalitsyn/flagutils"

	"github.com/agalitsyn/todo-list/internal/todo"
	"github.com/agalitsyn/todo-list/version"
)

const EnvPrefix = "TODO"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Storage        string
	Categories     bool
	NotifyDuration time.Duration
}

func (c Config) StoreConfig() todo.Config {
	cfg := todo.DefaultConfig()
	cfg.Categories = c.Categories
	cfg.NotifyDuration = c.NotifyDuration
	return cfg
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info).")
	flag.StringVar(&cfg.Storage, "storage", defaultStorageDSN(), "Storage DSN (memory:// | sqlite://path | redis://host:port/db | mysql://dsn).")
	flag.BoolVar(&cfg.Categories, "categories", true, "Enable task categories.")
	flag.DurationVar(&cfg.NotifyDuration, "notify-duration", todo.DefaultNotifyDuration, "How long notifications stay visible in the TUI.")
	flag.Usage = usage

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = strings.ToLower(*logLevel)
	if cfg.Log.Level == "debug" || cfg.Log.Level == "trace" {
		cfg.Debug = true
	}

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}

// defaultStorageDSN points at a database in the user config dir, falling
// back to the working directory.
func defaultStorageDSN() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sqlite://todo.db"
	}
	dir = filepath.Join(dir, "todo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "sqlite://todo.db"
	}
	return "sqlite://" + filepath.Join(dir, "todo.db")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, `Usage: todo [flags] <command> [args]

Commands:
  tui                              interactive list (default)
  add [-category c] text           add a task
  ls [-search s] [-filter c]       list tasks
  done N                           complete or reopen task N
  rm N                             delete task N
  clear                            remove completed tasks
  stats                            show counters

N is the number shown by ls or a task id.

Flags (also read from %s_* environment variables):
`, EnvPrefix)
	flag.PrintDefaults()
}
