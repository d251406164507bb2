package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/agalitsyn/todo-list/internal/todo"
	"github.com/agalitsyn/todo-list/version"
)

const EnvPrefix = "TODO"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Token   secret.String
	Storage string

	UpdateTimeout  int
	Categories     bool
	NotifyDuration time.Duration
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
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
	token := flag.String("token", "", "Telegram bot token.")
	flag.StringVar(&cfg.Storage, "storage", "sqlite://todo-bot.db", "Storage DSN (memory:// | sqlite://path | redis://host:port/db | mysql://dsn).")
	flag.IntVar(&cfg.UpdateTimeout, "update-timeout", 60, "Long polling timeout in seconds.")
	flag.BoolVar(&cfg.Categories, "categories", true, "Enable task categories.")
	flag.DurationVar(&cfg.NotifyDuration, "notify-duration", todo.DefaultNotifyDuration, "How long notifications stay visible.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = strings.ToLower(*logLevel)
	if cfg.Log.Level == "debug" || cfg.Log.Level == "trace" {
		cfg.Debug = true
	}

	cfg.Token = secret.NewString(*token)

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
