package mysql

import (
	"testing"
	"time"
)

func TestParseDSN(t *testing.T) {
	cfg, err := parseDSN("todo:secret@tcp(127.0.0.1:3306)/todo")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.ParseTime {
		t.Fatal("expected parseTime enabled")
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.DBName != "todo" || cfg.Addr != "127.0.0.1:3306" || cfg.User != "todo" || cfg.Passwd != "secret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	cfg, err = parseDSN("todo@tcp(127.0.0.1:3306)/todo?timeout=1s")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Timeout != time.Second {
		t.Fatalf("explicit timeout must be kept, got %v", cfg.Timeout)
	}

	if _, err := parseDSN("tcp(oops"); err == nil {
		t.Fatal("expected invalid dsn error")
	}
}
