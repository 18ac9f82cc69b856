package sink

import (
	"context"
	"fmt"
	"time"
)

// TimestampFormat is ISO-8601 in UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// Record is the single output of an invocation.
//
// A success record carries Input, Response, StatusCode and Success. A failure
// record carries only Error and Success (always false).
type Record struct {
	Timestamp  string         `json:"timestamp"`
	Input      map[string]any `json:"input,omitempty"`
	Response   any            `json:"response,omitempty"`
	StatusCode int            `json:"statusCode,omitempty"`
	Error      string         `json:"error,omitempty"`
	Success    bool           `json:"success"`
}

func NewFailure(now time.Time, err error) Record {
	return Record{
		Timestamp: Timestamp(now),
		Error:     err.Error(),
		Success:   false,
	}
}

// Reader reads back the records of a sink.
type Reader interface {
	// List returns the most recent records, oldest first. limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Sink is an append-only record store.
type Sink interface {
	Reader
	Push(ctx context.Context, record Record) error
}

const (
	KindJsonl  = "jsonl"
	KindSqlite = "sqlite"
)

type Config struct {
	Kind string `json:"kind"`
	// Path is a file path for both kinds, sqlite also accepts libsql:// and
	// https:// urls of a remote libsql database.
	Path string `json:"path"`
}

// resolve fills in the default path of the configured kind.
func resolve(cfg Config) (Config, error) {
	switch cfg.Kind {
	case "", KindJsonl:
		cfg.Kind = KindJsonl
		if cfg.Path == "" {
			cfg.Path = DefaultJsonlPath
		}
	case KindSqlite:
		if cfg.Path == "" {
			cfg.Path = DefaultSqlitePath
		}
	default:
		return cfg, fmt.Errorf("unknown sink kind '%s'", cfg.Kind)
	}
	return cfg, nil
}

func Open(cfg Config) (Sink, error) {
	cfg, err := resolve(cfg)
	if err != nil {
		return nil, err
	}
	var s Sink
	if cfg.Kind == KindSqlite {
		s, err = OpenSQL(cfg.Path)
	} else {
		s, err = OpenJsonl(cfg.Path)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenReader opens a sink for reading without creating anything. A local
// sink that was never written to returns an error matching os.ErrNotExist.
func OpenReader(cfg Config) (Reader, error) {
	cfg, err := resolve(cfg)
	if err != nil {
		return nil, err
	}
	var r Reader
	if cfg.Kind == KindSqlite {
		r, err = OpenSQLReader(cfg.Path)
	} else {
		r, err = OpenJsonlReader(cfg.Path)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func tail[T any](items []T, limit int) []T {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[len(items)-limit:]
}
