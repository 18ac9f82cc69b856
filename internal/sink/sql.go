package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "embed"

	"github.com/mazen160/go-random"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

const DefaultSqlitePath = "storage/datasets/default.db"

// SQL stores records as rows in a sqlite or libsql database. Rows are only
// ever inserted.
type SQL struct {
	db *sql.DB
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "libsql://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "http://")
}

func openDB(path string, readOnly bool) (*sql.DB, error) {
	if isRemote(path) {
		return sql.Open("libsql", path)
	}

	if readOnly {
		_, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
	} else {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite only supports a single writer
	db.SetMaxOpenConns(1)
	if readOnly {
		return db, nil
	}
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func OpenSQL(path string) (*SQL, error) {
	if path == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	db, err := openDB(path, false)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQL{db: db}, nil
}

// OpenSQLReader opens an existing database for List only, the schema is not
// applied.
func OpenSQLReader(path string) (*SQL, error) {
	if path == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}
	db, err := openDB(path, true)
	if err != nil {
		return nil, err
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Push(ctx context.Context, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	id, err := random.String(16)
	if err != nil {
		return fmt.Errorf("generate record id: %w", err)
	}

	var errMessage sql.NullString
	if record.Error != "" {
		errMessage = sql.NullString{String: record.Error, Valid: true}
	}
	_, err = s.db.ExecContext(
		ctx,
		`insert into records(id, seq, timestamp, success, status_code, error, payload)
		values (?, (select coalesce(max(seq), 0) + 1 from records), ?, ?, ?, ?, ?)`,
		id,
		record.Timestamp,
		record.Success,
		record.StatusCode,
		errMessage,
		string(payload),
	)
	return err
}

func (s *SQL) List(ctx context.Context, limit int) ([]Record, error) {
	query := "select payload from records order by seq desc"
	var args []any
	if limit > 0 {
		query += " limit ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var payload string
		err := rows.Scan(&payload)
		if err != nil {
			return nil, err
		}
		var record Record
		err = json.Unmarshal([]byte(payload), &record)
		if err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// rows come newest first
	slices.Reverse(records)
	return records, nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
