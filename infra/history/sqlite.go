package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	corehistory "github.com/kilianp07/homeenergy/core/history"
)

// DefaultTable is the table read by SQLiteSource when none is configured.
const DefaultTable = "energy_readings"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads energy readings from a SQLite table with the columns
// timestamp and energy_consumption.
type SQLiteSource struct {
	Path     string
	Table    string
	Policy   corehistory.Policy
	Location *time.Location

	mu      sync.Mutex
	db      *sql.DB
	skipped int
}

// NewSQLiteSource validates the table name and returns a source. The database
// is opened lazily.
func NewSQLiteSource(path, table string, policy corehistory.Policy, loc *time.Location) (*SQLiteSource, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLiteSource{Path: path, Table: table, Policy: policy, Location: loc}, nil
}

// Name returns the database path and table.
func (s *SQLiteSource) Name() string { return s.Path + "#" + s.Table }

// Skipped returns the number of malformed rows dropped by the last read.
func (s *SQLiteSource) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func (s *SQLiteSource) open(create bool) (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	if !create && !isMemory(s.Path) {
		if _, err := os.Stat(s.Path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", s.Path, corehistory.ErrNotFound)
		}
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// Records reads every row of the table ordered by insertion.
func (s *SQLiteSource) Records(ctx context.Context) ([]corehistory.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.open(false)
	if err != nil {
		return nil, err
	}
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, s.Table).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("table %s: %w", s.Table, corehistory.ErrNotFound)
	}

	rows, err := db.QueryContext(ctx,
		fmt.Sprintf(`SELECT timestamp, energy_consumption FROM %s ORDER BY rowid`, s.Table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	b := &corehistory.RowBuilder{Policy: s.Policy, Location: s.Location}
	line := 0
	for rows.Next() {
		line++
		var ts, val any
		if err := rows.Scan(&ts, &val); err != nil {
			return nil, err
		}
		if err := b.Add(line, asString(ts), asString(val)); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	s.skipped = b.Skipped()
	return b.Records(), nil
}

// Import creates the table when needed and appends records in a single
// transaction. It returns the number of inserted rows.
func (s *SQLiteSource) Import(ctx context.Context, records []corehistory.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, err := s.open(true)
	if err != nil {
		return 0, err
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        timestamp TEXT NOT NULL,
        energy_consumption REAL NOT NULL
    );`, s.Table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return 0, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (timestamp, energy_consumption) VALUES (?, ?)`, s.Table))
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer func() { _ = stmt.Close() }()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Timestamp.Format(time.RFC3339Nano), r.EnergyKWh); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}

// Close closes the underlying database if it was opened.
func (s *SQLiteSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
