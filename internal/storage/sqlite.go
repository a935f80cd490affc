package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/user/peppy/internal/constants"
	"github.com/user/peppy/internal/model"
)

// DefaultIndexName is the index file name inside a project's output directory.
const DefaultIndexName = "peppy.db"

// Index is a SQLite-backed sample index.
type Index struct {
	db     *sql.DB
	dbPath string
}

// NewIndex opens (creating if needed) the index database at dbPath.
func NewIndex(dbPath string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	idx := &Index{db: db, dbPath: dbPath}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) initSchema() error {
	_, err := i.db.Exec(`
		CREATE TABLE IF NOT EXISTS samples (
			project TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			protocol TEXT,
			active INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL DEFAULT '',
			attributes_json TEXT NOT NULL,
			indexed_at TEXT NOT NULL,
			PRIMARY KEY (project, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create samples table: %w", err)
	}

	_, err = i.db.Exec(`CREATE INDEX IF NOT EXISTS idx_samples_protocol ON samples(project, protocol)`)
	if err != nil {
		return fmt.Errorf("failed to create protocol index: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (i *Index) Path() string {
	return i.dbPath
}

// Close closes the database connection.
func (i *Index) Close() error {
	if i.db != nil {
		return i.db.Close()
	}
	return nil
}

// Rebuild replaces every indexed sample of a project. Statuses recorded for
// samples that survive the rebuild are kept.
func (i *Index) Rebuild(project string, samples []*model.Sample) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statuses := make(map[string]string)
	rows, err := tx.Query(`SELECT name, status FROM samples WHERE project = ?`, project)
	if err != nil {
		return fmt.Errorf("failed to read statuses: %w", err)
	}
	for rows.Next() {
		var name, st string
		if err := rows.Scan(&name, &st); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan status: %w", err)
		}
		statuses[name] = st
	}
	rows.Close()

	if _, err := tx.Exec(`DELETE FROM samples WHERE project = ?`, project); err != nil {
		return fmt.Errorf("failed to clear samples: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO samples (project, name, position, protocol, active, status, attributes_json, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for pos, s := range samples {
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal sample %s: %w", s.Name, err)
		}
		active := 0
		if s.IsActive() {
			active = 1
		}
		if _, err := stmt.Exec(project, s.Name, pos, s.Protocol(), active, statuses[s.Name], string(data), now); err != nil {
			return fmt.Errorf("failed to insert sample %s: %w", s.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListSamples returns indexed samples of a project in sheet order.
func (i *Index) ListSamples(project string, opts ListOptions) ([]*IndexedSample, error) {
	var (
		where = []string{"project = ?"}
		args  = []interface{}{project}
	)
	if opts.Protocol != "" && opts.Protocol != constants.GenericProtocolKey {
		where = append(where, "protocol = ? COLLATE NOCASE")
		args = append(args, opts.Protocol)
	}
	if opts.ActiveOnly {
		where = append(where, "active = 1")
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		args = append(args, opts.Status)
	}

	query := `SELECT attributes_json, status, indexed_at FROM samples WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY position`
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := i.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []*IndexedSample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSample returns a single indexed sample.
func (i *Index) GetSample(project, name string) (*IndexedSample, error) {
	row := i.db.QueryRow(`SELECT attributes_json, status, indexed_at FROM samples WHERE project = ? AND name = ?`,
		project, name)
	s, err := scanSample(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewSampleNotFoundError(name)
	}
	return s, err
}

// SetStatus records the last known status of a sample.
func (i *Index) SetStatus(project, name, status string) error {
	res, err := i.db.Exec(`UPDATE samples SET status = ? WHERE project = ? AND name = ?`, status, project, name)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return model.NewSampleNotFoundError(name)
	}
	return nil
}

// Count returns the number of indexed samples of a project.
func (i *Index) Count(project string) (int, error) {
	var n int
	if err := i.db.QueryRow(`SELECT COUNT(*) FROM samples WHERE project = ?`, project).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSample(sc scanner) (*IndexedSample, error) {
	var data, st, indexedAt string
	if err := sc.Scan(&data, &st, &indexedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sample: %w", err)
	}

	var s model.Sample
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample: %w", err)
	}
	ts, _ := time.Parse(time.RFC3339Nano, indexedAt)
	return &IndexedSample{Sample: &s, Status: st, IndexedAt: ts}, nil
}
