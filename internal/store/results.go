// Package store provides a SQLite-backed record of finished level attempts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gridplan/gridplan/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store persists finished attempts. The live ledger is never stored.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the results database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening results db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Path returns the default database location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, "gridplan.db")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Entry is a stored result with its completion time.
type Entry struct {
	model.Result
	CompletedAt time.Time
}

// SaveResult records a finished attempt.
func (s *Store) SaveResult(r model.Result) error {
	_, err := s.db.Exec(`INSERT INTO results
		(player, level, fingerprint, policy, elapsed_secs, capacity, emissions,
		 spend, remaining, capacity_met, emissions_met, budget_met, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Player, r.Level, r.Fingerprint, r.Policy, r.ElapsedSecs, r.Capacity, r.Emissions,
		r.Spend, r.Remaining, boolInt(r.CapacityMet), boolInt(r.EmissionsMet), boolInt(r.BudgetMet),
		s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving result: %w", err)
	}
	return nil
}

// ListResults returns results, newest first. An empty player lists every
// player; limit <= 0 means no limit.
func (s *Store) ListResults(player string, limit int) ([]Entry, error) {
	query := `SELECT player, level, fingerprint, policy, elapsed_secs, capacity, emissions,
		spend, remaining, capacity_met, emissions_met, budget_met, completed_at
		FROM results`
	var args []any
	if player != "" {
		query += " WHERE player = ?"
		args = append(args, player)
	}
	query += " ORDER BY completed_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var capMet, emMet, budMet int
		var completed string
		err := rows.Scan(
			&e.Player, &e.Level, &e.Fingerprint, &e.Policy, &e.ElapsedSecs, &e.Capacity, &e.Emissions,
			&e.Spend, &e.Remaining, &capMet, &emMet, &budMet, &completed,
		)
		if err != nil {
			return nil, err
		}
		e.CapacityMet = capMet != 0
		e.EmissionsMet = emMet != 0
		e.BudgetMet = budMet != 0
		e.CompletedAt, _ = time.Parse(time.RFC3339, completed)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CompletedLevels returns the levels the player finished with every goal met.
func (s *Store) CompletedLevels(player string) ([]int, error) {
	rows, err := s.db.Query(`SELECT DISTINCT level FROM results
		WHERE player = ? AND capacity_met = 1 AND emissions_met = 1 AND budget_met = 1
		ORDER BY level`, player)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var levels []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		levels = append(levels, n)
	}
	return levels, rows.Err()
}

// ResultCount returns the number of stored results.
func (s *Store) ResultCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	return count, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
