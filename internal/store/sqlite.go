package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE subscriptions (
		repository TEXT NOT NULL,
		subscriber TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (repository, subscriber)
	)`,
	`CREATE INDEX idx_subscriptions_subscriber ON subscriptions(subscriber)`,
}

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, zero CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database and runs migrations.
// The database file is created with 0600 permissions and its parent directory with 0700.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}

		// Pre-create the file with restrictive permissions if it doesn't exist
		if _, err := os.Stat(path); os.IsNotExist(err) {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0600)
			if err != nil {
				return nil, fmt.Errorf("creating database file: %w", err)
			}
			_ = f.Close()
		}
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	// Ensure schema_version table exists
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		slog.Info("applying migration", "version", i+1)
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", i+1); err != nil {
			return fmt.Errorf("recording migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddSubscriber inserts a (repository, subscriber) membership. The primary
// key makes the insert idempotent and gives concurrent adds set-union
// semantics: two adds for the same repository never overwrite each other.
func (s *SQLiteStore) AddSubscriber(repository, subscriber string) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO subscriptions (repository, subscriber) VALUES (?, ?)`,
		repository, subscriber)
	if err != nil {
		return storeErr("adding subscriber", err)
	}
	return nil
}

// RemoveSubscriber deletes one membership if present.
func (s *SQLiteStore) RemoveSubscriber(repository, subscriber string) error {
	_, err := s.db.Exec(`DELETE FROM subscriptions WHERE repository = ? AND subscriber = ?`,
		repository, subscriber)
	if err != nil {
		return storeErr("removing subscriber", err)
	}
	return nil
}

func (s *SQLiteStore) IsSubscribed(repository, subscriber string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM subscriptions WHERE repository = ? AND subscriber = ?`,
		repository, subscriber).Scan(&n)
	if err != nil {
		return false, storeErr("checking membership", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) RepositoryExists(repository string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM subscriptions WHERE repository = ?`, repository).Scan(&n)
	if err != nil {
		return false, storeErr("checking repository", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) SubscribersOf(repository string) ([]string, error) {
	rows, err := s.db.Query(`SELECT subscriber FROM subscriptions WHERE repository = ? ORDER BY rowid`, repository)
	if err != nil {
		return nil, storeErr("listing subscribers", err)
	}
	defer func() { _ = rows.Close() }()

	var subscribers []string
	for rows.Next() {
		var sub string
		if err := rows.Scan(&sub); err != nil {
			return nil, storeErr("scanning subscriber", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("listing subscribers", err)
	}
	return subscribers, nil
}

// RepositoriesOf returns a lazy sequence over the subscriber's repositories.
// Each range re-runs the query, so the sequence is restartable. A store
// failure surfaces as a non-nil error element terminating the sequence.
func (s *SQLiteStore) RepositoriesOf(subscriber string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		rows, err := s.db.Query(`SELECT repository FROM subscriptions WHERE subscriber = ? ORDER BY rowid`, subscriber)
		if err != nil {
			yield("", storeErr("listing repositories", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var repo string
			if err := rows.Scan(&repo); err != nil {
				yield("", storeErr("scanning repository", err))
				return
			}
			if !yield(repo, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield("", storeErr("listing repositories", err))
		}
	}
}

// Ping issues a trivial query, bounded by ctx.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrUnavailable, err))
}
