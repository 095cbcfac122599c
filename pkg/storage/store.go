package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"favdupes/pkg/dupes"
	"favdupes/pkg/logger"
	"favdupes/pkg/storage/migrations"
	"favdupes/pkg/twitter"
	"favdupes/pkg/urls"
)

// ErrRunNotFound is returned for unknown run IDs
var ErrRunNotFound = errors.New("run not found")

// Run is one exported snapshot
type Run struct {
	ID         string
	CreatedAt  time.Time
	ScreenName string
	Strategy   string
	Tweets     []twitter.Tweet
	Groups     []dupes.Group
	Links      []urls.Link
}

// RunSummary is a stored run with counts instead of rows
type RunSummary struct {
	ID         string    `json:"id" yaml:"id"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	ScreenName string    `json:"screen_name" yaml:"screen_name"`
	Strategy   string    `json:"strategy" yaml:"strategy"`
	Tweets     int       `json:"tweets" yaml:"tweets"`
	Groups     int       `json:"groups" yaml:"groups"`
	Duplicates int       `json:"duplicates" yaml:"duplicates"`
	Links      int       `json:"links" yaml:"links"`
}

// NewRun stamps a snapshot with a fresh UUID and the current time
func NewRun(screenName, strategy string, tweets []twitter.Tweet, groups []dupes.Group, links []urls.Link) *Run {
	return &Run{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		ScreenName: screenName,
		Strategy:   strategy,
		Tweets:     tweets,
		Groups:     groups,
		Links:      links,
	}
}

// Store is the SQLite export database
type Store struct {
	db     *sql.DB
	path   string
	logger logger.Logger
}

// NewStore opens or creates the database at path and applies migrations
func NewStore(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	log = logger.OrDefault(log).WithField("component", "storage")

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path, logger: log}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		err = s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, upSection(string(content))); err != nil {
				return fmt.Errorf("execute migration %s: %w", file, err)
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
				file, time.Now().Unix())
			return err
		})
		if err != nil {
			return err
		}

		s.logger.DebugWithFields("applied migration", map[string]interface{}{"file": file})
	}

	return nil
}

func (s *Store) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// upSection returns the part of a migration before "-- +migrate Down"
func upSection(content string) string {
	if idx := strings.Index(content, "-- +migrate Down"); idx != -1 {
		content = content[:idx]
	}
	content = strings.TrimSpace(content)
	return strings.TrimSpace(strings.TrimPrefix(content, "-- +migrate Up"))
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SaveRun writes the run and all its rows in one transaction
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run == nil || run.ID == "" {
		return errors.New("run ID is required")
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO runs (id, created_at, screen_name, strategy) VALUES (?, ?, ?, ?)",
			run.ID, run.CreatedAt.UnixNano(), run.ScreenName, run.Strategy); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for i, t := range run.Tweets {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO tweets (run_id, tweet_id, position, screen_name, text, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, t.Key(), i, t.User.ScreenName, t.Content(), t.CreatedAt); err != nil {
				return fmt.Errorf("insert tweet %s: %w", t.Key(), err)
			}
		}

		for _, g := range run.Groups {
			for i, t := range g.Tweets {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO dupe_members (run_id, group_key, tweet_id, position) VALUES (?, ?, ?, ?)",
					run.ID, g.Key, t.Key(), i); err != nil {
					return fmt.Errorf("insert group member: %w", err)
				}
			}
		}

		for i, link := range run.Links {
			for _, id := range link.TweetIDs {
				if _, err := tx.ExecContext(ctx,
					"INSERT OR IGNORE INTO links (run_id, url, position, tweet_id) VALUES (?, ?, ?, ?)",
					run.ID, link.URL, i, id); err != nil {
					return fmt.Errorf("insert link: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoWithFields("saved run", map[string]interface{}{
		"run_id": run.ID,
		"tweets": len(run.Tweets),
		"groups": len(run.Groups),
		"links":  len(run.Links),
	})
	return nil
}

const summaryQuery = `
	SELECT r.id, r.created_at, r.screen_name, r.strategy,
	       (SELECT COUNT(*) FROM tweets t WHERE t.run_id = r.id),
	       (SELECT COUNT(DISTINCT group_key) FROM dupe_members d WHERE d.run_id = r.id),
	       (SELECT COUNT(*) FROM dupe_members d WHERE d.run_id = r.id AND d.position > 0),
	       (SELECT COUNT(DISTINCT url) FROM links l WHERE l.run_id = r.id)
	FROM runs r`

// ListRuns returns up to limit summaries, newest first. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := summaryQuery + " ORDER BY r.created_at DESC, r.id"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// GetRun returns the summary of one run
func (s *Store) GetRun(ctx context.Context, id string) (*RunSummary, error) {
	row := s.db.QueryRowContext(ctx, summaryQuery+" WHERE r.id = ?", id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSummary(row scanner) (RunSummary, error) {
	var (
		summary RunSummary
		created int64
	)
	err := row.Scan(&summary.ID, &created, &summary.ScreenName, &summary.Strategy,
		&summary.Tweets, &summary.Groups, &summary.Duplicates, &summary.Links)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return summary, err
		}
		return summary, fmt.Errorf("scan run: %w", err)
	}
	summary.CreatedAt = time.Unix(0, created).UTC()
	return summary, nil
}

// RunLinks reads back the links of a run in their original order
func (s *Store) RunLinks(ctx context.Context, runID string) ([]urls.Link, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.url, l.tweet_id
		FROM links l
		LEFT JOIN tweets t ON t.run_id = l.run_id AND t.tweet_id = l.tweet_id
		WHERE l.run_id = ?
		ORDER BY l.position, COALESCE(t.position, 0), l.tweet_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var links []urls.Link
	for rows.Next() {
		var u, id string
		if err := rows.Scan(&u, &id); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		if n := len(links); n > 0 && links[n-1].URL == u {
			links[n-1].TweetIDs = append(links[n-1].TweetIDs, id)
			continue
		}
		links = append(links, urls.Link{URL: u, TweetIDs: []string{id}})
	}
	return links, rows.Err()
}

// DeleteRun removes a run and its rows
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}
