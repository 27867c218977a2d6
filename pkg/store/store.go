// Package store persists revision records in SQLite.
//
// Records are keyed by repository URL and revision number. Store implements
// revision.Source, so reports read from it directly.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite" // registers the "sqlite" driver.

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

//go:embed schema.sql
var schema string

const (
	driverName = "sqlite"
	tracerName = "revstats"
	dirPerm    = 0o750
)

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

var _ revision.Source = (*Store)(nil)

// Store is a SQLite-backed revision store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path. A leading ~ is expanded to
// the user's home directory and missing parent directories are created.
func Open(ctx context.Context, path string) (*Store, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand store path %s: %w", path, err)
	}

	err = os.MkdirAll(filepath.Dir(expanded), dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open(driverName, expanded)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", expanded, err)
	}

	// One connection keeps pragmas and transactions on the same handle.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, path: expanded}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	return nil
}

// ReplaceRecords stores records for repoURL in one transaction. A revision
// that is already stored is deleted together with its changed paths and
// inserted again. Other revisions of the repository are kept.
func (s *Store) ReplaceRecords(ctx context.Context, repoURL string, records []revision.Record) (err error) {
	ctx, span := startSpan(ctx, "store.replace_records", repoURL)
	defer span.End()

	span.SetAttributes(attribute.Int("revisions", len(records)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range records {
		if err = replaceRecord(ctx, tx, repoURL, &records[i]); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit revisions: %w", err)
	}

	return nil
}

func replaceRecord(ctx context.Context, tx *sql.Tx, repoURL string, rec *revision.Record) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM changed_paths WHERE repository = ? AND number = ?`, repoURL, rec.Number)
	if err != nil {
		return fmt.Errorf("delete paths of r%d: %w", rec.Number, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM revisions WHERE repository = ? AND number = ?`, repoURL, rec.Number)
	if err != nil {
		return fmt.Errorf("delete r%d: %w", rec.Number, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO revisions (repository, number, author, committed_at, message) VALUES (?, ?, ?, ?, ?)`,
		repoURL, rec.Number, rec.Author, rec.Timestamp.UTC().UnixNano(), rec.Message)
	if err != nil {
		return fmt.Errorf("insert r%d: %w", rec.Number, err)
	}

	for seq, cp := range rec.ChangedPaths {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO changed_paths (repository, number, seq, action, path) VALUES (?, ?, ?, ?, ?)`,
			repoURL, rec.Number, seq, cp.Action.String(), cp.Path)
		if err != nil {
			return fmt.Errorf("insert path %s of r%d: %w", cp.Path, rec.Number, err)
		}
	}

	return nil
}

// AllRecords returns every stored record of repoURL ordered by number.
func (s *Store) AllRecords(ctx context.Context, repoURL string) ([]revision.Record, error) {
	return s.query(ctx, "store.all_records", repoURL, time.Time{})
}

// RecordsSince returns records of repoURL committed at or after cutoff,
// ordered by number.
func (s *Store) RecordsSince(ctx context.Context, repoURL string, cutoff time.Time) ([]revision.Record, error) {
	return s.query(ctx, "store.records_since", repoURL, cutoff)
}

func (s *Store) query(ctx context.Context, spanName, repoURL string, cutoff time.Time) ([]revision.Record, error) {
	ctx, span := startSpan(ctx, spanName, repoURL)
	defer span.End()

	// The zero time maps below every stored timestamp.
	since := int64(math.MinInt64)
	if !cutoff.IsZero() {
		since = cutoff.UTC().UnixNano()
	}

	records, index, err := s.queryRevisions(ctx, repoURL, since)
	if err != nil {
		return nil, err
	}

	if err = s.queryPaths(ctx, repoURL, since, records, index); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("revisions", len(records)))

	return records, nil
}

func (s *Store) queryRevisions(ctx context.Context, repoURL string, since int64) ([]revision.Record, map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, author, committed_at, message FROM revisions
		 WHERE repository = ? AND committed_at >= ?
		 ORDER BY number`, repoURL, since)
	if err != nil {
		return nil, nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	records := []revision.Record{}
	index := make(map[int64]int)

	for rows.Next() {
		var (
			rec   revision.Record
			nanos int64
		)

		if err = rows.Scan(&rec.Number, &rec.Author, &nanos, &rec.Message); err != nil {
			return nil, nil, fmt.Errorf("scan revision: %w", err)
		}

		rec.Timestamp = time.Unix(0, nanos).UTC()
		index[rec.Number] = len(records)
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate revisions: %w", err)
	}

	return records, index, nil
}

func (s *Store) queryPaths(
	ctx context.Context, repoURL string, since int64, records []revision.Record, index map[int64]int,
) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.number, p.action, p.path FROM changed_paths p
		 JOIN revisions r ON r.repository = p.repository AND r.number = p.number
		 WHERE p.repository = ? AND r.committed_at >= ?
		 ORDER BY p.number, p.seq`, repoURL, since)
	if err != nil {
		return fmt.Errorf("query changed paths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			number int64
			code   string
			cp     revision.ChangedPath
		)

		if err = rows.Scan(&number, &code, &cp.Path); err != nil {
			return fmt.Errorf("scan changed path: %w", err)
		}

		cp.Action, err = revision.ParseAction(code)
		if err != nil {
			return fmt.Errorf("r%d %s: %w", number, cp.Path, err)
		}

		i, ok := index[number]
		if !ok {
			continue
		}

		records[i].ChangedPaths = append(records[i].ChangedPaths, cp)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate changed paths: %w", err)
	}

	return nil
}

// Purge deletes every record of repoURL and returns the number of revisions
// removed.
func (s *Store) Purge(ctx context.Context, repoURL string) (n int64, err error) {
	ctx, span := startSpan(ctx, "store.purge", repoURL)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM changed_paths WHERE repository = ?`, repoURL); err != nil {
		return 0, fmt.Errorf("purge changed paths: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM revisions WHERE repository = ?`, repoURL)
	if err != nil {
		return 0, fmt.Errorf("purge revisions: %w", err)
	}

	n, err = res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge revisions: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit purge: %w", err)
	}

	return n, nil
}

// Repository is the stored extent of one repository.
type Repository struct {
	URL       string
	Revisions int64
	Latest    int64
}

// Repositories lists every repository with stored records, sorted by URL.
func (s *Store) Repositories(ctx context.Context) ([]Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT repository, COUNT(*), MAX(number) FROM revisions GROUP BY repository ORDER BY repository`)
	if err != nil {
		return nil, fmt.Errorf("query repositories: %w", err)
	}
	defer rows.Close()

	var repos []Repository

	for rows.Next() {
		var r Repository

		if err = rows.Scan(&r.URL, &r.Revisions, &r.Latest); err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}

		repos = append(repos, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

func startSpan(ctx context.Context, name, repoURL string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithAttributes(attribute.String("repository.url", repoURL)),
	)
}
