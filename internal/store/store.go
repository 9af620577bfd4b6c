// Package store handles SQLite persistence of named intervals.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/interval/internal/logging"
	"github.com/verte-zerg/interval/internal/model"
	"github.com/verte-zerg/interval/pkg/duration"
	"github.com/verte-zerg/interval/pkg/interval"

	_ "modernc.org/sqlite" // SQLite driver.
)

// PrecisePrecision is the fractional second digits of the precise_term column.
const PrecisePrecision = 3

var (
	// ErrNotFound is returned when no interval has the requested name.
	ErrNotFound = errors.New("interval not found")
	// ErrDuplicateName is returned when saving under a name already in use.
	ErrDuplicateName = errors.New("interval name already exists")
	// ErrCorrupt is returned when a row's snapshot disagrees with its term.
	ErrCorrupt = errors.New("stored interval is inconsistent")
	// ErrEmpty is returned when saving an interval whose parts sum to zero;
	// its term "P" does not decode.
	ErrEmpty = errors.New("cannot store an empty interval")
)

// Store wraps SQLite access for named intervals.
type Store struct {
	db     *sql.DB
	codec  *interval.Codec
	logger *slog.Logger
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string, codec *interval.Codec, logger *slog.Logger) (*Store, error) {
	if codec == nil {
		return nil, fmt.Errorf("store needs a codec")
	}
	if logger == nil {
		logger = logging.Discard()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, codec: codec, logger: logger}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("close after failed migration", "error", cerr)
		}
		return nil, err
	}
	logger.Debug("store opened", "path", path)
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS intervals (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			term TEXT NOT NULL,
			term_precision INTEGER NOT NULL DEFAULT -1,
			precise_term TEXT NOT NULL,
			snapshot BLOB NOT NULL,
			elapsed_ns INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_intervals_created_at ON intervals(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	ok, err := s.hasColumn("intervals", "term_precision")
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.db.Exec(`ALTER TABLE intervals ADD COLUMN term_precision INTEGER NOT NULL DEFAULT -1`); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("rows close", "error", cerr)
		}
	}()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// Save stores d under name.
func (s *Store) Save(ctx context.Context, name string, d duration.Duration) (rec model.Record, err error) {
	if name == "" {
		return model.Record{}, fmt.Errorf("interval name is empty")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.Record{}, fmt.Errorf("new id: %w", err)
	}
	term, err := s.codec.Encode(d)
	if err != nil {
		return model.Record{}, err
	}
	if d.Totals().IsZero() {
		return model.Record{}, fmt.Errorf("%w: %s", ErrEmpty, name)
	}
	if _, err := s.codec.Decode(term); err != nil {
		return model.Record{}, fmt.Errorf("term %s would not read back: %w", term, err)
	}
	snapshot, err := d.MarshalCBOR()
	if err != nil {
		return model.Record{}, fmt.Errorf("snapshot: %w", err)
	}
	rec = model.Record{
		ID:          id.String(),
		Name:        name,
		Term:        term,
		PreciseTerm: d.Format(PrecisePrecision),
		Duration:    d,
		CreatedAt:   s.now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Record{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.logger.Warn("rollback", "error", rerr)
			}
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM intervals WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return model.Record{}, err
	}
	if exists > 0 {
		err = fmt.Errorf("%w: %s", ErrDuplicateName, name)
		return model.Record{}, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO intervals (id, name, term, term_precision, precise_term, snapshot, elapsed_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Name,
		s.codec.Valuer(d),
		s.codec.Precision,
		rec.PreciseTerm,
		snapshot,
		int64(d.Elapsed()),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.Record{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Record{}, err
	}
	s.logger.Debug("interval saved", "name", name, "id", rec.ID, "term", term)
	return rec, nil
}

// Get returns the interval stored under name.
func (s *Store) Get(ctx context.Context, name string) (model.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, term, term_precision, precise_term, snapshot, elapsed_ns, created_at
		 FROM intervals WHERE name = ?`, name)
	rec, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, err
}

// List returns every stored interval ordered by name.
func (s *Store) List(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, term, term_precision, precise_term, snapshot, elapsed_ns, created_at
		 FROM intervals ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("rows close", "error", cerr)
		}
	}()

	var result []model.Record
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes the interval stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM intervals WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.logger.Debug("interval deleted", "name", name)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row. The term column goes through the codec and must agree
// with the CBOR snapshot at the precision the row was written with. The
// record returns the snapshot since it keeps the exact parts and elapsed span.
func (s *Store) scan(row scanner) (model.Record, error) {
	var (
		rec       model.Record
		decoded   duration.Duration
		precision int
		snapshot  []byte
		elapsedNs int64
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.Name, s.codec.Scanner(&decoded), &precision, &rec.PreciseTerm, &snapshot, &elapsedNs, &createdAt); err != nil {
		return model.Record{}, err
	}
	var exact duration.Duration
	if err := exact.UnmarshalCBOR(snapshot); err != nil {
		return model.Record{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, rec.Name, err)
	}
	rec.Term = decoded.Format(precision)
	if got := exact.Format(precision); got != rec.Term {
		return model.Record{}, fmt.Errorf("%w: %s: term %s, snapshot %s", ErrCorrupt, rec.Name, rec.Term, got)
	}
	if int64(exact.Elapsed()) != elapsedNs {
		return model.Record{}, fmt.Errorf("%w: %s: elapsed %d, snapshot %d", ErrCorrupt, rec.Name, elapsedNs, int64(exact.Elapsed()))
	}
	rec.Duration = exact
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Record{}, err
	}
	rec.CreatedAt = parsed
	return rec, nil
}

func (s *Store) now() time.Time {
	if s.codec.Parser != nil && s.codec.Parser.Clock != nil {
		return s.codec.Parser.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
