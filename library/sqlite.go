package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"codesnap/snap"
	"codesnap/snapfile"
)

const schema = `
CREATE TABLE IF NOT EXISTS snaps (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	aspect     TEXT NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	elements   INTEGER NOT NULL,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS snaps_updated_at ON snaps(updated_at DESC);
`

type config struct {
	busyTimeout int
	policy      snapfile.Policy
	log         *slog.Logger
	now         func() time.Time
}

// Option customises OpenSQLite.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithPolicy sets the asset cap applied on save.
func WithPolicy(p snapfile.Policy) Option { return func(c *config) { c.policy = p } }

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the time source for timestamps.
func WithClock(now func() time.Time) Option { return func(c *config) { c.now = now } }

func defaults() config {
	return config{
		busyTimeout: 10_000,
		policy:      snapfile.Policy{MaxAssetBytes: snapfile.DefaultMaxAssetBytes},
		log:         slog.New(slog.DiscardHandler),
		now:         time.Now,
	}
}

// SQLite is a Store backed by an SQLite database file.
type SQLite struct {
	db  *sql.DB
	cfg config
}

// OpenSQLite opens (creating if needed) the library database at path.
// ":memory:" gives a private in-memory library.
func OpenSQLite(path string, opts ...Option) (*SQLite, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("library: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("library: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("library: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: schema: %w", err)
	}
	cfg.log.Debug("library opened", "path", path)
	return &SQLite{db: db, cfg: cfg}, nil
}

func (l *SQLite) Close() error {
	return l.db.Close()
}

func (l *SQLite) Save(ctx context.Context, id string, s *snap.Snap) (string, error) {
	if s == nil {
		return "", fmt.Errorf("library: save: nil snap")
	}
	data, dropped, err := prepare(s, l.cfg.policy)
	if err != nil {
		return "", fmt.Errorf("library: save: %w", err)
	}
	for _, d := range dropped {
		l.cfg.log.Warn("dropped oversized asset", "element", d.ElementID, "field", d.Field, "bytes", d.Bytes)
	}
	if id == "" {
		id = NewID()
	}
	now := l.cfg.now().UnixMilli()
	err = l.exec(ctx, `
		INSERT INTO snaps (id, title, aspect, width, height, elements, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			aspect = excluded.aspect,
			width = excluded.width,
			height = excluded.height,
			elements = excluded.elements,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		id, s.Meta.Title, s.Meta.Aspect, s.Meta.Width, s.Meta.Height, len(s.Elements), data, now, now)
	if err != nil {
		return "", fmt.Errorf("library: save %s: %w", id, err)
	}
	l.cfg.log.Debug("snap saved", "id", id, "bytes", len(data))
	return id, nil
}

func (l *SQLite) Load(ctx context.Context, id string) (*snap.Snap, error) {
	var data []byte
	err := l.db.QueryRowContext(ctx, `SELECT data FROM snaps WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("library: load %s: %w", id, err)
	}
	s, err := snapfile.Import(data)
	if err != nil {
		return nil, fmt.Errorf("library: load %s: %w", id, err)
	}
	return s, nil
}

// List returns every stored snap, most recently saved first.
func (l *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, aspect, width, height, elements, length(data), updated_at
		FROM snaps ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated int64
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Aspect, &sum.Width, &sum.Height, &sum.Elements, &sum.Size, &updated); err != nil {
			return nil, fmt.Errorf("library: list: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (l *SQLite) Delete(ctx context.Context, id string) error {
	var res sql.Result
	err := l.retry(ctx, func() error {
		var err error
		res, err = l.db.ExecContext(ctx, `DELETE FROM snaps WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("library: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (l *SQLite) exec(ctx context.Context, query string, args ...any) error {
	return l.retry(ctx, func() error {
		_, err := l.db.ExecContext(ctx, query, args...)
		return err
	})
}

const maxRetries = 3

// retry runs fn again with a short backoff while SQLite reports BUSY.
func (l *SQLite) retry(ctx context.Context, fn func() error) error {
	var err error
	for i := range maxRetries {
		if err = fn(); err == nil || !isBusy(err) {
			return err
		}
		t := time.NewTimer(time.Duration(100*(i+1)) * time.Millisecond)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
