package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS authors (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL,
	email      TEXT    NOT NULL UNIQUE,
	bio        TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id    INTEGER NOT NULL REFERENCES authors(id),
	title        TEXT    NOT NULL,
	body         TEXT    NOT NULL,
	published_at INTEGER,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id);

CREATE TABLE IF NOT EXISTS comments (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id        INTEGER NOT NULL REFERENCES posts(id),
	author_id      INTEGER REFERENCES authors(id),
	commenter_name TEXT,
	body           TEXT    NOT NULL,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);
CREATE INDEX IF NOT EXISTS idx_comments_author ON comments(author_id);
`

// SQLiteStore keeps the blog in a SQLite database file. An empty path opens a
// private in-memory database.
type SQLiteStore struct {
	db     *sql.DB
	now    func() time.Time
	logger zerolog.Logger
}

func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dsn := "file::memory:"
	if path != "" {
		dsn = "file:" + path
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}
	// One connection keeps the in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	o.logger.Debug().Str("path", path).Msg("sqlite store ready")
	return &SQLiteStore{db: db, now: o.now, logger: o.logger}, nil
}

func (s *SQLiteStore) View(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	return fn(&sqlTx{ctx: ctx, tx: tx, now: s.stamp})
}

func (s *SQLiteStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(&sqlTx{ctx: ctx, tx: tx, now: s.stamp}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Clear deletes every row and resets the id sequences.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`
		DELETE FROM comments;
		DELETE FROM posts;
		DELETE FROM authors;
		DELETE FROM sqlite_sequence;
	`)
	return err
}

func (s *SQLiteStore) stamp() time.Time {
	return s.now().UTC()
}

type sqlTx struct {
	ctx context.Context
	tx  *sql.Tx
	now func() time.Time
}

func (t *sqlTx) Authors() AuthorRepository {
	return &SQLiteAuthorRepository{sqlTx: t}
}

func (t *sqlTx) Posts() PostRepository {
	return &SQLitePostRepository{sqlTx: t}
}

func (t *sqlTx) Comments() CommentRepository {
	return &SQLiteCommentRepository{sqlTx: t}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func toUnixNano(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnixNano(n.Int64)
	return &t
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func rowsAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
