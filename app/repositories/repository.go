package repositories

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
	now    func() time.Time
	logger zerolog.Logger
}

func defaultStoreOptions() storeOptions {
	return storeOptions{now: time.Now, logger: zerolog.Nop()}
}

// WithClock sets the clock used for created_at and updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		o.now = now
	}
}

// WithLogger routes engine diagnostics to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// BadgerStore keeps the blog in a badger key-value database. An empty path
// opens an in-memory database.
type BadgerStore struct {
	db     *badger.DB
	mutex  sync.Mutex
	dbPath string
	now    func() time.Time
}

func NewBadgerStore(path string, opts ...Option) (*BadgerStore, error) {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}

	badgerOpts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{o.logger}).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithNumGoroutines(1)
	if path == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerStore{db: db, dbPath: path, now: o.now}, nil
}

func (s *BadgerStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, now: s.stamp})
	})
}

// Update serializes writers so that sequence reads never conflict.
func (s *BadgerStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := fn(&badgerTx{txn: txn, now: s.stamp}); err != nil {
			return err
		}
		return ctx.Err()
	})
}

func (s *BadgerStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}

// Backup streams a full backup of the database to w.
func (s *BadgerStore) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return err
}

// Restore loads a backup produced by Backup.
func (s *BadgerStore) Restore(r io.Reader) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Load(r, 16)
}

// Clear drops every key, sequences included.
func (s *BadgerStore) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}

func (s *BadgerStore) stamp() time.Time {
	return s.now().UTC()
}

type badgerTx struct {
	txn *badger.Txn
	now func() time.Time
}

func (t *badgerTx) Authors() AuthorRepository {
	return &BadgerAuthorRepository{txn: t.txn, now: t.now}
}

func (t *badgerTx) Posts() PostRepository {
	return &BadgerPostRepository{txn: t.txn, now: t.now}
}

func (t *badgerTx) Comments() CommentRepository {
	return &BadgerCommentRepository{txn: t.txn, now: t.now}
}

type badgerLogger struct {
	zl zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.zl.Warn().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.zl.Debug().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.zl.Trace().Str("component", "badger").Msgf(format, args...)
}
