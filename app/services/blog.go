package services

import (
	"errors"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/validation"

	"github.com/rs/zerolog"
)

// Clock supplies the current time for publish timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Option configures the services built by NewBlog.
type Option func(*core)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *core) {
		c.clock = clock
	}
}

// WithLogger sets the logger used for mutation records.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *core) {
		c.logger = logger
	}
}

// core is the state shared by every service. It holds no per-call state.
type core struct {
	store     repositories.Store
	validator *validation.Validator
	clock     Clock
	logger    zerolog.Logger
}

// Blog is the single entry point used by both front ends.
type Blog struct {
	Authors  *AuthorService
	Posts    *PostService
	Comments *CommentService
}

func NewBlog(store repositories.Store, opts ...Option) *Blog {
	c := &core{
		store:     store,
		validator: validation.New(),
		clock:     ClockFunc(time.Now),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return &Blog{
		Authors:  &AuthorService{core: c},
		Posts:    &PostService{core: c},
		Comments: &CommentService{core: c},
	}
}

// authorCache memoizes author lookups while building views inside one transaction.
type authorCache struct {
	repo repositories.AuthorRepository
	byID map[int]*models.Author
}

func newAuthorCache(repo repositories.AuthorRepository) *authorCache {
	return &authorCache{repo: repo, byID: make(map[int]*models.Author)}
}

// get returns nil for authors that no longer exist.
func (c *authorCache) get(id int) (*models.Author, error) {
	if a, ok := c.byID[id]; ok {
		return a, nil
	}
	a, err := c.repo.GetByID(id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	c.byID[id] = a
	return a, nil
}

// commenters loads every author linked from comments.
func (c *authorCache) commenters(comments []*models.Comment) (map[int]*models.Author, error) {
	out := make(map[int]*models.Author)
	for _, comment := range comments {
		id, ok := comment.AuthorID()
		if !ok {
			continue
		}
		a, err := c.get(id)
		if err != nil {
			return nil, err
		}
		if a != nil {
			out[id] = a
		}
	}
	return out, nil
}
