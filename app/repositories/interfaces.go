package repositories

import (
	"context"
	"errors"
	"io"

	"inkwell/app/models"
)

var (
	// ErrNotFound is returned when an id does not resolve to a stored record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness constraint.
	ErrConflict = errors.New("uniqueness conflict")
)

// Store runs units of work against the persistence engine. Update commits
// everything fn wrote, or nothing when fn returns an error.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Authors() AuthorRepository
	Posts() PostRepository
	Comments() CommentRepository
}

// Backupper is implemented by stores that can stream a full backup.
type Backupper interface {
	Backup(w io.Writer) error
	Restore(r io.Reader) error
}

// AuthorRepository defines the interface for author data access
type AuthorRepository interface {
	Create(author *models.Author) error
	GetByID(id int) (*models.Author, error)
	FindByEmail(email string) (*models.Author, error)
	List() ([]*models.Author, error)
	Update(author *models.Author) error
	Delete(id int) error
}

// PostRepository defines the interface for post data access. List returns
// posts newest first.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List(filter models.PostFilter) ([]*models.Post, error)
	ListByAuthor(authorID int) ([]*models.Post, error)
	Update(post *models.Post) error
	Delete(id int) error
}

// CommentRepository defines the interface for comment data access. Listings
// are in insertion order.
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	List() ([]*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	ListByAuthor(authorID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
}
