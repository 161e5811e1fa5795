package models

import "time"

// Entity kinds, used in not-found reporting and logs.
const (
	KindAuthor  = "author"
	KindPost    = "post"
	KindComment = "comment"
)

// Author is a registered writer. Email is unique across all authors.
type Author struct {
	ID        int       `json:"id"`
	Name      string    `json:"name" validate:"notblank"`
	Email     string    `json:"email" validate:"notblank"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Post represents a blog post. A nil PublishedAt means the post is a draft.
type Post struct {
	ID          int        `json:"id"`
	AuthorID    int        `json:"author_id"`
	Title       string     `json:"title" validate:"notblank"`
	Body        string     `json:"body" validate:"notblank"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Comment represents a comment on a blog post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Commenter Commenter `json:"commenter" validate:"-"`
	Body      string    `json:"body" validate:"notblank"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
