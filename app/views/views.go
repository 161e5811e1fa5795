// Package views builds the denormalized read models returned by the services.
// Views are pure derivations over loaded entities and carry untruncated values.
package views

import (
	"time"

	"inkwell/app/models"
)

// Author is the public view of an author.
type Author struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       *string   `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthorDetail is an author with every post they own.
type AuthorDetail struct {
	Author
	Posts []Post `json:"posts"`
}

// Post embeds the name of the post's author.
type Post struct {
	ID          int        `json:"id"`
	AuthorID    int        `json:"author_id"`
	AuthorName  string     `json:"author_name"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Published reports whether the post has a publication timestamp.
func (p Post) Published() bool {
	return p.PublishedAt != nil
}

// PostDetail is a post with every comment on it.
type PostDetail struct {
	Post
	Comments []Comment `json:"comments"`
}

// Comment embeds the post title and the resolved commenter name.
type Comment struct {
	ID            int       `json:"id"`
	PostID        int       `json:"post_id"`
	PostTitle     string    `json:"post_title"`
	AuthorID      *int      `json:"author_id"`
	CommenterName string    `json:"commenter_name"`
	Body          string    `json:"body"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAuthor projects a stored author.
func NewAuthor(a *models.Author) Author {
	return Author{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewAuthorDetail expects posts to belong to a.
func NewAuthorDetail(a *models.Author, posts []*models.Post) AuthorDetail {
	detail := AuthorDetail{Author: NewAuthor(a), Posts: make([]Post, 0, len(posts))}
	for _, p := range posts {
		detail.Posts = append(detail.Posts, NewPost(p, a))
	}
	return detail
}

// NewPost leaves the author name empty when author is nil.
func NewPost(p *models.Post, author *models.Author) Post {
	v := Post{
		ID:          p.ID,
		AuthorID:    p.AuthorID,
		Title:       p.Title,
		Body:        p.Body,
		PublishedAt: p.PublishedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if author != nil {
		v.AuthorName = author.Name
	}
	return v
}

// NewPostDetail resolves comment authors through authors, keyed by id.
func NewPostDetail(p *models.Post, author *models.Author, comments []*models.Comment, authors map[int]*models.Author) PostDetail {
	detail := PostDetail{Post: NewPost(p, author), Comments: make([]Comment, 0, len(comments))}
	for _, c := range comments {
		var commenter *models.Author
		if id, ok := c.AuthorID(); ok {
			commenter = authors[id]
		}
		detail.Comments = append(detail.Comments, NewComment(c, p, commenter))
	}
	return detail
}

// NewComment projects c, naming its post and resolving the commenter through author.
func NewComment(c *models.Comment, post *models.Post, author *models.Author) Comment {
	v := Comment{
		ID:            c.ID,
		PostID:        c.PostID,
		CommenterName: c.DisplayName(author),
		Body:          c.Body,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if post != nil {
		v.PostTitle = post.Title
	}
	if id, ok := c.AuthorID(); ok {
		v.AuthorID = &id
	}
	return v
}
