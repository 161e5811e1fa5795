package services

import (
	"context"
	"fmt"
	"time"

	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/views"
)

// PostInput holds the fields accepted when creating a post.
type PostInput struct {
	AuthorID    int        `json:"author_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at"`
}

// PostPatch holds a merge update. PublishedAt may be set or cleared directly,
// independent of Publish and Unpublish.
type PostPatch struct {
	Title       models.Field[string]    `json:"title"`
	Body        models.Field[string]    `json:"body"`
	PublishedAt models.Field[time.Time] `json:"published_at"`
}

// PostService handles business logic for blog posts
type PostService struct {
	*core
}

// List returns the posts matching filter, newest first.
func (s *PostService) List(ctx context.Context, filter models.PostFilter) ([]views.Post, error) {
	var out []views.Post
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		posts, err := tx.Posts().List(filter)
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}

		authors := newAuthorCache(tx.Authors())
		out = make([]views.Post, 0, len(posts))
		for _, p := range posts {
			author, err := authors.get(p.AuthorID)
			if err != nil {
				return fmt.Errorf("load author %d: %w", p.AuthorID, err)
			}
			out = append(out, views.NewPost(p, author))
		}
		return nil
	})
	return out, err
}

// Get returns the post with all of its comments.
func (s *PostService) Get(ctx context.Context, id int) (*views.PostDetail, error) {
	var out views.PostDetail
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			return loadErr(models.KindPost, id, err)
		}
		comments, err := tx.Comments().ListByPost(id)
		if err != nil {
			return fmt.Errorf("list comments of post %d: %w", id, err)
		}

		authors := newAuthorCache(tx.Authors())
		author, err := authors.get(post.AuthorID)
		if err != nil {
			return fmt.Errorf("load author %d: %w", post.AuthorID, err)
		}
		commenters, err := authors.commenters(comments)
		if err != nil {
			return fmt.Errorf("load commenters: %w", err)
		}
		out = views.NewPostDetail(post, author, comments, commenters)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates and stores a new post. Posts are drafts unless a
// publication time is given.
func (s *PostService) Create(ctx context.Context, in PostInput) (*views.Post, error) {
	post := &models.Post{
		AuthorID:    in.AuthorID,
		Title:       in.Title,
		Body:        in.Body,
		PublishedAt: in.PublishedAt,
	}

	var out views.Post
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = s.save(tx, post, tx.Posts().Create)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", models.KindPost).Int("id", post.ID).Int("author_id", post.AuthorID).Msg("created")
	return &out, nil
}

// Update merges patch onto the stored post and validates the result.
func (s *PostService) Update(ctx context.Context, id int, patch PostPatch) (*views.Post, error) {
	return s.mutate(ctx, id, "updated", func(post *models.Post) {
		patch.Title.Assign(&post.Title)
		patch.Body.Assign(&post.Body)
		patch.PublishedAt.Apply(&post.PublishedAt)
	})
}

// Publish stamps the post with the current time, even when it is already
// published.
func (s *PostService) Publish(ctx context.Context, id int) (*views.Post, error) {
	return s.mutate(ctx, id, "published", func(post *models.Post) {
		now := s.clock.Now().UTC()
		post.PublishedAt = &now
	})
}

// Unpublish turns the post back into a draft. Drafts are left as they are.
func (s *PostService) Unpublish(ctx context.Context, id int) (*views.Post, error) {
	return s.mutate(ctx, id, "unpublished", func(post *models.Post) {
		post.PublishedAt = nil
	})
}

// Delete removes the post and every comment on it.
func (s *PostService) Delete(ctx context.Context, id int) error {
	var removed int
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		var err error
		removed, err = deletePost(tx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("kind", models.KindPost).Int("id", id).Int("comments", removed).Msg("deleted")
	return nil
}

func (s *PostService) mutate(ctx context.Context, id int, action string, change func(*models.Post)) (*views.Post, error) {
	var out views.Post
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		post, err := tx.Posts().GetByID(id)
		if err != nil {
			return loadErr(models.KindPost, id, err)
		}
		change(post)
		out, err = s.save(tx, post, tx.Posts().Update)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", models.KindPost).Int("id", id).Msg(action)
	return &out, nil
}

// save validates post and hands it to write, returning the stored view.
func (s *PostService) save(tx repositories.Tx, post *models.Post, write func(*models.Post) error) (views.Post, error) {
	errs, err := s.validator.Post(post, tx.Authors())
	if err := rejected(models.KindPost, errs, err); err != nil {
		return views.Post{}, err
	}
	if err := write(post); err != nil {
		return views.Post{}, fmt.Errorf("save post: %w", err)
	}

	author, err := tx.Authors().GetByID(post.AuthorID)
	if err != nil {
		return views.Post{}, fmt.Errorf("load author %d: %w", post.AuthorID, err)
	}
	return views.NewPost(post, author), nil
}

// deletePost removes a post after its comments and reports how many comments
// went with it.
func deletePost(tx repositories.Tx, id int) (int, error) {
	if _, err := tx.Posts().GetByID(id); err != nil {
		return 0, loadErr(models.KindPost, id, err)
	}

	comments, err := tx.Comments().ListByPost(id)
	if err != nil {
		return 0, fmt.Errorf("list comments of post %d: %w", id, err)
	}
	for _, comment := range comments {
		if err := tx.Comments().Delete(comment.ID); err != nil {
			return 0, fmt.Errorf("delete comment %d: %w", comment.ID, err)
		}
	}

	if err := tx.Posts().Delete(id); err != nil {
		return 0, fmt.Errorf("delete post %d: %w", id, err)
	}
	return len(comments), nil
}
