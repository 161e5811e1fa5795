package services

import (
	"context"
	"fmt"

	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/views"
)

// CommentInput holds the fields accepted when creating a comment. A linked
// author takes precedence over a free-text name.
type CommentInput struct {
	PostID        int     `json:"post_id"`
	AuthorID      *int    `json:"author_id"`
	CommenterName *string `json:"commenter_name"`
	Body          string  `json:"body"`
}

// Commenter resolves the input into the tagged commenter choice.
func (in CommentInput) Commenter() models.Commenter {
	switch {
	case in.AuthorID != nil:
		return models.AuthorRef(*in.AuthorID)
	case in.CommenterName != nil:
		return models.FreeText(*in.CommenterName)
	default:
		return models.Commenter{}
	}
}

// CommentPatch holds a merge update. Only the body can change after creation.
type CommentPatch struct {
	Body models.Field[string] `json:"body"`
}

// CommentService handles business logic for comments
type CommentService struct {
	*core
}

// List returns comments in insertion order, limited to one post when postID
// is given.
func (s *CommentService) List(ctx context.Context, postID *int) ([]views.Comment, error) {
	var out []views.Comment
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		var (
			comments []*models.Comment
			err      error
		)
		if postID != nil {
			comments, err = tx.Comments().ListByPost(*postID)
		} else {
			comments, err = tx.Comments().List()
		}
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}

		authors := newAuthorCache(tx.Authors())
		posts := make(map[int]*models.Post)
		out = make([]views.Comment, 0, len(comments))
		for _, c := range comments {
			post, ok := posts[c.PostID]
			if !ok {
				if post, err = tx.Posts().GetByID(c.PostID); err != nil {
					return fmt.Errorf("load post %d: %w", c.PostID, err)
				}
				posts[c.PostID] = post
			}
			view, err := s.view(c, post, authors)
			if err != nil {
				return err
			}
			out = append(out, view)
		}
		return nil
	})
	return out, err
}

// Get returns a single comment.
func (s *CommentService) Get(ctx context.Context, id int) (*views.Comment, error) {
	var out views.Comment
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		comment, err := tx.Comments().GetByID(id)
		if err != nil {
			return loadErr(models.KindComment, id, err)
		}
		out, err = s.load(tx, comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates and stores a new comment.
func (s *CommentService) Create(ctx context.Context, in CommentInput) (*views.Comment, error) {
	comment := &models.Comment{PostID: in.PostID, Commenter: in.Commenter(), Body: in.Body}

	var out views.Comment
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		var err error
		out, err = s.save(tx, comment, tx.Comments().Create)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("kind", models.KindComment).
		Int("id", comment.ID).
		Int("post_id", comment.PostID).
		Stringer("commenter", comment.Commenter).
		Msg("created")
	return &out, nil
}

// Update merges patch onto the stored comment and validates the result.
func (s *CommentService) Update(ctx context.Context, id int, patch CommentPatch) (*views.Comment, error) {
	var out views.Comment
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		comment, err := tx.Comments().GetByID(id)
		if err != nil {
			return loadErr(models.KindComment, id, err)
		}
		patch.Body.Assign(&comment.Body)
		out, err = s.save(tx, comment, tx.Comments().Update)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", models.KindComment).Int("id", id).Msg("updated")
	return &out, nil
}

// Delete removes a single comment.
func (s *CommentService) Delete(ctx context.Context, id int) error {
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		if err := tx.Comments().Delete(id); err != nil {
			return loadErr(models.KindComment, id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("kind", models.KindComment).Int("id", id).Msg("deleted")
	return nil
}

func (s *CommentService) save(tx repositories.Tx, comment *models.Comment, write func(*models.Comment) error) (views.Comment, error) {
	errs, err := s.validator.Comment(comment, tx.Posts(), tx.Authors())
	if err := rejected(models.KindComment, errs, err); err != nil {
		return views.Comment{}, err
	}
	if err := write(comment); err != nil {
		return views.Comment{}, fmt.Errorf("save comment: %w", err)
	}
	return s.load(tx, comment)
}

// load builds the view of a stored comment.
func (s *CommentService) load(tx repositories.Tx, comment *models.Comment) (views.Comment, error) {
	post, err := tx.Posts().GetByID(comment.PostID)
	if err != nil {
		return views.Comment{}, fmt.Errorf("load post %d: %w", comment.PostID, err)
	}
	return s.view(comment, post, newAuthorCache(tx.Authors()))
}

func (s *CommentService) view(comment *models.Comment, post *models.Post, authors *authorCache) (views.Comment, error) {
	var author *models.Author
	if id, ok := comment.AuthorID(); ok {
		var err error
		if author, err = authors.get(id); err != nil {
			return views.Comment{}, fmt.Errorf("load author %d: %w", id, err)
		}
	}
	return views.NewComment(comment, post, author), nil
}
