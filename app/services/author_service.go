package services

import (
	"context"
	"errors"
	"fmt"

	"inkwell/app/models"
	"inkwell/app/repositories"
	"inkwell/app/validation"
	"inkwell/app/views"
)

// AuthorInput holds the fields accepted when creating an author.
type AuthorInput struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Bio   *string `json:"bio"`
}

// AuthorPatch holds a merge update. Unset fields keep their stored value.
type AuthorPatch struct {
	Name  models.Field[string] `json:"name"`
	Email models.Field[string] `json:"email"`
	Bio   models.Field[string] `json:"bio"`
}

// AuthorService handles business logic for authors
type AuthorService struct {
	*core
}

// List returns every author in id order.
func (s *AuthorService) List(ctx context.Context) ([]views.Author, error) {
	var out []views.Author
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		authors, err := tx.Authors().List()
		if err != nil {
			return fmt.Errorf("list authors: %w", err)
		}
		out = make([]views.Author, 0, len(authors))
		for _, a := range authors {
			out = append(out, views.NewAuthor(a))
		}
		return nil
	})
	return out, err
}

// Get returns the author with all of their posts.
func (s *AuthorService) Get(ctx context.Context, id int) (*views.AuthorDetail, error) {
	var out views.AuthorDetail
	err := s.store.View(ctx, func(tx repositories.Tx) error {
		author, err := tx.Authors().GetByID(id)
		if err != nil {
			return loadErr(models.KindAuthor, id, err)
		}
		posts, err := tx.Posts().ListByAuthor(id)
		if err != nil {
			return fmt.Errorf("list posts of author %d: %w", id, err)
		}
		out = views.NewAuthorDetail(author, posts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create validates and stores a new author.
func (s *AuthorService) Create(ctx context.Context, in AuthorInput) (*views.Author, error) {
	author := &models.Author{Name: in.Name, Email: in.Email, Bio: in.Bio}

	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		errs, err := s.validator.Author(author, tx.Authors())
		if err := rejected(models.KindAuthor, errs, err); err != nil {
			return err
		}
		return s.save(tx.Authors().Create(author))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", models.KindAuthor).Int("id", author.ID).Msg("created")
	out := views.NewAuthor(author)
	return &out, nil
}

// Update merges patch onto the stored author and validates the result.
func (s *AuthorService) Update(ctx context.Context, id int, patch AuthorPatch) (*views.Author, error) {
	var author *models.Author

	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		var err error
		author, err = tx.Authors().GetByID(id)
		if err != nil {
			return loadErr(models.KindAuthor, id, err)
		}

		patch.Name.Assign(&author.Name)
		patch.Email.Assign(&author.Email)
		patch.Bio.Apply(&author.Bio)

		errs, err := s.validator.Author(author, tx.Authors())
		if err := rejected(models.KindAuthor, errs, err); err != nil {
			return err
		}
		return s.save(tx.Authors().Update(author))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("kind", models.KindAuthor).Int("id", id).Msg("updated")
	out := views.NewAuthor(author)
	return &out, nil
}

// Delete removes the author and every post they own, along with the comments
// on those posts. Comments the author left on other posts survive under the
// author's name with the author link cleared.
func (s *AuthorService) Delete(ctx context.Context, id int) error {
	var removedPosts, removedComments, detached int

	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		author, err := tx.Authors().GetByID(id)
		if err != nil {
			return loadErr(models.KindAuthor, id, err)
		}

		posts, err := tx.Posts().ListByAuthor(id)
		if err != nil {
			return fmt.Errorf("list posts of author %d: %w", id, err)
		}
		for _, post := range posts {
			n, err := deletePost(tx, post.ID)
			if err != nil {
				return err
			}
			removedPosts++
			removedComments += n
		}

		comments, err := tx.Comments().ListByAuthor(id)
		if err != nil {
			return fmt.Errorf("list comments of author %d: %w", id, err)
		}
		for _, comment := range comments {
			comment.Commenter = models.FreeText(author.Name)
			if err := tx.Comments().Update(comment); err != nil {
				return fmt.Errorf("detach comment %d: %w", comment.ID, err)
			}
			detached++
		}

		if err := tx.Authors().Delete(id); err != nil {
			return fmt.Errorf("delete author %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("kind", models.KindAuthor).
		Int("id", id).
		Int("posts", removedPosts).
		Int("comments", removedComments).
		Int("detached_comments", detached).
		Msg("deleted")
	return nil
}

// save reports a uniqueness conflict raised by the store as a taken email.
func (s *AuthorService) save(err error) error {
	if errors.Is(err, repositories.ErrConflict) {
		return &ValidationError{
			Kind:   models.KindAuthor,
			Errors: validation.Errors{{Field: "email", Rule: validation.Taken}},
		}
	}
	if err != nil {
		return fmt.Errorf("save author: %w", err)
	}
	return nil
}
