package repositories

import (
	"time"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository inside a badger transaction
type BadgerCommentRepository struct {
	txn *badger.Txn
	now func() time.Time
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	id, err := getNextID(r.txn, CommentSeqKey)
	if err != nil {
		return err
	}
	comment.ID = id
	comment.CreatedAt = r.now()
	comment.UpdatedAt = comment.CreatedAt

	if err := setEntity(r.txn, entityKey(CommentKeyPrefix, id), comment); err != nil {
		return err
	}
	return r.setIndexes(comment)
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	if err := getEntity(r.txn, entityKey(CommentKeyPrefix, id), &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// List retrieves all comments in id order
func (r *BadgerCommentRepository) List() ([]*models.Comment, error) {
	var comments []*models.Comment
	err := scanValues(r.txn, []byte(CommentKeyPrefix), func(val []byte) error {
		var comment models.Comment
		if err := unmarshalEntity(val, &comment); err != nil {
			return err
		}
		comments = append(comments, &comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// ListByPost retrieves all comments for a post
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	return r.listIndexed(indexPrefix(commentPostIndex, postID))
}

// ListByAuthor retrieves the comments linked to a registered author
func (r *BadgerCommentRepository) ListByAuthor(authorID int) ([]*models.Comment, error) {
	return r.listIndexed(indexPrefix(commentAuthorIndex, authorID))
}

// Update updates an existing comment
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	existing, err := r.GetByID(comment.ID)
	if err != nil {
		return err
	}
	if err := r.deleteIndexes(existing); err != nil {
		return err
	}
	if err := r.setIndexes(comment); err != nil {
		return err
	}

	comment.CreatedAt = existing.CreatedAt
	comment.UpdatedAt = r.now()
	return setEntity(r.txn, entityKey(CommentKeyPrefix, comment.ID), comment)
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	existing, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.deleteIndexes(existing); err != nil {
		return err
	}
	return r.txn.Delete(entityKey(CommentKeyPrefix, id))
}

func (r *BadgerCommentRepository) listIndexed(prefix []byte) ([]*models.Comment, error) {
	ids, err := scanIndex(r.txn, prefix)
	if err != nil {
		return nil, err
	}

	comments := make([]*models.Comment, 0, len(ids))
	for _, id := range ids {
		comment, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func (r *BadgerCommentRepository) setIndexes(c *models.Comment) error {
	if err := r.txn.Set(indexKey(commentPostIndex, c.PostID, c.ID), nil); err != nil {
		return err
	}
	if authorID, ok := c.AuthorID(); ok {
		return r.txn.Set(indexKey(commentAuthorIndex, authorID, c.ID), nil)
	}
	return nil
}

func (r *BadgerCommentRepository) deleteIndexes(c *models.Comment) error {
	if err := r.txn.Delete(indexKey(commentPostIndex, c.PostID, c.ID)); err != nil {
		return err
	}
	if authorID, ok := c.AuthorID(); ok {
		return r.txn.Delete(indexKey(commentAuthorIndex, authorID, c.ID))
	}
	return nil
}
