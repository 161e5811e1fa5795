package repositories

import (
	"time"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository inside a badger transaction
type BadgerPostRepository struct {
	txn *badger.Txn
	now func() time.Time
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	id, err := getNextID(r.txn, PostSeqKey)
	if err != nil {
		return err
	}
	post.ID = id
	post.CreatedAt = r.now()
	post.UpdatedAt = post.CreatedAt

	if err := setEntity(r.txn, entityKey(PostKeyPrefix, id), post); err != nil {
		return err
	}
	return r.txn.Set(indexKey(postAuthorIndex, post.AuthorID, id), nil)
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	if err := getEntity(r.txn, entityKey(PostKeyPrefix, id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves the posts matching filter, newest first
func (r *BadgerPostRepository) List(filter models.PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	err := scanValues(r.txn, []byte(PostKeyPrefix), func(val []byte) error {
		var post models.Post
		if err := unmarshalEntity(val, &post); err != nil {
			return err
		}
		if filter.Match(&post) {
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	models.SortRecent(posts)
	return posts, nil
}

// ListByAuthor retrieves an author's posts in id order
func (r *BadgerPostRepository) ListByAuthor(authorID int) ([]*models.Post, error) {
	ids, err := scanIndex(r.txn, indexPrefix(postAuthorIndex, authorID))
	if err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(ids))
	for _, id := range ids {
		post, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	existing, err := r.GetByID(post.ID)
	if err != nil {
		return err
	}

	if existing.AuthorID != post.AuthorID {
		if err := r.txn.Delete(indexKey(postAuthorIndex, existing.AuthorID, post.ID)); err != nil {
			return err
		}
		if err := r.txn.Set(indexKey(postAuthorIndex, post.AuthorID, post.ID), nil); err != nil {
			return err
		}
	}

	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = r.now()
	return setEntity(r.txn, entityKey(PostKeyPrefix, post.ID), post)
}

// Delete deletes a post by ID. Comments are left to the caller.
func (r *BadgerPostRepository) Delete(id int) error {
	existing, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.txn.Delete(indexKey(postAuthorIndex, existing.AuthorID, id)); err != nil {
		return err
	}
	return r.txn.Delete(entityKey(PostKeyPrefix, id))
}
