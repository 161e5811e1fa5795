package repositories

import (
	"errors"
	"strconv"
	"time"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerAuthorRepository implements AuthorRepository inside a badger transaction
type BadgerAuthorRepository struct {
	txn *badger.Txn
	now func() time.Time
}

// Create stores a new author and claims its email
func (r *BadgerAuthorRepository) Create(author *models.Author) error {
	if _, err := r.lookupEmail(author.Email); err == nil {
		return ErrConflict
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	id, err := getNextID(r.txn, AuthorSeqKey)
	if err != nil {
		return err
	}
	author.ID = id
	author.CreatedAt = r.now()
	author.UpdatedAt = author.CreatedAt

	if err := setEntity(r.txn, entityKey(AuthorKeyPrefix, id), author); err != nil {
		return err
	}
	return r.txn.Set(emailKey(author.Email), []byte(strconv.Itoa(id)))
}

// GetByID retrieves an author by ID
func (r *BadgerAuthorRepository) GetByID(id int) (*models.Author, error) {
	var author models.Author
	if err := getEntity(r.txn, entityKey(AuthorKeyPrefix, id), &author); err != nil {
		return nil, err
	}
	return &author, nil
}

// FindByEmail retrieves the author holding email
func (r *BadgerAuthorRepository) FindByEmail(email string) (*models.Author, error) {
	id, err := r.lookupEmail(email)
	if err != nil {
		return nil, err
	}
	return r.GetByID(id)
}

// List retrieves all authors in id order
func (r *BadgerAuthorRepository) List() ([]*models.Author, error) {
	var authors []*models.Author
	err := scanValues(r.txn, []byte(AuthorKeyPrefix), func(val []byte) error {
		var author models.Author
		if err := unmarshalEntity(val, &author); err != nil {
			return err
		}
		authors = append(authors, &author)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return authors, nil
}

// Update overwrites an existing author, moving the email claim if it changed
func (r *BadgerAuthorRepository) Update(author *models.Author) error {
	existing, err := r.GetByID(author.ID)
	if err != nil {
		return err
	}

	if existing.Email != author.Email {
		owner, err := r.lookupEmail(author.Email)
		if err == nil && owner != author.ID {
			return ErrConflict
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := r.txn.Delete(emailKey(existing.Email)); err != nil {
			return err
		}
		if err := r.txn.Set(emailKey(author.Email), []byte(strconv.Itoa(author.ID))); err != nil {
			return err
		}
	}

	author.CreatedAt = existing.CreatedAt
	author.UpdatedAt = r.now()
	return setEntity(r.txn, entityKey(AuthorKeyPrefix, author.ID), author)
}

// Delete deletes an author by ID
func (r *BadgerAuthorRepository) Delete(id int) error {
	existing, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if err := r.txn.Delete(emailKey(existing.Email)); err != nil {
		return err
	}
	return r.txn.Delete(entityKey(AuthorKeyPrefix, id))
}

func (r *BadgerAuthorRepository) lookupEmail(email string) (int, error) {
	item, err := r.txn.Get(emailKey(email))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(val))
}
