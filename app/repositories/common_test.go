package repositories

import (
	"testing"

	"inkwell/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNextID(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer db.Close()

	t.Run("first ID", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("sequential IDs", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			for i := 2; i <= 5; i++ {
				id, err := getNextID(txn, PostSeqKey)
				assert.NoError(t, err)
				assert.Equal(t, i, id)
			}
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("different sequence keys", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			_, err := getNextID(txn, PostSeqKey)
			assert.NoError(t, err)

			commentID, err := getNextID(txn, CommentSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, commentID, "Comment sequence should start from 1")
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("rolled back transaction does not advance", func(t *testing.T) {
		err := db.Update(func(txn *badger.Txn) error {
			_, err := getNextID(txn, AuthorSeqKey)
			assert.NoError(t, err)
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)

		err = db.Update(func(txn *badger.Txn) error {
			id, err := getNextID(txn, AuthorSeqKey)
			assert.NoError(t, err)
			assert.Equal(t, 1, id)
			return nil
		})
		assert.NoError(t, err)
	})
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "post:0000000042", string(entityKey(PostKeyPrefix, 42)))
	assert.Equal(t, "idx:comment_post:0000000003:0000000012", string(indexKey(commentPostIndex, 3, 12)))
	assert.Equal(t, "idx:comment_post:0000000003:", string(indexPrefix(commentPostIndex, 3)))
}

func TestUnmarshalEntity(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		var post models.Post
		assert.Error(t, unmarshalEntity([]byte(`{"id":1,invalid json}`), &post))
	})

	t.Run("into nil", func(t *testing.T) {
		assert.Error(t, unmarshalEntity([]byte(`{"id":1}`), nil))
	})

	t.Run("marshal invalid entity", func(t *testing.T) {
		_, err := marshalEntity(struct{ Ch chan int }{Ch: make(chan int)})
		assert.Error(t, err)
	})
}
