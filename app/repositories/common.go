package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	AuthorKeyPrefix  = "author:"
	PostKeyPrefix    = "post:"
	CommentKeyPrefix = "comment:"

	// Sequence keys for auto-incrementing IDs
	AuthorSeqKey  = "seq:author"
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"

	// Secondary indexes
	authorEmailIndex   = "idx:author_email:"
	postAuthorIndex    = "idx:post_author:"
	commentPostIndex   = "idx:comment_post:"
	commentAuthorIndex = "idx:comment_author:"
)

// Ids are zero padded so that prefix iteration yields them in numeric order.
func entityKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d", prefix, id))
}

func indexPrefix(prefix string, ownerID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", prefix, ownerID))
}

func indexKey(prefix string, ownerID, id int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", prefix, ownerID, id))
}

func emailKey(email string) []byte {
	return []byte(authorEmailIndex + email)
}

// getNextID gets the next available ID for a given sequence key. Ids are never
// handed out twice, even after the record is deleted.
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id uint64
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %s", seqKey)
			}
			id = binary.BigEndian.Uint64(val) + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	if err := txn.Set([]byte(seqKey), buf); err != nil {
		return 0, fmt.Errorf("failed to update sequence: %w", err)
	}

	return int(id), nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func setEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// scanValues calls fn with every value stored under prefix, in key order.
func scanValues(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// scanIndex returns the ids referenced by the index keys under prefix.
func scanIndex(txn *badger.Txn, prefix []byte) ([]int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []int
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := string(it.Item().Key())
		id, err := strconv.Atoi(key[strings.LastIndexByte(key, ':')+1:])
		if err != nil {
			return nil, fmt.Errorf("corrupt index key %q: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
