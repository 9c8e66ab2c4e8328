package cache

import (
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const playerBucket = "players"

// fileBackend stores entries in an embedded bbolt database. bbolt gives the
// file side of the cache atomic upsert-by-key, so concurrent writers cannot
// lose updates the way a read-modify-write JSON file would.
type fileBackend struct {
	db *bbolt.DB
}

func openFileBackend(path string) (*fileBackend, error) {
	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(playerBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init cache bucket: %w", err)
	}

	return &fileBackend{db: db}, nil
}

func (b *fileBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *fileBackend) get(playerID string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playerBucket))
		if bucket == nil {
			return fmt.Errorf("player bucket is missing")
		}
		if v := bucket.Get([]byte(playerID)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, found, nil
}

func (b *fileBackend) put(playerID, username string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playerBucket))
		if bucket == nil {
			return fmt.Errorf("player bucket is missing")
		}
		// First write wins within the transaction.
		if existing := bucket.Get([]byte(playerID)); existing != nil {
			return nil
		}
		return bucket.Put([]byte(playerID), []byte(username))
	})
}

func (b *fileBackend) entries() ([]Entry, error) {
	var out []Entry
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(playerBucket))
		if bucket == nil {
			return fmt.Errorf("player bucket is missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			out = append(out, Entry{PlayerID: string(k), Username: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
