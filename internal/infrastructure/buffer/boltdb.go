package buffer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBucket = "outbox"

var errClosed = errors.New("buffer: store is closed")

// Store is a bbolt-backed outbox. Keys sort by priority then enqueue time.
type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// Open creates the database file and its bucket when missing.
func Open(path, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = defaultBucket
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create buffer dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open buffer: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create buffer bucket: %w", err)
	}
	return &Store{db: db, bucket: []byte(bucket), now: time.Now}, nil
}

// Enqueue persists item, filling in its id, priority and timestamp.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return errClosed
	}
	item.prepare(s.now())
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(itemKey(item), payload)
	})
}

// Peek returns up to limit items in drain order without removing them.
// Undecodable entries are skipped.
func (s *Store) Peek(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, errClosed
	}
	if limit <= 0 {
		limit = 50
	}
	items := make([]Item, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.key = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Ack removes an item returned by Peek.
func (s *Store) Ack(item Item) error {
	if s == nil || s.db == nil {
		return errClosed
	}
	key := item.key
	if len(key) == 0 {
		key = itemKey(item)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(key)
	})
}

// Retry moves an item to the back of its priority band with one more attempt
// counted. Removal and reinsertion happen in one transaction.
func (s *Store) Retry(item Item) error {
	if s == nil || s.db == nil {
		return errClosed
	}
	old := item.key
	if len(old) == 0 {
		old = itemKey(item)
	}
	item.Attempts++
	item.Timestamp = s.now()
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if err := b.Delete(old); err != nil {
			return err
		}
		return b.Put(itemKey(item), payload)
	})
}

// Len returns the number of queued items.
func (s *Store) Len() (int, error) {
	if s == nil || s.db == nil {
		return 0, errClosed
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Purge drops items enqueued before cutoff and returns how many were removed.
func (s *Store) Purge(cutoff time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, errClosed
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err == nil && item.Timestamp.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func itemKey(item Item) []byte {
	return fmt.Appendf(nil, "%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID)
}
