package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"bizchat/internal/chat"
)

var bucketReadState = []byte("read_state")

// ReadStateStore tracks the newest message id the viewer has seen per
// conversation, keyed by the unordered participant pair. It is purely local
// sidebar state and never authoritative over the backend's readAt.
type ReadStateStore interface {
	LastRead(ctx context.Context, viewerID, partnerID int64) (int64, error)
	MarkRead(ctx context.Context, viewerID, partnerID, messageID int64) error
	Close() error
}

type BoltReadStateStore struct {
	db *bolt.DB
}

func NewBoltReadStateStore(path string) (*BoltReadStateStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("read-state db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReadState)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltReadStateStore{db: db}, nil
}

func (s *BoltReadStateStore) LastRead(ctx context.Context, viewerID, partnerID int64) (int64, error) {
	var last int64
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketReadState)
		if bucket == nil {
			return nil
		}
		raw := bucket.Get([]byte(chat.ConversationKey(viewerID, partnerID)))
		if len(raw) == 0 {
			return nil
		}
		parsed, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil
		}
		last = parsed
		return nil
	})
	return last, err
}

// MarkRead records messageID as read. The marker only ever advances;
// a stale or duplicate mark is a no-op.
func (s *BoltReadStateStore) MarkRead(ctx context.Context, viewerID, partnerID, messageID int64) error {
	if messageID <= 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketReadState)
		if bucket == nil {
			return errors.New("read_state bucket missing")
		}
		key := []byte(chat.ConversationKey(viewerID, partnerID))
		if raw := bucket.Get(key); len(raw) > 0 {
			if current, err := strconv.ParseInt(string(raw), 10, 64); err == nil && current >= messageID {
				return nil
			}
		}
		return bucket.Put(key, []byte(strconv.FormatInt(messageID, 10)))
	})
}

func (s *BoltReadStateStore) Close() error {
	return s.db.Close()
}
