// Package history is a persistent transcript of link traffic.
//
// One bucket per connection id; entries are appended in order and
// read back in order.
package history

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Direction tags an Entry as sent or received.
type Direction string

const (
	Sent     Direction = "sent"
	Received Direction = "received"
)

// Entry is one chunk of transcript.
type Entry struct {
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	At        time.Time `json:"at"`
}

type Store struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStore(filename string) (*Store, error) {
	return &Store{
		filename: filename,
	}, nil
}

func (s *Store) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("history.Store."+format, args...)
	}
}

// Append records one entry for the given connection id.
func (s *Store) Append(ctx context.Context, connID string, entry *Entry) error {
	s.logf("Append %s %s", connID, entry.Direction)

	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	js, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(connID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, js)
	})
}

// Transcript returns the entries for the given connection id in
// append order.  An unknown id gets an empty (nil) transcript, not an
// error.
func (s *Store) Transcript(ctx context.Context, connID string) ([]*Entry, error) {
	s.logf("Transcript %s", connID)

	entries := make([]*Entry, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(connID))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, bs := c.First(); k != nil; k, bs = c.Next() {
			var entry Entry
			if err := json.Unmarshal(bs, &entry); err != nil {
				return err
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logf("Transcript %s found %d entries", connID, len(entries))

	if len(entries) == 0 {
		return nil, nil
	}

	return entries, nil
}

// Remove drops the transcript for the given connection id.
func (s *Store) Remove(ctx context.Context, connID string) error {
	s.logf("Remove %s", connID)
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(connID)) == nil {
			return nil
		}
		return tx.DeleteBucket([]byte(connID))
	})
}
