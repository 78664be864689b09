package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/raykavin/futwatch/pkg/core"
	"github.com/tidwall/buntdb"
)

const (
	subscriberPrefix = "subscriber:"
	knownPrefix      = "known:"
	subscriberIndex  = "subscriber_seq"
)

var _ core.Store = (*BuntStorage)(nil)

// subscriberRecord is the JSON value stored for every subscriber
type subscriberRecord struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// BuntStorage implements the core.Store interface using BuntDB
type BuntStorage struct {
	lastSeq int64
	db      *buntdb.DB
}

// FromMemory creates an in-memory storage, nothing survives a restart
func FromMemory() (*BuntStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (*BuntStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (*BuntStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex(subscriberIndex, subscriberPrefix+"*", buntdb.IndexJSON("seq"))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	storage := &BuntStorage{db: db}

	// Resume the registration sequence after the last stored subscriber
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(subscriberIndex, func(_, value string) bool {
			var record subscriberRecord
			if json.Unmarshal([]byte(value), &record) == nil {
				storage.lastSeq = record.Seq
			}
			return false
		})
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read subscriber sequence: %w", err)
	}

	return storage, nil
}

// nextSeq generates the registration order of a new subscriber
func (b *BuntStorage) nextSeq() int64 {
	return atomic.AddInt64(&b.lastSeq, 1)
}

// Subscribers implements core.Store
func (b *BuntStorage) Subscribers(_ context.Context) ([]string, error) {
	subscribers := make([]string, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(subscriberIndex, func(key, _ string) bool {
			subscribers = append(subscribers, strings.TrimPrefix(key, subscriberPrefix))
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over subscribers: %w", err)
	}

	return subscribers, nil
}

// AddSubscriber implements core.Store
func (b *BuntStorage) AddSubscriber(_ context.Context, id string) (bool, error) {
	added := false

	err := b.db.Update(func(tx *buntdb.Tx) error {
		key := subscriberPrefix + id

		// Check if subscriber exists
		_, err := tx.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("failed to lookup subscriber: %w", err)
		}

		content, err := json.Marshal(subscriberRecord{ID: id, Seq: b.nextSeq(), CreatedAt: time.Now().UTC()})
		if err != nil {
			return fmt.Errorf("failed to marshal subscriber: %w", err)
		}

		if _, _, err = tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store subscriber: %w", err)
		}

		added = true
		return nil
	})

	return added, err
}

// RemoveSubscriber implements core.Store
func (b *BuntStorage) RemoveSubscriber(_ context.Context, id string) (bool, error) {
	removed := false

	err := b.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(subscriberPrefix + id)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to delete subscriber: %w", err)
		}

		removed = true
		return nil
	})

	return removed, err
}

// KnownSymbols implements core.Store
func (b *BuntStorage) KnownSymbols(_ context.Context) ([]string, error) {
	symbols := make([]string, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(knownPrefix+"*", func(key, _ string) bool {
			symbols = append(symbols, strings.TrimPrefix(key, knownPrefix))
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over known symbols: %w", err)
	}

	return symbols, nil
}

// ReplaceKnownSymbols implements core.Store, the swap happens in a single transaction
func (b *BuntStorage) ReplaceKnownSymbols(_ context.Context, symbols []string) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		// Keys cannot be deleted while iterating
		var stale []string
		err := tx.AscendKeys(knownPrefix+"*", func(key, _ string) bool {
			stale = append(stale, key)
			return true
		})
		if err != nil {
			return fmt.Errorf("failed to iterate over known symbols: %w", err)
		}

		for _, key := range stale {
			if _, err := tx.Delete(key); err != nil {
				return fmt.Errorf("failed to delete known symbol: %w", err)
			}
		}

		for _, symbol := range symbols {
			if _, _, err := tx.Set(knownPrefix+symbol, "1", nil); err != nil {
				return fmt.Errorf("failed to store known symbol: %w", err)
			}
		}

		return nil
	})
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
