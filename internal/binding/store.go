// Package binding persists the mapping from a mailbox address to its
// delivery target: the owning chat identity, optionally scoped to a
// discussion-topic thread.
package binding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okmeder/mailgate/internal/kv"
)

// ErrNotBound is returned for operations on an address with no binding or
// no ownership proof.
var ErrNotBound = errors.New("address not bound")

// ErrInvalidTarget is returned for a topic binding without a chat id.
var ErrInvalidTarget = errors.New("topic binding requires a chat id")

// Record is one address binding. Legacy records are a bare owner id string
// in the store; they decode to a Record with only Owner set.
type Record struct {
	Owner    string `json:"userId"`
	ChatID   int64  `json:"chatId,omitempty"`
	ThreadID int    `json:"threadId,omitempty"`
	BoundAt  string `json:"bindTime,omitempty"`
}

// Topic reports whether the record targets a discussion-topic thread
func (r Record) Topic() bool {
	return r.ThreadID != 0
}

// Store persists binding records in the key-value store
type Store struct {
	kv kv.Store
}

// NewStore creates a binding store
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func bindKey(address string) string {
	return "tg:" + address
}

// decode normalizes the stored value: either a JSON record or a legacy
// bare owner id. All downstream logic sees only the normalized Record.
func decode(raw string) Record {
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err == nil && rec.Owner != "" {
		return rec
	}
	return Record{Owner: raw}
}

// Lookup returns the binding for an address, or ErrNotBound.
func (s *Store) Lookup(ctx context.Context, address string) (Record, error) {
	raw, err := s.kv.Get(ctx, bindKey(address))
	if errors.Is(err, kv.ErrNotFound) {
		return Record{}, ErrNotBound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read binding: %w", err)
	}
	return decode(raw), nil
}

// Bind writes the binding for an address, overwriting any prior one.
// Last bind wins; there is no merge.
func (s *Store) Bind(ctx context.Context, address, owner string, chatID int64, threadID int) (Record, error) {
	if threadID != 0 && chatID == 0 {
		return Record{}, ErrInvalidTarget
	}

	rec := Record{
		Owner:    owner,
		ChatID:   chatID,
		ThreadID: threadID,
		BoundAt:  time.Now().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode binding: %w", err)
	}
	if err := s.kv.Put(ctx, bindKey(address), string(raw)); err != nil {
		return Record{}, fmt.Errorf("failed to write binding: %w", err)
	}
	return rec, nil
}

// Unbind removes the binding for an address. The caller must be the
// recorded owner or hold a credential resolving to the address
// (ownsCredential); either proof grants the same right.
func (s *Store) Unbind(ctx context.Context, address, caller string, ownsCredential bool) error {
	rec, err := s.Lookup(ctx, address)
	if err != nil {
		return err
	}
	if rec.Owner != caller && !ownsCredential {
		return ErrNotBound
	}
	if err := s.kv.Delete(ctx, bindKey(address)); err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	return nil
}

// Remove drops the binding without an ownership check. Used after the
// underlying mailbox is deleted, where ownership was already proven by
// credential.
func (s *Store) Remove(ctx context.Context, address string) error {
	if err := s.kv.Delete(ctx, bindKey(address)); err != nil {
		return fmt.Errorf("failed to delete binding: %w", err)
	}
	return nil
}
