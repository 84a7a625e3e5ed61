package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/okmeder/mailgate/internal/kv"
)

// AddressChecker answers whether an address id still exists in the mail
// archive. A credential whose id is gone is invalid even if it verifies.
type AddressChecker interface {
	AddressExists(ctx context.Context, id int64) (bool, error)
}

// Resolution is the outcome of resolving a credential list. Addresses keeps
// resolution order with first-seen dedup; Invalid keeps the credentials
// that failed decoding or whose address is gone.
type Resolution struct {
	Addresses  []string
	AddressIDs map[string]int64
	Invalid    []string
}

// Registry owns the credential lists stored per chat identity.
type Registry struct {
	store   kv.Store
	codec   *Codec
	checker AddressChecker
}

// NewRegistry creates a credential registry
func NewRegistry(store kv.Store, codec *Codec, checker AddressChecker) *Registry {
	return &Registry{store: store, codec: codec, checker: checker}
}

func listKey(userID string) string {
	return "tg:" + userID
}

// List returns the raw credential list for a user. A missing key is an
// empty list.
func (r *Registry) List(ctx context.Context, userID string) ([]string, error) {
	raw, err := r.store.Get(ctx, listKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential list: %w", err)
	}
	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode credential list: %w", err)
	}
	return tokens, nil
}

func (r *Registry) putList(ctx context.Context, userID string, tokens []string) error {
	if tokens == nil {
		tokens = []string{}
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to encode credential list: %w", err)
	}
	if err := r.store.Put(ctx, listKey(userID), string(raw)); err != nil {
		return fmt.Errorf("failed to write credential list: %w", err)
	}
	return nil
}

// Resolve classifies a set of credentials. Only archive lookups can fail;
// structurally broken credentials land in Invalid, never in an error.
func (r *Registry) Resolve(ctx context.Context, tokens []string) (Resolution, error) {
	res := Resolution{AddressIDs: make(map[string]int64)}
	for _, token := range tokens {
		rec, err := r.codec.Decode(token)
		if err != nil {
			res.Invalid = append(res.Invalid, token)
			continue
		}
		exists, err := r.checker.AddressExists(ctx, rec.ID)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to check address %d: %w", rec.ID, err)
		}
		if !exists {
			res.Invalid = append(res.Invalid, token)
			continue
		}
		if _, seen := res.AddressIDs[rec.Address]; !seen {
			res.Addresses = append(res.Addresses, rec.Address)
			res.AddressIDs[rec.Address] = rec.ID
		}
	}
	return res, nil
}

// ResolveAll resolves a user's whole credential list.
func (r *Registry) ResolveAll(ctx context.Context, userID string) (Resolution, error) {
	tokens, err := r.List(ctx, userID)
	if err != nil {
		return Resolution{}, err
	}
	return r.Resolve(ctx, tokens)
}

// Prune rewrites the list with invalid credentials removed and returns the
// resolution of what remains. Pruning an already-clean list is a no-op.
func (r *Registry) Prune(ctx context.Context, userID string) (Resolution, error) {
	tokens, err := r.List(ctx, userID)
	if err != nil {
		return Resolution{}, err
	}
	res, err := r.Resolve(ctx, tokens)
	if err != nil {
		return Resolution{}, err
	}
	if len(res.Invalid) == 0 {
		return res, nil
	}
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if !slices.Contains(res.Invalid, token) {
			kept = append(kept, token)
		}
	}
	if err := r.putList(ctx, userID, kept); err != nil {
		return Resolution{}, err
	}
	return r.Resolve(ctx, kept)
}

// Append adds a caller-supplied credential to the user's list. Duplicates
// are tolerated; dedup happens at resolution.
func (r *Registry) Append(ctx context.Context, userID, token string) error {
	tokens, err := r.List(ctx, userID)
	if err != nil {
		return err
	}
	return r.putList(ctx, userID, append(tokens, token))
}

// RemoveByAddress drops every credential in the list that resolves to the
// given address.
func (r *Registry) RemoveByAddress(ctx context.Context, userID, address string) error {
	tokens, err := r.List(ctx, userID)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		rec, err := r.codec.Decode(token)
		if err == nil && rec.Address == address {
			continue
		}
		kept = append(kept, token)
	}
	if len(kept) == len(tokens) {
		return nil
	}
	return r.putList(ctx, userID, kept)
}
