package i18n

import (
	"context"
	"errors"
	"fmt"

	"github.com/okmeder/mailgate/internal/kv"
)

// ErrDisabled is returned by SetLanguage when per-user language is off
var ErrDisabled = errors.New("per-user language is disabled")

// ErrUnsupported is returned by SetLanguage for unknown language codes
var ErrUnsupported = errors.New("unsupported language")

// Resolver resolves the display language for a chat identity. When the
// per-user language feature is disabled every lookup returns the default
// pack and saved overrides are never read.
type Resolver struct {
	store       kv.Store
	defaultLang string
	perUser     bool
}

// NewResolver creates a locale resolver
func NewResolver(store kv.Store, defaultLang string, perUser bool) *Resolver {
	return &Resolver{store: store, defaultLang: defaultLang, perUser: perUser}
}

// PerUserEnabled reports whether users may pick their own language
func (r *Resolver) PerUserEnabled() bool {
	return r.perUser
}

// Default returns the process-wide default pack
func (r *Resolver) Default() Pack {
	return PackFor(r.defaultLang)
}

// Resolve returns the message pack for a user. Store failures fall back to
// the default pack; a missing language pick is not an error.
func (r *Resolver) Resolve(ctx context.Context, userID string) Pack {
	if !r.perUser || userID == "" {
		return r.Default()
	}
	saved, err := r.store.Get(ctx, langKey(userID))
	if err != nil || !Supported(saved) {
		return r.Default()
	}
	return PackFor(saved)
}

// Saved returns the user's saved language code, or "" when none is saved.
func (r *Resolver) Saved(ctx context.Context, userID string) string {
	saved, err := r.store.Get(ctx, langKey(userID))
	if err != nil {
		return ""
	}
	return saved
}

// SetLanguage saves a language pick. Accepted only when the feature is
// enabled and the code is supported.
func (r *Resolver) SetLanguage(ctx context.Context, userID, code string) error {
	if !r.perUser {
		return ErrDisabled
	}
	if !Supported(code) {
		return ErrUnsupported
	}
	if err := r.store.Put(ctx, langKey(userID), code); err != nil {
		return fmt.Errorf("failed to save language: %w", err)
	}
	return nil
}

func langKey(userID string) string {
	return "tg:lang:" + userID
}
