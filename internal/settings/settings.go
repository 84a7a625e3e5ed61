package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/okmeder/mailgate/internal/kv"
)

// Key is the singleton settings record in the key-value store. The record
// is provisioned by the mail backend's admin surface and never written here.
const Key = "tg:settings"

// Settings is the per-interaction snapshot of the bot settings record.
type Settings struct {
	AllowListEnabled  bool     `json:"enableAllowList"`
	AllowList         []string `json:"allowList"`
	GlobalPushEnabled bool     `json:"enableGlobalMailPush"`
	GlobalPushTargets []string `json:"globalMailPushList"`
	MiniAppURL        string   `json:"miniAppUrl"`
}

// Allowed reports whether a user passes the allow-list. An absent or
// disabled allow-list admits everyone.
func (s Settings) Allowed(userID string) bool {
	if !s.AllowListEnabled {
		return true
	}
	return slices.Contains(s.AllowList, userID)
}

// GlobalPush reports whether global broadcast applies.
func (s Settings) GlobalPush() bool {
	return s.GlobalPushEnabled && len(s.GlobalPushTargets) > 0
}

// Load reads the settings snapshot. A missing record yields the zero value
// with everything switched off.
func Load(ctx context.Context, store kv.Store) (Settings, error) {
	raw, err := store.Get(ctx, Key)
	if errors.Is(err, kv.ErrNotFound) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}
