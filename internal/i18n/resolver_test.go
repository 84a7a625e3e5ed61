package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmeder/mailgate/internal/kv"
)

func TestResolveDisabledIgnoresSavedLanguage(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Put(ctx, "tg:lang:42", "en"))

	r := NewResolver(store, "zh", false)

	pack := r.Resolve(ctx, "42")
	assert.Equal(t, "zh", pack.Code)
}

func TestSetLanguageDisabledNeverWrites(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	r := NewResolver(store, "zh", false)

	err := r.SetLanguage(ctx, "42", "en")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = store.Get(ctx, "tg:lang:42")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestResolveEnabled(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	r := NewResolver(store, "zh", true)

	// No saved pick falls back to the default
	assert.Equal(t, "zh", r.Resolve(ctx, "42").Code)

	require.NoError(t, r.SetLanguage(ctx, "42", "en"))
	assert.Equal(t, "en", r.Resolve(ctx, "42").Code)
	assert.Equal(t, "en", r.Saved(ctx, "42"))

	// Other users keep the default
	assert.Equal(t, "zh", r.Resolve(ctx, "7").Code)
}

func TestSetLanguageUnsupported(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(kv.NewMemory(), "zh", true)

	err := r.SetLanguage(ctx, "42", "fr")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestPackForUnknownFallsBack(t *testing.T) {
	assert.Equal(t, "zh", PackFor("xx").Code)
	assert.Equal(t, "en", PackFor("en").Code)
}
