package binding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okmeder/mailgate/internal/kv"
)

func TestBindAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())

	_, err := s.Bind(ctx, "foo@example.com", "100", 0, 0)
	require.NoError(t, err)

	rec, err := s.Lookup(ctx, "foo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "100", rec.Owner)
	assert.False(t, rec.Topic())
	assert.NotEmpty(t, rec.BoundAt)
}

func TestBindOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())

	_, err := s.Bind(ctx, "foo@example.com", "100", 0, 0)
	require.NoError(t, err)
	_, err = s.Bind(ctx, "foo@example.com", "200", 500, 7)
	require.NoError(t, err)

	rec, err := s.Lookup(ctx, "foo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "200", rec.Owner)
	assert.Equal(t, int64(500), rec.ChatID)
	assert.Equal(t, 7, rec.ThreadID)
	assert.True(t, rec.Topic())
}

func TestBindTopicWithoutChatRejected(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory())

	_, err := s.Bind(ctx, "foo@example.com", "100", 0, 7)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestLookupLegacyBareOwner(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Put(ctx, "tg:foo@example.com", "31337"))

	s := NewStore(store)
	rec, err := s.Lookup(ctx, "foo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "31337", rec.Owner)
	assert.Zero(t, rec.ChatID)
	assert.Zero(t, rec.ThreadID)
}

func TestUnbindProofs(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *Store {
		s := NewStore(kv.NewMemory())
		_, err := s.Bind(ctx, "foo@example.com", "100", 0, 0)
		require.NoError(t, err)
		return s
	}

	t.Run("recorded owner", func(t *testing.T) {
		s := setup(t)
		require.NoError(t, s.Unbind(ctx, "foo@example.com", "100", false))
		_, err := s.Lookup(ctx, "foo@example.com")
		assert.ErrorIs(t, err, ErrNotBound)
	})

	t.Run("credential holder", func(t *testing.T) {
		s := setup(t)
		require.NoError(t, s.Unbind(ctx, "foo@example.com", "999", true))
	})

	t.Run("stranger denied", func(t *testing.T) {
		s := setup(t)
		err := s.Unbind(ctx, "foo@example.com", "999", false)
		assert.ErrorIs(t, err, ErrNotBound)

		// Binding survives the failed attempt
		rec, err := s.Lookup(ctx, "foo@example.com")
		require.NoError(t, err)
		assert.Equal(t, "100", rec.Owner)
	})

	t.Run("never bound", func(t *testing.T) {
		s := NewStore(kv.NewMemory())
		err := s.Unbind(ctx, "bar@example.com", "100", true)
		assert.ErrorIs(t, err, ErrNotBound)
	})
}
