package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/matchdesk/internal/clock"
	"github.com/mauv0809/matchdesk/internal/database"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (store.Slots, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	return store.New(db), teardown
}

func configured(t *testing.T) match.Record {
	t.Helper()
	team := func(name string) match.Team {
		return match.Team{Name: name, Players: []match.Player{{ID: name + "-1", Name: "P", Number: 4, Starter: true}}}
	}
	r, err := match.Configure(match.New(clock.DefaultRules()), team("home"), team("away"), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return r
}

func TestSlots(t *testing.T) {
	sqlite, teardown := setupTestDB(t)
	defer teardown()

	for name, slots := range map[string]store.Slots{"sqlite": sqlite, "memory": store.NewMemory()} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := slots.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, slots.Put(ctx, "k", []byte("one")))
			require.NoError(t, slots.Put(ctx, "k", []byte("two")))
			v, ok, err := slots.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("two"), v)

			require.NoError(t, slots.Delete(ctx, "k"))
			_, ok, err = slots.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestLoadCurrent_EmptySlotIsDefault(t *testing.T) {
	ms := store.NewMatchStore(store.NewMemory(), clock.DefaultRules())
	r, data, err := ms.LoadCurrent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, match.New(clock.DefaultRules()), r)
}

func TestCurrentRoundTrip(t *testing.T) {
	slots, teardown := setupTestDB(t)
	defer teardown()
	ms := store.NewMatchStore(slots, clock.DefaultRules())
	ctx := context.Background()

	rec := configured(t)
	data, err := store.EncodeRecord(rec)
	require.NoError(t, err)
	require.NoError(t, ms.SaveCurrent(ctx, data))

	got, raw, err := ms.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, data, raw)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, match.StatusActive, got.Status)
	assert.Equal(t, rec.Home.Players, got.Home.Players)

	require.NoError(t, ms.ClearCurrent(ctx))
	got, _, err = ms.LoadCurrent(ctx)
	require.NoError(t, err)
	assert.False(t, got.Configured())
}

func TestLoadCurrent_CorruptFallsBack(t *testing.T) {
	slots := store.NewMemory()
	ms := store.NewMatchStore(slots, clock.DefaultRules())
	ctx := context.Background()
	require.NoError(t, slots.Put(ctx, store.CurrentKey, []byte("{not json")))

	r, _, err := ms.LoadCurrent(ctx)
	var serr *store.SerializationError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, store.CurrentKey, serr.Key)
	assert.Equal(t, match.StatusUnconfigured, r.Status)

	raw, ok, _ := slots.Get(ctx, store.CurrentKey)
	assert.True(t, ok)
	assert.Equal(t, []byte("{not json"), raw, "corrupt bytes are not repaired")
}

func TestHistory(t *testing.T) {
	slots := store.NewMemory()
	ms := store.NewMatchStore(slots, clock.DefaultRules())
	ctx := context.Background()

	h, err := ms.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)

	rec := configured(t)
	_, err = ms.SaveHistory(ctx, []match.Record{rec})
	require.NoError(t, err)
	h, err = ms.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, rec.ID, h[0].ID)

	require.NoError(t, slots.Put(ctx, store.HistoryKey, []byte(`{"oops":`)))
	h, err = ms.LoadHistory(ctx)
	var serr *store.SerializationError
	assert.ErrorAs(t, err, &serr)
	assert.Empty(t, h)
}

func TestPreserveHistory(t *testing.T) {
	slots := store.NewMemory()
	ms := store.NewMatchStore(slots, clock.DefaultRules())
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	key, err := ms.PreserveHistory(ctx, at)
	require.NoError(t, err)
	assert.Empty(t, key, "nothing to keep without a history slot")

	require.NoError(t, slots.Put(ctx, store.HistoryKey, []byte(`{"oops":`)))
	key, err = ms.PreserveHistory(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, store.CorruptHistoryKey(at), key)

	raw, ok, err := slots.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"oops":`), raw)
}
