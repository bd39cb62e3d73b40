package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrader/internal/domain"
)

func TestWALStore_SaveAndRead(t *testing.T) {
	store, err := NewWALStore(t.TempDir(), "session-1")
	require.NoError(t, err)
	defer store.Close()

	at := time.Unix(1_700_000_000, 0).UTC()
	buy := domain.NewTransaction("tx-1", at, domain.SideBuy, 10, decimal.NewFromInt(100))
	sell := domain.NewTransaction("tx-2", at.Add(time.Second), domain.SideSell, 4, decimal.NewFromFloat(101.5))

	idx, err := store.SaveTrade(buy, domain.Snapshot{Shares: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), idx)

	_, err = store.SaveTrade(sell, domain.Snapshot{Shares: 6})
	require.NoError(t, err)

	_, err = store.SaveReset(at.Add(2*time.Second), domain.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), store.CurrentIndex())

	entries, err := store.EntriesAfter(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, EntryTrade, entries[0].Type)
	require.NotNil(t, entries[0].Transaction)
	assert.Equal(t, "tx-1", entries[0].Transaction.ID)
	assert.True(t, entries[0].Transaction.Total.Equal(decimal.NewFromInt(1000)))

	assert.Equal(t, domain.SideSell, entries[1].Transaction.Side)
	assert.True(t, entries[1].Transaction.Total.Equal(decimal.NewFromInt(406)))
	assert.Equal(t, 6, entries[1].Snapshot.Shares)

	assert.Equal(t, EntryReset, entries[2].Type)
	assert.Nil(t, entries[2].Transaction)

	tail, err := store.EntriesAfter(2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, uint64(3), tail[0].Index)

	none, err := store.EntriesAfter(3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWALStore_SessionsAreIsolated(t *testing.T) {
	dir := t.TempDir()
	first, err := NewWALStore(dir, "a")
	require.NoError(t, err)
	defer first.Close()
	second, err := NewWALStore(dir, "b")
	require.NoError(t, err)
	defer second.Close()

	_, err = first.SaveTrade(domain.NewTransaction("tx", time.Now(), domain.SideBuy, 1, decimal.NewFromInt(100)), domain.Snapshot{})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.CurrentIndex())
	assert.Equal(t, uint64(0), second.CurrentIndex())
	assert.NotEqual(t, first.Dir(), second.Dir())
}

func TestWALStore_Validation(t *testing.T) {
	_, err := NewWALStore(t.TempDir(), "")
	assert.Error(t, err)

	store, err := NewWALStore(t.TempDir(), "s")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.SaveTrade(domain.Transaction{}, domain.Snapshot{})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Equal(t, uint64(0), store.CurrentIndex())

	var nilStore *WALStore
	_, err = nilStore.EntriesAfter(0)
	assert.Error(t, err)
	assert.Equal(t, uint64(0), nilStore.CurrentIndex())
}
