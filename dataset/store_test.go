package dataset

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petrodata/brentdash/fake"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dataset.db"))
	require.NoError(t, err)
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)

	prices := make([]PricePoint, 20)
	walk := fake.RandomWalk(20, fake.Price())
	for i := range prices {
		prices[i] = PricePoint{Date: day(i), Price: walk[i]}
	}
	events := []Event{
		{
			Name:            fake.EventName(),
			Date:            day(3),
			Category:        fake.Category(),
			ImpactMagnitude: fake.ImpactMagnitude(),
			Description:     fake.Description(),
			DurationDays:    14,
		},
	}

	require.NoError(t, store.Replace(prices, events))

	svc, err := store.LoadService()
	require.NoError(t, err)
	require.Len(t, svc.Prices(), 20)
	require.Len(t, svc.EventTable(), 1)

	// derived fields are recomputed on load
	loaded := svc.Prices()
	require.True(t, math.IsNaN(loaded[0].Returns))
	require.False(t, math.IsNaN(loaded[1].Returns))
	require.Equal(t, day(17), svc.EventTable()[0].EndDate)
}

func TestStoreReplaceIsDestructive(t *testing.T) {
	store := newTestStore(t)

	first := []PricePoint{{Date: day(0), Price: 100}, {Date: day(1), Price: 101}}
	require.NoError(t, store.Replace(first, nil))

	second := []PricePoint{{Date: day(5), Price: 90}}
	require.NoError(t, store.Replace(second, nil))

	svc, err := store.LoadService()
	require.NoError(t, err)
	require.Len(t, svc.Prices(), 1)
	require.Equal(t, 90.0, svc.Prices()[0].Price)
}

func TestPricesBetween(t *testing.T) {
	store := newTestStore(t)

	prices := make([]PricePoint, 10)
	for i := range prices {
		prices[i] = PricePoint{Date: day(i), Price: 100 + float64(i)}
	}
	require.NoError(t, store.Replace(prices, nil))

	window, err := store.PricesBetween(day(2), day(5))
	require.NoError(t, err)
	require.Len(t, window, 4)
	require.Equal(t, 102.0, window[0].Price)
	require.Equal(t, 105.0, window[len(window)-1].Price)

	all, err := store.PricesBetween(day(0), day(9))
	require.NoError(t, err)
	require.Len(t, all, 10)
}
