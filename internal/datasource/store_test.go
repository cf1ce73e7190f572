package datasource

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prize-odds/internal/models"
)

type stubFetcher struct {
	mu        sync.Mutex
	snapshots map[string]*models.OddsDataSnapshot
	err       error
	calls     int
}

func (f *stubFetcher) Fetch(ctx context.Context, poolID string) (*models.OddsDataSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	snapshot, ok := f.snapshots[poolID]
	if !ok {
		return nil, NewDataSourceError(f.Name(), ErrCodeNotFound, poolID, ErrNotFound)
	}
	return snapshot, nil
}

func (f *stubFetcher) Name() string {
	return "stub"
}

func (f *stubFetcher) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// gatedFetcher signals started on each fetch and blocks until release is closed
type gatedFetcher struct {
	snapshot *models.OddsDataSnapshot
	started  chan struct{}
	release  chan struct{}
}

func (f *gatedFetcher) Fetch(ctx context.Context, poolID string) (*models.OddsDataSnapshot, error) {
	select {
	case f.started <- struct{}{}:
	default:
	}
	select {
	case <-f.release:
		return f.snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *gatedFetcher) Name() string {
	return "gated"
}

func snapshotOf(poolID string, prizes int, supply int64) *models.OddsDataSnapshot {
	return models.NewOddsDataSnapshot(poolID, prizes, big.NewInt(supply), 18)
}

func TestSnapshotStoreAwaitingUntilRefreshed(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.OddsDataSnapshot{"a": snapshotOf("a", 4, 10000)}}
	store := NewSnapshotStore(fetcher, []string{"a"}, nil)

	_, ok := store.Snapshot("a")
	assert.False(t, ok)
	assert.Equal(t, models.SnapshotStateAwaiting, store.State("a"))

	accepted, err := store.Refresh(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), accepted.Version)
	assert.False(t, accepted.FetchedAt.IsZero())

	current, ok := store.Snapshot("a")
	require.True(t, ok)
	assert.Same(t, accepted, current)
	assert.Equal(t, models.SnapshotStateReady, store.State("a"))
}

func TestSnapshotStoreVersionsIncrease(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.OddsDataSnapshot{
		"a": snapshotOf("a", 4, 10000),
		"b": snapshotOf("b", 2, 500),
	}}
	store := NewSnapshotStore(fetcher, []string{"b", "a"}, nil)

	require.NoError(t, store.RefreshAll(context.Background()))
	a1, _ := store.Snapshot("a")
	b1, _ := store.Snapshot("b")

	require.NoError(t, store.RefreshAll(context.Background()))
	a2, _ := store.Snapshot("a")

	assert.Greater(t, b1.Version, a1.Version)
	assert.Greater(t, a2.Version, b1.Version)
	assert.Equal(t, []string{"a", "b"}, store.Pools())
}

func TestSnapshotStoreFailedRefreshKeepsPrevious(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.OddsDataSnapshot{"a": snapshotOf("a", 4, 10000)}}
	store := NewSnapshotStore(fetcher, []string{"a"}, nil)

	first, err := store.Refresh(context.Background(), "a")
	require.NoError(t, err)

	fetcher.setErr(NewDataSourceError("stub", ErrCodeServerError, "down", ErrServerError))
	_, err = store.Refresh(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)

	current, ok := store.Snapshot("a")
	require.True(t, ok)
	assert.Equal(t, first.Version, current.Version)
	assert.Equal(t, models.SnapshotStateReady, store.State("a"))
}

func TestSnapshotStoreSlowFetchDoesNotOverwriteNewerPush(t *testing.T) {
	fetcher := &gatedFetcher{
		snapshot: snapshotOf("a", 4, 1000),
		started:  make(chan struct{}, 1),
		release:  make(chan struct{}),
	}
	store := NewSnapshotStore(fetcher, []string{"a"}, nil)

	type refreshResult struct {
		snapshot *models.OddsDataSnapshot
		err      error
	}
	done := make(chan refreshResult, 1)
	go func() {
		snapshot, err := store.Refresh(context.Background(), "a")
		done <- refreshResult{snapshot, err}
	}()

	<-fetcher.started
	pushed, err := store.Apply("stream", snapshotOf("a", 4, 5000))
	require.NoError(t, err)
	close(fetcher.release)

	res := <-done
	require.NoError(t, res.err)
	assert.Same(t, pushed, res.snapshot)

	current, ok := store.Snapshot("a")
	require.True(t, ok)
	assert.Equal(t, "5000", current.TotalSupply.String())
	assert.Equal(t, pushed.Version, current.Version)

	// a fetch started after the push is current again
	next, err := store.Refresh(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "1000", next.TotalSupply.String())
	assert.Greater(t, next.Version, pushed.Version)
}

func TestSnapshotStoreRejectsInvalidSnapshot(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.OddsDataSnapshot{"a": snapshotOf("a", -1, 10)}}
	store := NewSnapshotStore(fetcher, []string{"a"}, nil)

	_, err := store.Refresh(context.Background(), "a")
	assert.ErrorIs(t, err, models.ErrInvalidSnapshot)
	assert.Equal(t, models.SnapshotStateAwaiting, store.State("a"))
}

func TestSnapshotStoreUnknownPool(t *testing.T) {
	store := NewSnapshotStore(&stubFetcher{}, []string{"a"}, nil)

	_, err := store.Refresh(context.Background(), "zzz")
	assert.ErrorIs(t, err, models.ErrUnknownPool)

	_, err = store.Apply("stream", snapshotOf("zzz", 1, 1))
	assert.ErrorIs(t, err, models.ErrUnknownPool)
	assert.False(t, store.Knows("zzz"))
}

func TestSnapshotStoreRefreshAllJoinsErrors(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.OddsDataSnapshot{"a": snapshotOf("a", 1, 1)}}
	store := NewSnapshotStore(fetcher, []string{"a", "b"}, nil)

	err := store.RefreshAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.SnapshotStateReady, store.State("a"))
	assert.Equal(t, models.SnapshotStateAwaiting, store.State("b"))
}

func TestSnapshotStoreApplyCopiesInput(t *testing.T) {
	store := NewSnapshotStore(nil, []string{"a"}, nil)
	pushed := snapshotOf("a", 3, 900)

	accepted, err := store.Apply("stream", pushed)
	require.NoError(t, err)
	pushed.TotalSupply.SetInt64(1)

	assert.Equal(t, "900", accepted.TotalSupply.String())
	assert.Zero(t, pushed.Version)

	_, err = store.Refresh(context.Background(), "a")
	assert.Error(t, err)
}

func TestSnapshotStorePing(t *testing.T) {
	store := NewSnapshotStore(nil, []string{"a", "b"}, nil)

	err := store.Ping(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSnapshotNotFound)
	assert.Contains(t, err.Error(), "a, b")

	_, err = store.Apply("stream", snapshotOf("a", 1, 1))
	require.NoError(t, err)
	_, err = store.Apply("stream", snapshotOf("b", 1, 1))
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(store.Ping(ctx), context.Canceled))
}

func TestSnapshotStoreConcurrentAccess(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.OddsDataSnapshot{"a": snapshotOf("a", 4, 10000)}}
	store := NewSnapshotStore(fetcher, []string{"a"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Refresh(context.Background(), "a")
		}()
		go func() {
			defer wg.Done()
			store.Snapshot("a")
			store.State("a")
		}()
	}
	wg.Wait()

	current, ok := store.Snapshot("a")
	require.True(t, ok)
	assert.Equal(t, uint64(20), current.Version)
}
