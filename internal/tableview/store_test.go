// file: internal/tableview/store_test.go

package tableview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RefreshReplacesRows(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Rows)

	gen, err := s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
		return []Row{{"id": 1.0}, {"id": 2.0}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), gen)

	snap = s.Snapshot()
	assert.True(t, snap.Loaded)
	assert.Len(t, snap.Rows, 2)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestStore_FailedRefreshKeepsPreviousRows(t *testing.T) {
	s := NewStore()
	s.Replace([]Row{{"id": 1.0}})

	boom := errors.New("remote down")
	_, err := s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.Len(t, snap.Rows, 1)
	assert.ErrorIs(t, snap.LastError, boom)

	_, err = s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.NoError(t, s.Snapshot().LastError)
	assert.NotNil(t, s.Rows())
	assert.Empty(t, s.Rows())
}

func TestStore_StaleResponseIsDiscarded(t *testing.T) {
	s := NewStore()

	started := make(chan struct{})
	release := make(chan struct{})
	var slowErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, slowErr = s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
			close(started)
			<-release
			return []Row{{"who": "slow"}}, nil
		})
	}()

	<-started
	_, err := s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
		return []Row{{"who": "fast"}}, nil
	})
	require.NoError(t, err)

	close(release)
	wg.Wait()

	assert.ErrorIs(t, slowErr, ErrStaleResponse)
	rows := s.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "fast", rows[0]["who"])
	assert.Equal(t, uint64(2), s.Snapshot().Generation)
}

func TestStore_NewRefreshCancelsInFlightFetch(t *testing.T) {
	s := NewStore()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	go func() {
		_, _ = s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		})
	}()

	<-started
	s.Replace([]Row{{"id": "direct"}})
	<-cancelled

	assert.Equal(t, "direct", s.Rows()[0]["id"])
}

func TestStore_WaitReturnsSupersedingResult(t *testing.T) {
	s := NewStore()

	snap, err := s.Wait(context.Background())
	require.NoError(t, err, "an idle store does not block")
	assert.False(t, snap.Loaded)

	started := make(chan struct{})
	release := make(chan struct{})
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background(), func(ctx context.Context) ([]Row, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
		firstErr <- err
	}()
	<-started

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		_, _ = s.Refresh(context.Background(), func(context.Context) ([]Row, error) {
			<-release
			return []Row{{"id": "fresh"}}, nil
		})
	}()

	require.ErrorIs(t, <-firstErr, ErrStaleResponse)
	assert.False(t, s.Snapshot().Loaded, "the second fetch is still gated")

	waited := make(chan Snapshot, 1)
	go func() {
		snap, _ := s.Wait(context.Background())
		waited <- snap
	}()
	close(release)
	<-secondDone

	snap = <-waited
	require.True(t, snap.Loaded)
	assert.Equal(t, "fresh", snap.Rows[0]["id"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	blocked := make(chan struct{})
	go func() {
		_, _ = s.Refresh(context.Background(), func(context.Context) ([]Row, error) {
			<-blocked
			return nil, nil
		})
	}()
	require.Eventually(t, func() bool { return s.Snapshot().Generation == 3 }, time.Second, 5*time.Millisecond)
	_, err = s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	close(blocked)
}
