package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeMatchAPI struct {
	mu         sync.Mutex
	list       []model.Match
	listErr    error
	deleteErr  error
	deleted    []int64
	listCalls  int
	deleteHook func()
	detail     map[int64]*model.Match
}

func (f *fakeMatchAPI) ListMatches(ctx context.Context) ([]model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Match, len(f.list))
	copy(out, f.list)
	return out, nil
}

func (f *fakeMatchAPI) GetMatch(ctx context.Context, id int64) (*model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.detail[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (f *fakeMatchAPI) DeleteMatch(ctx context.Context, id int64) error {
	if f.deleteHook != nil {
		f.deleteHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func matchIDs(list []model.Match) []int64 {
	ids := make([]int64, 0, len(list))
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestRefreshKeepsServerOrder(t *testing.T) {
	api := &fakeMatchAPI{list: []model.Match{{ID: 3}, {ID: 1}, {ID: 2}}}
	r := NewMatchRegistry(api)

	got, err := r.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{3, 1, 2}, matchIDs(got))
	require.Equal(t, []int64{3, 1, 2}, matchIDs(r.Matches()))
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	api := &fakeMatchAPI{list: []model.Match{{ID: 1}}}
	r := NewMatchRegistry(api)
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	api.listErr = errors.New("offline")
	_, err = r.Refresh(context.Background())
	require.Error(t, err)
	require.Equal(t, []int64{1}, matchIDs(r.Matches()))
}

func TestRemove(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &fakeMatchAPI{list: []model.Match{{ID: 1}, {ID: 2}, {ID: 3}}}
		r := NewMatchRegistry(api)
		_, err := r.Refresh(context.Background())
		require.NoError(t, err)

		require.NoError(t, r.Remove(context.Background(), 2))
		require.Equal(t, []int64{1, 3}, matchIDs(r.Matches()))
		require.Equal(t, []int64{2}, api.deleted)
	})

	t.Run("failure restores position", func(t *testing.T) {
		api := &fakeMatchAPI{list: []model.Match{{ID: 1}, {ID: 2}, {ID: 3}}, deleteErr: errors.New("boom")}
		r := NewMatchRegistry(api)
		_, err := r.Refresh(context.Background())
		require.NoError(t, err)

		err = r.Remove(context.Background(), 2)
		require.Error(t, err)
		require.Equal(t, []int64{1, 2, 3}, matchIDs(r.Matches()))
	})

	t.Run("removed locally before the server answers", func(t *testing.T) {
		api := &fakeMatchAPI{list: []model.Match{{ID: 1}, {ID: 2}}}
		r := NewMatchRegistry(api)
		_, err := r.Refresh(context.Background())
		require.NoError(t, err)

		var during []int64
		api.deleteHook = func() { during = matchIDs(r.Matches()) }
		require.NoError(t, r.Remove(context.Background(), 1))
		require.Equal(t, []int64{2}, during)
	})

	t.Run("refresh during failed delete wins", func(t *testing.T) {
		api := &fakeMatchAPI{list: []model.Match{{ID: 1}, {ID: 2}}, deleteErr: errors.New("boom")}
		r := NewMatchRegistry(api)
		_, err := r.Refresh(context.Background())
		require.NoError(t, err)

		api.deleteHook = func() {
			api.mu.Lock()
			api.list = []model.Match{{ID: 2}, {ID: 4}}
			api.mu.Unlock()
			_, err := r.Refresh(context.Background())
			require.NoError(t, err)
		}
		require.Error(t, r.Remove(context.Background(), 1))
		require.Equal(t, []int64{2, 4}, matchIDs(r.Matches()))
	})

	t.Run("unknown id still sent", func(t *testing.T) {
		api := &fakeMatchAPI{}
		r := NewMatchRegistry(api)
		require.NoError(t, r.Remove(context.Background(), 77))
		require.Equal(t, []int64{77}, api.deleted)
	})
}

func TestNotifyNewMatchRefreshesOncePerID(t *testing.T) {
	api := &fakeMatchAPI{list: []model.Match{{ID: 5}}}
	r := NewMatchRegistry(api)

	r.NotifyNewMatch(context.Background(), model.Match{ID: 5})
	r.NotifyNewMatch(context.Background(), model.Match{ID: 5})
	r.NotifyNewMatch(context.Background(), model.Match{ID: 6})

	require.Equal(t, 2, api.listCalls)
	require.Equal(t, []int64{5}, matchIDs(r.Matches()))
}

func TestGetAndReset(t *testing.T) {
	api := &fakeMatchAPI{
		list:   []model.Match{{ID: 8}},
		detail: map[int64]*model.Match{8: {ID: 8, UnreadCount: 2}},
	}
	r := NewMatchRegistry(api)
	_, err := r.Refresh(context.Background())
	require.NoError(t, err)

	m, err := r.Get(context.Background(), 8)
	require.NoError(t, err)
	require.Equal(t, 2, m.UnreadCount)

	_, err = r.Get(context.Background(), 9)
	require.Error(t, err)

	r.Reset()
	require.Empty(t, r.Matches())
	r.NotifyNewMatch(context.Background(), model.Match{ID: 8})
	require.Equal(t, 2, api.listCalls)
}
