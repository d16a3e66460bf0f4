package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/cuceimatch/matchcore/internal/model"
)

type matchAPI interface {
	ListMatches(ctx context.Context) ([]model.Match, error)
	GetMatch(ctx context.Context, id int64) (*model.Match, error)
	DeleteMatch(ctx context.Context, id int64) error
}

// MatchRegistry - 서버에서 가져온 매치 목록 스냅샷
type MatchRegistry struct {
	api matchAPI

	mu      sync.Mutex
	matches []model.Match
	// Refresh가 스냅샷을 교체할 때마다 증가
	version uint64
	// Reset 마다 증가
	gen          uint64
	refreshedFor map[int64]struct{}
}

func NewMatchRegistry(api matchAPI) *MatchRegistry {
	return &MatchRegistry{
		api:          api,
		matches:      []model.Match{},
		refreshedFor: make(map[int64]struct{}),
	}
}

// Refresh - 서버 순서 그대로 목록 교체
func (r *MatchRegistry) Refresh(ctx context.Context) ([]model.Match, error) {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()

	list, err := r.api.ListMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return nil, ErrStale
	}
	r.matches = list
	r.version++
	return copyMatches(list), nil
}

// Matches - 현재 스냅샷 복사본
func (r *MatchRegistry) Matches() []model.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyMatches(r.matches)
}

// Get - 매치 상세 조회 (로컬 스냅샷은 변경하지 않음)
func (r *MatchRegistry) Get(ctx context.Context, id int64) (*model.Match, error) {
	match, err := r.api.GetMatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

// Remove - 로컬 목록에서 먼저 제거한 뒤 DELETE 전송
//
// 삭제가 실패하면 원래 위치에 복구. 그 사이 Refresh로 스냅샷이 바뀌었으면 복구하지 않음.
func (r *MatchRegistry) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	idx := -1
	var removed model.Match
	for i, m := range r.matches {
		if m.ID == id {
			idx = i
			removed = m
			break
		}
	}
	if idx >= 0 {
		next := make([]model.Match, 0, len(r.matches)-1)
		next = append(next, r.matches[:idx]...)
		next = append(next, r.matches[idx+1:]...)
		r.matches = next
	}
	version, gen := r.version, r.gen
	r.mu.Unlock()

	err := r.api.DeleteMatch(ctx, id)
	if err == nil {
		log.Printf("[MatchRegistry] match removed (match_id=%d)", id)
		return nil
	}

	if idx >= 0 {
		r.mu.Lock()
		if version == r.version && gen == r.gen {
			pos := min(idx, len(r.matches))
			restored := make([]model.Match, 0, len(r.matches)+1)
			restored = append(restored, r.matches[:pos]...)
			restored = append(restored, removed)
			restored = append(restored, r.matches[pos:]...)
			r.matches = restored
		}
		r.mu.Unlock()
	}
	return fmt.Errorf("failed to delete match %d: %w", id, err)
}

// NotifyNewMatch - 새 매치 id 마다 한 번만 Refresh
func (r *MatchRegistry) NotifyNewMatch(ctx context.Context, match model.Match) {
	r.mu.Lock()
	if _, done := r.refreshedFor[match.ID]; done {
		r.mu.Unlock()
		return
	}
	r.refreshedFor[match.ID] = struct{}{}
	r.mu.Unlock()

	if _, err := r.Refresh(ctx); err != nil {
		log.Printf("[MatchRegistry] refresh after new match failed (match_id=%d): %v", match.ID, err)
	}
}

// Reset - 로그아웃 시 스냅샷 비움 (진행 중인 Refresh 결과는 버려짐)
func (r *MatchRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.version++
	r.matches = []model.Match{}
	r.refreshedFor = make(map[int64]struct{})
}

func copyMatches(list []model.Match) []model.Match {
	out := make([]model.Match, len(list))
	copy(out, list)
	return out
}
