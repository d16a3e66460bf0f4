package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cuceimatch/matchcore/internal/model"
)

var (
	ErrInvalidKind      = errors.New("invalid swipe kind")
	ErrDecisionInFlight = errors.New("a swipe decision is already in flight")
)

type swipeAPI interface {
	GetCandidates(ctx context.Context) ([]model.Candidate, error)
	Swipe(ctx context.Context, decision model.SwipeDecision) (model.SwipeResponse, error)
}

// matchNotifier - 새 매치 발생 시 매치 목록 갱신 요청 (MatchRegistry가 구현)
type matchNotifier interface {
	NotifyNewMatch(ctx context.Context, match model.Match)
}

// SwipeService - 후보 큐와 커서 관리
//
// 커서는 swipe 호출이 성공한 뒤에만 전진함. 실패하면 같은 후보가 그대로 현재 후보.
type SwipeService struct {
	api        swipeAPI
	matches    matchNotifier
	events     *Hub
	autoRefill bool

	mu                sync.Mutex
	queue             []model.Candidate
	cursor            int
	loaded            bool
	exhaustedSignaled bool
	inFlight          bool
	// LoadCandidates/Detach 마다 증가
	gen      uint64
	surfaced map[int64]struct{}
}

func NewSwipeService(api swipeAPI, matches matchNotifier, events *Hub, autoRefill bool) *SwipeService {
	return &SwipeService{
		api:        api,
		matches:    matches,
		events:     events,
		autoRefill: autoRefill,
		surfaced:   make(map[int64]struct{}),
	}
}

// LoadCandidates - 후보 큐를 통째로 교체하고 커서를 0으로 되돌림
//
// 조회 실패 시 기존 큐와 커서는 그대로 유지
func (s *SwipeService) LoadCandidates(ctx context.Context) (int, error) {
	candidates, err := s.api.GetCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load candidates: %w", err)
	}

	s.mu.Lock()
	s.gen++
	s.queue = candidates
	s.cursor = 0
	s.loaded = true
	s.inFlight = false
	s.exhaustedSignaled = false
	empty := len(candidates) == 0
	if empty {
		s.exhaustedSignaled = true
	}
	s.mu.Unlock()

	log.Printf("[SwipeService] loaded %d candidates", len(candidates))
	if empty {
		s.events.Publish(model.Event{Type: model.EventCandidatesExhausted})
	}
	return len(candidates), nil
}

// Current - 현재 후보 (없으면 Candidate nil)
func (s *SwipeService) Current() model.CandidateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *SwipeService) viewLocked() model.CandidateView {
	view := model.CandidateView{
		Position:  s.cursor,
		Total:     len(s.queue),
		Exhausted: s.loaded && s.cursor >= len(s.queue),
	}
	if s.cursor < len(s.queue) {
		c := s.queue[s.cursor]
		view.Candidate = &c
	}
	return view
}

// Decide - 현재 후보에 대한 결정 전송
//
// 큐가 비었거나 끝났으면 네트워크 호출 없이 NoOp 반환.
// 양쪽 모두 좋아요를 누른 경우에만 Matched=true.
func (s *SwipeService) Decide(ctx context.Context, kind model.SwipeKind) (model.Decision, error) {
	if !kind.Valid() {
		return model.Decision{}, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	s.mu.Lock()
	if s.cursor >= len(s.queue) {
		exhausted := s.loaded
		s.mu.Unlock()
		return model.Decision{NoOp: true, Exhausted: exhausted}, nil
	}
	if s.inFlight {
		s.mu.Unlock()
		return model.Decision{}, ErrDecisionInFlight
	}
	s.inFlight = true
	gen := s.gen
	target := s.queue[s.cursor]
	s.mu.Unlock()

	resp, err := s.api.Swipe(ctx, model.SwipeDecision{TargetID: target.ID, Kind: kind})

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return model.Decision{}, ErrStale
	}
	s.inFlight = false
	if err != nil {
		s.mu.Unlock()
		return model.Decision{}, fmt.Errorf("failed to send swipe: %w", err)
	}

	decision := model.Decision{}
	var surfaced *model.Match
	if kind.Positive() && resp.Match && resp.MatchData != nil {
		decision.Matched = true
		match := *resp.MatchData
		decision.Match = &match
		if _, seen := s.surfaced[match.ID]; !seen {
			s.surfaced[match.ID] = struct{}{}
			surfaced = &match
		}
	}

	s.cursor++
	signalExhausted := false
	if s.cursor >= len(s.queue) {
		decision.Exhausted = true
		if !s.exhaustedSignaled {
			s.exhaustedSignaled = true
			signalExhausted = true
		}
	}
	s.mu.Unlock()

	if surfaced != nil {
		log.Printf("[SwipeService] new match surfaced (match_id=%d, target_id=%d)", surfaced.ID, target.ID)
		if s.matches != nil {
			s.matches.NotifyNewMatch(ctx, *surfaced)
		}
		s.events.Publish(model.Event{Type: model.EventMatchSurfaced, Match: surfaced})
	}

	if signalExhausted {
		s.events.Publish(model.Event{Type: model.EventCandidatesExhausted})
		if s.autoRefill {
			if _, err := s.LoadCandidates(ctx); err != nil {
				log.Printf("[SwipeService] auto refill failed: %v", err)
			}
		}
	}

	return decision, nil
}

// Detach - 로그아웃 등으로 화면이 사라질 때 호출: 진행 중인 결정의 결과는 버려짐
func (s *SwipeService) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.inFlight = false
	s.queue = nil
	s.cursor = 0
	s.loaded = false
	s.exhaustedSignaled = false
	s.surfaced = make(map[int64]struct{})
}
