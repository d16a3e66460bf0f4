package model

import "time"

// EventType - 프레젠테이션 레이어로 전달되는 코어 이벤트 종류
type EventType string

const (
	EventSessionInvalidated  EventType = "session.invalidated"
	EventMatchSurfaced       EventType = "match.surfaced"
	EventCandidatesExhausted EventType = "candidates.exhausted"
)

// Event - Hub를 통해 발행되는 이벤트
type Event struct {
	ID     string    `json:"id"`
	Type   EventType `json:"type"`
	Match  *Match    `json:"match,omitempty"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}
