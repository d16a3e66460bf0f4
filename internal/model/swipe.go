package model

// SwipeKind - 스와이프 종류
type SwipeKind string

const (
	SwipeLike      SwipeKind = "like"
	SwipeDislike   SwipeKind = "dislike"
	SwipeSuperlike SwipeKind = "superlike"
)

// Valid - 허용된 종류인지 확인
func (k SwipeKind) Valid() bool {
	switch k {
	case SwipeLike, SwipeDislike, SwipeSuperlike:
		return true
	default:
		return false
	}
}

// Positive - like/superlike 여부 (매치 가능성이 있는 결정)
func (k SwipeKind) Positive() bool {
	return k == SwipeLike || k == SwipeSuperlike
}

// SwipeDecision - POST /swipe 요청
type SwipeDecision struct {
	TargetID int64     `json:"target_id"`
	Kind     SwipeKind `json:"kind"`
}

// SwipeResponse - POST /swipe 응답
type SwipeResponse struct {
	Match     bool   `json:"match"`
	MatchData *Match `json:"match_data,omitempty"`
}

// Decision - Decide 결과
type Decision struct {
	Matched   bool   `json:"matched"`
	Match     *Match `json:"match,omitempty"`
	Exhausted bool   `json:"exhausted"`
	NoOp      bool   `json:"noop"`
}

// SwipeRequest - 브리지 POST /api/v1/swipes 요청
type SwipeRequest struct {
	Kind SwipeKind `json:"kind"`
}
