package model

import "time"

// Match - 상호 like로 생성된 매치
type Match struct {
	ID                 int64           `json:"id"`
	OtherUser          *Candidate      `json:"other_user"`
	LastMessagePreview *MessagePreview `json:"last_message_preview,omitempty"`
	UnreadCount        int             `json:"unread_count"`
	CreatedAt          time.Time       `json:"created_at"`
}

// MessagePreview - 마지막 메시지 미리보기 (최대 50자)
type MessagePreview struct {
	Content  string    `json:"content"`
	SenderID int64     `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

// MatchListResponse - GET /matches 페이지형 응답
type MatchListResponse struct {
	Results []Match `json:"results"`
}
