package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// LoginRequest - 브리지 로그인 요청 (identifier는 이메일 또는 학번)
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// SessionResponse - 현재 세션 상태
type SessionResponse struct {
	Status SessionStatus `json:"status"`
	User   *User         `json:"user,omitempty"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}

// LoadCandidatesResponse - 큐 재적재 결과와 첫 후보
type LoadCandidatesResponse struct {
	Count   int           `json:"count"`
	Current CandidateView `json:"current"`
}
