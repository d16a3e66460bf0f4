package model

// Candidate - 스와이프 대상 프로필 스냅샷 (불변)
type Candidate struct {
	ID       int64    `json:"id"`
	FullName string   `json:"full_name"`
	Age      int      `json:"age,omitempty"`
	Major    string   `json:"major,omitempty"`
	Semester int      `json:"semester,omitempty"`
	Gender   string   `json:"gender,omitempty"`
	Photos   []Photo  `json:"photos"`
	Profile  *Profile `json:"profile,omitempty"`
}

// Photo - 프로필 사진 (order 순으로 정렬되어 내려옴)
type Photo struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Order   int    `json:"order"`
	Primary bool   `json:"primary"`
}

// Profile - 자기소개/관심사
type Profile struct {
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
}

// CandidateView - 브리지에서 현재 카드 상태를 내려줄 때 사용
type CandidateView struct {
	Candidate *Candidate `json:"candidate"`
	Position  int        `json:"position"`
	Total     int        `json:"total"`
	Exhausted bool       `json:"exhausted"`
}
