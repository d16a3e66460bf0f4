package model

import "time"

// CredentialPair - access/refresh 토큰 쌍
//
// 로그인 성공 후에는 둘 다 있거나 둘 다 없음 (부분 저장 없음)
type CredentialPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Complete - 두 토큰이 모두 존재하는지 확인
func (p CredentialPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// Empty - 두 토큰이 모두 없는지 확인
func (p CredentialPair) Empty() bool {
	return p.Access == "" && p.Refresh == ""
}

// SessionStatus - 세션 레코드의 인증 상태 (tri-state)
type SessionStatus string

const (
	SessionUnknown         SessionStatus = "unknown"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionUnauthenticated SessionStatus = "unauthenticated"
)

// SessionRecord - 메모리상의 세션 상태
type SessionRecord struct {
	User   *User         `json:"user"`
	Status SessionStatus `json:"status"`
}

// PersistedSession - 저장소에 보관되는 단일 네임스페이스 엔트리 (auth-storage)
type PersistedSession struct {
	Credentials   CredentialPair `json:"credentials"`
	User          *User          `json:"user,omitempty"`
	Authenticated bool           `json:"isAuthenticated"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// User - GET /profile 응답
type User struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Age        int        `json:"age,omitempty"`
	Major      string     `json:"major,omitempty"`
	Semester   int        `json:"semester,omitempty"`
	Gender     string     `json:"gender,omitempty"`
	Verified   bool       `json:"verified"`
	Photos     []Photo    `json:"photos,omitempty"`
	Profile    *Profile   `json:"profile,omitempty"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// TokenRequest - POST /token 요청
type TokenRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// TokenResponse - POST /token 응답
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshRequest - POST /token/refresh 요청
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse - POST /token/refresh 응답
//
// refresh 회전(rotation)이 켜진 서버는 새 refresh도 함께 내려줌
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// RegistrationRequest - POST /register 요청
type RegistrationRequest struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	FullName       string   `json:"full_name"`
	BirthDate      string   `json:"birth_date,omitempty"`
	Major          string   `json:"major,omitempty"`
	Semester       int      `json:"semester,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	SeekingFor     []string `json:"seeking,omitempty"`
	QRURL          string   `json:"qr_url,omitempty"`
	TemporaryToken string   `json:"temporary_token,omitempty"`
}

// QRValidationRequest - POST /verify-qr 요청 (학생증 QR의 URL)
type QRValidationRequest struct {
	URL string `json:"qr_url"`
}

// QRValidation - 학생증 검증 결과
//
// TemporaryToken은 회원가입 요청에 함께 보내는 일회용 토큰
type QRValidation struct {
	Valid          bool   `json:"valid"`
	Name           string `json:"name"`
	Validity       string `json:"validity"`
	TemporaryToken string `json:"temporary_token"`
}

// RegistrationResponse - POST /register 응답
type RegistrationResponse struct {
	Message string        `json:"message"`
	User    *User         `json:"user"`
	Tokens  TokenResponse `json:"tokens"`
}
