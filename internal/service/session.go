// 세션 라이프사이클 관리
//
// 상태 전이:
//   - UNKNOWN → AUTHENTICATED (첫 상태 확인에서 유효한 세션 발견)
//   - UNKNOWN → UNAUTHENTICATED (토큰 없음/만료/디코딩 실패)
//   - AUTHENTICATED → UNAUTHENTICATED (로그아웃, 갱신 실패, access 만료)
//   - UNAUTHENTICATED는 Login/Register 전까지 종단 상태
//     (단, access만 만료된 세션은 renewable로 남아 갱신 성공 시 AUTHENTICATED 복귀)
//
// credential store는 이 매니저만 수정함 (API 클라이언트는 읽기만)

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/cuceimatch/matchcore/internal/client"
	"github.com/cuceimatch/matchcore/internal/model"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrExpiredCredential   = errors.New("credential expired")
	ErrMalformedCredential = fmt.Errorf("malformed credential: %w", ErrExpiredCredential)
	ErrRenewalFailed       = errors.New("credential renewal failed")
	ErrStale               = errors.New("result discarded: state changed while in flight")
	ErrInvalidQR           = errors.New("credential qr url is required")
	ErrCredentialRejected  = errors.New("student credential rejected")
	ErrCredentialTaken     = errors.New("student credential already registered")
)

const renewTimeout = 30 * time.Second

type credentialStore interface {
	Load(ctx context.Context) (model.PersistedSession, error)
	Save(ctx context.Context, session model.PersistedSession) error
	Clear(ctx context.Context) error
}

type authAPI interface {
	ObtainToken(ctx context.Context, identifier, secret string) (model.TokenResponse, error)
	RefreshToken(ctx context.Context, refresh string) (model.RefreshResponse, error)
	ValidateQR(ctx context.Context, url string) (model.QRValidation, error)
	Register(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error)
	GetProfile(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, fields map[string]any) (*model.User, error)
}

type SessionManager struct {
	store  credentialStore
	api    authAPI
	events *Hub
	now    func() time.Time

	renewals singleflight.Group

	mu     sync.Mutex
	record model.SessionRecord
	// access만 만료된 인증 세션: 보고 상태는 UNAUTHENTICATED지만 401 경로에서 갱신 가능
	renewable bool
	// 로그인/로그아웃마다 증가: 이전 세대의 비동기 완료는 상태를 바꾸지 않음
	epoch uint64
	// 현재 세션이 발급받은 refresh 토큰들 (갱신 시 회전된 것 포함)
	// 여기에 없는 refresh로 보낸 요청은 이전 세션의 요청
	lineage map[string]struct{}
}

func NewSessionManager(store credentialStore, api authAPI, events *Hub) *SessionManager {
	return &SessionManager{
		store:   store,
		api:     api,
		events:  events,
		now:     time.Now,
		record:  model.SessionRecord{Status: model.SessionUnknown},
		lineage: make(map[string]struct{}),
	}
}

// Status - 마지막으로 확인된 상태 (첫 확인 전에는 unknown)
func (m *SessionManager) Status() model.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record.Status
}

// Renewable - access가 만료됐지만 refresh로 갱신 가능한 세션인지
func (m *SessionManager) Renewable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renewable
}

// Record - 세션 레코드 복사본
func (m *SessionManager) Record() model.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.record
	if rec.User != nil {
		u := *rec.User
		rec.User = &u
	}
	return rec
}

// Restore - 프로세스 시작 시 저장된 세션으로 첫 상태 확인
func (m *SessionManager) Restore(ctx context.Context) model.SessionStatus {
	status := m.CurrentStatus(ctx)
	log.Printf("[SessionManager] restored session status=%s", status)
	return status
}

// CurrentStatus - 저장소 + 토큰 만료 검사로 상태 계산 (네트워크 호출 없음)
//
// 인증된 세션의 access가 만료되면 레코드는 UNAUTHENTICATED가 되지만 renewable로 남음.
// 저장소를 읽는 동안 로그인/로그아웃이 끼어들면 그쪽 결과를 그대로 반환.
func (m *SessionManager) CurrentStatus(ctx context.Context) model.SessionStatus {
	m.mu.Lock()
	if m.terminalLocked() {
		m.mu.Unlock()
		return model.SessionUnauthenticated
	}
	epoch := m.epoch
	m.mu.Unlock()

	persisted, err := m.store.Load(ctx)
	if err != nil {
		log.Printf("[SessionManager] failed to load credential store: %v", err)
		persisted = model.PersistedSession{}
	}
	creds := persisted.Credentials
	valid := creds.Complete() && CheckCredential(creds.Access, m.now()) == nil

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.terminalLocked() {
		return m.record.Status
	}

	if m.record.Status == model.SessionUnknown {
		if !valid || !persisted.Authenticated {
			m.resetLocked()
			return model.SessionUnauthenticated
		}
		m.record = model.SessionRecord{User: persisted.User, Status: model.SessionAuthenticated}
		m.lineage[creds.Refresh] = struct{}{}
		return model.SessionAuthenticated
	}

	switch {
	case creds.Refresh == "":
		m.resetLocked()
	case valid:
		m.record.Status = model.SessionAuthenticated
		m.renewable = false
	default:
		m.record.Status = model.SessionUnauthenticated
		m.renewable = true
	}
	return m.record.Status
}

// terminalLocked - 로그인 전까지 바뀌지 않는 UNAUTHENTICATED
func (m *SessionManager) terminalLocked() bool {
	return m.record.Status == model.SessionUnauthenticated && !m.renewable
}

func (m *SessionManager) resetLocked() {
	m.record = model.SessionRecord{Status: model.SessionUnauthenticated}
	m.renewable = false
	m.lineage = make(map[string]struct{})
}

// Login - 토큰 발급 → 저장 → 프로필 조회 성공 시 AUTHENTICATED
//
// 프로필 조회가 실패하면 저장한 토큰을 지우고 에러 반환 (반쯤 인증된 상태를 남기지 않음)
func (m *SessionManager) Login(ctx context.Context, identifier, secret string) (model.CredentialPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || secret == "" {
		return model.CredentialPair{}, ErrInvalidCredentials
	}

	tokens, err := m.api.ObtainToken(ctx, identifier, secret)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return model.CredentialPair{}, ErrInvalidCredentials
		}
		return model.CredentialPair{}, fmt.Errorf("failed to obtain token: %w", err)
	}

	pair := model.CredentialPair{Access: tokens.Access, Refresh: tokens.Refresh}
	if err := m.establish(ctx, pair, nil); err != nil {
		return model.CredentialPair{}, err
	}
	return pair, nil
}

// ValidateQR - 학생증 QR URL 검증 (회원가입 첫 단계, 세션 상태는 바꾸지 않음)
func (m *SessionManager) ValidateQR(ctx context.Context, url string) (model.QRValidation, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return model.QRValidation{}, ErrInvalidQR
	}

	result, err := m.api.ValidateQR(ctx, url)
	if err != nil {
		var reqErr *client.RequestError
		if errors.As(err, &reqErr) {
			switch reqErr.StatusCode {
			case 400:
				return model.QRValidation{}, fmt.Errorf("%w: %v", ErrInvalidQR, err)
			case 403:
				return model.QRValidation{}, fmt.Errorf("%w: %v", ErrCredentialRejected, err)
			case 409:
				return model.QRValidation{}, fmt.Errorf("%w: %v", ErrCredentialTaken, err)
			}
		}
		return model.QRValidation{}, fmt.Errorf("failed to validate qr: %w", err)
	}
	if !result.Valid {
		return model.QRValidation{}, ErrCredentialRejected
	}
	return result, nil
}

// Register - 회원가입 응답의 토큰으로 세션 수립
func (m *SessionManager) Register(ctx context.Context, req model.RegistrationRequest) (*model.User, error) {
	resp, err := m.api.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	pair := model.CredentialPair{Access: resp.Tokens.Access, Refresh: resp.Tokens.Refresh}
	if err := m.establish(ctx, pair, resp.User); err != nil {
		return nil, err
	}
	return m.Record().User, nil
}

func (m *SessionManager) establish(ctx context.Context, pair model.CredentialPair, user *model.User) error {
	if !pair.Complete() {
		return fmt.Errorf("%w: token response missing access or refresh", client.ErrUnexpectedResponse)
	}

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	m.renewable = false
	m.lineage = map[string]struct{}{pair.Refresh: {}}
	err := m.store.Save(ctx, model.PersistedSession{
		Credentials: pair,
		UpdatedAt:   m.now().UTC(),
	})
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	if user == nil {
		profile, err := m.api.GetProfile(ctx)
		if err != nil {
			m.mu.Lock()
			if epoch == m.epoch {
				_ = m.clearLocked(ctx)
			}
			m.mu.Unlock()
			return fmt.Errorf("failed to fetch profile: %w", err)
		}
		user = profile
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return ErrStale
	}

	persisted, err := m.store.Load(ctx)
	if err != nil || !persisted.Credentials.Complete() {
		persisted.Credentials = pair
	}
	persisted.User = user
	persisted.Authenticated = true
	persisted.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, persisted); err != nil {
		_ = m.clearLocked(ctx)
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.record = model.SessionRecord{User: user, Status: model.SessionAuthenticated}
	log.Printf("[SessionManager] session established (user_id=%d)", user.ID)
	return nil
}

// Logout - 저장소와 레코드를 무조건 비움 (멱등)
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	return m.clearLocked(ctx)
}

func (m *SessionManager) clearLocked(ctx context.Context) error {
	m.resetLocked()
	if err := m.store.Clear(ctx); err != nil {
		log.Printf("[SessionManager] failed to clear credential store: %v", err)
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// UpdateUser - PATCH /profile 후 레코드의 user 교체
func (m *SessionManager) UpdateUser(ctx context.Context, fields map[string]any) (*model.User, error) {
	m.mu.Lock()
	epoch := m.epoch
	m.mu.Unlock()

	user, err := m.api.UpdateProfile(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.terminalLocked() {
		return nil, ErrStale
	}

	m.record.User = user
	persisted, err := m.store.Load(ctx)
	if err == nil && persisted.Credentials.Complete() {
		persisted.User = user
		persisted.UpdatedAt = m.now().UTC()
		if err := m.store.Save(ctx, persisted); err != nil {
			log.Printf("[SessionManager] failed to persist updated user: %v", err)
		}
	}
	u := *user
	return &u, nil
}

// Renew - API 클라이언트의 401 경로에서만 호출
//
// sent는 요청을 보낼 때 사용한 토큰 쌍. 동시에 들어온 갱신 요청은 하나의 원격 호출로 합쳐짐.
// sent.Access가 이미 교체된 토큰이면 원격 호출 없이 현재 access 반환.
// sent.Refresh가 현재 세션의 것이 아니면 (로그아웃/재로그인 이후) ErrStale: 재전송하지 않음.
func (m *SessionManager) Renew(ctx context.Context, sent model.CredentialPair) (string, error) {
	ch := m.renewals.DoChan("renew", func() (any, error) {
		renewCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renewTimeout)
		defer cancel()
		return m.renew(renewCtx, sent)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrRenewalFailed, ctx.Err())
	}
}

func (m *SessionManager) renew(ctx context.Context, sent model.CredentialPair) (string, error) {
	persisted, err := m.store.Load(ctx)

	m.mu.Lock()
	epoch := m.epoch
	m.seedLineageLocked(persisted.Credentials.Refresh)
	_, ours := m.lineage[sent.Refresh]
	m.mu.Unlock()

	if !ours {
		log.Printf("[SessionManager] renewal requested for a previous session, not replaying")
		return "", fmt.Errorf("%w: %w", ErrRenewalFailed, ErrStale)
	}
	if err != nil {
		m.invalidate(ctx, epoch, "credential store unreadable")
		return "", fmt.Errorf("%w: %v", ErrRenewalFailed, err)
	}

	creds := persisted.Credentials
	if creds.Access != "" && creds.Access != sent.Access {
		return creds.Access, nil
	}
	if creds.Refresh == "" {
		m.invalidate(ctx, epoch, "no refresh credential")
		return "", fmt.Errorf("%w: no refresh credential", ErrRenewalFailed)
	}

	resp, err := m.api.RefreshToken(ctx, creds.Refresh)
	if err != nil {
		m.invalidate(ctx, epoch, "refresh rejected")
		return "", fmt.Errorf("%w: %v", ErrRenewalFailed, err)
	}
	if _, err := AccessExpiry(resp.Access); err != nil {
		m.invalidate(ctx, epoch, "renewed access credential is malformed")
		return "", fmt.Errorf("%w: %v", ErrRenewalFailed, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch {
		return "", fmt.Errorf("%w: %w", ErrRenewalFailed, ErrStale)
	}

	persisted.Credentials.Access = resp.Access
	if resp.Refresh != "" {
		persisted.Credentials.Refresh = resp.Refresh
		m.lineage[resp.Refresh] = struct{}{}
	}
	persisted.UpdatedAt = m.now().UTC()
	if err := m.store.Save(ctx, persisted); err != nil {
		return "", fmt.Errorf("%w: failed to persist renewed credential: %v", ErrRenewalFailed, err)
	}

	if m.record.Status == model.SessionAuthenticated || m.renewable {
		m.record.Status = model.SessionAuthenticated
		m.renewable = false
	}
	log.Printf("[SessionManager] access credential renewed")
	return resp.Access, nil
}

// seedLineageLocked - 상태 확인 전에 들어온 첫 갱신: 저장소의 refresh를 현재 세션으로 인정
func (m *SessionManager) seedLineageLocked(storedRefresh string) {
	if len(m.lineage) > 0 || storedRefresh == "" || m.terminalLocked() {
		return
	}
	m.lineage[storedRefresh] = struct{}{}
}

// invalidate - 갱신 실패: 같은 세대일 때만 로그아웃하고 session.invalidated 발행
func (m *SessionManager) invalidate(ctx context.Context, epoch uint64, reason string) {
	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		return
	}
	m.epoch++
	_ = m.clearLocked(ctx)
	m.mu.Unlock()

	log.Printf("[SessionManager] session invalidated: %s", reason)
	m.events.Publish(model.Event{Type: model.EventSessionInvalidated, Reason: reason})
}
