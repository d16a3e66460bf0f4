// 원격 API 서버와 HTTP 통신하는 단일 게이트웨이
//
// 환경변수:
//   - API_URL: API 서버 주소 (예: https://api.cuceimatch.mx/api)
//   - API_TIMEOUT: 요청 타임아웃 (default: 15s)
//
// 처리 흐름:
//  1. 저장소에서 access 토큰을 읽어 Authorization: Bearer 헤더 부착 (없으면 생략)
//  2. 401 응답이면 (토큰 발급/갱신 엔드포인트 제외) refresh 토큰 존재 여부 확인
//  3. Renewer.Renew로 access 재발급 (동시 갱신은 Renewer 쪽에서 하나로 합쳐짐)
//  4. 새 access로 원 요청을 딱 한 번 재전송
//  5. 갱신 실패 시 원래 401 에러에 갱신 에러를 묶어 반환 (재전송 없음)
//
// 갱신에는 요청을 보낼 때 쓴 토큰 쌍을 넘김: 그 사이 로그아웃/재로그인이 있었다면
// 세션 매니저가 거절하므로 이전 세션의 요청이 새 세션 토큰으로 재전송되지 않음

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cuceimatch/matchcore/internal/config"
	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/google/uuid"
)

const maxResponseBytes = 4 << 20

var (
	ErrRequestFailed      = errors.New("request failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnexpectedResponse = errors.New("unexpected response shape")
)

// RequestError - 2xx 이외의 응답 또는 전송 실패
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

func (e *RequestError) Unwrap() []error {
	errs := []error{ErrRequestFailed}
	if e.StatusCode == http.StatusUnauthorized {
		errs = append(errs, ErrUnauthorized)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// credentialReader - API 클라이언트는 저장소를 읽기만 함
type credentialReader interface {
	Load(ctx context.Context) (model.PersistedSession, error)
}

// Renewer - 401 처리 시 access 토큰 재발급 (세션 매니저가 구현)
//
// sent는 401을 받은 요청에 실린 토큰 쌍
type Renewer interface {
	Renew(ctx context.Context, sent model.CredentialPair) (string, error)
}

type APIClient struct {
	baseURL    string
	paths      config.APIConfig
	httpClient *http.Client
	store      credentialReader

	mu      sync.RWMutex
	renewer Renewer

	// 401 가로채기 대상에서 제외되는 경로
	exempt map[string]struct{}
}

// APIClient 객체 생성
func NewAPIClient(cfg config.APIConfig, store credentialReader) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &APIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths:   cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		store: store,
		exempt: map[string]struct{}{
			cfg.TokenPath:      {},
			cfg.RefreshPath:    {},
			cfg.RegisterPath:   {},
			cfg.ValidateQRPath: {},
		},
	}
}

// SetRenewer - 세션 매니저 생성 후 연결 (순환 의존 회피)
func (c *APIClient) SetRenewer(r Renewer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renewer = r
}

func (c *APIClient) getRenewer() Renewer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renewer
}

// Do - 인증이 필요한 요청 (401 시 갱신 후 1회 재전송)
func (c *APIClient) Do(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	session := c.loadSession(ctx)
	access := session.Credentials.Access

	respBody, err := c.send(ctx, method, path, payload, access)
	if err == nil {
		return decodeBody(respBody, out)
	}

	if !isUnauthorized(err) || c.isExempt(path) {
		return err
	}

	// 이 요청은 이미 재시도 대상으로 표시됨: 아래 경로는 한 번만 실행
	renewer := c.getRenewer()
	if renewer == nil {
		return err
	}
	if session.Credentials.Refresh == "" {
		log.Printf("[APIClient] 401 on %s %s without refresh credential", method, path)
		return err
	}

	log.Printf("[APIClient] 401 on %s %s, renewing access credential", method, path)
	newAccess, renewErr := renewer.Renew(ctx, session.Credentials)
	if renewErr != nil {
		log.Printf("[APIClient] renewal failed for %s %s: %v", method, path, renewErr)
		return fmt.Errorf("%w: %w", err, renewErr)
	}

	respBody, err = c.send(ctx, method, path, payload, newAccess)
	if err != nil {
		return err
	}
	return decodeBody(respBody, out)
}

// doPublic - 토큰 발급/갱신용 요청 (Authorization 헤더 없음, 401 가로채기 없음)
func (c *APIClient) doPublic(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	respBody, err := c.send(ctx, method, path, payload, "")
	if err != nil {
		return err
	}
	return decodeBody(respBody, out)
}

func (c *APIClient) send(ctx context.Context, method, path string, payload []byte, access string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

func (c *APIClient) loadSession(ctx context.Context) model.PersistedSession {
	if c.store == nil {
		return model.PersistedSession{}
	}
	session, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("[APIClient] failed to read credential store: %v", err)
		return model.PersistedSession{}
	}
	return session
}

func (c *APIClient) isExempt(path string) bool {
	_, ok := c.exempt[path]
	return ok
}

func isUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.StatusCode == http.StatusUnauthorized
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return payload, nil
}

func decodeBody(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to parse response: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
