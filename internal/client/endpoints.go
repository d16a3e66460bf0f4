package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cuceimatch/matchcore/internal/model"
)

// POST /token - identifier/secret으로 토큰 쌍 발급
func (c *APIClient) ObtainToken(ctx context.Context, identifier, secret string) (model.TokenResponse, error) {
	var resp model.TokenResponse
	err := c.doPublic(ctx, http.MethodPost, c.paths.TokenPath, model.TokenRequest{
		Identifier: identifier,
		Secret:     secret,
	}, &resp)
	return resp, err
}

// POST /token/refresh - refresh로 access 재발급 (401 가로채기 대상 아님)
func (c *APIClient) RefreshToken(ctx context.Context, refresh string) (model.RefreshResponse, error) {
	var resp model.RefreshResponse
	err := c.doPublic(ctx, http.MethodPost, c.paths.RefreshPath, model.RefreshRequest{Refresh: refresh}, &resp)
	return resp, err
}

// POST /verify-qr - 학생증 QR 검증 (회원가입 전 단계, 인증 없음)
func (c *APIClient) ValidateQR(ctx context.Context, url string) (model.QRValidation, error) {
	var resp model.QRValidation
	err := c.doPublic(ctx, http.MethodPost, c.paths.ValidateQRPath, model.QRValidationRequest{URL: url}, &resp)
	return resp, err
}

// POST /register - 회원가입 완료 후 토큰 쌍 발급
func (c *APIClient) Register(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error) {
	var resp model.RegistrationResponse
	err := c.doPublic(ctx, http.MethodPost, c.paths.RegisterPath, req, &resp)
	return resp, err
}

// GET /profile
func (c *APIClient) GetProfile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Do(ctx, http.MethodGet, c.paths.ProfilePath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PATCH /profile
func (c *APIClient) UpdateProfile(ctx context.Context, fields map[string]any) (*model.User, error) {
	var user model.User
	if err := c.Do(ctx, http.MethodPatch, c.paths.ProfilePath, fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GET /candidates - {candidates: [...]} 또는 배열
func (c *APIClient) GetCandidates(ctx context.Context) ([]model.Candidate, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, c.paths.CandidatesPath, nil, &raw); err != nil {
		return nil, err
	}
	return decodeCandidates(raw)
}

// POST /swipe
func (c *APIClient) Swipe(ctx context.Context, decision model.SwipeDecision) (model.SwipeResponse, error) {
	var resp model.SwipeResponse
	err := c.Do(ctx, http.MethodPost, c.paths.SwipePath, decision, &resp)
	return resp, err
}

// GET /matches - 배열 또는 {results: [...]}
func (c *APIClient) ListMatches(ctx context.Context) ([]model.Match, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, http.MethodGet, c.paths.MatchesPath, nil, &raw); err != nil {
		return nil, err
	}
	return decodeMatches(raw)
}

// GET /matches/{id}
func (c *APIClient) GetMatch(ctx context.Context, id int64) (*model.Match, error) {
	var match model.Match
	if err := c.Do(ctx, http.MethodGet, c.matchPath(id), nil, &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// DELETE /matches/{id}
func (c *APIClient) DeleteMatch(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, c.matchPath(id), nil, nil)
}

func (c *APIClient) matchPath(id int64) string {
	return c.paths.MatchesPath + "/" + strconv.FormatInt(id, 10)
}

func decodeCandidates(raw json.RawMessage) ([]model.Candidate, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty candidates body", ErrUnexpectedResponse)
	}

	switch trimmed[0] {
	case '[':
		var list []model.Candidate
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return nonNil(list), nil
	case '{':
		var envelope struct {
			Candidates *[]model.Candidate `json:"candidates"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		if envelope.Candidates == nil {
			return nil, fmt.Errorf("%w: missing candidates field", ErrUnexpectedResponse)
		}
		return nonNil(*envelope.Candidates), nil
	default:
		return nil, fmt.Errorf("%w: candidates must be an array or object", ErrUnexpectedResponse)
	}
}

func decodeMatches(raw json.RawMessage) ([]model.Match, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty matches body", ErrUnexpectedResponse)
	}

	switch trimmed[0] {
	case '[':
		var list []model.Match
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return nonNil(list), nil
	case '{':
		var envelope struct {
			Results *[]model.Match `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		if envelope.Results == nil {
			return nil, fmt.Errorf("%w: missing results field", ErrUnexpectedResponse)
		}
		return nonNil(*envelope.Results), nil
	default:
		return nil, fmt.Errorf("%w: matches must be an array or object", ErrUnexpectedResponse)
	}
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
