package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

var errNotStubbed = errors.New("not stubbed")

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":     exp.Unix(),
		"user_id": 1,
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

type fakeAuthAPI struct {
	obtain   func(ctx context.Context, identifier, secret string) (model.TokenResponse, error)
	refresh  func(ctx context.Context, refresh string) (model.RefreshResponse, error)
	qr       func(ctx context.Context, url string) (model.QRValidation, error)
	register func(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error)
	profile  func(ctx context.Context) (*model.User, error)
	update   func(ctx context.Context, fields map[string]any) (*model.User, error)
}

func (f *fakeAuthAPI) ObtainToken(ctx context.Context, identifier, secret string) (model.TokenResponse, error) {
	if f.obtain == nil {
		return model.TokenResponse{}, errNotStubbed
	}
	return f.obtain(ctx, identifier, secret)
}

func (f *fakeAuthAPI) RefreshToken(ctx context.Context, refresh string) (model.RefreshResponse, error) {
	if f.refresh == nil {
		return model.RefreshResponse{}, errNotStubbed
	}
	return f.refresh(ctx, refresh)
}

func (f *fakeAuthAPI) ValidateQR(ctx context.Context, url string) (model.QRValidation, error) {
	if f.qr == nil {
		return model.QRValidation{}, errNotStubbed
	}
	return f.qr(ctx, url)
}

func (f *fakeAuthAPI) Register(ctx context.Context, req model.RegistrationRequest) (model.RegistrationResponse, error) {
	if f.register == nil {
		return model.RegistrationResponse{}, errNotStubbed
	}
	return f.register(ctx, req)
}

func (f *fakeAuthAPI) GetProfile(ctx context.Context) (*model.User, error) {
	if f.profile == nil {
		return nil, errNotStubbed
	}
	return f.profile(ctx)
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, fields map[string]any) (*model.User, error) {
	if f.update == nil {
		return nil, errNotStubbed
	}
	return f.update(ctx, fields)
}

// collect - 구독 채널에 쌓인 이벤트를 블로킹 없이 모두 꺼냄
func collect(ch <-chan model.Event) []model.Event {
	var out []model.Event
	for {
		select {
		case evt, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, evt)
		default:
			return out
		}
	}
}
