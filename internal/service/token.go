package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessExpiry - access 토큰의 exp 클레임 디코딩 (서명 검증 없음, 서버가 검증)
func AccessExpiry(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, ErrMalformedCredential
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, ErrMalformedCredential
	}
	return exp.Time, nil
}

// CheckCredential - nil이면 유효, 만료면 ErrExpiredCredential, 디코딩 실패면 ErrMalformedCredential
//
// exp 시각과 같거나 지난 토큰은 만료로 취급
func CheckCredential(token string, now time.Time) error {
	exp, err := AccessExpiry(token)
	if err != nil {
		return err
	}
	if !now.Before(exp) {
		return ErrExpiredCredential
	}
	return nil
}

