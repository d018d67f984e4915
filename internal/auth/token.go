// Package auth は認証トークンの発行・検証と、メールアドレス/パスワードによる認証を提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗理由。
var (
	// ErrTokenExpired は署名は正しいが有効期限が切れている場合に返る。
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed は構造・署名・アルゴリズム・必須クレームのいずれかが不正な場合に返る。
	ErrTokenMalformed = errors.New("malformed token")
)

// signingMethod はトークンの署名方式。検証時もこの方式以外は拒否する。
var signingMethod = jwt.SigningMethodHS256

// TokenManager はプロセス共通の秘密鍵でトークンを発行・検証する。
// 生成後は不変で、複数のgoroutineから同時に使用できる。
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue はユーザーIDをsubjectとするトークンを発行し、有効期限とともに返す。
func (m *TokenManager) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("empty subject")
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse はトークンを検証し、subject（ユーザーID）を返す。
// 期限切れの場合はErrTokenExpired、それ以外の不正はErrTokenMalformedを返す。
func (m *TokenManager) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", mapJWTError(err)
	}

	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// mapJWTError はjwtライブラリのエラーを期限切れとそれ以外に分類する。
// 署名不正のトークンは期限に関わらずErrTokenMalformedとする。
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return ErrTokenMalformed
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrTokenMalformed
}
