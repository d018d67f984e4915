package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/taskman/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのスキーム部分。
const bearerPrefix = "Bearer "

// PrincipalLoader はユーザーIDからユーザーを解決するインターフェース。
// 見つからない場合は (nil, nil) を返す。
type PrincipalLoader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// TokenParser はトークンを検証してsubjectを返すインターフェース。
type TokenParser interface {
	Parse(raw string) (string, error)
}

// Verifier はAuthorizationヘッダーを検証し、リクエストのプリンシパルを特定する。
// タスク・プロフィール操作の前に必ず実行される唯一の認証境界。
type Verifier struct {
	tokens TokenParser
	users  PrincipalLoader
}

// NewVerifier はVerifierを生成する。
func NewVerifier(tokens TokenParser, users PrincipalLoader) *Verifier {
	return &Verifier{tokens: tokens, users: users}
}

// Verify はAuthorizationヘッダーの値を検証し、認証情報を除いたユーザーを返す。
// 認証失敗は *model.APIError、ユーザー取得時のストア障害はラップしたエラーを返す。
// リソースの変更は行わない。
func (v *Verifier) Verify(ctx context.Context, header string) (*model.User, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return nil, model.NewTokenMissingError()
	}

	userID, err := v.tokens.Parse(raw)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, model.NewTokenExpiredError()
		}
		return nil, model.NewTokenMalformedError()
	}

	user, err := v.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("プリンシパルの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewPrincipalNotFoundError()
	}

	return user.Public(), nil
}

// bearerToken は "Bearer <token>" 形式のヘッダーからトークン部分を取り出す。
// スキーム名は大文字小文字を区別する。
func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}
