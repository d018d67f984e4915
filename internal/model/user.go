// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザー（プリンシパル）を表す。
// PasswordHashは認証情報サービスのみが参照し、APIレスポンスには含めない。
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Bio          string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public は認証情報を除いたユーザーのコピーを返す。
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// MaxBioLength は自己紹介の最大文字数。
const MaxBioLength = 500
