package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskman/internal/middleware"
	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/user"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// GetProfile はユーザーのプロフィールを返す。
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	// UpdateProfile は名前・自己紹介・アバターを更新する。
	UpdateProfile(ctx context.Context, userID string, in user.ProfileInput) (*model.User, error)
	// Withdraw はユーザーの退会処理を実行する。所有するタスクも削除する。
	Withdraw(ctx context.Context, userID string) error
}

// ProfileHandler はプロフィール管理のHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// profileRequest はプロフィール更新リクエストのボディ。
// emailは変更不可だが、指定された場合にフィールドエラーを返すため受け付ける。
type profileRequest struct {
	Name   model.Optional[string] `json:"name"`
	Bio    model.Optional[string] `json:"bio"`
	Avatar model.Optional[string] `json:"avatar"`
	Email  model.Optional[string] `json:"email"`
}

// GetProfile はログイン中のユーザーのプロフィールを返す。
// GET /api/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	// 認証ミドルウェアがこのリクエストで取得したプリンシパルがあれば再取得しない
	u := middleware.UserFromContext(r.Context())
	if u == nil || u.ID != userID {
		var err error
		u, err = h.service.GetProfile(r.Context(), userID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    toUserResponse(u),
	})
}

// UpdateProfile はプロフィールを更新する。
// PUT /api/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		handleServiceError(w, apiErr)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), userID, user.ProfileInput{
		Name:   req.Name,
		Bio:    req.Bio,
		Avatar: req.Avatar,
		Email:  req.Email,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    toUserResponse(u),
	})
}

// Withdraw はユーザーの退会処理を実行する。
// DELETE /api/profile
func (h *ProfileHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Account deleted successfully",
	})
}

// SetupProfileRoutes はプロフィール管理のルーティングを設定したchi.Routerを返す。
func SetupProfileRoutes(service ProfileServiceInterface) chi.Router {
	r := chi.NewRouter()
	h := NewProfileHandler(service)

	r.Get("/", h.GetProfile)
	r.Put("/", h.UpdateProfile)
	r.Delete("/", h.Withdraw)

	return r
}
