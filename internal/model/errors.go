// Package model はドメインモデルを定義する。
package model

import "fmt"

// FieldError はフィールド単位のバリデーションエラーを表す。
type FieldError struct {
	Field   string
	Message string
}

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// バリデーションエラーの場合はFieldErrorsに違反したフィールドをすべて列挙する。
type APIError struct {
	Code        string       // エラーコード
	Message     string       // エラーメッセージ
	Category    string       // カテゴリ: auth, validation, task, system
	Action      string       // ユーザー向け対処方法
	FieldErrors []FieldError // フィールド単位のエラー（バリデーション時のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryTask       = "task"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeTokenMissing       = "TOKEN_MISSING"
	ErrCodeTokenMalformed     = "TOKEN_MALFORMED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodePrincipalNotFound  = "PRINCIPAL_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeTaskForbidden      = "TASK_FORBIDDEN"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	ErrCodeRouteNotFound      = "ROUTE_NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewTokenMissingError はAuthorizationヘッダーが無い、またはBearer形式でない場合のエラーを生成する。
func NewTokenMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenMissing,
		Message:  "Authorization token missing",
		Category: CategoryAuth,
		Action:   "Log in and send the token as 'Authorization: Bearer <token>'.",
	}
}

// NewTokenMalformedError はトークンの構造・署名が不正な場合のエラーを生成する。
func NewTokenMalformedError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenMalformed,
		Message:  "Malformed token",
		Category: CategoryAuth,
		Action:   "Log in again to obtain a new token.",
	}
}

// NewTokenExpiredError は有効期限切れトークンのエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "Token expired",
		Category: CategoryAuth,
		Action:   "Log in again to obtain a new token.",
	}
}

// NewPrincipalNotFoundError は有効なトークンが存在しないユーザーを指す場合のエラーを生成する。
func NewPrincipalNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePrincipalNotFound,
		Message:  "User not found",
		Category: CategoryAuth,
		Action:   "The account for this token no longer exists. Sign up or log in again.",
	}
}

// NewInvalidCredentialsError はログイン失敗時のエラーを生成する。
// メールアドレスの存在有無を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials",
		Category: CategoryAuth,
		Action:   "Check your email and password.",
	}
}

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
func NewValidationError(fieldErrors []FieldError) *APIError {
	return &APIError{
		Code:        ErrCodeValidationFailed,
		Message:     "Validation failed",
		Category:    CategoryValidation,
		Action:      "Fix the listed fields and try again.",
		FieldErrors: fieldErrors,
	}
}

// NewInvalidRequestError はリクエストボディの解析に失敗した場合のエラーを生成する。
// fieldが空でない場合は該当フィールドをFieldErrorsに含める。
func NewInvalidRequestError(field, reason string) *APIError {
	apiErr := &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request body: %s", reason),
		Category: CategoryValidation,
		Action:   "Send a JSON object containing only the documented fields.",
	}
	if field != "" {
		apiErr.FieldErrors = []FieldError{{Field: field, Message: reason}}
	}
	return apiErr
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 識別子の形式が不正な場合も同じエラーを返す。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  "Task not found",
		Category: CategoryTask,
		Action:   "Check the task ID.",
	}
}

// NewTaskForbiddenError は他ユーザーのタスクにアクセスした場合のエラーを生成する。
// verbには "access", "update", "delete" のいずれかを指定する。
func NewTaskForbiddenError(verb string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskForbidden,
		Message:  fmt.Sprintf("Not authorized to %s this task", verb),
		Category: CategoryAuth,
		Action:   "You can only work with your own tasks.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: CategoryAuth,
		Action:   "Log in again.",
	}
}

// NewEmailTakenError はメールアドレスが登録済みの場合のエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "User already exists",
		Category: CategoryValidation,
		Action:   "Log in with this email or use another address.",
	}
}

// NewInternalError は内部エラーの汎用レスポンスを生成する。
// 詳細はログのみに記録し、呼び出し元には返さない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal server error",
		Category: CategorySystem,
		Action:   "Please wait and try again.",
	}
}

// NewRateLimitedError はレート制限超過時のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: CategorySystem,
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewRouteNotFoundError は未定義のルートへのリクエストに対するエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeRouteNotFound,
		Message:  "Route not found",
		Category: CategorySystem,
		Action:   "Check the request path.",
	}
}
