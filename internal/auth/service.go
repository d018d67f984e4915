package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/taskman/internal/model"
	"github.com/hitoshi/taskman/internal/repository"
)

// 認証情報の制約
const (
	MinPasswordLength = 6
	// bcryptは72バイトを超える入力を扱えない
	MaxPasswordBytes = 72
	MaxNameLength    = 100
	// users.emailはVARCHAR(255)
	MaxEmailLength = 255
)

// TokenIssuer はユーザーIDに対するトークンを発行するインターフェース。
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// SignupRecorder はユーザー登録のメトリクス記録インターフェース。
type SignupRecorder interface {
	RecordSignup()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int            // パスワードハッシュのコスト
	Metrics    SignupRecorder // nilの場合は記録しない
}

// Service はサインアップとログインのビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, tokens TokenIssuer, config ServiceConfig) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		config:   config,
	}
}

// SignupInput はサインアップの入力。
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Result は認証成功時に返すトークンとユーザー。
type Result struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// Signup はユーザーを登録し、トークンを発行する。
// 入力違反はすべてのフィールドを列挙したバリデーションエラー、
// メールアドレスが登録済みの場合はEMAIL_TAKENを返す。
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Result, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var fieldErrors []model.FieldError
	switch {
	case name == "":
		fieldErrors = append(fieldErrors, model.FieldError{Field: "name", Message: "Name is required"})
	case utf8.RuneCountInString(name) > MaxNameLength:
		fieldErrors = append(fieldErrors, model.FieldError{Field: "name", Message: fmt.Sprintf("Name must be at most %d characters", MaxNameLength)})
	}
	switch {
	case !validEmail(email):
		fieldErrors = append(fieldErrors, model.FieldError{Field: "email", Message: "Please include a valid email"})
	case utf8.RuneCountInString(email) > MaxEmailLength:
		fieldErrors = append(fieldErrors, model.FieldError{Field: "email", Message: fmt.Sprintf("Email must be at most %d characters", MaxEmailLength)})
	}
	if fe, ok := validatePassword(in.Password); !ok {
		fieldErrors = append(fieldErrors, fe)
	}
	if len(fieldErrors) > 0 {
		return nil, model.NewValidationError(fieldErrors)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	if s.config.Metrics != nil {
		s.config.Metrics.RecordSignup()
	}
	slog.Info("ユーザーを登録しました", slog.String("user_id", user.ID))

	return s.issue(user)
}

// Login はメールアドレスとパスワードを検証し、トークンを発行する。
// メールアドレスが存在しない場合とパスワードが一致しない場合は同じエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		var fieldErrors []model.FieldError
		if email == "" {
			fieldErrors = append(fieldErrors, model.FieldError{Field: "email", Message: "Email is required"})
		}
		if password == "" {
			fieldErrors = append(fieldErrors, model.FieldError{Field: "password", Message: "Password is required"})
		}
		return nil, model.NewValidationError(fieldErrors)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	return s.issue(user)
}

func (s *Service) issue(user *model.User) (*Result, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}
	return &Result{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

// validEmail は表示名を含まない単一のメールアドレスかを判定する。
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && addr.Name == ""
}

func validatePassword(password string) (model.FieldError, bool) {
	switch {
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return model.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}, false
	case len(password) > MaxPasswordBytes:
		return model.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes),
		}, false
	}
	return model.FieldError{}, true
}
