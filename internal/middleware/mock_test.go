package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/hitoshi/taskman/internal/model"
)

// mockVerifier はTokenVerifierのモック実装。
type mockVerifier struct {
	verifyFn func(ctx context.Context, header string) (*model.User, error)
}

func (m *mockVerifier) Verify(ctx context.Context, header string) (*model.User, error) {
	return m.verifyFn(ctx, header)
}

// bearerVerifier は "Bearer valid-<userID>" 形式のヘッダーだけを受け付けるVerifier。
func bearerVerifier() *mockVerifier {
	return &mockVerifier{
		verifyFn: func(ctx context.Context, header string) (*model.User, error) {
			const prefix = "Bearer valid-"
			if header == "" {
				return nil, model.NewTokenMissingError()
			}
			if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
				return nil, model.NewTokenMalformedError()
			}
			return &model.User{ID: header[len(prefix):], Name: "tester"}, nil
		},
	}
}

// recordingMetrics はAuthFailureRecorderとHTTPMetricsRecorderを兼ねるテスト用レコーダー。
type recordingMetrics struct {
	mu           sync.Mutex
	authFailures []string
	requests     []recordedRequest
}

type recordedRequest struct {
	method string
	route  string
	status int
}

func (m *recordingMetrics) RecordAuthFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authFailures = append(m.authFailures, reason)
}

func (m *recordingMetrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, route: route, status: statusCode})
}
