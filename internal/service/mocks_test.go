package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"mealtap/internal/model"
	"mealtap/internal/supabase"
)

// MockMealRepository is a mock implementation of MealRepository.
type MockMealRepository struct {
	mock.Mock
}

func (m *MockMealRepository) Create(ctx context.Context, token string, meal *model.NewMeal) (string, error) {
	args := m.Called(ctx, token, meal)
	return args.String(0), args.Error(1)
}

func (m *MockMealRepository) ListRecent(ctx context.Context, token string, limit int) ([]model.MealEntry, error) {
	args := m.Called(ctx, token, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MealEntry), args.Error(1)
}

func (m *MockMealRepository) AttachPhoto(ctx context.Context, token, mealID, photoPath string) error {
	args := m.Called(ctx, token, mealID, photoPath)
	return args.Error(0)
}

// MockPhotoStore is a mock implementation of PhotoStore.
type MockPhotoStore struct {
	mock.Mock
}

func (m *MockPhotoStore) Upload(ctx context.Context, token, path string, data []byte, contentType string) error {
	args := m.Called(ctx, token, path, data, contentType)
	return args.Error(0)
}

func (m *MockPhotoStore) SignedURL(ctx context.Context, token, path string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, token, path, ttl)
	return args.String(0), args.Error(1)
}

// MockCaptureLogRepository is a mock implementation of CaptureLogRepository.
type MockCaptureLogRepository struct {
	mock.Mock
}

func (m *MockCaptureLogRepository) Create(ctx context.Context, log *model.CaptureLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockCaptureLogRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.CaptureLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CaptureLog), args.Error(1)
}

// MockUserDefaultsRepository is a mock implementation of UserDefaultsRepository.
type MockUserDefaultsRepository struct {
	mock.Mock
}

func (m *MockUserDefaultsRepository) Get(ctx context.Context, token, userID string) (*model.UserDefaults, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserDefaults), args.Error(1)
}

func (m *MockUserDefaultsRepository) Upsert(ctx context.Context, token string, defaults *model.UserDefaults) error {
	args := m.Called(ctx, token, defaults)
	return args.Error(0)
}

// MockAuthClient is a mock implementation of AuthClient.
type MockAuthClient struct {
	mock.Mock
	configured bool
}

func (m *MockAuthClient) Configured() bool { return m.configured }

func (m *MockAuthClient) SignInWithOTP(ctx context.Context, in supabase.OTPRequest) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockAuthClient) ExchangeCodeForSession(ctx context.Context, authCode, verifier string) (*model.Session, error) {
	args := m.Called(ctx, authCode, verifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthClient) VerifyTokenHash(ctx context.Context, tokenHash, typ string) (*model.Session, error) {
	args := m.Called(ctx, tokenHash, typ)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthClient) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of SessionStoreInterface.
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SaveSession(ctx context.Context, sid string, s *model.Session) error {
	args := m.Called(ctx, sid, s)
	return args.Error(0)
}

func (m *MockSessionStore) LoadSession(ctx context.Context, sid string) (*model.Session, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sid string) error {
	args := m.Called(ctx, sid)
	return args.Error(0)
}

func (m *MockSessionStore) SaveVerifier(ctx context.Context, sid, verifier string) error {
	args := m.Called(ctx, sid, verifier)
	return args.Error(0)
}

func (m *MockSessionStore) TakeVerifier(ctx context.Context, sid string) (string, error) {
	args := m.Called(ctx, sid)
	return args.String(0), args.Error(1)
}

// MockSessionTracker is a mock implementation of SessionTracker.
type MockSessionTracker struct {
	mock.Mock
}

func (m *MockSessionTracker) Current(ctx context.Context, sid string) *model.Session {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.Session)
}

func (m *MockSessionTracker) Establish(ctx context.Context, sid string, sess *model.Session) error {
	args := m.Called(ctx, sid, sess)
	return args.Error(0)
}

func (m *MockSessionTracker) End(ctx context.Context, sid string) {
	m.Called(ctx, sid)
}
