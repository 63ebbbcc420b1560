package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/auth"
	"github.com/JohnDaWalka/Poker-Therapist-sub000/pkg/oauth"
)

// mockService is a mock implementation of the Service interface.
type mockService struct {
	mock.Mock
}

func (m *mockService) AvailableProviders() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *mockService) BeginLogin(ctx context.Context, provider, clientCallbackURL string,
) (string, string, error) {
	args := m.Called(ctx, provider, clientCallbackURL)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockService) CompleteLogin(ctx context.Context, in auth.CallbackInput) (auth.LoginResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(auth.LoginResult), args.Error(1)
}

func (m *mockService) VerifySession(token string) (oauth.UserInfo, error) {
	args := m.Called(token)
	return args.Get(0).(oauth.UserInfo), args.Error(1)
}

func (m *mockService) RefreshSession(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}
