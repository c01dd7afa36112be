package services

import (
	"context"
	"errors"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/repositories"
	"pharmaconnect_core/internal/services/dto"
)

type AuthService interface {
	// Login сохраняет токены и пользователя после успешного ответа
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error)
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) error
	ResendOTP(ctx context.Context, method models.VerificationMethod) error

	// Logout очищает локальную сессию даже если сервер недоступен
	Logout(ctx context.Context) error
	GetCurrentUser(ctx context.Context) (*dto.AuthUser, error)
	UpdateCachedUser(ctx context.Context, user dto.AuthUser) error
}

type authService struct {
	api    API
	tokens repositories.TokenRepository
}

func NewAuthService(api API, tokens repositories.TokenRepository) AuthService {
	return &authService{api: api, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	var resp dto.LoginResponse
	if err := s.api.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	if err := s.tokens.SetTokens(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return nil, err
	}
	if err := s.tokens.SetCachedUser(ctx, resp.User); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	var resp dto.SignupResponse
	if err := s.api.Post(ctx, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) error {
	return s.api.Post(ctx, "/auth/verify-otp", req, nil)
}

func (s *authService) ResendOTP(ctx context.Context, method models.VerificationMethod) error {
	return s.api.Post(ctx, "/auth/resend-otp", dto.ResendOTPRequest{Method: method}, nil)
}

func (s *authService) Logout(ctx context.Context) error {
	var remoteErr error
	refreshToken, err := s.tokens.GetRefreshToken(ctx)
	if err == nil && refreshToken != "" {
		remoteErr = s.api.Post(ctx, "/auth/logout", dto.RefreshTokenRequest{RefreshToken: refreshToken}, nil)
	}

	clearErr := s.tokens.ClearSession(ctx)
	return errors.Join(err, remoteErr, clearErr)
}

func (s *authService) GetCurrentUser(ctx context.Context) (*dto.AuthUser, error) {
	return s.tokens.GetCachedUser(ctx)
}

func (s *authService) UpdateCachedUser(ctx context.Context, user dto.AuthUser) error {
	return s.tokens.SetCachedUser(ctx, user)
}
