package repositories

import (
	"context"
	"encoding/json"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/storage"
)

// Ключи в локальном хранилище
const (
	KeyAccessToken  = "@pharmaconnect_access_token"
	KeyRefreshToken = "@pharmaconnect_refresh_token"
	KeyUserData     = "@pharmaconnect_user_data"
)

// TokenRepository хранит токены и кэш пользователя между запусками.
// Все ошибки - appErrors с KindStorage, наверх передаются без изменений.
type TokenRepository interface {
	// GetAccessToken возвращает "" если токена нет
	GetAccessToken(ctx context.Context) (string, error)

	// GetRefreshToken возвращает "" если токена нет
	GetRefreshToken(ctx context.Context) (string, error)

	// SetTokens записывает оба токена одной транзакцией
	SetTokens(ctx context.Context, accessToken, refreshToken string) error

	// SetAccessToken - после refresh, refresh-токен не меняется
	SetAccessToken(ctx context.Context, accessToken string) error

	ClearTokens(ctx context.Context) error

	// GetCachedUser возвращает nil если пользователь не сохранён
	GetCachedUser(ctx context.Context) (*dto.AuthUser, error)

	SetCachedUser(ctx context.Context, user dto.AuthUser) error

	// ClearSession удаляет токены и кэш пользователя одной транзакцией
	ClearSession(ctx context.Context) error
}

type tokenRepository struct {
	store storage.Storage
}

func NewTokenRepository(store storage.Storage) TokenRepository {
	return &tokenRepository{store: store}
}

func (r *tokenRepository) GetAccessToken(ctx context.Context) (string, error) {
	token, _, err := r.store.Get(ctx, KeyAccessToken)
	return token, err
}

func (r *tokenRepository) GetRefreshToken(ctx context.Context) (string, error) {
	token, _, err := r.store.Get(ctx, KeyRefreshToken)
	return token, err
}

func (r *tokenRepository) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	return r.store.SetMany(ctx, map[string]string{
		KeyAccessToken:  accessToken,
		KeyRefreshToken: refreshToken,
	})
}

func (r *tokenRepository) SetAccessToken(ctx context.Context, accessToken string) error {
	return r.store.Set(ctx, KeyAccessToken, accessToken)
}

func (r *tokenRepository) ClearTokens(ctx context.Context) error {
	return r.store.Delete(ctx, KeyAccessToken, KeyRefreshToken)
}

func (r *tokenRepository) GetCachedUser(ctx context.Context) (*dto.AuthUser, error) {
	raw, found, err := r.store.Get(ctx, KeyUserData)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return nil, nil
	}

	var user dto.AuthUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, appErrors.StorageError("decode user", err)
	}
	return &user, nil
}

func (r *tokenRepository) SetCachedUser(ctx context.Context, user dto.AuthUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return appErrors.StorageError("encode user", err)
	}
	return r.store.Set(ctx, KeyUserData, string(raw))
}

func (r *tokenRepository) ClearSession(ctx context.Context) error {
	return r.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUserData)
}
