package dto

import "pharmaconnect_core/internal/models"

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthUser - пользователь из ответа /auth/login, кэшируется локально
type AuthUser struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	Role            models.UserRole `json:"role"`
	IsEmailVerified bool            `json:"isEmailVerified"`
	IsPhoneVerified bool            `json:"isPhoneVerified"`
	Profile         *models.Profile `json:"profile,omitempty"`
}

// IsContactVerified - подтверждены и email, и телефон
func (u AuthUser) IsContactVerified() bool {
	return u.IsEmailVerified && u.IsPhoneVerified
}

// LoginResponse - ответ с токенами
type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         AuthUser `json:"user"`
}

// SignupRequest - запрос регистрации
type SignupRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	Role     models.UserRole `json:"role" validate:"required,is-user-role"`
	Phone    string          `json:"phone"`

	// Поля для фармацевта
	FirstName string `json:"firstName,omitempty" validate:"required_if=Role pharmacist"`
	LastName  string `json:"lastName,omitempty"`

	// Поля для аптеки
	PharmacyName string `json:"pharmacyName,omitempty" validate:"required_if=Role pharmacy"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type VerifyOTPRequest struct {
	Code   string                    `json:"code" validate:"required,numeric,min=4,max=8"`
	Method models.VerificationMethod `json:"method" validate:"required,is-verification-method"`
}

type ResendOTPRequest struct {
	Method models.VerificationMethod `json:"method" validate:"required,is-verification-method"`
}

// RefreshTokenRequest - запрос обновления токена
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse - ответ без данных, только текст
type MessageResponse struct {
	Message string `json:"message"`
}
