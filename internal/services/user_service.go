package services

import (
	"context"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

type UserService interface {
	GetProfile(ctx context.Context) (*models.Profile, error)
	UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (*models.Profile, error)
	UpdateContactInfo(ctx context.Context, req dto.UpdateContactRequest) error
	UpdateAddress(ctx context.Context, address string) error
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type userService struct {
	api API
}

func NewUserService(api API) UserService {
	return &userService{api: api}
}

func (s *userService) GetProfile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := s.api.Get(ctx, "/users/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := s.api.Put(ctx, "/users/profile", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *userService) UpdateContactInfo(ctx context.Context, req dto.UpdateContactRequest) error {
	return s.api.Put(ctx, "/users/contact", req, nil)
}

func (s *userService) UpdateAddress(ctx context.Context, address string) error {
	return s.api.Put(ctx, "/users/address", dto.UpdateAddressRequest{Address: address}, nil)
}

func (s *userService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := s.api.Get(ctx, "/users/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
