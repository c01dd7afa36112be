package services

import (
	"context"
	"net/url"

	"pharmaconnect_core/internal/repositories"
)

// API - транспорт, через который работают сервисы (apiclient.Client)
type API interface {
	Get(ctx context.Context, endpoint string, query url.Values, out interface{}) error
	Post(ctx context.Context, endpoint string, body, out interface{}) error
	Put(ctx context.Context, endpoint string, body, out interface{}) error
	Delete(ctx context.Context, endpoint string, out interface{}) error
	Upload(ctx context.Context, endpoint string, fields map[string]string, fileField, fileName string, data []byte, out interface{}) error
}

// ServiceContainer содержит все сервисы приложения.
// Сервисы не хранят состояние и не повторяют запросы сами.
type ServiceContainer struct {
	AuthService     AuthService
	JobService      JobService
	DocumentService DocumentService
	MessageService  MessageService
	UserService     UserService
}

func NewServiceContainer(api API, tokens repositories.TokenRepository) *ServiceContainer {
	return &ServiceContainer{
		AuthService:     NewAuthService(api, tokens),
		JobService:      NewJobService(api),
		DocumentService: NewDocumentService(api),
		MessageService:  NewMessageService(api),
		UserService:     NewUserService(api),
	}
}
