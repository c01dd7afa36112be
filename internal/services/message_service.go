package services

import (
	"context"
	"net/url"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

type MessageService interface {
	GetConversations(ctx context.Context) ([]models.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]models.Message, error)

	// SendMessage возвращает сообщение в том виде, как его сохранил сервер
	SendMessage(ctx context.Context, conversationID, content string) (*models.Message, error)
	MarkAsRead(ctx context.Context, conversationID string) error
}

type messageService struct {
	api API
}

func NewMessageService(api API) MessageService {
	return &messageService{api: api}
}

func conversationPath(conversationID, action string) string {
	return "/messages/conversations/" + url.PathEscape(conversationID) + "/" + action
}

func (s *messageService) GetConversations(ctx context.Context) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := s.api.Get(ctx, "/messages/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (s *messageService) GetMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var messages []models.Message
	if err := s.api.Get(ctx, conversationPath(conversationID, "messages"), nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *messageService) SendMessage(ctx context.Context, conversationID, content string) (*models.Message, error) {
	var msg models.Message
	if err := s.api.Post(ctx, conversationPath(conversationID, "messages"), dto.SendMessageRequest{Content: content}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *messageService) MarkAsRead(ctx context.Context, conversationID string) error {
	return s.api.Post(ctx, conversationPath(conversationID, "read"), nil, nil)
}
