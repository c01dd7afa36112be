package orchestrator

import (
	"context"

	"pharmaconnect_core/internal/appErrors"
	"pharmaconnect_core/internal/logger"
	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
	"pharmaconnect_core/internal/state"
)

// SendMessage добавляет сообщение в переписку только после ответа сервера.
// id и время сообщения берутся из ответа.
func (o *Orchestrator) SendMessage(ctx context.Context, conversationID, text string) {
	ctx = logger.WithWorkflow(ctx, "send_message")
	s := o.store.Snapshot()

	var err error
	switch {
	case s.UserRole == "":
		err = appErrors.ErrNoRole
	case !models.HasConversation(s.Conversations, conversationID):
		err = appErrors.ErrConversationNotFound
	default:
		err = o.validate(dto.SendMessageRequest{Content: text})
	}
	if err != nil {
		o.handleError(ctx, err, "")
		o.finish(ctx, "send_message", err)
		return
	}

	msg, err := o.services.MessageService.SendMessage(ctx, conversationID, text)
	if err != nil {
		o.handleError(ctx, err, "Failed to send message")
		o.finish(ctx, "send_message", err)
		return
	}

	o.store.Update(func(s state.State) state.Action {
		conversations, ok := models.WithMessage(s.Conversations, conversationID, *msg)
		if !ok {
			return nil
		}
		return state.SetConversations{Conversations: conversations}
	})
	o.finish(ctx, "send_message", nil)
}

// MarkConversationRead - без ошибок для пользователя
func (o *Orchestrator) MarkConversationRead(ctx context.Context, conversationID string) {
	err := o.services.MessageService.MarkAsRead(ctx, conversationID)
	o.background(ctx, "mark_as_read", err)
}
