package orchestrator

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/test/helpers"
)

const sendRoute = "/messages/conversations/:id/messages"

func TestSendMessage_AfterConfirm(t *testing.T) {
	// 1. Подготовка: подтверждённый кандидат, переписка создана
	h, jobID, applicant := pharmacyWithApplicant(t)
	ctx := context.Background()
	h.orch.ConfirmApplicant(ctx, jobID, applicant)

	// 2. Действие
	h.orch.SendMessage(ctx, jobID, "See you at 8am")

	// 3. Проверка: id и время из ответа сервера
	s := h.store.Snapshot()
	require.Len(t, s.Conversations, 1)
	require.Len(t, s.Conversations[0].Messages, 1)
	msg := s.Conversations[0].Messages[0]
	assert.Equal(t, "See you at 8am", msg.Text)
	assert.Equal(t, models.UserRolePharmacy, msg.Sender)
	assert.NotEmpty(t, msg.ID)
	assert.NotEmpty(t, msg.Timestamp)
	assert.Nil(t, s.Error)
}

func TestSendMessage_UnknownConversation(t *testing.T) {
	h, _, _ := pharmacyWithApplicant(t)

	h.orch.SendMessage(context.Background(), "missing", "hello")

	assert.Equal(t, 0, h.api.Hits(http.MethodPost, sendRoute))
	notice, _ := h.notices.Last()
	assert.Equal(t, "Conversation not found", notice.Message)
}

func TestSendMessage_EmptyText(t *testing.T) {
	h, jobID, applicant := pharmacyWithApplicant(t)
	ctx := context.Background()
	h.orch.ConfirmApplicant(ctx, jobID, applicant)

	h.orch.SendMessage(ctx, jobID, "")

	assert.Equal(t, 0, h.api.Hits(http.MethodPost, sendRoute))
	assert.Empty(t, h.store.Snapshot().Conversations[0].Messages)
	notice, _ := h.notices.Last()
	assert.Equal(t, "Invalid Input", notice.Title)
}

func TestSendMessage_ServerFailureKeepsConversation(t *testing.T) {
	h, jobID, applicant := pharmacyWithApplicant(t)
	ctx := context.Background()
	h.orch.ConfirmApplicant(ctx, jobID, applicant)
	h.api.SetFault(http.MethodPost, sendRoute, helpers.Fault{Status: http.StatusInternalServerError})

	h.orch.SendMessage(ctx, jobID, "hello")

	s := h.store.Snapshot()
	assert.Empty(t, s.Conversations[0].Messages)
	require.NotNil(t, s.Error)
	assert.Equal(t, "Failed to send message", *s.Error)
}

func TestMarkConversationRead_ErrorsStayInBackground(t *testing.T) {
	h, _, _ := pharmacyWithApplicant(t)

	h.orch.MarkConversationRead(context.Background(), "missing")

	assert.Nil(t, h.store.Snapshot().Error)
	assert.Equal(t, []string{"mark_as_read"}, h.background.Tasks())
}
