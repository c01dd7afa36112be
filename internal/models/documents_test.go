package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadedDocuments_CompleteFor(t *testing.T) {
	docs := UploadedDocuments{
		DocumentKeyPSZ: {URI: "https://files/psz.pdf", Name: "psz.pdf"},
		DocumentKeyHPA: {URI: "https://files/hpa.pdf", Name: "hpa.pdf"},
		DocumentKeyCV:  nil,
	}

	assert.False(t, docs.CompleteFor(UserRolePharmacist))
	assert.Equal(t, 2, docs.UploadedCount())

	docs[DocumentKeyCV] = &UploadedFile{URI: "https://files/cv.pdf", Name: "cv.pdf"}
	assert.True(t, docs.CompleteFor(UserRolePharmacist))
	assert.False(t, docs.CompleteFor(UserRolePharmacy))
	assert.False(t, docs.CompleteFor(UserRole("")))
}

func TestDocumentsForRole_ReturnsCopy(t *testing.T) {
	keys := DocumentsForRole(UserRolePharmacy)
	keys[0] = DocumentKeyCV

	assert.Equal(t, []DocumentKey{DocumentKeyPharmacyHPA, DocumentKeyPharmacyMCAZ}, DocumentsForRole(UserRolePharmacy))
}

func TestWithMessage_AppendsToMatchingConversation(t *testing.T) {
	convs := []Conversation{
		{ID: "job1", Messages: []Message{{ID: "m1", Text: "Hi"}}},
		{ID: "job2", Messages: []Message{}},
	}

	updated, ok := WithMessage(convs, "job1", Message{ID: "m2", Text: "See you at 8"})
	_, missing := WithMessage(convs, "nope", Message{ID: "m3"})

	assert.True(t, ok)
	assert.False(t, missing)
	assert.Len(t, updated[0].Messages, 2)
	assert.Equal(t, "m2", updated[0].Messages[1].ID)
	assert.Len(t, convs[0].Messages, 1)
}
