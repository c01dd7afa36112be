package dto

import "pharmaconnect_core/internal/models"

// DocumentRecord - документ в ответе GET /documents
type DocumentRecord struct {
	ID           string                `json:"id"`
	DocumentType models.DocumentKey    `json:"documentType"`
	FileURL      string                `json:"fileUrl"`
	FileName     string                `json:"fileName"`
	Status       models.DocumentStatus `json:"status"`
}

// UploadDocumentRequest - multipart: поле document (файл) и documentType
type UploadDocumentRequest struct {
	DocumentType models.DocumentKey `json:"documentType" validate:"required,is-document-key"`
	FileName     string             `json:"fileName" validate:"required"`
	Data         []byte             `json:"-" validate:"required"`
}

// ApprovedDocuments - только одобренные документы попадают в UploadedDocuments
func ApprovedDocuments(records []DocumentRecord) models.UploadedDocuments {
	docs := models.UploadedDocuments{}
	for _, r := range records {
		if r.Status != models.DocumentStatusApproved {
			continue
		}
		docs[r.DocumentType] = &models.UploadedFile{URI: r.FileURL, Name: r.FileName}
	}
	return docs
}
