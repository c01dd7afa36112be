package services

import (
	"context"
	"net/url"

	"pharmaconnect_core/internal/models"
	"pharmaconnect_core/internal/services/dto"
)

type DocumentService interface {
	UploadDocument(ctx context.Context, req dto.UploadDocumentRequest) (*models.UploadedFile, error)
	GetDocuments(ctx context.Context) ([]dto.DocumentRecord, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

type documentService struct {
	api API
}

func NewDocumentService(api API) DocumentService {
	return &documentService{api: api}
}

func (s *documentService) UploadDocument(ctx context.Context, req dto.UploadDocumentRequest) (*models.UploadedFile, error) {
	var file models.UploadedFile
	fields := map[string]string{"documentType": string(req.DocumentType)}
	if err := s.api.Upload(ctx, "/documents/upload", fields, "document", req.FileName, req.Data, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (s *documentService) GetDocuments(ctx context.Context) ([]dto.DocumentRecord, error) {
	var docs []dto.DocumentRecord
	if err := s.api.Get(ctx, "/documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, documentID string) error {
	return s.api.Delete(ctx, "/documents/"+url.PathEscape(documentID), nil)
}
