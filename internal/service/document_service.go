package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/lucerne-re/policy-api/internal/domain"
	"github.com/lucerne-re/policy-api/internal/mapper"
	"github.com/lucerne-re/policy-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService handles document upload, download and metadata. Binary
// content goes to blob storage; the metadata row links it to any record kind.
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	roleService  *RoleService
	storage      Storage
	logger       *zap.Logger
}

// Storage abstracts the blob backend for document content
type Storage interface {
	Upload(ctx context.Context, filename string, contentType string, data io.Reader) (string, int64, error)
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	roleService *RoleService,
	storage Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		roleService:  roleService,
		storage:      storage,
		logger:       logger,
	}
}

// Upload stores a document's content and attaches its metadata to a record.
// The record kind must be a known kind and the record must exist.
func (s *DocumentService) Upload(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID, filename, contentType string, data io.Reader, uploaderPartyID *uuid.UUID) (*domain.DocumentDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordKind, kind)
	}
	if err := s.roleService.VerifyRecordExists(ctx, kind, recordID); err != nil {
		return nil, err
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	document := &domain.Document{
		DocumentName:    filename,
		ContentType:     contentType,
		Size:            size,
		StoragePath:     storagePath,
		RecordKind:      kind,
		RecordID:        recordID,
		UploaderPartyID: uploaderPartyID,
	}

	if err := s.documentRepo.Create(ctx, document); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up blob after metadata error",
				zap.Error(delErr),
				zap.String("storage_path", storagePath))
		}
		return nil, fmt.Errorf("failed to create document record: %w", err)
	}

	s.logger.Info("document uploaded",
		zap.String("document_id", document.ID.String()),
		zap.String("record_kind", string(kind)),
		zap.String("record_id", recordID.String()),
		zap.Int64("size", size))

	dto := mapper.ToDocumentDTO(document)
	return &dto, nil
}

func (s *DocumentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	dto := mapper.ToDocumentDTO(document)
	return &dto, nil
}

// ListForRecord returns the metadata of every document attached to a record
func (s *DocumentService) ListForRecord(ctx context.Context, kind domain.RecordKind, recordID uuid.UUID) ([]domain.DocumentDTO, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRecordKind, kind)
	}

	documents, err := s.documentRepo.ListByRecord(ctx, kind, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	dtos := make([]domain.DocumentDTO, len(documents))
	for i := range documents {
		dtos[i] = mapper.ToDocumentDTO(&documents[i])
	}
	return dtos, nil
}

// Download returns the document content together with its name and content type
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, string, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", "", ErrNotFound
		}
		return nil, "", "", fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, document.StoragePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to download document: %w", err)
	}

	return reader, document.DocumentName, document.ContentType, nil
}

// Delete removes the metadata row and the blob. A blob that fails to delete
// is logged and left for storage cleanup.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.storage.Delete(ctx, document.StoragePath); err != nil {
		s.logger.Warn("failed to delete document blob",
			zap.Error(err),
			zap.String("storage_path", document.StoragePath),
			zap.String("document_id", id.String()))
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	return nil
}
