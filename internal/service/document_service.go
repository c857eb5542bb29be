package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// DocumentService manages attachment metadata for debts and transactions.
// Only metadata is tracked; file bytes live outside this system.
type DocumentService struct {
	store storage.Store
}

// NewDocumentService creates a DocumentService with the given storage
// backend.
func NewDocumentService(store storage.Store) *DocumentService {
	return &DocumentService{store: store}
}

// Attach records a document against an existing debt or transaction.
func (s *DocumentService) Attach(ctx context.Context, d *models.Document) (*models.Document, error) {
	d.FileName = strings.TrimSpace(d.FileName)
	if d.FileName == "" {
		return nil, apperr.New(apperr.Invalid, "file name is required")
	}
	if d.Size < 0 {
		return nil, apperr.New(apperr.Invalid, "file size cannot be negative")
	}
	if err := s.resolveOwner(ctx, d.OwnerType, d.OwnerID); err != nil {
		return nil, err
	}
	if err := s.store.AddDocument(ctx, d); err != nil {
		return nil, err
	}
	slog.Info("document attached",
		"document_id", d.ID,
		"owner_type", d.OwnerType,
		"owner_id", d.OwnerID,
		"file_name", d.FileName,
	)
	return d, nil
}

// List returns the owner's documents, newest first.
func (s *DocumentService) List(ctx context.Context, ownerType string, ownerID int64) ([]models.Document, error) {
	if err := s.resolveOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	return s.store.ListDocuments(ctx, ownerType, ownerID)
}

// Detach removes a document record. The document must belong to the debt
// or transaction named by the caller's route.
func (s *DocumentService) Detach(ctx context.Context, ownerType string, ownerID, id int64) error {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "document not found: %d", id)
		}
		return err
	}
	if doc.OwnerType != ownerType || doc.OwnerID != ownerID {
		return apperr.New(apperr.NotOwned, "document %d does not belong to %s %d", id, ownerType, ownerID)
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "document not found: %d", id)
		}
		return err
	}
	slog.Info("document detached", "document_id", id, "owner_type", ownerType, "owner_id", ownerID)
	return nil
}

func (s *DocumentService) resolveOwner(ctx context.Context, ownerType string, ownerID int64) error {
	switch ownerType {
	case models.OwnerDebt:
		_, err := fetchDebt(ctx, s.store, ownerID)
		return err
	case models.OwnerTransaction:
		_, err := fetchTransaction(ctx, s.store, ownerID)
		return err
	default:
		return apperr.New(apperr.Invalid, "unknown document owner type: %s", ownerType)
	}
}
