package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// AddDocument persists attachment metadata for a debt or transaction.
func (s *SQLiteStore) AddDocument(ctx context.Context, d *models.Document) error {
	if d.UploadedAt == 0 {
		d.UploadedAt = time.Now().Unix()
	}
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO documents (owner_type, owner_id, file_name, content_type, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)",
		d.OwnerType, d.OwnerID, d.FileName, d.ContentType, d.Size, d.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	d.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}
	return nil
}

// ListDocuments returns the owner's documents, newest first.
func (s *SQLiteStore) ListDocuments(ctx context.Context, ownerType string, ownerID int64) ([]models.Document, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, owner_type, owner_id, file_name, content_type, size, uploaded_at
		 FROM documents WHERE owner_type = ? AND owner_id = ? ORDER BY id DESC`,
		ownerType, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.OwnerType, &d.OwnerID, &d.FileName, &d.ContentType, &d.Size, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return out, nil
}

// GetDocument retrieves a single document record.
func (s *SQLiteStore) GetDocument(ctx context.Context, id int64) (*models.Document, error) {
	var d models.Document
	err := s.q.QueryRowContext(ctx,
		`SELECT id, owner_type, owner_id, file_name, content_type, size, uploaded_at
		 FROM documents WHERE id = ?`,
		id,
	).Scan(&d.ID, &d.OwnerType, &d.OwnerID, &d.FileName, &d.ContentType, &d.Size, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &d, nil
}

// DeleteDocument removes attachment metadata.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check document delete: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CountDocuments returns the number of documents attached to the owner.
func (s *SQLiteStore) CountDocuments(ctx context.Context, ownerType string, ownerID int64) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM documents WHERE owner_type = ? AND owner_id = ?",
		ownerType, ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}
