package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/calculator"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// TransactionService manages payment records. A transaction carries a fixed
// paid amount; allocations consume it but never change it.
type TransactionService struct {
	store storage.Store
}

// NewTransactionService creates a TransactionService with the given storage
// backend.
func NewTransactionService(store storage.Store) *TransactionService {
	return &TransactionService{store: store}
}

// Create validates and persists a new transaction.
func (s *TransactionService) Create(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if err := s.validate(ctx, t, 0); err != nil {
		return nil, err
	}
	if err := s.store.InsertTransaction(ctx, t); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "transaction code already in use: %s", t.Code)
		}
		return nil, err
	}
	slog.Info("transaction created",
		"transaction_id", t.ID,
		"code", t.Code,
		"amount_paid", t.AmountPaid,
	)
	return t, nil
}

// Get retrieves a transaction annotated with its allocated and remaining
// amounts.
func (s *TransactionService) Get(ctx context.Context, id int64) (*models.TransactionDetail, error) {
	t, err := fetchTransaction(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	allocated, err := s.store.TransactionCovered(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.TransactionDetail{
		Transaction: *t,
		Allocated:   allocated,
		Remaining:   calculator.Remaining(t.AmountPaid, allocated),
	}, nil
}

// GetAll returns every transaction with allocated/remaining annotations,
// newest first.
func (s *TransactionService) GetAll(ctx context.Context) ([]models.TransactionDetail, error) {
	return s.store.ListTransactions(ctx)
}

// Update rewrites a transaction. Shrinking the paid amount below the sum
// already allocated from it is rejected.
func (s *TransactionService) Update(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if err := s.validate(ctx, t, t.ID); err != nil {
		return nil, err
	}

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		existing, err := fetchTransaction(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if t.RegisteredAt == 0 {
			t.RegisteredAt = existing.RegisteredAt
		}

		if t.ToPersonID != existing.ToPersonID {
			n, err := tx.CountAllocationsByTransaction(ctx, t.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.New(apperr.AllocationNotAllowed,
					"transaction %d has %d allocation(s); the receiver cannot change while they exist", t.ID, n)
			}
		}

		allocated, err := tx.TransactionCovered(ctx, t.ID)
		if err != nil {
			return err
		}
		if t.AmountPaid.LessThan(allocated) {
			return apperr.New(apperr.InvalidAmount,
				"paid amount %s cannot drop below the allocated amount %s", t.AmountPaid, allocated)
		}

		if err := tx.UpdateTransaction(ctx, t); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.New(apperr.Conflict, "transaction code already in use: %s", t.Code)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("transaction updated", "transaction_id", t.ID, "code", t.Code)
	return t, nil
}

// Delete removes a transaction. Transactions with allocations or attached
// documents cannot be deleted.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := fetchTransaction(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.CountAllocationsByTransaction(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.AllocationExists,
				"transaction %d has %d allocation(s); remove them first", id, n)
		}
		docs, err := tx.CountDocuments(ctx, models.OwnerTransaction, id)
		if err != nil {
			return err
		}
		if docs > 0 {
			return apperr.New(apperr.HasAttachments,
				"transaction %d has %d attached document(s); detach them first", id, docs)
		}
		return tx.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}
	slog.Info("transaction deleted", "transaction_id", id)
	return nil
}

// validate checks a transaction's fields and reference integrity. selfID is
// the transaction's own id on update so the code-uniqueness check can skip
// it; zero on create.
func (s *TransactionService) validate(ctx context.Context, t *models.Transaction, selfID int64) error {
	t.Code = strings.TrimSpace(t.Code)
	t.Note = trimNote(t.Note)
	t.PaymentType = strings.ToUpper(strings.TrimSpace(t.PaymentType))
	t.TxType = strings.ToUpper(strings.TrimSpace(t.TxType))

	if t.Code == "" {
		return apperr.New(apperr.Invalid, "transaction code is required")
	}
	if t.DueDate == "" {
		return apperr.New(apperr.Invalid, "due date is required")
	}
	if t.FromPersonID == t.ToPersonID {
		return apperr.New(apperr.Invalid, "sender and receiver must differ")
	}
	if !models.ValidPaymentType(t.PaymentType) {
		return apperr.New(apperr.Invalid, "unknown payment type: %s", t.PaymentType)
	}
	if !models.ValidTxType(t.TxType) {
		return apperr.New(apperr.Invalid, "unknown transaction type: %s", t.TxType)
	}
	if !t.AmountPaid.IsPositive() {
		return apperr.New(apperr.InvalidAmount, "paid amount must be greater than zero")
	}
	if !calculator.IsWholeAmount(t.AmountPaid) {
		return apperr.New(apperr.InvalidAmount, "paid amount must be in whole currency units")
	}

	if _, err := s.store.GetProject(ctx, t.ProjectID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "project not found: %d", t.ProjectID)
		}
		return err
	}
	for _, pid := range []int64{t.FromPersonID, t.ToPersonID} {
		if _, err := s.store.GetPerson(ctx, pid); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.New(apperr.NotFound, "person not found: %d", pid)
			}
			return err
		}
	}

	existingID, err := s.store.FindTransactionIDByCode(ctx, t.Code)
	if err != nil {
		return err
	}
	if existingID != 0 && existingID != selfID {
		return apperr.New(apperr.Conflict, "transaction code already in use: %s", t.Code)
	}
	return nil
}
