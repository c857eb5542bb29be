package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/calculator"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// AllocationService is the allocation engine. It creates, updates and
// deletes the links between debts and transactions while preserving the
// core invariants: per-side coverage never exceeds the side's total, the
// debt's person is always the payment's receiver, and a (debt, transaction)
// pair is linked at most once.
//
// Every mutation runs inside a single store transaction so the remaining
// checks and the write observe one consistent snapshot.
type AllocationService struct {
	store storage.Store
}

// NewAllocationService creates an AllocationService with the given storage
// backend.
func NewAllocationService(store storage.Store) *AllocationService {
	return &AllocationService{store: store}
}

// CreateFromDebt links a transaction to the debt the caller holds.
func (s *AllocationService) CreateFromDebt(ctx context.Context, debtID, txID int64, covered decimal.Decimal, note string) (*models.Allocation, error) {
	return s.create(ctx, debtID, txID, covered, note)
}

// CreateFromTransaction links a debt to the transaction the caller holds.
// Behaviorally identical to CreateFromDebt; only the caller's primary key
// differs.
func (s *AllocationService) CreateFromTransaction(ctx context.Context, txID, debtID int64, covered decimal.Decimal, note string) (*models.Allocation, error) {
	return s.create(ctx, debtID, txID, covered, note)
}

func (s *AllocationService) create(ctx context.Context, debtID, txID int64, covered decimal.Decimal, note string) (*models.Allocation, error) {
	if err := validateCoveredAmount(covered); err != nil {
		return nil, err
	}

	var out *models.Allocation
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		debt, err := fetchDebt(ctx, tx, debtID)
		if err != nil {
			return err
		}
		txn, err := fetchTransaction(ctx, tx, txID)
		if err != nil {
			return err
		}

		if err := assertPersonRule(debt, txn); err != nil {
			return err
		}

		exists, err := tx.AllocationExists(ctx, debtID, txID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.New(apperr.DuplicateAllocation,
				"transaction %d is already allocated to debt %d", txID, debtID)
		}

		if err := checkRemaining(ctx, tx, debt, txn, covered, decimal.Zero, decimal.Zero); err != nil {
			return err
		}

		a := &models.Allocation{
			DebtID:        debtID,
			TransactionID: txID,
			Covered:       covered,
			Note:          trimNote(note),
		}
		if err := tx.InsertAllocation(ctx, a); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.New(apperr.ConflictingDuplicate,
					"allocation could not be saved (constraint violation)")
			}
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("allocation created",
		"allocation_id", out.ID,
		"debt_id", out.DebtID,
		"transaction_id", out.TransactionID,
		"covered", out.Covered,
	)
	return out, nil
}

// UpdateFromDebt edits an allocation held through its debt: the linked
// transaction may change, the covered amount is re-validated with the
// allocation's own prior contribution excluded from the coverage sums.
func (s *AllocationService) UpdateFromDebt(ctx context.Context, debtID, allocationID, newTxID int64, covered decimal.Decimal, note string) (*models.Allocation, error) {
	if err := validateCoveredAmount(covered); err != nil {
		return nil, err
	}

	var out *models.Allocation
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		existing, err := fetchAllocation(ctx, tx, allocationID)
		if err != nil {
			return err
		}
		if existing.DebtID != debtID {
			return apperr.New(apperr.NotOwned, "allocation %d does not belong to debt %d", allocationID, debtID)
		}

		debt, err := fetchDebt(ctx, tx, debtID)
		if err != nil {
			return err
		}
		newTx, err := fetchTransaction(ctx, tx, newTxID)
		if err != nil {
			return err
		}

		if err := assertPersonRule(debt, newTx); err != nil {
			return err
		}

		// Re-run the duplicate-pair check against the new counterpart,
		// excluding the allocation's own prior identity.
		if existing.TransactionID != newTxID {
			exists, err := tx.AllocationExists(ctx, debtID, newTxID)
			if err != nil {
				return err
			}
			if exists {
				return apperr.New(apperr.DuplicateAllocation,
					"transaction %d is already allocated to debt %d", newTxID, debtID)
			}
		}

		// The debt side is unchanged, so its coverage excludes the old
		// amount. The transaction side excludes it only when the linked
		// transaction stays the same.
		debtExcess := existing.Covered
		txExcess := decimal.Zero
		if existing.TransactionID == newTxID {
			txExcess = existing.Covered
		}
		if err := checkRemaining(ctx, tx, debt, newTx, covered, debtExcess, txExcess); err != nil {
			return err
		}

		existing.TransactionID = newTxID
		existing.Covered = covered
		existing.Note = trimNote(note)
		if err := tx.UpdateAllocation(ctx, existing); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.New(apperr.ConflictingDuplicate,
					"allocation could not be saved (constraint violation)")
			}
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("allocation updated",
		"allocation_id", out.ID,
		"debt_id", out.DebtID,
		"transaction_id", out.TransactionID,
		"covered", out.Covered,
	)
	return out, nil
}

// UpdateFromTransaction edits an allocation held through its transaction:
// the linked debt may change; exclusion rules mirror UpdateFromDebt.
func (s *AllocationService) UpdateFromTransaction(ctx context.Context, txID, allocationID, newDebtID int64, covered decimal.Decimal, note string) (*models.Allocation, error) {
	if err := validateCoveredAmount(covered); err != nil {
		return nil, err
	}

	var out *models.Allocation
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		existing, err := fetchAllocation(ctx, tx, allocationID)
		if err != nil {
			return err
		}
		if existing.TransactionID != txID {
			return apperr.New(apperr.NotOwned, "allocation %d does not belong to transaction %d", allocationID, txID)
		}

		txn, err := fetchTransaction(ctx, tx, txID)
		if err != nil {
			return err
		}
		newDebt, err := fetchDebt(ctx, tx, newDebtID)
		if err != nil {
			return err
		}

		if err := assertPersonRule(newDebt, txn); err != nil {
			return err
		}

		if existing.DebtID != newDebtID {
			exists, err := tx.AllocationExists(ctx, newDebtID, txID)
			if err != nil {
				return err
			}
			if exists {
				return apperr.New(apperr.DuplicateAllocation,
					"debt %d is already allocated to transaction %d", newDebtID, txID)
			}
		}

		txExcess := existing.Covered
		debtExcess := decimal.Zero
		if existing.DebtID == newDebtID {
			debtExcess = existing.Covered
		}
		if err := checkRemaining(ctx, tx, newDebt, txn, covered, debtExcess, txExcess); err != nil {
			return err
		}

		existing.DebtID = newDebtID
		existing.Covered = covered
		existing.Note = trimNote(note)
		if err := tx.UpdateAllocation(ctx, existing); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.New(apperr.ConflictingDuplicate,
					"allocation could not be saved (constraint violation)")
			}
			return err
		}
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("allocation updated",
		"allocation_id", out.ID,
		"debt_id", out.DebtID,
		"transaction_id", out.TransactionID,
		"covered", out.Covered,
	)
	return out, nil
}

// DeleteFromDebt removes an allocation held through its debt. Removal only
// relaxes invariants, so no amount checks are needed.
func (s *AllocationService) DeleteFromDebt(ctx context.Context, debtID, allocationID int64) error {
	return s.delete(ctx, allocationID, func(a *models.Allocation) error {
		if a.DebtID != debtID {
			return apperr.New(apperr.NotOwned, "allocation %d does not belong to debt %d", allocationID, debtID)
		}
		return nil
	})
}

// DeleteFromTransaction removes an allocation held through its transaction.
func (s *AllocationService) DeleteFromTransaction(ctx context.Context, txID, allocationID int64) error {
	return s.delete(ctx, allocationID, func(a *models.Allocation) error {
		if a.TransactionID != txID {
			return apperr.New(apperr.NotOwned, "allocation %d does not belong to transaction %d", allocationID, txID)
		}
		return nil
	})
}

func (s *AllocationService) delete(ctx context.Context, allocationID int64, owned func(*models.Allocation) error) error {
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		a, err := fetchAllocation(ctx, tx, allocationID)
		if err != nil {
			return err
		}
		if err := owned(a); err != nil {
			return err
		}
		return tx.DeleteAllocation(ctx, allocationID)
	})
	if err != nil {
		return err
	}
	slog.Info("allocation deleted", "allocation_id", allocationID)
	return nil
}

// ListByDebt returns the debt's allocations, newest first.
func (s *AllocationService) ListByDebt(ctx context.Context, debtID int64) ([]models.AllocationDetail, error) {
	if _, err := fetchDebt(ctx, s.store, debtID); err != nil {
		return nil, err
	}
	return s.store.ListAllocationsByDebt(ctx, debtID)
}

// ListByTransaction returns the transaction's allocations, newest first.
func (s *AllocationService) ListByTransaction(ctx context.Context, txID int64) ([]models.AllocationDetail, error) {
	if _, err := fetchTransaction(ctx, s.store, txID); err != nil {
		return nil, err
	}
	return s.store.ListAllocationsByTransaction(ctx, txID)
}

// TransactionCandidatesForDebt returns every transaction whose receiver is
// the debt's person, annotated with its remaining amount. When
// editingAllocationID is non-zero, the row for that allocation's linked
// transaction gets its prior covered amount added back to
// EditableRemaining, matching the update exclusion rule.
func (s *AllocationService) TransactionCandidatesForDebt(ctx context.Context, debtID, editingAllocationID int64) ([]models.TransactionCandidate, error) {
	debt, err := fetchDebt(ctx, s.store, debtID)
	if err != nil {
		return nil, err
	}

	var editingTxID int64
	editingOld := decimal.Zero
	if editingAllocationID != 0 {
		a, err := fetchAllocation(ctx, s.store, editingAllocationID)
		if err != nil {
			return nil, err
		}
		if a.DebtID != debtID {
			return nil, apperr.New(apperr.NotOwned, "allocation %d does not belong to debt %d", editingAllocationID, debtID)
		}
		editingTxID = a.TransactionID
		editingOld = a.Covered
	}

	cands, err := s.store.ListTransactionCandidates(ctx, debt.PersonID)
	if err != nil {
		return nil, err
	}
	for i := range cands {
		if editingTxID != 0 && cands[i].TransactionID == editingTxID {
			cands[i].EditableRemaining = cands[i].Remaining.Add(editingOld)
		}
	}
	return cands, nil
}

// DebtCandidatesForTransaction is the transaction-side counterpart of
// TransactionCandidatesForDebt.
func (s *AllocationService) DebtCandidatesForTransaction(ctx context.Context, txID, editingAllocationID int64) ([]models.DebtCandidate, error) {
	txn, err := fetchTransaction(ctx, s.store, txID)
	if err != nil {
		return nil, err
	}

	var editingDebtID int64
	editingOld := decimal.Zero
	if editingAllocationID != 0 {
		a, err := fetchAllocation(ctx, s.store, editingAllocationID)
		if err != nil {
			return nil, err
		}
		if a.TransactionID != txID {
			return nil, apperr.New(apperr.NotOwned, "allocation %d does not belong to transaction %d", editingAllocationID, txID)
		}
		editingDebtID = a.DebtID
		editingOld = a.Covered
	}

	cands, err := s.store.ListDebtCandidates(ctx, txn.ToPersonID)
	if err != nil {
		return nil, err
	}
	for i := range cands {
		if editingDebtID != 0 && cands[i].DebtID == editingDebtID {
			cands[i].EditableRemaining = cands[i].Remaining.Add(editingOld)
		}
	}
	return cands, nil
}

// assertPersonRule enforces that only the receiving side of a payment can
// settle a debt: debt.PersonID must equal transaction.ToPersonID. The
// from-side is deliberately not accepted.
func assertPersonRule(debt *models.Debt, txn *models.Transaction) error {
	if debt.PersonID != txn.ToPersonID {
		return apperr.New(apperr.AllocationNotAllowed,
			"debt person %d does not match the transaction's receiving person %d",
			debt.PersonID, txn.ToPersonID)
	}
	return nil
}

// checkRemaining validates the requested covered amount against both sides'
// remaining values. debtExcess/txExcess are prior contributions to exclude
// from the coverage sums (zero on create; the old covered amount on update
// for whichever side keeps the same counterpart).
func checkRemaining(ctx context.Context, tx storage.Store, debt *models.Debt, txn *models.Transaction, covered, debtExcess, txExcess decimal.Decimal) error {
	debtTotal := calculator.DebtTotal(debt.Lines)
	debtCovered, err := tx.DebtCovered(ctx, debt.ID)
	if err != nil {
		return err
	}
	debtRemaining := calculator.Remaining(debtTotal, debtCovered.Sub(debtExcess))
	if covered.GreaterThan(debtRemaining) {
		return apperr.New(apperr.OverAllocation,
			"covered amount exceeds debt remaining (remaining: %s)", debtRemaining)
	}

	txCovered, err := tx.TransactionCovered(ctx, txn.ID)
	if err != nil {
		return err
	}
	txRemaining := calculator.Remaining(txn.AmountPaid, txCovered.Sub(txExcess))
	if covered.GreaterThan(txRemaining) {
		return apperr.New(apperr.OverAllocation,
			"covered amount exceeds transaction remaining (remaining: %s)", txRemaining)
	}
	return nil
}
