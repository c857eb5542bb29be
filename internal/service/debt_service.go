package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/calculator"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// DebtService manages the debt aggregate: a header plus one or more priced
// lines. The debt total is always derived from the lines, never stored.
type DebtService struct {
	store storage.Store
}

// NewDebtService creates a DebtService with the given storage backend.
func NewDebtService(store storage.Store) *DebtService {
	return &DebtService{store: store}
}

// Create validates and persists a new debt with its lines.
func (s *DebtService) Create(ctx context.Context, d *models.Debt) (*models.Debt, error) {
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	d.Note = trimNote(d.Note)
	for i := range d.Lines {
		d.Lines[i].Note = trimNote(d.Lines[i].Note)
	}
	if err := s.store.InsertDebt(ctx, d); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.Invalid, "an item may appear on a debt only once")
		}
		return nil, err
	}
	slog.Info("debt created", "debt_id", d.ID, "person_id", d.PersonID, "lines", len(d.Lines))
	return d, nil
}

// Get retrieves a debt header with its lines.
func (s *DebtService) Get(ctx context.Context, id int64) (*models.Debt, error) {
	return fetchDebt(ctx, s.store, id)
}

// Update rewrites the header and replaces the line set. Shrinking the
// derived total below the already-covered amount is rejected, since it
// would leave allocations exceeding the debt.
func (s *DebtService) Update(ctx context.Context, d *models.Debt) (*models.Debt, error) {
	if err := s.validate(ctx, d); err != nil {
		return nil, err
	}
	d.Note = trimNote(d.Note)
	for i := range d.Lines {
		d.Lines[i].Note = trimNote(d.Lines[i].Note)
	}

	err := s.store.InTx(ctx, func(tx storage.Store) error {
		existing, err := fetchDebt(ctx, tx, d.ID)
		if err != nil {
			return err
		}
		if d.RegisteredAt == 0 {
			d.RegisteredAt = existing.RegisteredAt
		}

		if d.PersonID != existing.PersonID {
			n, err := tx.CountAllocationsByDebt(ctx, d.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.New(apperr.AllocationNotAllowed,
					"debt %d has %d allocation(s); the person cannot change while they exist", d.ID, n)
			}
		}

		covered, err := tx.DebtCovered(ctx, d.ID)
		if err != nil {
			return err
		}
		newTotal := calculator.DebtTotal(d.Lines)
		if newTotal.LessThan(covered) {
			return apperr.New(apperr.InvalidAmount,
				"debt total %s cannot drop below the covered amount %s", newTotal, covered)
		}

		if err := tx.UpdateDebt(ctx, d); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return apperr.New(apperr.Invalid, "an item may appear on a debt only once")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("debt updated", "debt_id", d.ID, "lines", len(d.Lines))
	return d, nil
}

// Delete removes a debt. Debts with allocations or attached documents
// cannot be deleted; unlink and detach first.
func (s *DebtService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx storage.Store) error {
		if _, err := fetchDebt(ctx, tx, id); err != nil {
			return err
		}
		n, err := tx.CountAllocationsByDebt(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.New(apperr.AllocationExists,
				"debt %d has %d allocation(s); remove them first", id, n)
		}
		docs, err := tx.CountDocuments(ctx, models.OwnerDebt, id)
		if err != nil {
			return err
		}
		if docs > 0 {
			return apperr.New(apperr.HasAttachments,
				"debt %d has %d attached document(s); detach them first", id, docs)
		}
		return tx.DeleteDebt(ctx, id)
	})
	if err != nil {
		return err
	}
	slog.Info("debt deleted", "debt_id", id)
	return nil
}

// View assembles the full read model for a debt: header, priced lines,
// allocations, and the derived total/covered/remaining figures.
func (s *DebtService) View(ctx context.Context, id int64) (*models.DebtView, error) {
	debt, err := fetchDebt(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.store.ListDebtLineViews(ctx, id)
	if err != nil {
		return nil, err
	}
	allocs, err := s.store.ListAllocationsByDebt(ctx, id)
	if err != nil {
		return nil, err
	}
	covered, err := s.store.DebtCovered(ctx, id)
	if err != nil {
		return nil, err
	}
	total := calculator.DebtTotal(debt.Lines)
	return &models.DebtView{
		Debt:        *debt,
		Lines:       lines,
		Allocations: allocs,
		Total:       total,
		Covered:     covered,
		Remaining:   calculator.DisplayRemaining(total, covered),
	}, nil
}

// OpenDebts returns the project's debts that still have remaining amounts,
// optionally narrowed to a single person (personID 0 means everyone).
func (s *DebtService) OpenDebts(ctx context.Context, projectID, personID int64) ([]models.DebtSummary, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "project not found: %d", projectID)
		}
		return nil, err
	}
	if personID != 0 {
		if _, err := s.store.GetPerson(ctx, personID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperr.New(apperr.NotFound, "person not found: %d", personID)
			}
			return nil, err
		}
	}
	return s.store.ListOpenDebts(ctx, projectID, personID)
}

// ListAll returns every debt summary, newest first.
func (s *DebtService) ListAll(ctx context.Context) ([]models.DebtSummary, error) {
	return s.store.ListDebts(ctx)
}

func (s *DebtService) validate(ctx context.Context, d *models.Debt) error {
	if len(d.Lines) == 0 {
		return apperr.New(apperr.Invalid, "a debt needs at least one line")
	}
	if d.DueDate == "" {
		return apperr.New(apperr.Invalid, "due date is required")
	}

	if _, err := s.store.GetProject(ctx, d.ProjectID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "project not found: %d", d.ProjectID)
		}
		return err
	}
	if _, err := s.store.GetPerson(ctx, d.PersonID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "person not found: %d", d.PersonID)
		}
		return err
	}

	seen := make(map[int64]bool, len(d.Lines))
	for _, l := range d.Lines {
		if seen[l.ItemID] {
			return apperr.New(apperr.Invalid, "item %d appears on more than one line", l.ItemID)
		}
		seen[l.ItemID] = true

		if !calculator.IsValidQuantity(l.Quantity) {
			return apperr.New(apperr.InvalidAmount,
				"quantity must be positive with at most three decimal places")
		}
		if l.UnitPrice.IsNegative() || !calculator.IsWholeAmount(l.UnitPrice) {
			return apperr.New(apperr.InvalidAmount,
				"unit price must be a non-negative whole currency amount")
		}

		if _, err := s.store.GetItem(ctx, l.ItemID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.New(apperr.NotFound, "item not found: %d", l.ItemID)
			}
			return err
		}
		if _, err := s.store.GetUnit(ctx, l.UnitID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.New(apperr.NotFound, "unit not found: %d", l.UnitID)
			}
			return err
		}
	}
	return nil
}
