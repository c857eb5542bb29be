// Package service implements the reconciliation core: the allocation engine,
// debt and transaction lifecycles, ledger/balance reporting and the auth
// gate. Services depend on storage interfaces only; transport lives above.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/calculator"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// fetchDebt resolves a debt or reports NotFound.
func fetchDebt(ctx context.Context, st storage.DebtStore, id int64) (*models.Debt, error) {
	d, err := st.GetDebt(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "debt not found: %d", id)
	}
	return d, err
}

// fetchTransaction resolves a transaction or reports NotFound.
func fetchTransaction(ctx context.Context, st storage.TransactionStore, id int64) (*models.Transaction, error) {
	t, err := st.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "transaction not found: %d", id)
	}
	return t, err
}

// fetchAllocation resolves an allocation or reports NotFound.
func fetchAllocation(ctx context.Context, st storage.AllocationStore, id int64) (*models.Allocation, error) {
	a, err := st.GetAllocation(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "allocation not found: %d", id)
	}
	return a, err
}

// validateCoveredAmount enforces positive whole-unit covered amounts.
func validateCoveredAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperr.New(apperr.InvalidAmount, "covered amount must be greater than zero")
	}
	if !calculator.IsWholeAmount(d) {
		return apperr.New(apperr.InvalidAmount, "covered amount must be in whole currency units")
	}
	return nil
}

// trimNote normalizes an optional free-text note.
func trimNote(s string) string {
	return strings.TrimSpace(s)
}
