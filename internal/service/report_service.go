package service

import (
	"context"
	"errors"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/calculator"
	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// ReportService derives read-only views over transactions: per-person
// running ledgers and aggregate balances. Nothing here mutates state.
type ReportService struct {
	store storage.Store
}

// NewReportService creates a ReportService with the given storage backend.
func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store}
}

// Ledger returns the person's transactions in the project, oldest first,
// each row carrying a signed delta and the running balance up to that row.
// from/to bound the due dates when non-empty.
func (s *ReportService) Ledger(ctx context.Context, projectID, personID int64, from, to string) ([]models.LedgerRow, error) {
	if err := s.resolve(ctx, projectID, personID); err != nil {
		return nil, err
	}
	txs, err := s.store.ListLedgerTransactions(ctx, projectID, personID, from, to)
	if err != nil {
		return nil, err
	}
	return calculator.BuildLedger(personID, txs), nil
}

// PersonBalance returns the person's total received, total sent and net
// position within the project.
func (s *ReportService) PersonBalance(ctx context.Context, projectID, personID int64) (*models.PersonBalance, error) {
	if err := s.resolve(ctx, projectID, personID); err != nil {
		return nil, err
	}
	in, err := s.store.SumAmountPaidTo(ctx, projectID, personID)
	if err != nil {
		return nil, err
	}
	out, err := s.store.SumAmountPaidFrom(ctx, projectID, personID)
	if err != nil {
		return nil, err
	}
	return &models.PersonBalance{
		ProjectID: projectID,
		PersonID:  personID,
		TotalIn:   in,
		TotalOut:  out,
		Net:       in.Sub(out),
	}, nil
}

// PairBalance returns the flow between two persons in the project: what A
// paid B, what B paid A, and the net from A's point of view.
func (s *ReportService) PairBalance(ctx context.Context, projectID, fromPersonID, toPersonID int64) (*models.PairBalance, error) {
	if fromPersonID == toPersonID {
		return nil, apperr.New(apperr.Invalid, "pair balance needs two distinct persons")
	}
	if err := s.resolve(ctx, projectID, fromPersonID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPerson(ctx, toPersonID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "person not found: %d", toPersonID)
		}
		return nil, err
	}
	aToB, err := s.store.SumAmountPaidBetween(ctx, projectID, fromPersonID, toPersonID)
	if err != nil {
		return nil, err
	}
	bToA, err := s.store.SumAmountPaidBetween(ctx, projectID, toPersonID, fromPersonID)
	if err != nil {
		return nil, err
	}
	return &models.PairBalance{
		ProjectID:    projectID,
		FromPersonID: fromPersonID,
		ToPersonID:   toPersonID,
		AToB:         aToB,
		BToA:         bToA,
		Net:          aToB.Sub(bToA),
	}, nil
}

func (s *ReportService) resolve(ctx context.Context, projectID, personID int64) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "project not found: %d", projectID)
		}
		return err
	}
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "person not found: %d", personID)
		}
		return err
	}
	return nil
}
