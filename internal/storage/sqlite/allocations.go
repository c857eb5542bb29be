package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

// InsertAllocation persists a new allocation link.
func (s *SQLiteStore) InsertAllocation(ctx context.Context, a *models.Allocation) error {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO allocations (debt_id, transaction_id, covered_amount, note) VALUES (?, ?, ?, ?)",
		a.DebtID, a.TransactionID, moneyInt(a.Covered), noteArg(a.Note),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert allocation: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read allocation id: %w", err)
	}
	return nil
}

// GetAllocation retrieves an allocation by ID.
func (s *SQLiteStore) GetAllocation(ctx context.Context, id int64) (*models.Allocation, error) {
	a := &models.Allocation{}
	var covered int64
	var note sql.NullString
	err := s.q.QueryRowContext(ctx,
		"SELECT id, debt_id, transaction_id, covered_amount, note FROM allocations WHERE id = ?",
		id,
	).Scan(&a.ID, &a.DebtID, &a.TransactionID, &covered, &note)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	a.Covered = money(covered)
	a.Note = noteString(note)
	return a, nil
}

// UpdateAllocation rewrites an allocation in place.
func (s *SQLiteStore) UpdateAllocation(ctx context.Context, a *models.Allocation) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE allocations SET debt_id = ?, transaction_id = ?, covered_amount = ?, note = ? WHERE id = ?",
		a.DebtID, a.TransactionID, moneyInt(a.Covered), noteArg(a.Note), a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check allocation update: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteAllocation removes an allocation link.
func (s *SQLiteStore) DeleteAllocation(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM allocations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check allocation delete: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AllocationExists reports whether the (debt, transaction) pair is already
// linked.
func (s *SQLiteStore) AllocationExists(ctx context.Context, debtID, txID int64) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx,
		"SELECT 1 FROM allocations WHERE debt_id = ? AND transaction_id = ?",
		debtID, txID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check allocation existence: %w", err)
	}
	return true, nil
}

const allocationDetailQuery = `
SELECT
    a.id, a.debt_id, a.transaction_id, a.covered_amount, a.note,
    t.code, t.registered_at, t.amount_paid
FROM allocations a
JOIN transactions t ON t.id = a.transaction_id
`

// ListAllocationsByDebt returns the debt's allocations, newest first.
func (s *SQLiteStore) ListAllocationsByDebt(ctx context.Context, debtID int64) ([]models.AllocationDetail, error) {
	return s.queryAllocationDetails(ctx,
		allocationDetailQuery+"WHERE a.debt_id = ? ORDER BY a.id DESC", debtID)
}

// ListAllocationsByTransaction returns the transaction's allocations, newest
// first.
func (s *SQLiteStore) ListAllocationsByTransaction(ctx context.Context, txID int64) ([]models.AllocationDetail, error) {
	return s.queryAllocationDetails(ctx,
		allocationDetailQuery+"WHERE a.transaction_id = ? ORDER BY a.id DESC", txID)
}

func (s *SQLiteStore) queryAllocationDetails(ctx context.Context, query string, args ...any) ([]models.AllocationDetail, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var out []models.AllocationDetail
	for rows.Next() {
		var d models.AllocationDetail
		var covered, txAmount int64
		var note sql.NullString
		if err := rows.Scan(&d.ID, &d.DebtID, &d.TransactionID, &covered, &note,
			&d.TransactionCode, &d.TransactionRegisteredAt, &txAmount); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		d.Covered = money(covered)
		d.Note = noteString(note)
		d.TransactionAmount = money(txAmount)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocations: %w", err)
	}
	return out, nil
}

// ListTransactionCandidates returns every transaction received by the person
// with its allocated sum, including fully allocated ones.
func (s *SQLiteStore) ListTransactionCandidates(ctx context.Context, personID int64) ([]models.TransactionCandidate, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT
    t.id, t.code, t.registered_at, t.amount_paid,
    COALESCE(a.covered, 0) AS allocated
FROM transactions t
LEFT JOIN (
    SELECT transaction_id, COALESCE(SUM(covered_amount), 0) AS covered
    FROM allocations
    GROUP BY transaction_id
) a ON a.transaction_id = t.id
WHERE t.to_person_id = ?
ORDER BY t.registered_at DESC, t.id DESC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transaction candidates: %w", err)
	}
	defer rows.Close()

	var out []models.TransactionCandidate
	for rows.Next() {
		var c models.TransactionCandidate
		var amount, allocated int64
		if err := rows.Scan(&c.TransactionID, &c.Code, &c.RegisteredAt, &amount, &allocated); err != nil {
			return nil, fmt.Errorf("failed to scan transaction candidate: %w", err)
		}
		c.AmountPaid = money(amount)
		c.Allocated = money(allocated)
		c.Remaining = c.AmountPaid.Sub(c.Allocated)
		c.EditableRemaining = c.Remaining
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction candidates: %w", err)
	}
	return out, nil
}

// ListDebtCandidates returns every debt owed by the person with its derived
// total and allocated sum, including fully covered ones.
func (s *SQLiteStore) ListDebtCandidates(ctx context.Context, personID int64) ([]models.DebtCandidate, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT
    d.id,
    CASE WHEN p.is_legal = 1 THEN COALESCE(p.company_name, '')
         ELSE TRIM(COALESCE(p.name, '') || ' ' || COALESCE(p.last_name, ''))
    END AS person_title,
    d.registered_at,
    COALESCE(SUM(`+lineTotalExpr+`), 0) AS total_amount,
    COALESCE(a.covered, 0) AS allocated
FROM debts d
JOIN persons p ON p.id = d.person_id
LEFT JOIN debt_lines dl ON dl.debt_id = d.id
LEFT JOIN (
    SELECT debt_id, COALESCE(SUM(covered_amount), 0) AS covered
    FROM allocations
    GROUP BY debt_id
) a ON a.debt_id = d.id
WHERE d.person_id = ?
GROUP BY d.id, person_title, d.registered_at, a.covered
ORDER BY d.registered_at DESC, d.id DESC`,
		personID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debt candidates: %w", err)
	}
	defer rows.Close()

	var out []models.DebtCandidate
	for rows.Next() {
		var c models.DebtCandidate
		var total, allocated int64
		if err := rows.Scan(&c.DebtID, &c.PersonTitle, &c.RegisteredAt, &total, &allocated); err != nil {
			return nil, fmt.Errorf("failed to scan debt candidate: %w", err)
		}
		c.Total = money(total)
		c.Allocated = money(allocated)
		c.Remaining = c.Total.Sub(c.Allocated)
		c.EditableRemaining = c.Remaining
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debt candidates: %w", err)
	}
	return out, nil
}

// CountAllocationsByDebt returns the number of allocations on the debt.
func (s *SQLiteStore) CountAllocationsByDebt(ctx context.Context, debtID int64) (int, error) {
	return s.countAllocations(ctx, "SELECT COUNT(1) FROM allocations WHERE debt_id = ?", debtID)
}

// CountAllocationsByTransaction returns the number of allocations on the
// transaction.
func (s *SQLiteStore) CountAllocationsByTransaction(ctx context.Context, txID int64) (int, error) {
	return s.countAllocations(ctx, "SELECT COUNT(1) FROM allocations WHERE transaction_id = ?", txID)
}

func (s *SQLiteStore) countAllocations(ctx context.Context, query string, id int64) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count allocations: %w", err)
	}
	return n, nil
}
