package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
)

const transactionColumns = "id, project_id, from_person_id, to_person_id, code, due_date, amount_paid, payment_type, tx_type, registered_at, note"

func scanTransaction(scan func(dest ...any) error) (*models.Transaction, error) {
	t := &models.Transaction{}
	var amount int64
	var note sql.NullString
	err := scan(&t.ID, &t.ProjectID, &t.FromPersonID, &t.ToPersonID, &t.Code, &t.DueDate,
		&amount, &t.PaymentType, &t.TxType, &t.RegisteredAt, &note)
	if err != nil {
		return nil, err
	}
	t.AmountPaid = money(amount)
	t.Note = noteString(note)
	return t, nil
}

// InsertTransaction persists a new payment record.
func (s *SQLiteStore) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	if t.RegisteredAt == 0 {
		t.RegisteredAt = time.Now().Unix()
	}

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO transactions (project_id, from_person_id, to_person_id, code, due_date, amount_paid, payment_type, tx_type, registered_at, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID, t.FromPersonID, t.ToPersonID, t.Code, t.DueDate,
		moneyInt(t.AmountPaid), t.PaymentType, t.TxType, t.RegisteredAt, noteArg(t.Note),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transaction id: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	row := s.q.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	t, err := scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction rewrites a transaction in place.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE transactions
		 SET project_id = ?, from_person_id = ?, to_person_id = ?, code = ?, due_date = ?,
		     amount_paid = ?, payment_type = ?, tx_type = ?, registered_at = ?, note = ?
		 WHERE id = ?`,
		t.ProjectID, t.FromPersonID, t.ToPersonID, t.Code, t.DueDate,
		moneyInt(t.AmountPaid), t.PaymentType, t.TxType, t.RegisteredAt, noteArg(t.Note), t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check transaction update: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check transaction delete: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListTransactions returns every transaction with its allocated sum.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]models.TransactionDetail, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT
    t.id, t.project_id, t.from_person_id, t.to_person_id, t.code, t.due_date,
    t.amount_paid, t.payment_type, t.tx_type, t.registered_at, t.note,
    COALESCE(a.covered, 0) AS allocated
FROM transactions t
LEFT JOIN (
    SELECT transaction_id, COALESCE(SUM(covered_amount), 0) AS covered
    FROM allocations
    GROUP BY transaction_id
) a ON a.transaction_id = t.id
ORDER BY t.registered_at DESC, t.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []models.TransactionDetail
	for rows.Next() {
		var d models.TransactionDetail
		var amount, allocated int64
		var note sql.NullString
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.FromPersonID, &d.ToPersonID, &d.Code, &d.DueDate,
			&amount, &d.PaymentType, &d.TxType, &d.RegisteredAt, &note, &allocated); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		d.AmountPaid = money(amount)
		d.Note = noteString(note)
		d.Allocated = money(allocated)
		d.Remaining = d.AmountPaid.Sub(d.Allocated)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return out, nil
}

// FindTransactionIDByCode returns the transaction id for a code, 0 if absent.
func (s *SQLiteStore) FindTransactionIDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, "SELECT id FROM transactions WHERE code = ?", code).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up transaction code: %w", err)
	}
	return id, nil
}

// TransactionCovered returns the sum of covered amounts over the
// transaction's allocations.
func (s *SQLiteStore) TransactionCovered(ctx context.Context, txID int64) (decimal.Decimal, error) {
	var covered int64
	err := s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(covered_amount), 0) FROM allocations WHERE transaction_id = ?",
		txID,
	).Scan(&covered)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transaction coverage: %w", err)
	}
	return money(covered), nil
}

// ListLedgerTransactions returns the project's transactions where the person
// is sender or receiver, in chronological order. The optional date bounds
// apply to the due date, in YYYY-MM-DD form.
func (s *SQLiteStore) ListLedgerTransactions(ctx context.Context, projectID, personID int64, from, to string) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
FROM transactions
WHERE project_id = ? AND (from_person_id = ? OR to_person_id = ?)`
	args := []any{projectID, personID, personID}

	if from != "" {
		query += " AND due_date >= ?"
		args = append(args, from)
	}
	if to != "" {
		query += " AND due_date <= ?"
		args = append(args, to)
	}
	query += " ORDER BY registered_at ASC, id ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger transaction: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger transactions: %w", err)
	}
	return out, nil
}

// SumAmountPaidTo sums amounts received by the person in the project.
func (s *SQLiteStore) SumAmountPaidTo(ctx context.Context, projectID, personID int64) (decimal.Decimal, error) {
	return s.sumAmount(ctx,
		"SELECT COALESCE(SUM(amount_paid), 0) FROM transactions WHERE project_id = ? AND to_person_id = ?",
		projectID, personID)
}

// SumAmountPaidFrom sums amounts sent by the person in the project.
func (s *SQLiteStore) SumAmountPaidFrom(ctx context.Context, projectID, personID int64) (decimal.Decimal, error) {
	return s.sumAmount(ctx,
		"SELECT COALESCE(SUM(amount_paid), 0) FROM transactions WHERE project_id = ? AND from_person_id = ?",
		projectID, personID)
}

// SumAmountPaidBetween sums amounts sent from one person to another.
func (s *SQLiteStore) SumAmountPaidBetween(ctx context.Context, projectID, fromPersonID, toPersonID int64) (decimal.Decimal, error) {
	return s.sumAmount(ctx,
		"SELECT COALESCE(SUM(amount_paid), 0) FROM transactions WHERE project_id = ? AND from_person_id = ? AND to_person_id = ?",
		projectID, fromPersonID, toPersonID)
}

func (s *SQLiteStore) sumAmount(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var sum int64
	if err := s.q.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transaction amounts: %w", err)
	}
	return money(sum), nil
}
