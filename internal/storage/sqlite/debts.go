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

// debtSummaryQuery derives total/covered/remaining per debt. Covered sums
// come from a grouped subquery so debts without allocations still appear.
const debtSummaryQuery = `
SELECT
    d.id, d.project_id, d.person_id, d.due_date, d.registered_at,
    COALESCE(SUM(` + lineTotalExpr + `), 0) AS total_amount,
    COALESCE(a.covered, 0) AS covered_amount
FROM debts d
JOIN debt_lines dl ON dl.debt_id = d.id
LEFT JOIN (
    SELECT debt_id, COALESCE(SUM(covered_amount), 0) AS covered
    FROM allocations
    GROUP BY debt_id
) a ON a.debt_id = d.id
`

// InsertDebt persists a new debt header and its lines.
func (s *SQLiteStore) InsertDebt(ctx context.Context, d *models.Debt) error {
	return s.InTx(ctx, func(txStore storage.Store) error {
		ts := txStore.(*SQLiteStore)

		if d.RegisteredAt == 0 {
			d.RegisteredAt = time.Now().Unix()
		}

		res, err := ts.q.ExecContext(ctx,
			"INSERT INTO debts (project_id, person_id, due_date, registered_at, note) VALUES (?, ?, ?, ?, ?)",
			d.ProjectID, d.PersonID, d.DueDate, d.RegisteredAt, noteArg(d.Note),
		)
		if err != nil {
			return fmt.Errorf("failed to insert debt: %w", err)
		}
		d.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read debt id: %w", err)
		}

		return ts.insertLines(ctx, d)
	})
}

func (s *SQLiteStore) insertLines(ctx context.Context, d *models.Debt) error {
	for i := range d.Lines {
		line := &d.Lines[i]
		line.DebtID = d.ID
		res, err := s.q.ExecContext(ctx,
			"INSERT INTO debt_lines (debt_id, item_id, unit_id, qty_milli, unit_price, note) VALUES (?, ?, ?, ?, ?, ?)",
			d.ID, line.ItemID, line.UnitID, quantityMilli(line.Quantity), moneyInt(line.UnitPrice), noteArg(line.Note),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicate
			}
			return fmt.Errorf("failed to insert debt line: %w", err)
		}
		line.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read debt line id: %w", err)
		}
	}
	return nil
}

// GetDebt retrieves a debt header with its lines.
func (s *SQLiteStore) GetDebt(ctx context.Context, id int64) (*models.Debt, error) {
	d := &models.Debt{}
	var note sql.NullString
	err := s.q.QueryRowContext(ctx,
		"SELECT id, project_id, person_id, due_date, registered_at, note FROM debts WHERE id = ?",
		id,
	).Scan(&d.ID, &d.ProjectID, &d.PersonID, &d.DueDate, &d.RegisteredAt, &note)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	d.Note = noteString(note)

	rows, err := s.q.QueryContext(ctx,
		"SELECT id, item_id, unit_id, qty_milli, unit_price, note FROM debt_lines WHERE debt_id = ? ORDER BY id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get debt lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := models.DebtLine{DebtID: id}
		var qtyMilli, unitPrice int64
		var lineNote sql.NullString
		if err := rows.Scan(&line.ID, &line.ItemID, &line.UnitID, &qtyMilli, &unitPrice, &lineNote); err != nil {
			return nil, fmt.Errorf("failed to scan debt line: %w", err)
		}
		line.Quantity = quantity(qtyMilli)
		line.UnitPrice = money(unitPrice)
		line.Note = noteString(lineNote)
		d.Lines = append(d.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debt lines: %w", err)
	}

	return d, nil
}

// UpdateDebt rewrites the header and fully replaces the line set.
func (s *SQLiteStore) UpdateDebt(ctx context.Context, d *models.Debt) error {
	return s.InTx(ctx, func(txStore storage.Store) error {
		ts := txStore.(*SQLiteStore)

		res, err := ts.q.ExecContext(ctx,
			"UPDATE debts SET project_id = ?, person_id = ?, due_date = ?, registered_at = ?, note = ? WHERE id = ?",
			d.ProjectID, d.PersonID, d.DueDate, d.RegisteredAt, noteArg(d.Note), d.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update debt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check debt update: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}

		// Full replacement: lines are deleted then reinserted.
		if _, err := ts.q.ExecContext(ctx, "DELETE FROM debt_lines WHERE debt_id = ?", d.ID); err != nil {
			return fmt.Errorf("failed to clear debt lines: %w", err)
		}
		return ts.insertLines(ctx, d)
	})
}

// DeleteDebt removes the lines then the header.
func (s *SQLiteStore) DeleteDebt(ctx context.Context, id int64) error {
	return s.InTx(ctx, func(txStore storage.Store) error {
		ts := txStore.(*SQLiteStore)

		if _, err := ts.q.ExecContext(ctx, "DELETE FROM debt_lines WHERE debt_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete debt lines: %w", err)
		}
		res, err := ts.q.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete debt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check debt delete: %w", err)
		}
		if n == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

// ListDebts returns every debt with its derived amounts.
func (s *SQLiteStore) ListDebts(ctx context.Context) ([]models.DebtSummary, error) {
	query := debtSummaryQuery + `
GROUP BY d.id, d.project_id, d.person_id, d.due_date, d.registered_at, a.covered
ORDER BY d.registered_at DESC, d.id DESC`

	return s.queryDebtSummaries(ctx, query)
}

// ListOpenDebts returns the project's debts whose remaining amount is
// positive, optionally filtered by person.
func (s *SQLiteStore) ListOpenDebts(ctx context.Context, projectID, personID int64) ([]models.DebtSummary, error) {
	query := debtSummaryQuery + `
WHERE d.project_id = ?
  AND (? = 0 OR d.person_id = ?)
GROUP BY d.id, d.project_id, d.person_id, d.due_date, d.registered_at, a.covered
HAVING COALESCE(SUM(` + lineTotalExpr + `), 0) - COALESCE(a.covered, 0) > 0
ORDER BY d.registered_at DESC, d.id DESC`

	return s.queryDebtSummaries(ctx, query, projectID, personID, personID)
}

func (s *SQLiteStore) queryDebtSummaries(ctx context.Context, query string, args ...any) ([]models.DebtSummary, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var out []models.DebtSummary
	for rows.Next() {
		var sum models.DebtSummary
		var total, covered int64
		if err := rows.Scan(&sum.DebtID, &sum.ProjectID, &sum.PersonID, &sum.DueDate, &sum.RegisteredAt, &total, &covered); err != nil {
			return nil, fmt.Errorf("failed to scan debt summary: %w", err)
		}
		sum.Total = money(total)
		sum.Covered = money(covered)
		sum.Remaining = sum.Total.Sub(sum.Covered)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debt summaries: %w", err)
	}
	return out, nil
}

// ListDebtLineViews returns the debt's lines joined with item and unit titles.
func (s *SQLiteStore) ListDebtLineViews(ctx context.Context, debtID int64) ([]models.DebtLineView, error) {
	rows, err := s.q.QueryContext(ctx, `
SELECT
    dl.id, dl.item_id, i.title, dl.unit_id, u.title,
    dl.qty_milli, dl.unit_price, `+lineTotalExpr+`, dl.note
FROM debt_lines dl
JOIN items i ON i.id = dl.item_id
JOIN units u ON u.id = dl.unit_id
WHERE dl.debt_id = ?
ORDER BY dl.id`,
		debtID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debt lines: %w", err)
	}
	defer rows.Close()

	var out []models.DebtLineView
	for rows.Next() {
		var v models.DebtLineView
		var qtyMilli, unitPrice, lineTotal int64
		var note sql.NullString
		if err := rows.Scan(&v.ID, &v.ItemID, &v.ItemTitle, &v.UnitID, &v.UnitTitle, &qtyMilli, &unitPrice, &lineTotal, &note); err != nil {
			return nil, fmt.Errorf("failed to scan debt line view: %w", err)
		}
		v.Quantity = quantity(qtyMilli)
		v.UnitPrice = money(unitPrice)
		v.LineTotal = money(lineTotal)
		v.Note = noteString(note)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debt line views: %w", err)
	}
	return out, nil
}

// DebtCovered returns the sum of covered amounts over the debt's allocations.
func (s *SQLiteStore) DebtCovered(ctx context.Context, debtID int64) (decimal.Decimal, error) {
	var covered int64
	err := s.q.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(covered_amount), 0) FROM allocations WHERE debt_id = ?",
		debtID,
	).Scan(&covered)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum debt coverage: %w", err)
	}
	return money(covered), nil
}
