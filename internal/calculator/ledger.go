package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/models"
)

// BuildLedger turns a person's transactions into a chronological statement
// with a running balance. Transactions must already be ordered by
// registration time then id ascending; the balance is the prefix sum of
// each row's delta (+amount when the person receives, -amount when the
// person pays). The from != to invariant guarantees a person is never both.
func BuildLedger(personID int64, txs []models.Transaction) []models.LedgerRow {
	rows := make([]models.LedgerRow, 0, len(txs))
	running := decimal.Zero
	for _, t := range txs {
		delta := decimal.Zero
		switch personID {
		case t.ToPersonID:
			delta = t.AmountPaid
		case t.FromPersonID:
			delta = t.AmountPaid.Neg()
		}
		running = running.Add(delta)
		rows = append(rows, models.LedgerRow{
			TransactionID: t.ID,
			RegisteredAt:  t.RegisteredAt,
			Code:          t.Code,
			FromPersonID:  t.FromPersonID,
			ToPersonID:    t.ToPersonID,
			Amount:        t.AmountPaid,
			Delta:         delta,
			Balance:       running,
			Note:          t.Note,
		})
	}
	return rows
}
