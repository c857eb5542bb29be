package service

import (
	"context"
	"testing"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
)

func TestCreateTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)

	tx, err := svc.Create(ctx, &models.Transaction{
		ProjectID:    f.project,
		FromPersonID: f.bob,
		ToPersonID:   f.alice,
		Code:         "  chk-100  ",
		DueDate:      "2025-03-01",
		AmountPaid:   dec("250000"),
		PaymentType:  "chk",
		TxType:       "exp",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tx.ID == 0 {
		t.Error("expected transaction ID to be populated")
	}
	if tx.Code != "chk-100" {
		t.Errorf("code = %q, want trimmed", tx.Code)
	}
	// Type codes are normalized to uppercase.
	if tx.PaymentType != models.PaymentCheck {
		t.Errorf("paymentType = %q, want %q", tx.PaymentType, models.PaymentCheck)
	}
	if tx.TxType != models.TxTypeExpense {
		t.Errorf("txType = %q, want %q", tx.TxType, models.TxTypeExpense)
	}

	detail, err := svc.Get(ctx, tx.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !detail.Allocated.IsZero() {
		t.Errorf("allocated = %s, want 0", detail.Allocated)
	}
	if !detail.Remaining.Equal(dec("250000")) {
		t.Errorf("remaining = %s, want 250000", detail.Remaining)
	}
}

func TestCreateTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)

	base := func() *models.Transaction {
		return &models.Transaction{
			ProjectID:    f.project,
			FromPersonID: f.bob,
			ToPersonID:   f.alice,
			Code:         "TX-V",
			DueDate:      "2025-03-01",
			AmountPaid:   dec("100"),
			PaymentType:  models.PaymentCash,
			TxType:       models.TxTypeExpense,
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.Transaction)
		want   apperr.Kind
	}{
		{"missing code", func(tx *models.Transaction) { tx.Code = "  " }, apperr.Invalid},
		{"missing due date", func(tx *models.Transaction) { tx.DueDate = "" }, apperr.Invalid},
		{"same sender and receiver", func(tx *models.Transaction) { tx.ToPersonID = f.bob }, apperr.Invalid},
		{"unknown payment type", func(tx *models.Transaction) { tx.PaymentType = "XYZ" }, apperr.Invalid},
		{"unknown tx type", func(tx *models.Transaction) { tx.TxType = "ABC" }, apperr.Invalid},
		{"zero amount", func(tx *models.Transaction) { tx.AmountPaid = dec("0") }, apperr.InvalidAmount},
		{"fractional amount", func(tx *models.Transaction) { tx.AmountPaid = dec("99.5") }, apperr.InvalidAmount},
		{"unknown project", func(tx *models.Transaction) { tx.ProjectID = 999 }, apperr.NotFound},
		{"unknown sender", func(tx *models.Transaction) { tx.FromPersonID = 999 }, apperr.NotFound},
		{"unknown receiver", func(tx *models.Transaction) { tx.ToPersonID = 999 }, apperr.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := base()
			tt.mutate(tx)
			_, err := svc.Create(ctx, tx)
			if !apperr.IsKind(err, tt.want) {
				t.Errorf("got %v, want kind %s", err, tt.want)
			}
		})
	}
}

func TestTransactionCode_Unique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)

	first := f.tx(f.bob, f.alice, "TX-1", "100")
	f.tx(f.carol, f.alice, "TX-2", "100")

	_, err := svc.Create(ctx, &models.Transaction{
		ProjectID:    f.project,
		FromPersonID: f.bob,
		ToPersonID:   f.carol,
		Code:         "TX-1",
		DueDate:      "2025-03-01",
		AmountPaid:   dec("50"),
		PaymentType:  models.PaymentCash,
		TxType:       models.TxTypeOther,
	})
	if !apperr.IsKind(err, apperr.Conflict) {
		t.Fatalf("got %v, want Conflict", err)
	}

	// An update keeping its own code is fine; taking another's is not.
	existing, err := f.store.GetTransaction(ctx, first)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if _, err := svc.Update(ctx, existing); err != nil {
		t.Fatalf("self-code update failed: %v", err)
	}
	existing.Code = "TX-2"
	if _, err := svc.Update(ctx, existing); !apperr.IsKind(err, apperr.Conflict) {
		t.Fatalf("got %v, want Conflict on stolen code", err)
	}
}

func TestUpdateTransaction_CannotShrinkBelowAllocated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)
	allocSvc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")
	txID := f.tx(f.bob, f.alice, "TX-1", "800")
	if _, err := allocSvc.CreateFromDebt(ctx, debtID, txID, dec("600"), ""); err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	tx, err := f.store.GetTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	tx.AmountPaid = dec("500")
	if _, err := svc.Update(ctx, tx); !apperr.IsKind(err, apperr.InvalidAmount) {
		t.Fatalf("got %v, want InvalidAmount", err)
	}

	tx.AmountPaid = dec("600")
	if _, err := svc.Update(ctx, tx); err != nil {
		t.Fatalf("shrink-to-allocated failed: %v", err)
	}
}

func TestUpdateTransaction_CannotChangeReceiverWithAllocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)
	allocSvc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")
	txID := f.tx(f.bob, f.alice, "TX-1", "800")
	a, err := allocSvc.CreateFromDebt(ctx, debtID, txID, dec("600"), "")
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	tx, err := f.store.GetTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	tx.ToPersonID = f.carol
	if _, err := svc.Update(ctx, tx); !apperr.IsKind(err, apperr.AllocationNotAllowed) {
		t.Fatalf("got %v, want AllocationNotAllowed", err)
	}

	// Changing the sender is fine; the person rule only binds the receiver.
	tx.ToPersonID = f.alice
	tx.FromPersonID = f.carol
	if _, err := svc.Update(ctx, tx); err != nil {
		t.Fatalf("sender change failed: %v", err)
	}

	// Once the link is removed the receiver may change.
	if err := allocSvc.DeleteFromTransaction(ctx, txID, a.ID); err != nil {
		t.Fatalf("allocation delete failed: %v", err)
	}
	tx.ToPersonID = f.bob
	tx.FromPersonID = f.carol
	if _, err := svc.Update(ctx, tx); err != nil {
		t.Fatalf("receiver change after unlink failed: %v", err)
	}
}

func TestDeleteTransaction_Blocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)
	allocSvc := NewAllocationService(f.store)
	docSvc := NewDocumentService(f.store)

	debtID := f.debt(f.alice, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "500")
	a, err := allocSvc.CreateFromDebt(ctx, debtID, txID, dec("200"), "")
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	if err := svc.Delete(ctx, txID); !apperr.IsKind(err, apperr.AllocationExists) {
		t.Fatalf("got %v, want AllocationExists", err)
	}
	if err := allocSvc.DeleteFromTransaction(ctx, txID, a.ID); err != nil {
		t.Fatalf("allocation delete failed: %v", err)
	}

	doc, err := docSvc.Attach(ctx, &models.Document{
		OwnerType: models.OwnerTransaction,
		OwnerID:   txID,
		FileName:  "receipt.jpg",
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := svc.Delete(ctx, txID); !apperr.IsKind(err, apperr.HasAttachments) {
		t.Fatalf("got %v, want HasAttachments", err)
	}

	if err := docSvc.Detach(ctx, models.OwnerTransaction, txID, doc.ID); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if err := svc.Delete(ctx, txID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestListTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewTransactionService(f.store)
	allocSvc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "400")
	tx1 := f.tx(f.bob, f.alice, "TX-1", "400")
	tx2 := f.tx(f.carol, f.bob, "TX-2", "900")
	if _, err := allocSvc.CreateFromDebt(ctx, debtID, tx1, dec("300"), ""); err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	list, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d transactions, want 2", len(list))
	}
	if list[0].ID != tx2 {
		t.Errorf("first = %d, want newest %d", list[0].ID, tx2)
	}
	for _, d := range list {
		if d.ID == tx1 {
			if !d.Allocated.Equal(dec("300")) || !d.Remaining.Equal(dec("100")) {
				t.Errorf("tx1 allocated/remaining = %s/%s, want 300/100", d.Allocated, d.Remaining)
			}
		}
	}
}
