package service

import (
	"context"
	"testing"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
)

func TestDetachDocument_OwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDocumentService(f.store)

	debtID := f.debt(f.alice, "1", "500")
	otherDebtID := f.debt(f.bob, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "500")

	doc, err := svc.Attach(ctx, &models.Document{
		OwnerType: models.OwnerDebt,
		OwnerID:   debtID,
		FileName:  "invoice.pdf",
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	// The document hangs off the first debt; other owners cannot detach it.
	if err := svc.Detach(ctx, models.OwnerDebt, otherDebtID, doc.ID); !apperr.IsKind(err, apperr.NotOwned) {
		t.Fatalf("got %v, want NotOwned", err)
	}
	if err := svc.Detach(ctx, models.OwnerTransaction, txID, doc.ID); !apperr.IsKind(err, apperr.NotOwned) {
		t.Fatalf("got %v, want NotOwned", err)
	}

	list, err := svc.List(ctx, models.OwnerDebt, debtID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d documents, want 1", len(list))
	}

	if err := svc.Detach(ctx, models.OwnerDebt, debtID, doc.ID); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if err := svc.Detach(ctx, models.OwnerDebt, debtID, doc.ID); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}
