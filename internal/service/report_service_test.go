package service

import (
	"context"
	"testing"

	"github.com/samantr/randp-backend/internal/apperr"
)

func TestLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewReportService(f.store)

	f.tx(f.bob, f.alice, "TX-1", "100")   // +100
	f.tx(f.alice, f.carol, "TX-2", "30")  // -30
	f.tx(f.carol, f.alice, "TX-3", "50")  // +50
	f.tx(f.bob, f.carol, "TX-4", "999")   // Alice not involved

	rows, err := svc.Ledger(ctx, f.project, f.alice, "", "")
	if err != nil {
		t.Fatalf("Ledger failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	wantDeltas := []string{"100", "-30", "50"}
	wantBalances := []string{"100", "70", "120"}
	for i, row := range rows {
		if !row.Delta.Equal(dec(wantDeltas[i])) {
			t.Errorf("row %d delta = %s, want %s", i, row.Delta, wantDeltas[i])
		}
		if !row.Balance.Equal(dec(wantBalances[i])) {
			t.Errorf("row %d balance = %s, want %s", i, row.Balance, wantBalances[i])
		}
	}
	if rows[0].Code != "TX-1" {
		t.Errorf("first code = %q, want TX-1 (oldest first)", rows[0].Code)
	}
}

func TestLedger_DateBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewReportService(f.store)
	txSvc := NewTransactionService(f.store)

	for _, tx := range []struct {
		code, due, amount string
	}{
		{"TX-1", "2025-01-10", "100"},
		{"TX-2", "2025-02-10", "200"},
		{"TX-3", "2025-03-10", "300"},
	} {
		tr, err := f.store.GetTransaction(ctx, f.tx(f.bob, f.alice, tx.code, tx.amount))
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		tr.DueDate = tx.due
		if _, err := txSvc.Update(ctx, tr); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	}

	rows, err := svc.Ledger(ctx, f.project, f.alice, "2025-02-01", "2025-02-28")
	if err != nil {
		t.Fatalf("Ledger failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Code != "TX-2" {
		t.Fatalf("unexpected bounded rows: %+v", rows)
	}

	rows, err = svc.Ledger(ctx, f.project, f.alice, "2025-02-01", "")
	if err != nil {
		t.Fatalf("Ledger failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows from open upper bound, want 2", len(rows))
	}
}

func TestPersonBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewReportService(f.store)

	f.tx(f.bob, f.alice, "TX-1", "100")
	f.tx(f.carol, f.alice, "TX-2", "50")
	f.tx(f.alice, f.bob, "TX-3", "30")

	b, err := svc.PersonBalance(ctx, f.project, f.alice)
	if err != nil {
		t.Fatalf("PersonBalance failed: %v", err)
	}
	if !b.TotalIn.Equal(dec("150")) {
		t.Errorf("totalIn = %s, want 150", b.TotalIn)
	}
	if !b.TotalOut.Equal(dec("30")) {
		t.Errorf("totalOut = %s, want 30", b.TotalOut)
	}
	if !b.Net.Equal(dec("120")) {
		t.Errorf("net = %s, want 120", b.Net)
	}

	if _, err := svc.PersonBalance(ctx, f.project, 999); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestPairBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewReportService(f.store)

	f.tx(f.alice, f.bob, "TX-1", "100")
	f.tx(f.alice, f.bob, "TX-2", "40")
	f.tx(f.bob, f.alice, "TX-3", "60")
	f.tx(f.bob, f.carol, "TX-4", "999")

	b, err := svc.PairBalance(ctx, f.project, f.alice, f.bob)
	if err != nil {
		t.Fatalf("PairBalance failed: %v", err)
	}
	if !b.AToB.Equal(dec("140")) {
		t.Errorf("aToB = %s, want 140", b.AToB)
	}
	if !b.BToA.Equal(dec("60")) {
		t.Errorf("bToA = %s, want 60", b.BToA)
	}
	if !b.Net.Equal(dec("80")) {
		t.Errorf("net = %s, want 80", b.Net)
	}

	if _, err := svc.PairBalance(ctx, f.project, f.alice, f.alice); !apperr.IsKind(err, apperr.Invalid) {
		t.Errorf("got %v, want Invalid for identical persons", err)
	}
}
