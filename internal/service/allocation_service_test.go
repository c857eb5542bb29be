package service

import (
	"context"
	"strings"
	"testing"

	"github.com/samantr/randp-backend/internal/apperr"
)

func TestCreateAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "2", "500")       // total 1000
	txID := f.tx(f.bob, f.alice, "TX-1", "600") // 600 to Alice

	a, err := svc.CreateFromDebt(ctx, debtID, txID, dec("600"), "first payment")
	if err != nil {
		t.Fatalf("CreateFromDebt failed: %v", err)
	}
	if a.ID == 0 {
		t.Error("expected allocation ID to be populated")
	}
	if !a.Covered.Equal(dec("600")) {
		t.Errorf("covered = %s, want 600", a.Covered)
	}

	covered, err := f.store.DebtCovered(ctx, debtID)
	if err != nil {
		t.Fatalf("DebtCovered failed: %v", err)
	}
	if !covered.Equal(dec("600")) {
		t.Errorf("debt covered = %s, want 600", covered)
	}
}

func TestCreateAllocation_InvalidAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")
	txID := f.tx(f.bob, f.alice, "TX-1", "1000")

	for _, amount := range []string{"0", "-5", "10.5"} {
		_, err := svc.CreateFromDebt(ctx, debtID, txID, dec(amount), "")
		if !apperr.IsKind(err, apperr.InvalidAmount) {
			t.Errorf("covered %s: got %v, want InvalidAmount", amount, err)
		}
	}
}

func TestCreateAllocation_PersonRule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")

	// Carol is the receiver, not Alice.
	txID := f.tx(f.bob, f.carol, "TX-1", "1000")
	_, err := svc.CreateFromDebt(ctx, debtID, txID, dec("100"), "")
	if !apperr.IsKind(err, apperr.AllocationNotAllowed) {
		t.Fatalf("got %v, want AllocationNotAllowed", err)
	}

	// The paying side never qualifies, even when it is the debt's person.
	txID2 := f.tx(f.alice, f.bob, "TX-2", "1000")
	_, err = svc.CreateFromDebt(ctx, debtID, txID2, dec("100"), "")
	if !apperr.IsKind(err, apperr.AllocationNotAllowed) {
		t.Fatalf("got %v, want AllocationNotAllowed for paying side", err)
	}
}

func TestCreateAllocation_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "2", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "1000")

	if _, err := svc.CreateFromDebt(ctx, debtID, txID, dec("300"), ""); err != nil {
		t.Fatalf("first allocation failed: %v", err)
	}
	_, err := svc.CreateFromDebt(ctx, debtID, txID, dec("100"), "")
	if !apperr.IsKind(err, apperr.DuplicateAllocation) {
		t.Fatalf("got %v, want DuplicateAllocation", err)
	}
}

func TestCreateAllocation_OverDebtRemaining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "1000")

	_, err := svc.CreateFromDebt(ctx, debtID, txID, dec("501"), "")
	if !apperr.IsKind(err, apperr.OverAllocation) {
		t.Fatalf("got %v, want OverAllocation", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should report the remaining amount, got: %v", err)
	}
}

func TestCreateAllocation_OverTransactionRemaining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	// Two debts drain one transaction.
	debt1 := f.debt(f.alice, "1", "700")
	debt2 := f.debt(f.alice, "1", "700")
	txID := f.tx(f.bob, f.alice, "TX-1", "1000")

	if _, err := svc.CreateFromDebt(ctx, debt1, txID, dec("700"), ""); err != nil {
		t.Fatalf("first allocation failed: %v", err)
	}
	_, err := svc.CreateFromDebt(ctx, debt2, txID, dec("400"), "")
	if !apperr.IsKind(err, apperr.OverAllocation) {
		t.Fatalf("got %v, want OverAllocation", err)
	}
	if !strings.Contains(err.Error(), "300") {
		t.Errorf("error should report the remaining 300, got: %v", err)
	}

	// The exact remaining still fits.
	if _, err := svc.CreateFromDebt(ctx, debt2, txID, dec("300"), ""); err != nil {
		t.Fatalf("exact-remaining allocation failed: %v", err)
	}
}

func TestUpdateAllocation_ExcludesOwnContribution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")
	txID := f.tx(f.bob, f.alice, "TX-1", "1000")

	a, err := svc.CreateFromDebt(ctx, debtID, txID, dec("1000"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Fully covered on both sides; editing down must still be possible
	// because the allocation's own 1000 is excluded from the sums.
	updated, err := svc.UpdateFromDebt(ctx, debtID, a.ID, txID, dec("800"), "")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Covered.Equal(dec("800")) {
		t.Errorf("covered = %s, want 800", updated.Covered)
	}

	// Back up to the full amount works too.
	if _, err := svc.UpdateFromDebt(ctx, debtID, a.ID, txID, dec("1000"), ""); err != nil {
		t.Fatalf("update back to full failed: %v", err)
	}

	// One unit past the total does not.
	_, err = svc.UpdateFromDebt(ctx, debtID, a.ID, txID, dec("1001"), "")
	if !apperr.IsKind(err, apperr.OverAllocation) {
		t.Fatalf("got %v, want OverAllocation", err)
	}
}

func TestUpdateAllocation_SwitchTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")
	tx1 := f.tx(f.bob, f.alice, "TX-1", "600")
	tx2 := f.tx(f.carol, f.alice, "TX-2", "500")

	a, err := svc.CreateFromDebt(ctx, debtID, tx1, dec("600"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Moving onto tx2: the old amount is excluded on the debt side but the
	// new transaction's remaining is untouched by it, so 500 fits and 501
	// would exceed the new transaction anyway.
	updated, err := svc.UpdateFromDebt(ctx, debtID, a.ID, tx2, dec("500"), "")
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if updated.TransactionID != tx2 {
		t.Errorf("transaction = %d, want %d", updated.TransactionID, tx2)
	}

	// tx1 is free again.
	covered, err := f.store.TransactionCovered(ctx, tx1)
	if err != nil {
		t.Fatalf("TransactionCovered failed: %v", err)
	}
	if !covered.IsZero() {
		t.Errorf("tx1 covered = %s, want 0", covered)
	}
}

func TestUpdateAllocation_SwitchToLinkedPairRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "2", "500")
	tx1 := f.tx(f.bob, f.alice, "TX-1", "400")
	tx2 := f.tx(f.carol, f.alice, "TX-2", "400")

	if _, err := svc.CreateFromDebt(ctx, debtID, tx1, dec("400"), ""); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	a2, err := svc.CreateFromDebt(ctx, debtID, tx2, dec("400"), "")
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	// Re-pointing the second allocation at tx1 would duplicate the
	// (debt, tx1) pair.
	_, err = svc.UpdateFromDebt(ctx, debtID, a2.ID, tx1, dec("100"), "")
	if !apperr.IsKind(err, apperr.DuplicateAllocation) {
		t.Fatalf("got %v, want DuplicateAllocation", err)
	}

	// Keeping its own pair is not a duplicate.
	if _, err := svc.UpdateFromDebt(ctx, debtID, a2.ID, tx2, dec("100"), ""); err != nil {
		t.Fatalf("self-pair update failed: %v", err)
	}
}

func TestUpdateAllocation_NotOwned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debt1 := f.debt(f.alice, "1", "500")
	debt2 := f.debt(f.alice, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "1000")

	a, err := svc.CreateFromDebt(ctx, debt1, txID, dec("100"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.UpdateFromDebt(ctx, debt2, a.ID, txID, dec("100"), "")
	if !apperr.IsKind(err, apperr.NotOwned) {
		t.Fatalf("got %v, want NotOwned", err)
	}
	err = svc.DeleteFromDebt(ctx, debt2, a.ID)
	if !apperr.IsKind(err, apperr.NotOwned) {
		t.Fatalf("delete: got %v, want NotOwned", err)
	}

	otherTx := f.tx(f.carol, f.alice, "TX-2", "1000")
	_, err = svc.UpdateFromTransaction(ctx, otherTx, a.ID, debt1, dec("100"), "")
	if !apperr.IsKind(err, apperr.NotOwned) {
		t.Fatalf("got %v, want NotOwned via transaction", err)
	}
}

func TestUpdateAllocation_FromTransactionSwitchDebt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debt1 := f.debt(f.alice, "1", "300")
	debt2 := f.debt(f.alice, "1", "300")
	txID := f.tx(f.bob, f.alice, "TX-1", "500")

	a, err := svc.CreateFromTransaction(ctx, txID, debt1, dec("300"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Moving onto debt2: the transaction side excludes the old 300, so the
	// full 300 fits again.
	updated, err := svc.UpdateFromTransaction(ctx, txID, a.ID, debt2, dec("300"), "")
	if err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if updated.DebtID != debt2 {
		t.Errorf("debt = %d, want %d", updated.DebtID, debt2)
	}

	covered, err := f.store.DebtCovered(ctx, debt1)
	if err != nil {
		t.Fatalf("DebtCovered failed: %v", err)
	}
	if !covered.IsZero() {
		t.Errorf("debt1 covered = %s, want 0", covered)
	}
}

func TestDeleteAllocation_FreesCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "500")

	a, err := svc.CreateFromDebt(ctx, debtID, txID, dec("500"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.DeleteFromDebt(ctx, debtID, a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// The pair and the amounts are both free again.
	if _, err := svc.CreateFromDebt(ctx, debtID, txID, dec("500"), ""); err != nil {
		t.Fatalf("re-create after delete failed: %v", err)
	}
}

func TestTransactionCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "1000")
	tx1 := f.tx(f.bob, f.alice, "TX-1", "400")   // will be fully drained
	tx2 := f.tx(f.carol, f.alice, "TX-2", "300") // untouched
	f.tx(f.bob, f.carol, "TX-3", "900")          // different receiver, excluded

	a, err := svc.CreateFromDebt(ctx, debtID, tx1, dec("400"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cands, err := svc.TransactionCandidatesForDebt(ctx, debtID, 0)
	if err != nil {
		t.Fatalf("candidates failed: %v", err)
	}
	if len(cands) != 2 {
		t.Fatalf("got %d candidates, want 2", len(cands))
	}
	byID := map[int64]int{}
	for i, cand := range cands {
		byID[cand.TransactionID] = i
	}
	if _, ok := byID[tx1]; !ok {
		t.Fatal("fully drained transaction should still be listed")
	}
	drained := cands[byID[tx1]]
	if !drained.Remaining.IsZero() || !drained.EditableRemaining.IsZero() {
		t.Errorf("drained: remaining=%s editable=%s, want 0/0",
			drained.Remaining, drained.EditableRemaining)
	}
	open := cands[byID[tx2]]
	if !open.Remaining.Equal(dec("300")) {
		t.Errorf("open remaining = %s, want 300", open.Remaining)
	}

	// Editing the existing allocation adds its old amount back onto its
	// own transaction only.
	cands, err = svc.TransactionCandidatesForDebt(ctx, debtID, a.ID)
	if err != nil {
		t.Fatalf("candidates with editing failed: %v", err)
	}
	for _, cand := range cands {
		switch cand.TransactionID {
		case tx1:
			if !cand.EditableRemaining.Equal(dec("400")) {
				t.Errorf("tx1 editable = %s, want 400", cand.EditableRemaining)
			}
		case tx2:
			if !cand.EditableRemaining.Equal(dec("300")) {
				t.Errorf("tx2 editable = %s, want 300", cand.EditableRemaining)
			}
		}
	}
}

func TestDebtCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debt1 := f.debt(f.alice, "2", "500") // 1000
	f.debt(f.carol, "1", "800")          // other person, excluded
	txID := f.tx(f.bob, f.alice, "TX-1", "600")

	a, err := svc.CreateFromTransaction(ctx, txID, debt1, dec("600"), "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cands, err := svc.DebtCandidatesForTransaction(ctx, txID, a.ID)
	if err != nil {
		t.Fatalf("candidates failed: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	cand := cands[0]
	if cand.DebtID != debt1 {
		t.Fatalf("candidate = %d, want %d", cand.DebtID, debt1)
	}
	if !cand.Total.Equal(dec("1000")) {
		t.Errorf("total = %s, want 1000", cand.Total)
	}
	if !cand.Remaining.Equal(dec("400")) {
		t.Errorf("remaining = %s, want 400", cand.Remaining)
	}
	if !cand.EditableRemaining.Equal(dec("1000")) {
		t.Errorf("editable = %s, want 1000", cand.EditableRemaining)
	}
	if cand.PersonTitle != "Alice" {
		t.Errorf("personTitle = %q, want Alice", cand.PersonTitle)
	}
}

func TestListAllocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "2", "500")
	tx1 := f.tx(f.bob, f.alice, "TX-1", "300")
	tx2 := f.tx(f.carol, f.alice, "TX-2", "300")

	if _, err := svc.CreateFromDebt(ctx, debtID, tx1, dec("300"), ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.CreateFromDebt(ctx, debtID, tx2, dec("200"), ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err := svc.ListByDebt(ctx, debtID)
	if err != nil {
		t.Fatalf("ListByDebt failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d allocations, want 2", len(list))
	}
	// Newest first.
	if list[0].TransactionID != tx2 {
		t.Errorf("first allocation tx = %d, want %d", list[0].TransactionID, tx2)
	}
	if list[0].TransactionCode != "TX-2" {
		t.Errorf("transactionCode = %q, want TX-2", list[0].TransactionCode)
	}

	byTx, err := svc.ListByTransaction(ctx, tx1)
	if err != nil {
		t.Fatalf("ListByTransaction failed: %v", err)
	}
	if len(byTx) != 1 || !byTx[0].Covered.Equal(dec("300")) {
		t.Errorf("unexpected allocations for tx1: %+v", byTx)
	}
}

func TestAllocation_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "500")

	if _, err := svc.CreateFromDebt(ctx, 999, txID, dec("100"), ""); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("missing debt: got %v, want NotFound", err)
	}
	if _, err := svc.CreateFromDebt(ctx, debtID, 999, dec("100"), ""); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("missing transaction: got %v, want NotFound", err)
	}
	if _, err := svc.UpdateFromDebt(ctx, debtID, 999, txID, dec("100"), ""); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("missing allocation: got %v, want NotFound", err)
	}
}
