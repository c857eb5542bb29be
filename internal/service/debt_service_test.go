package service

import (
	"context"
	"testing"

	"github.com/samantr/randp-backend/internal/apperr"
	"github.com/samantr/randp-backend/internal/models"
)

func TestCreateDebt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)

	d, err := svc.Create(ctx, &models.Debt{
		ProjectID: f.project,
		PersonID:  f.alice,
		DueDate:   "2025-04-15",
		Note:      "  march delivery  ",
		Lines: []models.DebtLine{
			{ItemID: f.item, UnitID: f.unit, Quantity: dec("2"), UnitPrice: dec("300000")},
			{ItemID: f.item2, UnitID: f.unit, Quantity: dec("1.6"), UnitPrice: dec("250000")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if d.ID == 0 {
		t.Error("expected debt ID to be populated")
	}
	if d.RegisteredAt == 0 {
		t.Error("expected RegisteredAt to be set")
	}
	if d.Note != "march delivery" {
		t.Errorf("note = %q, want trimmed", d.Note)
	}

	view, err := svc.View(ctx, d.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if !view.Total.Equal(dec("1000000")) {
		t.Errorf("total = %s, want 1000000", view.Total)
	}
	if !view.Remaining.Equal(dec("1000000")) {
		t.Errorf("remaining = %s, want 1000000", view.Remaining)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("got %d line views, want 2", len(view.Lines))
	}
	if view.Lines[0].ItemTitle != "Cement" {
		t.Errorf("itemTitle = %q, want Cement", view.Lines[0].ItemTitle)
	}
	if !view.Lines[1].LineTotal.Equal(dec("400000")) {
		t.Errorf("line total = %s, want 400000", view.Lines[1].LineTotal)
	}
}

func TestCreateDebt_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)

	base := func() *models.Debt {
		return &models.Debt{
			ProjectID: f.project,
			PersonID:  f.alice,
			DueDate:   "2025-04-15",
			Lines: []models.DebtLine{
				{ItemID: f.item, UnitID: f.unit, Quantity: dec("1"), UnitPrice: dec("100")},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.Debt)
		want   apperr.Kind
	}{
		{"no lines", func(d *models.Debt) { d.Lines = nil }, apperr.Invalid},
		{"missing due date", func(d *models.Debt) { d.DueDate = "" }, apperr.Invalid},
		{"unknown project", func(d *models.Debt) { d.ProjectID = 999 }, apperr.NotFound},
		{"unknown person", func(d *models.Debt) { d.PersonID = 999 }, apperr.NotFound},
		{"unknown item", func(d *models.Debt) { d.Lines[0].ItemID = 999 }, apperr.NotFound},
		{"unknown unit", func(d *models.Debt) { d.Lines[0].UnitID = 999 }, apperr.NotFound},
		{"zero quantity", func(d *models.Debt) { d.Lines[0].Quantity = dec("0") }, apperr.InvalidAmount},
		{"too many quantity digits", func(d *models.Debt) { d.Lines[0].Quantity = dec("1.0005") }, apperr.InvalidAmount},
		{"negative price", func(d *models.Debt) { d.Lines[0].UnitPrice = dec("-1") }, apperr.InvalidAmount},
		{"fractional price", func(d *models.Debt) { d.Lines[0].UnitPrice = dec("10.5") }, apperr.InvalidAmount},
		{"repeated item", func(d *models.Debt) {
			d.Lines = append(d.Lines, models.DebtLine{
				ItemID: f.item, UnitID: f.unit, Quantity: dec("1"), UnitPrice: dec("50"),
			})
		}, apperr.Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.mutate(d)
			_, err := svc.Create(ctx, d)
			if !apperr.IsKind(err, tt.want) {
				t.Errorf("got %v, want kind %s", err, tt.want)
			}
		})
	}
}

func TestUpdateDebt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)

	debtID := f.debt(f.alice, "2", "500") // total 1000

	updated, err := svc.Update(ctx, &models.Debt{
		ID:        debtID,
		ProjectID: f.project,
		PersonID:  f.alice,
		DueDate:   "2025-05-01",
		Lines: []models.DebtLine{
			{ItemID: f.item, UnitID: f.unit, Quantity: dec("3"), UnitPrice: dec("500")},
		},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.DueDate != "2025-05-01" {
		t.Errorf("dueDate = %q, want 2025-05-01", updated.DueDate)
	}

	got, err := svc.Get(ctx, debtID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Lines) != 1 || !got.Lines[0].Quantity.Equal(dec("3")) {
		t.Errorf("lines not replaced: %+v", got.Lines)
	}
}

func TestUpdateDebt_CannotShrinkBelowCovered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)
	allocSvc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "2", "500") // total 1000
	txID := f.tx(f.bob, f.alice, "TX-1", "800")
	if _, err := allocSvc.CreateFromDebt(ctx, debtID, txID, dec("800"), ""); err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	_, err := svc.Update(ctx, &models.Debt{
		ID:        debtID,
		ProjectID: f.project,
		PersonID:  f.alice,
		DueDate:   "2025-03-01",
		Lines: []models.DebtLine{
			{ItemID: f.item, UnitID: f.unit, Quantity: dec("1"), UnitPrice: dec("500")},
		},
	})
	if !apperr.IsKind(err, apperr.InvalidAmount) {
		t.Fatalf("got %v, want InvalidAmount", err)
	}

	// Shrinking exactly to the covered amount is allowed.
	if _, err := svc.Update(ctx, &models.Debt{
		ID:        debtID,
		ProjectID: f.project,
		PersonID:  f.alice,
		DueDate:   "2025-03-01",
		Lines: []models.DebtLine{
			{ItemID: f.item, UnitID: f.unit, Quantity: dec("1"), UnitPrice: dec("800")},
		},
	}); err != nil {
		t.Fatalf("shrink-to-covered failed: %v", err)
	}
}

func TestUpdateDebt_CannotChangePersonWithAllocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)
	allocSvc := NewAllocationService(f.store)

	debtID := f.debt(f.alice, "2", "500") // total 1000
	txID := f.tx(f.bob, f.alice, "TX-1", "800")
	a, err := allocSvc.CreateFromDebt(ctx, debtID, txID, dec("400"), "")
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	reassigned := &models.Debt{
		ID:        debtID,
		ProjectID: f.project,
		PersonID:  f.carol,
		DueDate:   "2025-03-01",
		Lines: []models.DebtLine{
			{ItemID: f.item, UnitID: f.unit, Quantity: dec("2"), UnitPrice: dec("500")},
		},
	}
	if _, err := svc.Update(ctx, reassigned); !apperr.IsKind(err, apperr.AllocationNotAllowed) {
		t.Fatalf("got %v, want AllocationNotAllowed", err)
	}

	// The existing link still pairs Alice's debt with her payment.
	got, err := f.store.GetDebt(ctx, debtID)
	if err != nil {
		t.Fatalf("GetDebt failed: %v", err)
	}
	if got.PersonID != f.alice {
		t.Fatalf("debt person = %d, want %d", got.PersonID, f.alice)
	}

	// Once the link is removed the debt may move to Carol.
	if err := allocSvc.DeleteFromDebt(ctx, debtID, a.ID); err != nil {
		t.Fatalf("allocation delete failed: %v", err)
	}
	if _, err := svc.Update(ctx, reassigned); err != nil {
		t.Fatalf("update after unlink failed: %v", err)
	}
}

func TestDeleteDebt_Blocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)
	allocSvc := NewAllocationService(f.store)
	docSvc := NewDocumentService(f.store)

	debtID := f.debt(f.alice, "1", "500")
	txID := f.tx(f.bob, f.alice, "TX-1", "500")
	a, err := allocSvc.CreateFromDebt(ctx, debtID, txID, dec("200"), "")
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	if err := svc.Delete(ctx, debtID); !apperr.IsKind(err, apperr.AllocationExists) {
		t.Fatalf("got %v, want AllocationExists", err)
	}

	if err := allocSvc.DeleteFromDebt(ctx, debtID, a.ID); err != nil {
		t.Fatalf("allocation delete failed: %v", err)
	}
	doc, err := docSvc.Attach(ctx, &models.Document{
		OwnerType: models.OwnerDebt,
		OwnerID:   debtID,
		FileName:  "invoice.pdf",
	})
	if err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	if err := svc.Delete(ctx, debtID); !apperr.IsKind(err, apperr.HasAttachments) {
		t.Fatalf("got %v, want HasAttachments", err)
	}

	if err := docSvc.Detach(ctx, models.OwnerDebt, debtID, doc.ID); err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if err := svc.Delete(ctx, debtID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, debtID); !apperr.IsKind(err, apperr.NotFound) {
		t.Fatalf("got %v, want NotFound after delete", err)
	}
}

func TestOpenDebts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)
	allocSvc := NewAllocationService(f.store)

	settled := f.debt(f.alice, "1", "500")
	open1 := f.debt(f.alice, "1", "700")
	open2 := f.debt(f.carol, "1", "900")

	txID := f.tx(f.bob, f.alice, "TX-1", "500")
	if _, err := allocSvc.CreateFromDebt(ctx, settled, txID, dec("500"), ""); err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	all, err := svc.OpenDebts(ctx, f.project, 0)
	if err != nil {
		t.Fatalf("OpenDebts failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d open debts, want 2", len(all))
	}
	// Newest registration first.
	if all[0].DebtID != open2 || all[1].DebtID != open1 {
		t.Errorf("order = [%d %d], want [%d %d]", all[0].DebtID, all[1].DebtID, open2, open1)
	}

	alices, err := svc.OpenDebts(ctx, f.project, f.alice)
	if err != nil {
		t.Fatalf("OpenDebts by person failed: %v", err)
	}
	if len(alices) != 1 || alices[0].DebtID != open1 {
		t.Errorf("unexpected person-filtered result: %+v", alices)
	}
	if !alices[0].Remaining.Equal(dec("700")) {
		t.Errorf("remaining = %s, want 700", alices[0].Remaining)
	}

	if _, err := svc.OpenDebts(ctx, 999, 0); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("got %v, want NotFound for unknown project", err)
	}
}

func TestListDebts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewDebtService(f.store)

	first := f.debt(f.alice, "1", "100")
	second := f.debt(f.carol, "1", "200")

	list, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d debts, want 2", len(list))
	}
	if list[0].DebtID != second || list[1].DebtID != first {
		t.Errorf("order = [%d %d], want newest first", list[0].DebtID, list[1].DebtID)
	}
}
