package service

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/models"
	"github.com/samantr/randp-backend/internal/storage"
	"github.com/samantr/randp-backend/internal/storage/sqlite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestStore creates a store backed by a temp SQLite file.
func newTestStore(t *testing.T) storage.Store {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "randp-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})
	return store
}

// fixture seeds the master data every scenario needs: a project, three
// persons, an item and a unit.
type fixture struct {
	t     *testing.T
	store storage.Store

	project int64
	alice   int64
	bob     int64
	carol   int64
	item    int64
	item2   int64
	unit    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := newTestStore(t)

	f := &fixture{t: t, store: store}

	project := &models.Project{Title: "Building A"}
	if err := store.CreateProject(ctx, project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	f.project = project.ID

	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"Alice", &f.alice},
		{"Bob", &f.bob},
		{"Carol", &f.carol},
	} {
		person := &models.Person{Name: p.name}
		if err := store.CreatePerson(ctx, person); err != nil {
			t.Fatalf("failed to create person %s: %v", p.name, err)
		}
		*p.dst = person.ID
	}

	item := &models.Item{Title: "Cement"}
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	f.item = item.ID

	item2 := &models.Item{Title: "Rebar"}
	if err := store.CreateItem(ctx, item2); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}
	f.item2 = item2.ID

	unit := &models.Unit{Title: "Bag"}
	if err := store.CreateUnit(ctx, unit); err != nil {
		t.Fatalf("failed to create unit: %v", err)
	}
	f.unit = unit.ID

	return f
}

// debt creates a single-line debt for the person: quantity x unitPrice.
func (f *fixture) debt(personID int64, quantity, unitPrice string) int64 {
	f.t.Helper()
	svc := NewDebtService(f.store)
	d, err := svc.Create(context.Background(), &models.Debt{
		ProjectID: f.project,
		PersonID:  personID,
		DueDate:   "2025-03-01",
		Lines: []models.DebtLine{
			{ItemID: f.item, UnitID: f.unit, Quantity: dec(quantity), UnitPrice: dec(unitPrice)},
		},
	})
	if err != nil {
		f.t.Fatalf("failed to create debt: %v", err)
	}
	return d.ID
}

// tx creates a transaction paying amount from one person to another.
func (f *fixture) tx(fromID, toID int64, code, amount string) int64 {
	f.t.Helper()
	svc := NewTransactionService(f.store)
	t, err := svc.Create(context.Background(), &models.Transaction{
		ProjectID:    f.project,
		FromPersonID: fromID,
		ToPersonID:   toID,
		Code:         code,
		DueDate:      "2025-03-01",
		AmountPaid:   dec(amount),
		PaymentType:  models.PaymentCash,
		TxType:       models.TxTypeExpense,
	})
	if err != nil {
		f.t.Fatalf("failed to create transaction %s: %v", code, err)
	}
	return t.ID
}
