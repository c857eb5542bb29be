// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/samantr/randp-backend/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a uniqueness
// constraint (allocation pair, transaction code, user email).
var ErrDuplicate = errors.New("duplicate record")

// ErrCycle is returned when reparenting a project would make it its own
// ancestor.
var ErrCycle = errors.New("cycle detected")

// Store is the persistence interface for the reconciliation core. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	DebtStore
	TransactionStore
	AllocationStore
	MasterDataStore
	DocumentStore
	UserStore

	// InTx runs fn against a Store bound to a single database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// Allocation-engine mutations and any check-then-write sequence must go
	// through InTx so validations and writes observe one consistent
	// snapshot. Calling InTx on an already transaction-bound Store joins
	// the existing transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	// Close releases any resources held by the store.
	Close() error
}

// DebtStore persists debt headers and their lines.
type DebtStore interface {
	// InsertDebt persists a new debt header and its lines, populating
	// d.ID and the line IDs.
	InsertDebt(ctx context.Context, d *models.Debt) error

	// GetDebt retrieves a debt header with its lines.
	GetDebt(ctx context.Context, id int64) (*models.Debt, error)

	// UpdateDebt rewrites the header and fully replaces the line set.
	UpdateDebt(ctx context.Context, d *models.Debt) error

	// DeleteDebt removes the lines then the header.
	DeleteDebt(ctx context.Context, id int64) error

	// ListDebts returns every debt with derived total/covered/remaining,
	// ordered by registration time descending then id descending.
	ListDebts(ctx context.Context) ([]models.DebtSummary, error)

	// ListOpenDebts returns the project's debts with remaining > 0,
	// optionally filtered by person (personID 0 means all persons),
	// ordered by registration time descending then id descending.
	ListOpenDebts(ctx context.Context, projectID, personID int64) ([]models.DebtSummary, error)

	// ListDebtLineViews returns the debt's lines joined with item and unit
	// titles, ordered by line id ascending.
	ListDebtLineViews(ctx context.Context, debtID int64) ([]models.DebtLineView, error)

	// DebtCovered returns the sum of covered amounts over the debt's
	// allocations, zero if none.
	DebtCovered(ctx context.Context, debtID int64) (decimal.Decimal, error)
}

// TransactionStore persists payment records.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error

	// ListTransactions returns every transaction annotated with its
	// allocated and remaining amounts, ordered by registration time
	// descending then id descending.
	ListTransactions(ctx context.Context) ([]models.TransactionDetail, error)

	// FindTransactionIDByCode returns the id of the transaction with the
	// given code, or 0 if no such transaction exists.
	FindTransactionIDByCode(ctx context.Context, code string) (int64, error)

	// TransactionCovered returns the sum of covered amounts over the
	// transaction's allocations, zero if none.
	TransactionCovered(ctx context.Context, txID int64) (decimal.Decimal, error)

	// ListLedgerTransactions returns the project's transactions where the
	// person is sender or receiver, optionally bounded by due date
	// (empty string means unbounded), ordered by registration time
	// ascending then id ascending.
	ListLedgerTransactions(ctx context.Context, projectID, personID int64, from, to string) ([]models.Transaction, error)

	// SumAmountPaidTo sums amounts received by the person in the project.
	SumAmountPaidTo(ctx context.Context, projectID, personID int64) (decimal.Decimal, error)

	// SumAmountPaidFrom sums amounts sent by the person in the project.
	SumAmountPaidFrom(ctx context.Context, projectID, personID int64) (decimal.Decimal, error)

	// SumAmountPaidBetween sums amounts sent from one person to another in
	// the project.
	SumAmountPaidBetween(ctx context.Context, projectID, fromPersonID, toPersonID int64) (decimal.Decimal, error)
}

// AllocationStore persists the links between debts and transactions.
type AllocationStore interface {
	// InsertAllocation persists a new allocation, populating a.ID. Returns
	// ErrDuplicate if the (debt, transaction) pair already exists.
	InsertAllocation(ctx context.Context, a *models.Allocation) error

	GetAllocation(ctx context.Context, id int64) (*models.Allocation, error)

	// UpdateAllocation rewrites an allocation in place. Returns
	// ErrDuplicate if the new (debt, transaction) pair collides.
	UpdateAllocation(ctx context.Context, a *models.Allocation) error

	DeleteAllocation(ctx context.Context, id int64) error

	// AllocationExists reports whether an allocation exists for the exact
	// (debt, transaction) pair.
	AllocationExists(ctx context.Context, debtID, txID int64) (bool, error)

	// ListAllocationsByDebt returns the debt's allocations joined with the
	// linked transaction's code, registration time and amount, ordered by
	// allocation id descending.
	ListAllocationsByDebt(ctx context.Context, debtID int64) ([]models.AllocationDetail, error)

	// ListAllocationsByTransaction is the transaction-side counterpart of
	// ListAllocationsByDebt.
	ListAllocationsByTransaction(ctx context.Context, txID int64) ([]models.AllocationDetail, error)

	// ListTransactionCandidates returns every transaction received by the
	// person, each with its allocated sum, ordered by registration time
	// descending then id descending. Rows with zero remaining are
	// included; EditableRemaining is left for the caller to derive.
	ListTransactionCandidates(ctx context.Context, personID int64) ([]models.TransactionCandidate, error)

	// ListDebtCandidates is the debt-side counterpart of
	// ListTransactionCandidates.
	ListDebtCandidates(ctx context.Context, personID int64) ([]models.DebtCandidate, error)

	// CountAllocationsByDebt returns the number of allocations referencing
	// the debt.
	CountAllocationsByDebt(ctx context.Context, debtID int64) (int, error)

	// CountAllocationsByTransaction returns the number of allocations
	// referencing the transaction.
	CountAllocationsByTransaction(ctx context.Context, txID int64) (int, error)
}

// MasterDataStore persists the records the core resolves references against.
type MasterDataStore interface {
	CreatePerson(ctx context.Context, p *models.Person) error
	GetPerson(ctx context.Context, id int64) (*models.Person, error)
	ListPersons(ctx context.Context) ([]models.Person, error)

	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)

	// UpdateProject rewrites a project. Reparenting that would introduce a
	// cycle is rejected.
	UpdateProject(ctx context.Context, p *models.Project) error

	CreateItem(ctx context.Context, i *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)

	CreateUnit(ctx context.Context, u *models.Unit) error
	GetUnit(ctx context.Context, id int64) (*models.Unit, error)
	ListUnits(ctx context.Context) ([]models.Unit, error)
}

// DocumentStore persists attachment metadata.
type DocumentStore interface {
	AddDocument(ctx context.Context, d *models.Document) error
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	ListDocuments(ctx context.Context, ownerType string, ownerID int64) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id int64) error

	// CountDocuments returns the number of documents attached to the
	// owner; a non-zero count blocks deletion of the owner.
	CountDocuments(ctx context.Context, ownerType string, ownerID int64) (int, error)
}

// UserStore persists API accounts.
type UserStore interface {
	// CreateUser persists a new user. Returns ErrDuplicate if the email is
	// already registered.
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
