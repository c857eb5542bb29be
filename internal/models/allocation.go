package models

import "github.com/shopspring/decimal"

// Allocation links a debt and a transaction, recording how much of the
// transaction's amount settles the debt. At most one allocation exists per
// (debt, transaction) pair, and a surviving allocation always satisfies
// debt.PersonID == transaction.ToPersonID.
type Allocation struct {
	// ID is the unique identifier for the allocation.
	ID int64

	// DebtID is the debt being settled.
	DebtID int64

	// TransactionID is the payment applied against the debt.
	TransactionID int64

	// Covered is the applied amount, positive, in whole currency units.
	Covered decimal.Decimal

	// Note is an optional free-text description.
	Note string
}

// AllocationDetail is an allocation joined with the linked transaction's
// identifying fields for display.
type AllocationDetail struct {
	Allocation
	TransactionCode         string
	TransactionRegisteredAt int64
	TransactionAmount       decimal.Decimal
}

// TransactionCandidate is a transaction eligible for allocation against a
// debt, annotated with how much of it may still be assigned.
//
// EditableRemaining equals Remaining except for the transaction currently
// linked to the allocation being edited, where the allocation's own prior
// covered amount is added back.
type TransactionCandidate struct {
	TransactionID     int64
	Code              string
	RegisteredAt      int64
	AmountPaid        decimal.Decimal
	Allocated         decimal.Decimal
	Remaining         decimal.Decimal
	EditableRemaining decimal.Decimal
}

// DebtCandidate is a debt eligible for allocation against a transaction.
// EditableRemaining follows the same rule as on TransactionCandidate.
type DebtCandidate struct {
	DebtID            int64
	PersonTitle       string
	RegisteredAt      int64
	Total             decimal.Decimal
	Allocated         decimal.Decimal
	Remaining         decimal.Decimal
	EditableRemaining decimal.Decimal
}
