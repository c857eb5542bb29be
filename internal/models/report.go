package models

import "github.com/shopspring/decimal"

// LedgerRow is one transaction in a person's chronological statement.
// Delta is +amount when the person is the receiver and -amount when the
// sender; Balance is the running prefix sum of Delta.
type LedgerRow struct {
	TransactionID int64
	RegisteredAt  int64
	Code          string
	FromPersonID  int64
	ToPersonID    int64
	Amount        decimal.Decimal
	Delta         decimal.Decimal
	Balance       decimal.Decimal
	Note          string
}

// PersonBalance aggregates a person's inflow and outflow within a project,
// ignoring allocation state.
type PersonBalance struct {
	ProjectID int64
	PersonID  int64
	TotalIn   decimal.Decimal
	TotalOut  decimal.Decimal
	Net       decimal.Decimal
}

// PairBalance aggregates the flow between two persons within a project.
// Net is AToB - BToA.
type PairBalance struct {
	ProjectID    int64
	FromPersonID int64
	ToPersonID   int64
	AToB         decimal.Decimal
	BToA         decimal.Decimal
	Net          decimal.Decimal
}
