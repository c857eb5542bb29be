package models

import "github.com/shopspring/decimal"

// Debt represents an obligation owed by one person within a project.
// The amount of a debt is never stored; it is derived from the lines.
type Debt struct {
	// ID is the unique identifier for the debt.
	ID int64

	// ProjectID is the project this debt belongs to.
	ProjectID int64

	// PersonID is the person who owes this debt.
	PersonID int64

	// DueDate is the calendar date the debt falls due, in YYYY-MM-DD form.
	DueDate string

	// RegisteredAt is the Unix timestamp the debt was registered.
	RegisteredAt int64

	// Note is an optional free-text description.
	Note string

	// Lines are the priced line items. A debt always has at least one line,
	// and an item appears at most once per debt.
	Lines []DebtLine
}

// DebtLine is a single priced row on a debt.
type DebtLine struct {
	// ID is the unique identifier for the line.
	ID int64

	// DebtID is the owning debt.
	DebtID int64

	// ItemID references the item catalog.
	ItemID int64

	// UnitID references the unit catalog.
	UnitID int64

	// Quantity is positive with at most 3 fractional digits.
	Quantity decimal.Decimal

	// UnitPrice is non-negative in whole currency units.
	UnitPrice decimal.Decimal

	// Note is an optional free-text description.
	Note string
}

// DebtSummary is a listing row for a debt with its derived amounts.
type DebtSummary struct {
	DebtID       int64
	ProjectID    int64
	PersonID     int64
	DueDate      string
	RegisteredAt int64
	Total        decimal.Decimal
	Covered      decimal.Decimal
	Remaining    decimal.Decimal
}

// DebtLineView is a line joined with its item and unit display titles.
type DebtLineView struct {
	ID        int64
	ItemID    int64
	ItemTitle string
	UnitID    int64
	UnitTitle string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
	Note      string
}

// DebtView is the full read model for a single debt: header, priced lines,
// its allocations and the derived totals.
type DebtView struct {
	Debt        Debt
	Lines       []DebtLineView
	Allocations []AllocationDetail
	Total       decimal.Decimal
	Covered     decimal.Decimal
	Remaining   decimal.Decimal
}
