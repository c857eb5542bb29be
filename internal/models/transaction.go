package models

import "github.com/shopspring/decimal"

// Payment type codes. Three letters, closed set.
const (
	PaymentCash  = "CSH"
	PaymentCheck = "CHK"
	PaymentOther = "OTH"
)

// Transaction type codes. Three letters, closed set.
const (
	TxTypeExpense  = "EXP"
	TxTypeTransfer = "TRN"
	TxTypeOther    = "OTH"
)

// PaymentTypeTitles maps payment type codes to display titles.
var PaymentTypeTitles = map[string]string{
	PaymentCash:  "cash",
	PaymentCheck: "check",
	PaymentOther: "other",
}

// TxTypeTitles maps transaction type codes to display titles.
var TxTypeTitles = map[string]string{
	TxTypeExpense:  "expense",
	TxTypeTransfer: "transfer",
	TxTypeOther:    "other",
}

// ValidPaymentType reports whether code is one of the known payment types.
func ValidPaymentType(code string) bool {
	_, ok := PaymentTypeTitles[code]
	return ok
}

// ValidTxType reports whether code is one of the known transaction types.
func ValidTxType(code string) bool {
	_, ok := TxTypeTitles[code]
	return ok
}

// Transaction represents a single payment moving an amount from one person to
// another within a project. FromPersonID and ToPersonID are always distinct.
type Transaction struct {
	// ID is the unique identifier for the transaction.
	ID int64

	// ProjectID is the project this payment belongs to.
	ProjectID int64

	// FromPersonID is the paying person.
	FromPersonID int64

	// ToPersonID is the receiving person.
	ToPersonID int64

	// Code is a unique free-text payment code.
	Code string

	// DueDate is the calendar due date, in YYYY-MM-DD form.
	DueDate string

	// AmountPaid is positive, in whole currency units.
	AmountPaid decimal.Decimal

	// PaymentType is one of the payment type codes (CSH, CHK, OTH).
	PaymentType string

	// TxType is one of the transaction type codes (EXP, TRN, OTH).
	TxType string

	// RegisteredAt is the Unix timestamp the payment was registered.
	RegisteredAt int64

	// Note is an optional free-text description.
	Note string
}

// TransactionDetail is a transaction annotated with its allocation coverage.
type TransactionDetail struct {
	Transaction
	Allocated decimal.Decimal
	Remaining decimal.Decimal
}
