package models

// Document owner types.
const (
	OwnerDebt        = "debt"
	OwnerTransaction = "transaction"
)

// Document is attachment metadata for a debt or a transaction. Binary
// content lives outside this system; the core only needs the rows to count
// and list them, and a debt or transaction with documents cannot be deleted.
type Document struct {
	ID          int64
	OwnerType   string // OwnerDebt or OwnerTransaction
	OwnerID     int64
	FileName    string
	ContentType string
	Size        int64
	UploadedAt  int64
}
