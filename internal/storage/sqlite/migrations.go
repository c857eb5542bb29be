package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: master data tables must be created BEFORE debts/transactions
// due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS persons (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    company_name TEXT NOT NULL DEFAULT '',
    is_legal INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    parent_id INTEGER REFERENCES projects(id)
);

CREATE TABLE IF NOT EXISTS items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS units (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS debts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(id),
    person_id INTEGER NOT NULL REFERENCES persons(id),
    due_date TEXT NOT NULL,
    registered_at INTEGER NOT NULL,
    note TEXT
);

CREATE TABLE IF NOT EXISTS debt_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    debt_id INTEGER NOT NULL REFERENCES debts(id),
    item_id INTEGER NOT NULL REFERENCES items(id),
    unit_id INTEGER NOT NULL REFERENCES units(id),
    qty_milli INTEGER NOT NULL CHECK (qty_milli > 0),
    unit_price INTEGER NOT NULL CHECK (unit_price >= 0),
    note TEXT,
    UNIQUE (debt_id, item_id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(id),
    from_person_id INTEGER NOT NULL REFERENCES persons(id),
    to_person_id INTEGER NOT NULL REFERENCES persons(id),
    code TEXT NOT NULL UNIQUE,
    due_date TEXT NOT NULL,
    amount_paid INTEGER NOT NULL CHECK (amount_paid > 0),
    payment_type TEXT NOT NULL,
    tx_type TEXT NOT NULL,
    registered_at INTEGER NOT NULL,
    note TEXT,
    CHECK (from_person_id <> to_person_id)
);

CREATE TABLE IF NOT EXISTS allocations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    debt_id INTEGER NOT NULL REFERENCES debts(id),
    transaction_id INTEGER NOT NULL REFERENCES transactions(id),
    covered_amount INTEGER NOT NULL CHECK (covered_amount > 0),
    note TEXT,
    UNIQUE (debt_id, transaction_id)
);

CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_type TEXT NOT NULL CHECK (owner_type IN ('debt', 'transaction')),
    owner_id INTEGER NOT NULL,
    file_name TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    size INTEGER NOT NULL DEFAULT 0,
    uploaded_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_project_id ON debts(project_id);
CREATE INDEX IF NOT EXISTS idx_debts_person_id ON debts(person_id);
CREATE INDEX IF NOT EXISTS idx_debt_lines_debt_id ON debt_lines(debt_id);
CREATE INDEX IF NOT EXISTS idx_transactions_project_id ON transactions(project_id);
CREATE INDEX IF NOT EXISTS idx_transactions_to_person_id ON transactions(to_person_id);
CREATE INDEX IF NOT EXISTS idx_transactions_from_person_id ON transactions(from_person_id);
CREATE INDEX IF NOT EXISTS idx_allocations_debt_id ON allocations(debt_id);
CREATE INDEX IF NOT EXISTS idx_allocations_transaction_id ON allocations(transaction_id);
CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_type, owner_id);
`

// lineTotalExpr computes a line total in SQL with the same rounding rule the
// calculator package uses: quantity times price, rounded half-up to whole
// currency units. Operands are non-negative integers, so the +500/1000 trick
// is exact.
const lineTotalExpr = "((dl.qty_milli * dl.unit_price + 500) / 1000)"

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
