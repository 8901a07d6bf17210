package repository

import "database/sql"

// schema contains the SQL statements to set up the database tables.
// These run on startup to ensure tables exist. The reserved_quantity
// check constraint is the database-side backstop for the allocation
// pool invariant; the conditional UPDATE in TryReserve enforces it
// without a read-then-write window.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    subtotal_cents BIGINT NOT NULL,
    tax_cents BIGINT NOT NULL,
    tip_cents BIGINT NOT NULL,
    total_cents BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    creation_time BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_participants (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    PRIMARY KEY (bill_id, user_id)
);

CREATE TABLE IF NOT EXISTS line_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    unit_price_cents BIGINT NOT NULL,
    quantity BIGINT NOT NULL CHECK (quantity > 0),
    reserved_quantity BIGINT NOT NULL DEFAULT 0
        CHECK (reserved_quantity >= 0 AND reserved_quantity <= quantity),
    amount_cents BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL REFERENCES line_items(id) ON DELETE CASCADE,
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    quantity BIGINT NOT NULL CHECK (quantity > 0),
    amount_cents BIGINT NOT NULL,
    creation_time BIGINT NOT NULL,
    UNIQUE (item_id, user_id)
);

CREATE TABLE IF NOT EXISTS participant_balances (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL,
    total_owed_cents BIGINT NOT NULL,
    amount_paid_cents BIGINT NOT NULL,
    balance_remaining_cents BIGINT NOT NULL,
    payment_status TEXT NOT NULL,
    PRIMARY KEY (bill_id, user_id)
);

CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    from_user_id TEXT NOT NULL,
    amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
    method TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_line_items_bill_id ON line_items(bill_id);
CREATE INDEX IF NOT EXISTS idx_assignments_item_id ON assignments(item_id);
CREATE INDEX IF NOT EXISTS idx_assignments_bill_id ON assignments(bill_id);
CREATE INDEX IF NOT EXISTS idx_payments_bill_id ON payments(bill_id);
`

// RunMigrations executes the schema setup.
func RunMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
