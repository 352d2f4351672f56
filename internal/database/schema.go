package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS staff (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    login TEXT UNIQUE NOT NULL,
    password_hash BYTEA NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS liquidations (
    id UUID PRIMARY KEY,
    staff_id UUID REFERENCES staff(id) ON DELETE SET NULL,
    total NUMERIC(12,2) NOT NULL,
    order_count INTEGER NOT NULL,
    liquidated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS liquidation_lines (
    id BIGSERIAL PRIMARY KEY,
    liquidation_id UUID NOT NULL REFERENCES liquidations(id) ON DELETE CASCADE,
    table_number INTEGER NOT NULL,
    product_name TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    unit_price NUMERIC(12,2) NOT NULL,
    extras_total NUMERIC(12,2) NOT NULL,
    line_total NUMERIC(12,2) NOT NULL,
    released_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_liquidations_liquidated_at ON liquidations(liquidated_at);
CREATE INDEX IF NOT EXISTS idx_liquidation_lines_liquidation_id ON liquidation_lines(liquidation_id);
`

func InitSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}
