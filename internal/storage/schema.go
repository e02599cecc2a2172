package storage

import "context"

// schema is the idempotent DDL applied at startup. Tables mirror the
// entity model: properties own meters, meters own readings, invoices
// attach to a property and optionally a meter, tenants carry per-service
// meter assignments and a running balance.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    chat_id BIGINT,
    last_login_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS properties (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    name TEXT NOT NULL UNIQUE,
    address TEXT NOT NULL DEFAULT '',
    wifi_ssid TEXT,
    wifi_password TEXT
);

CREATE TABLE IF NOT EXISTS meters (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    property_id UUID NOT NULL REFERENCES properties(id),
    name TEXT NOT NULL,
    service TEXT NOT NULL,
    UNIQUE (property_id, name)
);

CREATE TABLE IF NOT EXISTS meter_readings (
    id UUID PRIMARY KEY,
    meter_id UUID NOT NULL REFERENCES meters(id),
    date TIMESTAMPTZ NOT NULL,
    value DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meter_readings_meter_date
    ON meter_readings (meter_id, date DESC);

CREATE TABLE IF NOT EXISTS invoices (
    id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    service TEXT NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    property_id UUID NOT NULL REFERENCES properties(id),
    meter_id UUID REFERENCES meters(id),
    total_kwh DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_invoices_property_service_date
    ON invoices (property_id, service, date);

CREATE TABLE IF NOT EXISTS tenants (
    chat_id BIGINT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    national_id TEXT NOT NULL DEFAULT '',
    move_in_date TIMESTAMPTZ,
    base_rent DOUBLE PRECISION NOT NULL DEFAULT 0,
    rental_mode TEXT NOT NULL DEFAULT 'all_inclusive',
    balance DOUBLE PRECISION NOT NULL DEFAULT 0,
    property_id UUID REFERENCES properties(id),
    electricity_meter_id UUID REFERENCES meters(id),
    water_meter_id UUID REFERENCES meters(id),
    gas_meter_id UUID REFERENCES meters(id),
    occupants INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    chat_id BIGINT NOT NULL,
    date TIMESTAMPTZ NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    balance_after DOUBLE PRECISION NOT NULL DEFAULT 0,
    proof TEXT NOT NULL DEFAULT '',
    confirmed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS complaints (
    id UUID PRIMARY KEY,
    chat_id BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    text TEXT NOT NULL,
    resolved BOOLEAN NOT NULL DEFAULT FALSE
);
`

// Migrate applies the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
