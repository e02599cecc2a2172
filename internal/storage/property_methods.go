package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// ========== Property Methods ==========

// CreateProperty creates a new property
func (s *PostgresStore) CreateProperty(ctx context.Context, property *models.Property) error {
	if property.ID == uuid.Nil {
		property.ID = uuid.New()
	}

	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now

	query := `
        INSERT INTO properties (id, created_at, updated_at, name, address, wifi_ssid, wifi_password)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.getDB().ExecContext(ctx, query,
		property.ID, property.CreatedAt, property.UpdatedAt,
		property.Name, property.Address, property.WifiSSID, property.WifiPassword,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetProperty gets a property by id
func (s *PostgresStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	query := `
        SELECT id, created_at, updated_at, name, address, wifi_ssid, wifi_password
        FROM properties
        WHERE id = $1`

	property := &models.Property{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&property.ID, &property.CreatedAt, &property.UpdatedAt,
		&property.Name, &property.Address, &property.WifiSSID, &property.WifiPassword,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return property, nil
}

// UpdateProperty updates a property
func (s *PostgresStore) UpdateProperty(ctx context.Context, property *models.Property) error {
	property.UpdatedAt = time.Now()

	query := `
        UPDATE properties SET
            updated_at = $2, name = $3, address = $4, wifi_ssid = $5, wifi_password = $6
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		property.ID, property.UpdatedAt, property.Name, property.Address,
		property.WifiSSID, property.WifiPassword,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteProperty deletes a property and cascades: tenants are unassigned
// (property and per-service meters set to NULL), readings of its meters,
// its meters and its invoices are removed. Runs in one transaction.
func (s *PostgresStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txs := tx.(*PostgresStore)

	statements := []string{
		`UPDATE tenants SET property_id = NULL, electricity_meter_id = NULL,
            water_meter_id = NULL, gas_meter_id = NULL, updated_at = NOW()
         WHERE property_id = $1`,
		`DELETE FROM meter_readings
         WHERE meter_id IN (SELECT id FROM meters WHERE property_id = $1)`,
		`DELETE FROM meters WHERE property_id = $1`,
		`DELETE FROM invoices WHERE property_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := txs.getDB().ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := txs.getDB().ExecContext(ctx, "DELETE FROM properties WHERE id = $1", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListProperties lists all properties
func (s *PostgresStore) ListProperties(ctx context.Context) ([]*models.Property, error) {
	query := `
        SELECT id, created_at, updated_at, name, address, wifi_ssid, wifi_password
        FROM properties
        ORDER BY name`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		err := rows.Scan(
			&property.ID, &property.CreatedAt, &property.UpdatedAt,
			&property.Name, &property.Address, &property.WifiSSID, &property.WifiPassword,
		)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}

	return properties, rows.Err()
}
