package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// ========== Tenant Methods ==========

const tenantColumns = `chat_id, created_at, updated_at, name, national_id, move_in_date,
               base_rent, rental_mode, balance, property_id,
               electricity_meter_id, water_meter_id, gas_meter_id, occupants`

func scanTenant(row interface{ Scan(dest ...interface{}) error }) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := row.Scan(
		&tenant.ChatID, &tenant.CreatedAt, &tenant.UpdatedAt,
		&tenant.Name, &tenant.NationalID, &tenant.MoveInDate,
		&tenant.BaseRent, &tenant.RentalMode, &tenant.Balance, &tenant.PropertyID,
		&tenant.ElectricityMeterID, &tenant.WaterMeterID, &tenant.GasMeterID,
		&tenant.Occupants,
	)
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// CreateTenant registers a tenant. Registration is minimal: the tenant
// stays invisible to billing until onboarding sets a move-in date.
func (s *PostgresStore) CreateTenant(ctx context.Context, tenant *models.Tenant) error {
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	if tenant.RentalMode == "" {
		tenant.RentalMode = models.RentalAllInclusive
	}
	if tenant.Occupants < 1 {
		tenant.Occupants = 1
	}

	query := `
        INSERT INTO tenants (
            chat_id, created_at, updated_at, name, national_id, move_in_date,
            base_rent, rental_mode, balance, property_id,
            electricity_meter_id, water_meter_id, gas_meter_id, occupants
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
        )`

	_, err := s.getDB().ExecContext(ctx, query,
		tenant.ChatID, tenant.CreatedAt, tenant.UpdatedAt,
		tenant.Name, tenant.NationalID, tenant.MoveInDate,
		tenant.BaseRent, tenant.RentalMode, tenant.Balance, tenant.PropertyID,
		tenant.ElectricityMeterID, tenant.WaterMeterID, tenant.GasMeterID,
		tenant.Occupants,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetTenant gets a tenant by chat id
func (s *PostgresStore) GetTenant(ctx context.Context, chatID int64) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE chat_id = $1`, tenantColumns)

	tenant, err := scanTenant(s.getDB().QueryRowContext(ctx, query, chatID))

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return tenant, nil
}

// UpdateTenant updates a tenant's mutable fields. The balance is not
// touched here; it only moves through AdjustTenantBalance so concurrent
// flows never overwrite it with a stale copy.
func (s *PostgresStore) UpdateTenant(ctx context.Context, tenant *models.Tenant) error {
	tenant.UpdatedAt = time.Now()

	query := `
        UPDATE tenants SET
            updated_at = $2, name = $3, national_id = $4, move_in_date = $5,
            base_rent = $6, rental_mode = $7, property_id = $8,
            electricity_meter_id = $9, water_meter_id = $10, gas_meter_id = $11,
            occupants = $12
        WHERE chat_id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		tenant.ChatID, tenant.UpdatedAt, tenant.Name, tenant.NationalID,
		tenant.MoveInDate, tenant.BaseRent, tenant.RentalMode, tenant.PropertyID,
		tenant.ElectricityMeterID, tenant.WaterMeterID, tenant.GasMeterID,
		tenant.Occupants,
	)

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

	return nil
}

// DeleteTenant removes a tenant along with its payments and complaints
func (s *PostgresStore) DeleteTenant(ctx context.Context, chatID int64) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txs := tx.(*PostgresStore)

	if _, err := txs.getDB().ExecContext(ctx, "DELETE FROM payments WHERE chat_id = $1", chatID); err != nil {
		return err
	}
	if _, err := txs.getDB().ExecContext(ctx, "DELETE FROM complaints WHERE chat_id = $1", chatID); err != nil {
		return err
	}

	result, err := txs.getDB().ExecContext(ctx, "DELETE FROM tenants WHERE chat_id = $1", chatID)
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

// ListTenants lists all registered tenants
func (s *PostgresStore) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants ORDER BY created_at`, tenantColumns)
	return s.queryTenants(ctx, query)
}

// ListTenantsByProperty lists a property's tenants
func (s *PostgresStore) ListTenantsByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE property_id = $1 ORDER BY created_at`, tenantColumns)
	return s.queryTenants(ctx, query, propertyID)
}

// ListBillableTenants lists tenants eligible for a billing run: those
// with a move-in date, optionally scoped to one property. Tenants with
// incomplete onboarding are silently excluded.
func (s *PostgresStore) ListBillableTenants(ctx context.Context, propertyID *uuid.UUID) ([]*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE move_in_date IS NOT NULL`, tenantColumns)
	args := []interface{}{}

	if propertyID != nil {
		query += " AND property_id = $1"
		args = append(args, *propertyID)
	}
	query += " ORDER BY created_at"

	return s.queryTenants(ctx, query, args...)
}

func (s *PostgresStore) queryTenants(ctx context.Context, query string, args ...interface{}) ([]*models.Tenant, error) {
	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, rows.Err()
}

// AdjustTenantBalance adds delta to the tenant's stored balance and
// returns the resulting value. Both mutating flows (billing runs,
// payment confirmation) go through here so neither can clobber the
// other with a balance read earlier.
func (s *PostgresStore) AdjustTenantBalance(ctx context.Context, chatID int64, delta float64) (float64, error) {
	query := `
        UPDATE tenants SET balance = balance + $2, updated_at = NOW()
        WHERE chat_id = $1
        RETURNING balance`

	var balance float64
	err := s.getDB().QueryRowContext(ctx, query, chatID, delta).Scan(&balance)

	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}

	if err != nil {
		return 0, err
	}

	return balance, nil
}

// ========== Occupant Headcounts ==========

// SumOccupantsByProperty sums occupant counts over every tenant of the
// property, regardless of rental mode.
func (s *PostgresStore) SumOccupantsByProperty(ctx context.Context, propertyID uuid.UUID) (int, error) {
	query := `
        SELECT COALESCE(SUM(occupants), 0)
        FROM tenants
        WHERE property_id = $1`

	var total int
	err := s.getDB().QueryRowContext(ctx, query, propertyID).Scan(&total)
	return total, err
}

// SumOccupantsByAssignedMeter sums occupant counts over tenants assigned
// to exactly the given meter for the given service.
func (s *PostgresStore) SumOccupantsByAssignedMeter(ctx context.Context, service models.ServiceType, meterID uuid.UUID) (int, error) {
	var column string
	switch service {
	case models.ServiceElectricity:
		column = "electricity_meter_id"
	case models.ServiceWater:
		column = "water_meter_id"
	case models.ServiceGas:
		column = "gas_meter_id"
	default:
		return 0, ErrInvalidData
	}

	query := fmt.Sprintf(`SELECT COALESCE(SUM(occupants), 0) FROM tenants WHERE %s = $1`, column)

	var total int
	err := s.getDB().QueryRowContext(ctx, query, meterID).Scan(&total)
	return total, err
}

// SumOccupantsUnmetered sums occupant counts over the property's
// prorated tenants that have no individual electricity meter — the
// shared-pool headcount for common electricity. Metered tenants are
// excluded: metered and headcount billing split the bill from
// independent allocation bases.
func (s *PostgresStore) SumOccupantsUnmetered(ctx context.Context, propertyID uuid.UUID) (int, error) {
	query := `
        SELECT COALESCE(SUM(occupants), 0)
        FROM tenants
        WHERE property_id = $1
          AND rental_mode = $2
          AND electricity_meter_id IS NULL`

	var total int
	err := s.getDB().QueryRowContext(ctx, query, propertyID, models.RentalProrated).Scan(&total)
	return total, err
}
