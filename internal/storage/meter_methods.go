package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// ========== Meter Methods ==========

// CreateMeter creates a new meter
func (s *PostgresStore) CreateMeter(ctx context.Context, meter *models.Meter) error {
	if meter.ID == uuid.Nil {
		meter.ID = uuid.New()
	}
	meter.CreatedAt = time.Now()

	query := `
        INSERT INTO meters (id, created_at, property_id, name, service)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := s.getDB().ExecContext(ctx, query,
		meter.ID, meter.CreatedAt, meter.PropertyID, meter.Name, meter.Service,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetMeter gets a meter by id
func (s *PostgresStore) GetMeter(ctx context.Context, id uuid.UUID) (*models.Meter, error) {
	query := `
        SELECT id, created_at, property_id, name, service
        FROM meters
        WHERE id = $1`

	meter := &models.Meter{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&meter.ID, &meter.CreatedAt, &meter.PropertyID, &meter.Name, &meter.Service,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return meter, nil
}

// DeleteMeter deletes a meter and cascades: assigned tenants are
// unassigned, its invoices become property-level (meter reference set
// to NULL) and its readings are removed. Runs in one transaction.
func (s *PostgresStore) DeleteMeter(ctx context.Context, id uuid.UUID) error {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txs := tx.(*PostgresStore)

	statements := []string{
		`UPDATE tenants SET electricity_meter_id = NULL, updated_at = NOW()
         WHERE electricity_meter_id = $1`,
		`UPDATE tenants SET water_meter_id = NULL, updated_at = NOW()
         WHERE water_meter_id = $1`,
		`UPDATE tenants SET gas_meter_id = NULL, updated_at = NOW()
         WHERE gas_meter_id = $1`,
		`UPDATE invoices SET meter_id = NULL WHERE meter_id = $1`,
		`DELETE FROM meter_readings WHERE meter_id = $1`,
	}

	for _, stmt := range statements {
		if _, err := txs.getDB().ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}

	result, err := txs.getDB().ExecContext(ctx, "DELETE FROM meters WHERE id = $1", id)
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

// ListMetersByProperty lists a property's meters, optionally filtered by service type
func (s *PostgresStore) ListMetersByProperty(ctx context.Context, propertyID uuid.UUID, service *models.ServiceType) ([]*models.Meter, error) {
	query := `
        SELECT id, created_at, property_id, name, service
        FROM meters
        WHERE property_id = $1`
	args := []interface{}{propertyID}

	if service != nil {
		query += " AND service = $2"
		args = append(args, *service)
	}
	query += " ORDER BY created_at"

	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meters []*models.Meter
	for rows.Next() {
		meter := &models.Meter{}
		err := rows.Scan(&meter.ID, &meter.CreatedAt, &meter.PropertyID, &meter.Name, &meter.Service)
		if err != nil {
			return nil, err
		}
		meters = append(meters, meter)
	}

	return meters, rows.Err()
}

// FirstMeterByService returns the property's first meter of the given
// service type. Nothing enforces a single main meter per service, so
// callers get the first match by creation order.
func (s *PostgresStore) FirstMeterByService(ctx context.Context, propertyID uuid.UUID, service models.ServiceType) (*models.Meter, error) {
	query := `
        SELECT id, created_at, property_id, name, service
        FROM meters
        WHERE property_id = $1 AND service = $2
        ORDER BY created_at
        LIMIT 1`

	meter := &models.Meter{}
	err := s.getDB().QueryRowContext(ctx, query, propertyID, service).Scan(
		&meter.ID, &meter.CreatedAt, &meter.PropertyID, &meter.Name, &meter.Service,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return meter, nil
}

// ========== Meter Reading Methods ==========

// CreateMeterReading appends a reading to a meter's history
func (s *PostgresStore) CreateMeterReading(ctx context.Context, reading *models.MeterReading) error {
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	if reading.Date.IsZero() {
		reading.Date = time.Now()
	}

	query := `
        INSERT INTO meter_readings (id, meter_id, date, value)
        VALUES ($1, $2, $3, $4)`

	_, err := s.getDB().ExecContext(ctx, query,
		reading.ID, reading.MeterID, reading.Date, reading.Value,
	)

	return err
}

// ListReadingsByMeter lists a meter's readings, newest first
func (s *PostgresStore) ListReadingsByMeter(ctx context.Context, meterID uuid.UUID, limit int) ([]*models.MeterReading, error) {
	query := `
        SELECT id, meter_id, date, value
        FROM meter_readings
        WHERE meter_id = $1
        ORDER BY date DESC
        LIMIT $2`

	rows, err := s.getDB().QueryContext(ctx, query, meterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*models.MeterReading
	for rows.Next() {
		reading := &models.MeterReading{}
		err := rows.Scan(&reading.ID, &reading.MeterID, &reading.Date, &reading.Value)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	return readings, rows.Err()
}

// LatestReading returns the most recent reading for a meter, or 0 if
// the meter has no readings.
func (s *PostgresStore) LatestReading(ctx context.Context, meterID uuid.UUID) (float64, error) {
	query := `
        SELECT value
        FROM meter_readings
        WHERE meter_id = $1
        ORDER BY date DESC
        LIMIT 1`

	var value float64
	err := s.getDB().QueryRowContext(ctx, query, meterID).Scan(&value)

	if err == sql.ErrNoRows {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return value, nil
}

// ReadingAtStartOfPreviousMonth returns the most recent reading recorded
// within the calendar month preceding (year, month), or 0 if none. The
// consumption derived from it is deliberately unclamped: a meter reset
// or a missing prior reading yields negative or inflated values.
func (s *PostgresStore) ReadingAtStartOfPreviousMonth(ctx context.Context, meterID uuid.UUID, year int, month time.Month) (float64, error) {
	start, end := previousMonthRange(year, month)

	query := `
        SELECT value
        FROM meter_readings
        WHERE meter_id = $1 AND date >= $2 AND date < $3
        ORDER BY date DESC
        LIMIT 1`

	var value float64
	err := s.getDB().QueryRowContext(ctx, query, meterID, start, end).Scan(&value)

	if err == sql.ErrNoRows {
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	return value, nil
}
