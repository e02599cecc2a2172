package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// ========== Invoice Methods ==========

// CreateInvoice registers an invoice
func (s *PostgresStore) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.CreatedAt = time.Now()
	if invoice.Date.IsZero() {
		invoice.Date = invoice.CreatedAt
	}

	query := `
        INSERT INTO invoices (id, created_at, service, date, amount, property_id, meter_id, total_kwh)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.getDB().ExecContext(ctx, query,
		invoice.ID, invoice.CreatedAt, invoice.Service, invoice.Date,
		invoice.Amount, invoice.PropertyID, invoice.MeterID, invoice.TotalKWh,
	)

	return err
}

// ListInvoicesByMonth lists all invoices dated within the given month
func (s *PostgresStore) ListInvoicesByMonth(ctx context.Context, year int, month time.Month) ([]*models.Invoice, error) {
	start, end := monthRange(year, month)

	query := `
        SELECT id, created_at, service, date, amount, property_id, meter_id, total_kwh
        FROM invoices
        WHERE date >= $1 AND date < $2
        ORDER BY date`

	rows, err := s.getDB().QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		err := rows.Scan(
			&invoice.ID, &invoice.CreatedAt, &invoice.Service, &invoice.Date,
			&invoice.Amount, &invoice.PropertyID, &invoice.MeterID, &invoice.TotalKWh,
		)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}

// SumInvoicesByMeterAndMonth sums invoice amounts and kWh totals for a
// meter within the given month. Returns 0/0 if there are none.
func (s *PostgresStore) SumInvoicesByMeterAndMonth(ctx context.Context, meterID uuid.UUID, year int, month time.Month) (float64, float64, error) {
	start, end := monthRange(year, month)

	query := `
        SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(total_kwh), 0)
        FROM invoices
        WHERE meter_id = $1 AND date >= $2 AND date < $3`

	var amount, kwh float64
	err := s.getDB().QueryRowContext(ctx, query, meterID, start, end).Scan(&amount, &kwh)
	if err != nil {
		return 0, 0, err
	}

	return amount, kwh, nil
}

// SumInvoicesByPropertyServiceAndMonth sums invoice amounts and kWh
// totals for a property and service type within the given month,
// including whole-property invoices with no meter attached.
func (s *PostgresStore) SumInvoicesByPropertyServiceAndMonth(ctx context.Context, propertyID uuid.UUID, service models.ServiceType, year int, month time.Month) (float64, float64, error) {
	start, end := monthRange(year, month)

	query := `
        SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(total_kwh), 0)
        FROM invoices
        WHERE property_id = $1 AND service = $2 AND date >= $3 AND date < $4`

	var amount, kwh float64
	err := s.getDB().QueryRowContext(ctx, query, propertyID, service, start, end).Scan(&amount, &kwh)
	if err != nil {
		return 0, 0, err
	}

	return amount, kwh, nil
}
