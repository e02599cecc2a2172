package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/OscarAAV94/VelPra-bot/internal/models"
)

// ========== Payment Methods ==========

// CreatePayment records a payment submission, unconfirmed. BalanceAfter
// is whatever the tenant's balance projected to at submission time; it
// is advisory and never applied as-is.
func (s *PostgresStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	if payment.Date.IsZero() {
		payment.Date = time.Now()
	}

	query := `
        INSERT INTO payments (id, chat_id, date, amount, balance_after, proof, confirmed)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.getDB().ExecContext(ctx, query,
		payment.ID, payment.ChatID, payment.Date, payment.Amount,
		payment.BalanceAfter, payment.Proof, payment.Confirmed,
	)

	return err
}

// GetPayment gets a payment by id
func (s *PostgresStore) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `
        SELECT id, chat_id, date, amount, balance_after, proof, confirmed
        FROM payments
        WHERE id = $1`

	payment := &models.Payment{}
	err := s.getDB().QueryRowContext(ctx, query, id).Scan(
		&payment.ID, &payment.ChatID, &payment.Date, &payment.Amount,
		&payment.BalanceAfter, &payment.Proof, &payment.Confirmed,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return payment, nil
}

// ListPendingPayments lists payments awaiting admin confirmation
func (s *PostgresStore) ListPendingPayments(ctx context.Context) ([]*models.Payment, error) {
	query := `
        SELECT id, chat_id, date, amount, balance_after, proof, confirmed
        FROM payments
        WHERE confirmed = FALSE
        ORDER BY date`

	return s.queryPayments(ctx, query)
}

// ListPaymentsByTenant lists a tenant's payments, newest first
func (s *PostgresStore) ListPaymentsByTenant(ctx context.Context, chatID int64, limit int) ([]*models.Payment, error) {
	query := `
        SELECT id, chat_id, date, amount, balance_after, proof, confirmed
        FROM payments
        WHERE chat_id = $1
        ORDER BY date DESC
        LIMIT $2`

	return s.queryPayments(ctx, query, chatID, limit)
}

// ListConfirmedPaymentsByMonth lists confirmed payments dated within the
// given month, for the accounting summary.
func (s *PostgresStore) ListConfirmedPaymentsByMonth(ctx context.Context, year int, month time.Month) ([]*models.Payment, error) {
	start, end := monthRange(year, month)

	query := `
        SELECT id, chat_id, date, amount, balance_after, proof, confirmed
        FROM payments
        WHERE confirmed = TRUE AND date >= $1 AND date < $2
        ORDER BY date`

	return s.queryPayments(ctx, query, start, end)
}

func (s *PostgresStore) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*models.Payment, error) {
	rows, err := s.getDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID, &payment.ChatID, &payment.Date, &payment.Amount,
			&payment.BalanceAfter, &payment.Proof, &payment.Confirmed,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

// ConfirmPayment marks a payment confirmed and decrements the tenant's
// balance by the paid amount, in one transaction. The delta is applied
// against the balance as stored at confirmation time, not the advisory
// balance captured at submission. Returns the payment and the tenant's
// resulting balance.
func (s *PostgresStore) ConfirmPayment(ctx context.Context, id uuid.UUID) (*models.Payment, float64, error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	txs := tx.(*PostgresStore)

	payment, err := txs.GetPayment(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	if payment.Confirmed {
		return nil, 0, ErrInvalidData
	}

	result, err := txs.getDB().ExecContext(ctx,
		"UPDATE payments SET confirmed = TRUE WHERE id = $1", id)
	if err != nil {
		return nil, 0, err
	}
	if rows, err := result.RowsAffected(); err != nil {
		return nil, 0, err
	} else if rows == 0 {
		return nil, 0, ErrNotFound
	}

	balance, err := txs.AdjustTenantBalance(ctx, payment.ChatID, -payment.Amount)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}

	payment.Confirmed = true
	return payment, balance, nil
}

// ========== Complaint Methods ==========

// CreateComplaint records a tenant complaint
func (s *PostgresStore) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == uuid.Nil {
		complaint.ID = uuid.New()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO complaints (id, chat_id, created_at, text, resolved)
        VALUES ($1, $2, $3, $4, $5)`

	_, err := s.getDB().ExecContext(ctx, query,
		complaint.ID, complaint.ChatID, complaint.CreatedAt,
		complaint.Text, complaint.Resolved,
	)

	return err
}

// ListOpenComplaints lists unresolved complaints, newest first
func (s *PostgresStore) ListOpenComplaints(ctx context.Context) ([]*models.Complaint, error) {
	query := `
        SELECT id, chat_id, created_at, text, resolved
        FROM complaints
        WHERE resolved = FALSE
        ORDER BY created_at DESC`

	rows, err := s.getDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var complaints []*models.Complaint
	for rows.Next() {
		complaint := &models.Complaint{}
		err := rows.Scan(
			&complaint.ID, &complaint.ChatID, &complaint.CreatedAt,
			&complaint.Text, &complaint.Resolved,
		)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, complaint)
	}

	return complaints, rows.Err()
}

// ResolveComplaint marks a complaint resolved
func (s *PostgresStore) ResolveComplaint(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx,
		"UPDATE complaints SET resolved = TRUE WHERE id = $1", id)
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
