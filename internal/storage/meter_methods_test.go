package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresStore{db: db}, mock
}

func TestDeleteMeterCascades(t *testing.T) {
	store, mock := mockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tenants SET electricity_meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tenants SET water_meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE tenants SET gas_meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE invoices SET meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM meter_readings WHERE meter_id").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM meters WHERE id").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteMeter(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMeterNotFound(t *testing.T) {
	store, mock := mockStore(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE tenants SET electricity_meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE tenants SET water_meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE tenants SET gas_meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE invoices SET meter_id = NULL").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM meter_readings WHERE meter_id").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM meters WHERE id").
		WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteMeter(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
