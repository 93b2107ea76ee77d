package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPingStorages(t *testing.T) (*Storages, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &Storages{db: newDB(conn, logger.Nop())}, mock
}

func TestStorages_Ping(t *testing.T) {
	s, mock := newPingStorages(t)
	mock.ExpectPing()

	require.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorages_PingFailure(t *testing.T) {
	s, mock := newPingStorages(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	err := s.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestStorages_PingWithoutConnections(t *testing.T) {
	assert.NoError(t, (&Storages{}).Ping(context.Background()))
}
