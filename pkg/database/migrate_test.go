package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMigratorMock(t *testing.T) (*Migrator, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewMigrator(sqlx.NewDb(db, "sqlmock"), nil), mock, func() { db.Close() }
}

func TestMigratorLoadOrdersEmbeddedFiles(t *testing.T) {
	m, _, cleanup := newMigratorMock(t)
	defer cleanup()

	migrations, err := m.load()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(migrations), 2)
	assert.Equal(t, "0001", migrations[0].ID)
	assert.Equal(t, "create portal schema", migrations[0].Description)
	assert.Equal(t, "0002", migrations[1].ID)
	assert.Contains(t, migrations[1].SQL, "uq_course_applications_one_pending")
}

func TestMigratorUpSkipsApplied(t *testing.T) {
	m, mock, cleanup := newMigratorMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, description, applied_at FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "description", "applied_at"}).AddRow("0001", "create portal schema", time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS course_applications")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs("0002", "create lifecycle tables").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	count, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
