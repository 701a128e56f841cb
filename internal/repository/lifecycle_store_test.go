package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

func TestLifecycleStoreCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewLifecycleStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1 AND deleted_at IS NULL FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(studentRow(1, models.StudentStatusPending))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx LifecycleTx) error {
		student, err := tx.LockStudent(ctx, 1)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), student.ID)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLifecycleStoreRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewLifecycleStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE course_applications SET status = $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(ctx context.Context, tx LifecycleTx) error {
		return tx.UpdateApplicationStatus(ctx, 2, models.ApplicationStatusPending, models.ApplicationStatusRejected, nil)
	})
	assert.True(t, errors.Is(err, ErrStaleState))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationStoreLinksUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewRegistrationStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery("INSERT INTO users").WithArgs("ana@example.com", "hash", models.RoleStudent, sqlmock.AnyArg(), true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	student := &models.Student{ULI: "ABC-12-345-67890-123", FirstName: "Ana", LastName: "Reyes", Email: "ana@example.com"}
	user := &models.User{Email: "ana@example.com", PasswordHash: "hash", Role: models.RoleStudent, Active: true}
	require.NoError(t, store.Register(context.Background(), student, user))
	require.NotNil(t, user.StudentID)
	assert.Equal(t, int64(42), *user.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationStoreRemoveAlreadyDeleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewRegistrationStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET deleted_at = $2")).WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.Remove(context.Background(), 42)
	assert.ErrorIs(t, err, ErrStaleState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationStoreRemoveDeactivatesUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	store := NewRegistrationStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET deleted_at = $2")).WithArgs(int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE WHERE student_id = $1")).WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Remove(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityLogRepository(db)

	mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.ActivityLog{EventType: models.ActivityApplicationSubmitted, Message: "submitted", ActorType: models.ActorStudent, SubjectType: models.SubjectApplication, SubjectID: 1}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
