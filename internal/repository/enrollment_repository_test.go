package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

func TestEnrollmentUpdateFromUnsetCompletion(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET enrollment_status = $1, updated_at = $2, completion_status = $3, completed_at = $4 WHERE id = $5 AND enrollment_status = $6 AND completion_status IS NULL")).
		WithArgs(models.EnrollmentStatusCompleted, now, models.CompletionStatusPending, now, int64(7), models.EnrollmentStatusEnrolled).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 7,
		models.EnrollmentState{EnrollmentStatus: models.EnrollmentStatusEnrolled},
		models.EnrollmentUpdate{
			EnrollmentStatus: models.EnrollmentStatusCompleted,
			CompletionStatus: models.CompletionStatusPtr(models.CompletionStatusPending),
			CompletedAt:      &now,
			UpdatedAt:        now,
		})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentUpdateStaleCompletion(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	now := time.Now().UTC()
	cert := "CERT-2024-000042"
	mock.ExpectExec(regexp.QuoteMeta("certificate_number = $5 WHERE id = $6 AND enrollment_status = $7 AND completion_status = $8")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 7,
		models.EnrollmentState{EnrollmentStatus: models.EnrollmentStatusCompleted, CompletionStatus: models.CompletionStatusPtr(models.CompletionStatusPending)},
		models.EnrollmentUpdate{
			EnrollmentStatus:     models.EnrollmentStatusCompleted,
			CompletionStatus:     models.CompletionStatusPtr(models.CompletionStatusApproved),
			CompletionApprovedAt: &now,
			CertificateNumber:    &cert,
			UpdatedAt:            now,
		})
	assert.ErrorIs(t, err, ErrStaleState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPendingCompletions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	completed := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"enrollment_id", "application_id", "student_id", "student_uli", "student_name", "course_id",
		"course_name", "nc_level", "adviser_name", "training_start", "training_end", "completed_at"}).
		AddRow(3, 2, 42, "ABC-12-345-67890-123", "Juan Cruz", 1, "Bread and Pastry", "NC II", "Maria Santos", nil, nil, completed)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.completion_status = 'pending'")).WillReturnRows(rows)

	items, err := repo.ListPendingCompletions(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bread and Pastry", items[0].CourseName)
	assert.Equal(t, int64(42), items[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIssuedCertificate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	approvedAt := time.Date(2024, 9, 2, 3, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"enrollment_id", "student_id", "student_name", "course_name", "nc_level", "adviser_name", "certificate_number", "completion_approved_at"}).
		AddRow(int64(15), int64(42), "Ana Cruz", "Cookery", "II", nil, "CERT-2024-000042", approvedAt)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1 AND e.completion_status = 'approved' AND e.certificate_number IS NOT NULL")).
		WithArgs(int64(15)).
		WillReturnRows(rows)

	cert, err := repo.FindIssuedCertificate(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, "CERT-2024-000042", cert.CertificateNumber)
	assert.Nil(t, cert.AdviserName)
	assert.Equal(t, "certificates/CERT-2024-000042.pdf", cert.CertificateKey())
	assert.NoError(t, mock.ExpectationsWereMet())
}
