package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
	"github.com/noah-isme/enrollment-portal-api/pkg/export"
	"github.com/noah-isme/enrollment-portal-api/pkg/storage"
)

type issuedCertificates map[int64]*models.IssuedCertificate

func (f issuedCertificates) FindIssuedCertificate(_ context.Context, id int64) (*models.IssuedCertificate, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type failingRenderer struct{}

func (failingRenderer) Render(export.Certificate) ([]byte, error) {
	return nil, errors.New("font missing")
}

func newCertificateFixture(t *testing.T) (*CertificateService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	adviser := "Maria Santos"
	source := issuedCertificates{
		15: {
			EnrollmentID:      15,
			StudentID:         studentID,
			StudentName:       "Ana Cruz",
			CourseName:        "Cookery",
			NCLevel:           "II",
			AdviserName:       &adviser,
			CertificateNumber: "CERT-2024-000042",
			ApprovedAt:        time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		},
	}
	svc := NewCertificateService(source, export.NewCertificateRenderer(), store,
		storage.NewSignedURLSigner("secret", time.Hour), NewMetricsService(), nil,
		CertificateConfig{SchoolName: "Northfield Technical High School", Workers: 1, RetryDelay: time.Millisecond})
	return svc, store
}

func TestCertificateRenderStoresPDF(t *testing.T) {
	svc, store := newCertificateFixture(t)

	key, err := svc.Render(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, "certificates/CERT-2024-000042.pdf", key)

	ok, err := store.Exists(key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCertificateRenderNotIssued(t *testing.T) {
	svc, _ := newCertificateFixture(t)
	_, err := svc.Render(context.Background(), 99)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCertificateEnqueueRendersInBackground(t *testing.T) {
	svc, store := newCertificateFixture(t)
	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.EnqueueRender(context.Background(), 15))
	assert.Eventually(t, func() bool {
		ok, _ := store.Exists("certificates/CERT-2024-000042.pdf")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCertificateEnqueueBeforeStart(t *testing.T) {
	svc, _ := newCertificateFixture(t)
	assert.Error(t, svc.EnqueueRender(context.Background(), 15))
}

func TestCertificateDownloadLinkRoundTrip(t *testing.T) {
	svc, _ := newCertificateFixture(t)

	link, err := svc.DownloadLink(context.Background(), 15, Actor{Type: models.ActorStudent, ID: studentID})
	require.NoError(t, err)
	assert.Equal(t, "CERT-2024-000042", link.CertificateNumber)

	rc, name, err := svc.Open(link.Token)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "CERT-2024-000042.pdf", name)
	assert.Equal(t, "%PDF-", string(body[:5]))
}

func TestCertificateDownloadLinkHidesOtherStudents(t *testing.T) {
	svc, _ := newCertificateFixture(t)
	_, err := svc.DownloadLink(context.Background(), 15, Actor{Type: models.ActorStudent, ID: studentID + 1})
	assert.ErrorIs(t, err, appErrors.ErrEnrollmentNotFound)

	_, err = svc.DownloadLink(context.Background(), 15, Actor{Type: models.ActorAdmin, ID: adminID})
	assert.NoError(t, err)
}

func TestCertificateDownloadLinkRenderFailure(t *testing.T) {
	svc, _ := newCertificateFixture(t)
	svc.renderer = failingRenderer{}
	_, err := svc.DownloadLink(context.Background(), 15, Actor{Type: models.ActorAdmin, ID: adminID})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestCertificateOpenRejectsBadToken(t *testing.T) {
	svc, _ := newCertificateFixture(t)
	_, _, err := svc.Open("not-a-token")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
