package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
	"github.com/noah-isme/enrollment-portal-api/pkg/export"
	"github.com/noah-isme/enrollment-portal-api/pkg/jobs"
	"github.com/noah-isme/enrollment-portal-api/pkg/storage"
)

const certificateRenderJob = "certificate_render"

type issuedCertificateSource interface {
	FindIssuedCertificate(ctx context.Context, enrollmentID int64) (*models.IssuedCertificate, error)
}

type certificateRenderer interface {
	Render(c export.Certificate) ([]byte, error)
}

type certificateStorage interface {
	Save(key string, data []byte) error
	Open(key string) (io.ReadCloser, error)
	Exists(key string) (bool, error)
}

type downloadSigner interface {
	Generate(subject int64, key string) (string, time.Time, error)
	Parse(token string) (storage.DownloadClaims, error)
}

// CertificateConfig tunes rendering.
type CertificateConfig struct {
	SchoolName string
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// CertificateLink is a time limited download token for one certificate.
type CertificateLink struct {
	CertificateNumber string    `json:"certificate_number"`
	Token             string    `json:"token"`
	ExpiresAt         time.Time `json:"expires_at"`
}

// CertificateService renders issued certificates in the background and serves
// them through signed download links.
type CertificateService struct {
	source   issuedCertificateSource
	renderer certificateRenderer
	storage  certificateStorage
	signer   downloadSigner
	metrics  *MetricsService
	logger   *zap.Logger
	school   string
	queue    *jobs.Queue
}

func NewCertificateService(source issuedCertificateSource, renderer certificateRenderer, store certificateStorage, signer downloadSigner, metrics *MetricsService, logger *zap.Logger, cfg CertificateConfig) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CertificateService{
		source:   source,
		renderer: renderer,
		storage:  store,
		signer:   signer,
		metrics:  metrics,
		logger:   logger,
		school:   cfg.SchoolName,
	}
	s.queue = jobs.NewQueue("certificates", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnResult: func(_ jobs.Job, err error) {
			s.metrics.RecordCertificateJob(err == nil)
		},
	})
	return s
}

// Start launches the render workers.
func (s *CertificateService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for in-flight renders to finish.
func (s *CertificateService) Stop() {
	s.queue.Stop()
}

// EnqueueRender schedules rendering for an approved enrollment.
func (s *CertificateService) EnqueueRender(_ context.Context, enrollmentID int64) error {
	return s.queue.Enqueue(jobs.Job{
		Key:     fmt.Sprintf("certificate:%d", enrollmentID),
		Type:    certificateRenderJob,
		Payload: enrollmentID,
	})
}

func (s *CertificateService) handle(ctx context.Context, job jobs.Job) error {
	id, ok := job.Payload.(int64)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	_, err := s.Render(ctx, id)
	return err
}

// Render draws the certificate of an approved enrollment and stores it.
// It returns the storage key.
func (s *CertificateService) Render(ctx context.Context, enrollmentID int64) (string, error) {
	cert, err := s.load(ctx, enrollmentID)
	if err != nil {
		return "", err
	}
	return s.render(cert)
}

func (s *CertificateService) render(cert *models.IssuedCertificate) (string, error) {
	doc := export.Certificate{
		SchoolName:  s.school,
		StudentName: cert.StudentName,
		CourseName:  cert.CourseName,
		NCLevel:     cert.NCLevel,
		Number:      cert.CertificateNumber,
		IssuedAt:    cert.ApprovedAt,
	}
	if cert.AdviserName != nil {
		doc.Adviser = *cert.AdviserName
	}
	data, err := s.renderer.Render(doc)
	if err != nil {
		return "", fmt.Errorf("render certificate %s: %w", cert.CertificateNumber, err)
	}
	key := cert.CertificateKey()
	if err := s.storage.Save(key, data); err != nil {
		return "", fmt.Errorf("store certificate %s: %w", cert.CertificateNumber, err)
	}
	s.logger.Info("certificate rendered",
		zap.Int64("enrollment_id", cert.EnrollmentID),
		zap.String("certificate_number", cert.CertificateNumber))
	return key, nil
}

// DownloadLink issues a signed link. Students only see their own certificates.
// A certificate that has not been rendered yet is rendered inline.
func (s *CertificateService) DownloadLink(ctx context.Context, enrollmentID int64, viewer Actor) (*CertificateLink, error) {
	cert, err := s.load(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if viewer.Type == models.ActorStudent && cert.StudentID != viewer.ID {
		return nil, appErrors.Clone(appErrors.ErrEnrollmentNotFound, "")
	}
	key := cert.CertificateKey()
	ok, err := s.storage.Exists(key)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check certificate")
	}
	if !ok {
		if _, err := s.render(cert); err != nil {
			s.metrics.RecordCertificateJob(false)
			return nil, appErrors.Internal(err, "failed to render certificate")
		}
		s.metrics.RecordCertificateJob(true)
	}
	token, expiresAt, err := s.signer.Generate(cert.EnrollmentID, key)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &CertificateLink{CertificateNumber: cert.CertificateNumber, Token: token, ExpiresAt: expiresAt}, nil
}

// Open resolves a download token to the stored PDF and its file name.
func (s *CertificateService) Open(token string) (io.ReadCloser, string, error) {
	claims, err := s.signer.Parse(strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid download link")
	}
	rc, err := s.storage.Open(claims.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, "", appErrors.Internal(err, "failed to open certificate")
	}
	name := claims.Key[strings.LastIndex(claims.Key, "/")+1:]
	return rc, name, nil
}

func (s *CertificateService) load(ctx context.Context, enrollmentID int64) (*models.IssuedCertificate, error) {
	cert, err := s.source.FindIssuedCertificate(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not issued")
		}
		return nil, appErrors.Persistence(err, "failed to load certificate")
	}
	return cert, nil
}
