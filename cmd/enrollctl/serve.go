package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/enrollment-portal-api/internal/handler"
	"github.com/noah-isme/enrollment-portal-api/internal/repository"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	"github.com/noah-isme/enrollment-portal-api/pkg/cache"
	"github.com/noah-isme/enrollment-portal-api/pkg/config"
	"github.com/noah-isme/enrollment-portal-api/pkg/database"
	"github.com/noah-isme/enrollment-portal-api/pkg/export"
	"github.com/noah-isme/enrollment-portal-api/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				a.cfg.Port = port
			}
			return serve(cmd.Context(), a.cfg, a.log, migrate)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "override PORT")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, log *zap.Logger, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if migrate {
		if _, err := database.NewMigrator(db, log).Up(ctx); err != nil {
			return err
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, log)
	defer cacheRepo.Close() //nolint:errcheck

	certStore, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		return fmt.Errorf("certificate storage: %w", err)
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Worklist.CacheTTL, log, redisClient != nil)
	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	applicationRepo := repository.NewCourseApplicationRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	adviserRepo := repository.NewAdviserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activitySvc := service.NewActivityService(activityRepo, log)
	authSvc := service.NewAuthService(userRepo, validate, log, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	certificateSvc := service.NewCertificateService(
		enrollmentRepo,
		export.NewCertificateRenderer(),
		certStore,
		storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL),
		metrics,
		log,
		service.CertificateConfig{
			SchoolName: cfg.SchoolName,
			Workers:    cfg.Certificates.Workers,
			Retries:    cfg.Certificates.Retries,
		},
	)
	lifecycleSvc := service.NewLifecycleService(
		repository.NewLifecycleStore(db),
		activitySvc,
		log,
		service.WithWorklistCache(cacheSvc, cfg.Worklist.CacheTTL),
		service.WithLifecycleMetrics(metrics),
		service.WithCertificateEnqueuer(certificateSvc),
	)
	studentSvc := service.NewStudentService(studentRepo, repository.NewRegistrationStore(db), applicationRepo, enrollmentRepo, activitySvc, validate, log)
	catalogSvc := service.NewCatalogService(courseRepo, adviserRepo, cacheSvc, 10*time.Minute)
	exportSvc := service.NewExportService(lifecycleSvc, export.NewCSVExporter(), export.NewPDFExporter())

	checks := map[string]handler.Pinger{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	handlers := routeHandlers{
		auth:         handler.NewAuthHandler(authSvc),
		students:     handler.NewStudentHandler(studentSvc),
		applications: handler.NewApplicationHandler(lifecycleSvc),
		enrollments:  handler.NewEnrollmentHandler(lifecycleSvc, exportSvc),
		catalog:      handler.NewCatalogHandler(catalogSvc),
		activity:     handler.NewActivityHandler(activitySvc),
		certificates: handler.NewCertificateHandler(certificateSvc, cfg.APIPrefix+"/certificates/download"),
		system:       handler.NewMetricsHandler(metrics, checks),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, log, authSvc, metrics, handlers)

	certificateSvc.Start(ctx)
	defer certificateSvc.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
