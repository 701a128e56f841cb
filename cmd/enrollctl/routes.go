package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/enrollment-portal-api/api/swagger"
	"github.com/noah-isme/enrollment-portal-api/internal/handler"
	"github.com/noah-isme/enrollment-portal-api/internal/middleware"
	"github.com/noah-isme/enrollment-portal-api/internal/models"
	"github.com/noah-isme/enrollment-portal-api/internal/service"
	"github.com/noah-isme/enrollment-portal-api/pkg/config"
	"github.com/noah-isme/enrollment-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/enrollment-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/enrollment-portal-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	auth         *handler.AuthHandler
	students     *handler.StudentHandler
	applications *handler.ApplicationHandler
	enrollments  *handler.EnrollmentHandler
	catalog      *handler.CatalogHandler
	activity     *handler.ActivityHandler
	certificates *handler.CertificateHandler
	system       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, log *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.system.Health)
	r.GET("/ready", h.system.Ready)
	r.GET("/metrics", h.system.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)
	api.POST("/students/register", h.students.Register)
	api.GET("/certificates/download", h.certificates.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))
	authed.GET("/auth/me", h.auth.Whoami)
	authed.GET("/courses", h.catalog.Courses)
	authed.GET("/advisers", h.catalog.Advisers)

	me := authed.Group("/me")
	me.Use(middleware.RequireRoles(models.RoleStudent))
	me.GET("", h.students.Me)
	me.PUT("", h.students.UpdateMe)
	me.POST("/applications", h.applications.Submit)
	me.POST("/enrollments/:id/complete", h.enrollments.MarkCompleted)
	me.GET("/enrollments/:id/certificate", h.certificates.Link)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/students", h.students.List)
	admin.DELETE("/students/:id", h.students.Delete)
	admin.POST("/applications/:id/approve", h.applications.Approve)
	admin.POST("/applications/:id/reject", h.applications.Reject)
	admin.POST("/enrollments/:id/complete", h.enrollments.MarkCompleted)
	admin.POST("/enrollments/:id/approve-completion", h.enrollments.ApproveCompletion)
	admin.POST("/enrollments/:id/drop", h.enrollments.Drop)
	admin.GET("/enrollments/:id/certificate", h.certificates.Link)
	admin.GET("/completions/pending", h.enrollments.PendingCompletions)
	admin.GET("/completions/pending/export", h.enrollments.ExportPendingCompletions)
	admin.GET("/activity", h.activity.List)

	return r
}
