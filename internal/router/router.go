package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/guestpostlinks/pr-admin-api/internal/handler"
	"github.com/guestpostlinks/pr-admin-api/internal/middleware"
	"github.com/guestpostlinks/pr-admin-api/internal/repository"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
	"github.com/guestpostlinks/pr-admin-api/pkg/config"
	"github.com/guestpostlinks/pr-admin-api/pkg/firebase"
	"github.com/guestpostlinks/pr-admin-api/pkg/logger"
	corsmiddleware "github.com/guestpostlinks/pr-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/guestpostlinks/pr-admin-api/pkg/middleware/requestid"
)

// Permission modules referenced by route guards.
const (
	ModuleUsers         = "users"
	ModuleRoles         = "roles"
	ModuleDistributions = "pr-distributions"
)

// Deps bundles everything the router needs.
type Deps struct {
	Config        *config.Config
	Logger        *zap.Logger
	AuthService   *service.AuthService
	Users         *repository.UserRepository
	Verifier      *firebase.Verifier
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	RoleHandler   *handler.RoleHandler
	Distributions *handler.DistributionHandler
	Metrics       *handler.MetricsHandler
	MetricsSvc    *service.MetricsService
}

// New assembles the gin engine with all routes mounted.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.Logger))
	r.Use(corsmiddleware.New(d.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.MetricsSvc))

	r.GET("/health", d.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "OK",
			"environment": d.Config.Env,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", d.Metrics.Prometheus)
	r.GET("/metrics/snapshot", d.Metrics.Snapshot)

	if d.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.Config.APIPrefix)

	// A nil *Verifier must stay a nil interface so the middleware's nil
	// check keeps working when the firebase integration is disabled.
	var verifier middleware.IdentityVerifier
	if d.Verifier != nil {
		verifier = d.Verifier
	}
	authed := middleware.Auth(d.AuthService, d.Users, verifier)

	auth := api.Group("/auth")
	{
		auth.POST("/register", d.AuthHandler.Register)
		auth.POST("/login", d.AuthHandler.Login)
		auth.POST("/forgotpassword", d.AuthHandler.ForgotPassword)
		auth.POST("/resetpassword", d.AuthHandler.ResetPassword)

		auth.GET("/users/me", authed, d.AuthHandler.Me)

		auth.POST("/createuser", authed, middleware.RequirePermission(ModuleUsers, middleware.ActionWrite), d.UserHandler.Create)
		auth.GET("/getuser/:id", authed, middleware.RequirePermission(ModuleUsers, middleware.ActionRead), d.UserHandler.Get)
		auth.GET("/getallusers", authed, middleware.RequirePermission(ModuleUsers, middleware.ActionRead), d.UserHandler.List)
		auth.PUT("/updateuser/:id", authed, middleware.RequirePermission(ModuleUsers, middleware.ActionWrite), d.UserHandler.Update)
		auth.DELETE("/deleteuser/:id", authed, middleware.RequirePermission(ModuleUsers, middleware.ActionDelete), d.UserHandler.Delete)
	}

	roles := api.Group("/roles", authed)
	{
		roles.GET("/getRoles", middleware.RequirePermission(ModuleRoles, middleware.ActionRead), d.RoleHandler.List)
		roles.GET("/getRole/:id", middleware.RequirePermission(ModuleRoles, middleware.ActionRead), d.RoleHandler.Get)
		roles.GET("/permission/count", middleware.RequirePermission(ModuleRoles, middleware.ActionRead), d.RoleHandler.PermissionUsage)
		roles.POST("/createRole", middleware.RequirePermission(ModuleRoles, middleware.ActionWrite), d.RoleHandler.Create)
		roles.PUT("/updateRole/:id", middleware.RequirePermission(ModuleRoles, middleware.ActionWrite), d.RoleHandler.Update)
		roles.DELETE("/deleteRole/:id", middleware.RequirePermission(ModuleRoles, middleware.ActionDelete), d.RoleHandler.Delete)
	}

	distributions := api.Group("/pr-distributions")
	{
		// Share-link verification, report data and exports stay reachable
		// without a session; their access control is the email allow-list.
		distributions.GET("/verifyPRReportUrl", d.Distributions.VerifyURL)
		distributions.POST("/getPRReportData", d.Distributions.GetReportData)
		distributions.GET("/exportPRReportCsv/:grid_id", d.Distributions.ExportCSV)
		distributions.GET("/exportPRReportPdf/:grid_id", d.Distributions.ExportPDF)

		distributions.POST("/uploadPR", authed, middleware.RequirePermission(ModuleDistributions, middleware.ActionWrite), d.Distributions.Upload)
		distributions.GET("/getPRReportByBatchId/:batch_id", authed, middleware.RequirePermission(ModuleDistributions, middleware.ActionRead), d.Distributions.GetByBatchID)
		distributions.GET("/getPRReportGroupByGridId/:grid_id", authed, middleware.RequirePermission(ModuleDistributions, middleware.ActionRead), d.Distributions.GetGroupByGridID)
		distributions.GET("/getPRReportGroups", authed, middleware.RequirePermission(ModuleDistributions, middleware.ActionRead), d.Distributions.ListGroups)
		distributions.DELETE("/deletePRReport/:grid_id", authed, middleware.RequirePermission(ModuleDistributions, middleware.ActionDelete), d.Distributions.Delete)
		distributions.PUT("/sharePRReport/:grid_id", authed, middleware.RequirePermission(ModuleDistributions, middleware.ActionWrite), d.Distributions.Share)
	}

	return r
}
