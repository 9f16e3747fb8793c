package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/guestpostlinks/pr-admin-api/api/swagger"
	"github.com/guestpostlinks/pr-admin-api/internal/handler"
	"github.com/guestpostlinks/pr-admin-api/internal/repository"
	"github.com/guestpostlinks/pr-admin-api/internal/router"
	"github.com/guestpostlinks/pr-admin-api/internal/service"
	"github.com/guestpostlinks/pr-admin-api/pkg/cache"
	"github.com/guestpostlinks/pr-admin-api/pkg/config"
	"github.com/guestpostlinks/pr-admin-api/pkg/database"
	"github.com/guestpostlinks/pr-admin-api/pkg/firebase"
	"github.com/guestpostlinks/pr-admin-api/pkg/logger"
	"github.com/guestpostlinks/pr-admin-api/pkg/mail"
	"github.com/guestpostlinks/pr-admin-api/pkg/response"
)

// @title PR Admin API
// @version 1.0.0
// @description Backend for user administration and PR distribution reports
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	response.Init(cfg.Env)
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	var verifier *firebase.Verifier
	if cfg.Firebase.Enabled {
		verifier, err = firebase.NewVerifier(context.Background(), cfg.Firebase)
		if err != nil {
			logr.Sugar().Fatalw("failed to init firebase verifier", "error", err)
		}
	}

	validate := validator.New()
	mailer := mail.NewMailer(cfg.SMTP)
	otpStore := cache.NewOTPStore(redisClient)

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, roleRepo, otpStore, mailer, cfg.JWT, cfg.Reset.OTPTTL, validate, logr)
	userSvc := service.NewUserService(userRepo, roleRepo, distributionRepo, validate, logr)
	roleSvc := service.NewRoleService(roleRepo, userRepo, validate, logr)
	distributionSvc := service.NewDistributionService(distributionRepo, validate, logr, metricsSvc)

	engine := router.New(router.Deps{
		Config:        cfg,
		Logger:        logr,
		AuthService:   authSvc,
		Users:         userRepo,
		Verifier:      verifier,
		AuthHandler:   handler.NewAuthHandler(authSvc),
		UserHandler:   handler.NewUserHandler(userSvc),
		RoleHandler:   handler.NewRoleHandler(roleSvc),
		Distributions: handler.NewDistributionHandler(distributionSvc, cfg.Uploads.MaxFileSizeBytes),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
		MetricsSvc:    metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := engine.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
