package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Suraj757/learning-profile-api/api/swagger"
	"github.com/Suraj757/learning-profile-api/internal/consolidation"
	"github.com/Suraj757/learning-profile-api/internal/handler"
	"github.com/Suraj757/learning-profile-api/internal/middleware"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/repository"
	"github.com/Suraj757/learning-profile-api/internal/service"
	"github.com/Suraj757/learning-profile-api/pkg/cache"
	"github.com/Suraj757/learning-profile-api/pkg/config"
	"github.com/Suraj757/learning-profile-api/pkg/database"
	"github.com/Suraj757/learning-profile-api/pkg/logger"
	"github.com/Suraj757/learning-profile-api/pkg/mailer"
	corsmiddleware "github.com/Suraj757/learning-profile-api/pkg/middleware/cors"
	reqidmiddleware "github.com/Suraj757/learning-profile-api/pkg/middleware/requestid"
	"github.com/Suraj757/learning-profile-api/pkg/storage"
)

// @title Begin Learning Profile API
// @version 0.1.0
// @description Child learning profile consolidation and classroom analytics
// @BasePath /
// @schemes http

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store backend selection. Postgres is the default; the in-memory store
	// keeps the full API usable without a database.
	var (
		profiles    repository.ProfileStore
		users       repository.UserStore
		classrooms  repository.ClassroomStore
		invitations repository.InvitationStore
	)
	switch cfg.Store.Backend {
	case config.StoreMemory:
		mem := repository.NewMemoryStore()
		profiles = mem.Profiles()
		users = mem.Users()
		classrooms = mem.Classrooms()
		invitations = mem.Invitations()
		logr.Info("using in-memory profile store")
	default:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
		}
		defer db.Close() //nolint:errcheck
		profiles = repository.NewProfileRepository(db)
		users = repository.NewUserRepository(db)
		classrooms = repository.NewClassroomRepository(db)
		invitations = repository.NewInvitationRepository(db)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Classroom.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, classroom cache disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Classroom.CacheTTL, logr, cacheRepo != nil)

	var files *storage.LocalStorage
	var signer *storage.SignedURLSigner
	if cfg.Reports.Enabled {
		files, err = storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
		}
		signer = storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					deleted, err := files.CleanupOlderThan(cfg.Reports.Retention)
					if err != nil {
						logr.Sugar().Warnw("report cleanup failed", "error", err)
					} else if len(deleted) > 0 {
						logr.Sugar().Infow("removed expired report files", "count", len(deleted))
					}
				}
			}
		}()
	}

	mail, err := mailer.NewSESMailer(ctx, cfg.Email, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init mailer", "error", err)
	}

	validate := validator.New()
	weights := consolidation.WeightsFromConfig(cfg.Consolidation)

	profileSvc := service.NewProfileService(profiles, validate, logr, weights, metricsSvc)
	sessionSvc := service.NewSessionService(users, validate, logr, cfg.Session)
	classroomSvc := service.NewClassroomService(classrooms, profiles, cacheSvc, files, signer, validate, logr, metricsSvc, cfg.Classroom.CacheTTL)
	invitationSvc := service.NewInvitationService(invitations, classrooms, mail, validate, logr, cfg.Invitations, cfg.Email.AppBaseURL)
	invitationSvc.Start(ctx)
	defer invitationSvc.Stop()

	profileHandler := handler.NewProfileHandler(profileSvc, classroomSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, cfg.Session)
	classroomHandler := handler.NewClassroomHandler(classroomSvc)
	invitationHandler := handler.NewInvitationHandler(invitationSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "store": cfg.Store.Backend})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", sessionHandler.Login)
	auth.GET("/session", sessionHandler.Session)
	auth.POST("/session", sessionHandler.SessionAction)
	auth.POST("/logout", sessionHandler.Logout)

	profilesGroup := api.Group("/profiles", middleware.OptionalSession(sessionSvc, cfg.Session))
	profilesGroup.POST("/progressive", profileHandler.Submit)
	profilesGroup.GET("/progressive", profileHandler.Get)
	profilesGroup.GET("/clp2-consolidate", profileHandler.Analysis)

	teacher := api.Group("/teacher", middleware.Session(sessionSvc, cfg.Session), middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
	if cfg.Classroom.Enabled {
		teacher.GET("/classroom/:id/overview", classroomHandler.Overview)
		teacher.GET("/classroom/:id/at-risk", classroomHandler.AtRisk)
		teacher.POST("/classroom/:id/at-risk", classroomHandler.RecordRiskFactor)
	}
	if cfg.Reports.Enabled {
		teacher.POST("/classroom/:id/report", classroomHandler.Report)
		api.GET("/reports/download", classroomHandler.DownloadReport)
	}
	teacher.GET("/classroom/:id/invitations", invitationHandler.List)

	api.POST("/invitations/bulk", middleware.Session(sessionSvc, cfg.Session), middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), invitationHandler.Bulk)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
