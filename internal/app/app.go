package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"taskdeck/internal/config"
	"taskdeck/internal/handlers"
	"taskdeck/internal/realtime"
	"taskdeck/internal/repositories"
	"taskdeck/internal/routes"
	"taskdeck/internal/services"
)

func Run() {
	cfg := config.LoadConfig()
	config.InitLogger(cfg.Server.Env)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		config.Logger.Fatalf("open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			config.Logger.Errorf("close database: %v", err)
		}
	}()
	if err := db.Ping(); err != nil {
		config.Logger.Fatalf("ping database: %v", err)
	}
	if err := repositories.EnsureSchema(context.Background(), db); err != nil {
		config.Logger.Fatalf("ensure schema: %v", err)
	}

	// === Redis (optional list cache) ===
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			config.Logger.Warnf("redis unreachable, task cache disabled: %v", err)
			redisClient = nil
		}
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	taskRepo := repositories.NewCachedTaskRepository(
		repositories.NewTaskRepository(db), redisClient, cfg.Redis.CacheTTL.Std())

	// === Realtime hub ===
	hub := realtime.NewHub()

	// === Services ===
	authService := services.NewAuthService([]byte(cfg.Auth.JWTSecret), cfg.Auth.AccessTTL.Std())
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	userService := services.NewUserService(userRepo, emailService, authService)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService, cfg.Auth.ResetTTL.Std())
	taskService := services.NewTaskService(taskRepo, hub, cfg.Tasks.DefaultPageSize)
	reminderService := services.NewReminderService(taskRepo, hub, cfg.Reminders)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, resetService)
	taskHandler := handlers.NewTaskHandler(taskService)
	wsHandler := handlers.NewWSHandler(hub, authService)

	// === Reminder sweep ===
	go reminderService.Run(context.Background())

	// === Gin ===
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewareStack()...)

	routes.SetupRoutes(router, []byte(cfg.Auth.JWTSecret), authHandler, taskHandler, wsHandler)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	config.Logger.Infof("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		config.Logger.Fatalf("server stopped: %v", err)
	}
}
