package main

import (
	"github.com/bloodlink-dev/bloodlink/db"
	"github.com/bloodlink-dev/bloodlink/internal/auth"
	"github.com/bloodlink-dev/bloodlink/internal/config"
	"github.com/bloodlink-dev/bloodlink/internal/handlers"
	"github.com/bloodlink-dev/bloodlink/internal/router"
	"github.com/bloodlink-dev/bloodlink/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := auth.InitJWTSecret(); err != nil {
		logrus.Fatalf("Failed to initialize JWT: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DSN()); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	if err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB); err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}

	services.InitMailer(cfg)
	handlers.RequireEmailConfirmation = cfg.RequireEmailConfirmation

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.NewRouter()

	logrus.Infof("Server running on :%s", cfg.Port)

	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
