package main

import (
	"context"
	"time"

	"github.com/sergioamr/farm-management/internal/model"
	"github.com/sergioamr/farm-management/internal/repository"
	"github.com/sergioamr/farm-management/internal/service"
	"github.com/sergioamr/farm-management/pkg/config"
	"github.com/sergioamr/farm-management/pkg/database"
	"github.com/sergioamr/farm-management/pkg/jwtutil"
	"github.com/sergioamr/farm-management/pkg/logger"
	"go.uber.org/zap"
)

// createadmin seeds the first admin account from the ADMIN_* variables.
// Running it again is harmless: an existing email or username is left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	if cfg.Admin.Password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	db, err := database.Open(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db, log)
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), jwtutil.NewJWTUtil(&cfg.JWT), service.Deps{Log: log})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, created, err := auth.EnsureAdmin(ctx, service.RegisterInput{
		Username:  cfg.Admin.Username,
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: "Admin",
		LastName:  "User",
	})
	if err != nil {
		log.Fatal("Failed to create admin user", zap.Error(err))
	}
	if !created {
		log.Info("Admin user already exists", zap.String("email", cfg.Admin.Email))
		return
	}
	log.Info("Admin user created successfully", zap.String("id", user.ID), zap.String("email", user.Email))
}
