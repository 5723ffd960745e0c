package main

import (
	"flag"

	"cafe-pos/internal/config"
	"cafe-pos/internal/repository"
	"cafe-pos/pkg/database"
	"cafe-pos/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	email := flag.String("email", "admin@example.com", "account to reset")
	newPassword := flag.String("password", "admin123", "new password")
	flag.Parse()

	// 1. Load config
	cfg, envLoaded := config.Load()
	log, err := logger.Init(logger.Config{Mode: cfg.Log.Mode})
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck
	if !envLoaded {
		log.Warn(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{Driver: cfg.DB.Driver, DSN: cfg.DB.DSN(cfg.Timezone)})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	// 3. Find user
	userRepo := repository.NewUserRepo(db)
	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatal("user not found", zap.String("email", *email), zap.Error(err))
	}

	// 4. Hash new password and invalidate the current session
	if err := user.SetPassword(*newPassword); err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		log.Fatal("failed to update password", zap.Error(err))
	}
	if err := userRepo.UpdateTokenVersion(user.ID, ""); err != nil {
		log.Fatal("failed to reset session", zap.Error(err))
	}

	log.Info("password reset", zap.String("email", *email))
}
