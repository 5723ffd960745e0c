package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafe-pos/internal/config"
	"cafe-pos/internal/events"
	"cafe-pos/internal/handler"
	"cafe-pos/internal/jobs"
	"cafe-pos/internal/model"
	"cafe-pos/internal/repository"
	"cafe-pos/internal/service"
	"cafe-pos/internal/upload"
	"cafe-pos/internal/ws"
	"cafe-pos/pkg/database"
	"cafe-pos/pkg/jwt"
	"cafe-pos/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config and logger
	cfg, envLoaded := config.Load()
	log, err := logger.Init(logger.Config{Mode: cfg.Log.Mode, Filename: cfg.Log.File})
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck
	if !envLoaded {
		log.Warn(".env file not found, using process environment")
	}
	if cfg.JWTSecret != "" {
		jwt.SetSecretKey(cfg.JWTSecret)
	}
	jwt.SetTokenTTL(cfg.JWTTTL)
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using local time", zap.String("timezone", cfg.Timezone))
		loc = time.Local
	}

	// 2. Setup Database
	db, err := database.Connect(database.Options{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN(cfg.Timezone),
		MaxIdleConns: 10,
		MaxOpenConns: 50,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	// Auto Migrate (use a separate migration tool for production schemas)
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Fatal("auto migrate failed", zap.Error(err))
	}

	// 3. Seed default privileges, roles, admin user and settings
	seedDefaults(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Event bus and image storage
	var publisher events.Publisher = events.Nop{}
	if cfg.Redis.Enabled() {
		p, err := events.NewRedisPublisher(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn("redis unavailable, events disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer publisher.Close()

	localStore, err := upload.NewLocalStore(cfg.UploadDir, "receipt-")
	if err != nil {
		log.Fatal("failed to prepare upload directory", zap.Error(err))
	}
	var images upload.Store = localStore
	if cfg.Cloudinary.Enabled() {
		cld, err := upload.NewCloudinaryStore(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			log.Warn("cloudinary disabled", zap.Error(err))
		} else {
			images = upload.NewFallbackStore(cld, localStore)
		}
	}

	// 6. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	historyRepo := repository.NewLoginHistoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	customerRepo := repository.NewCustomerRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	settingRepo := repository.NewSettingRepo(db)
	reportRepo := repository.NewReportRepo(db)

	notificationService := service.NewNotificationService(notificationRepo, wsHub, publisher)
	orderService := service.NewOrderService(saleRepo, customerRepo, notificationService, images, db)
	saleService := service.NewSaleService(saleRepo, customerRepo, notificationService, db)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, wsHub)
	customerService := service.NewCustomerService(customerRepo)
	reportService := service.NewReportService(reportRepo)
	settingService := service.NewSettingService(settingRepo)
	authService := service.NewAuthService(userRepo, historyRepo, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, historyRepo)

	h := handlers{
		auth:          handler.NewAuthHandler(authService),
		user:          handler.NewUserHandler(userService),
		role:          handler.NewRoleHandler(roleRepo, privilegeRepo),
		order:         handler.NewOrderHandler(orderService),
		sale:          handler.NewSaleHandler(saleService),
		catalog:       handler.NewCatalogHandler(catalogService),
		customer:      handler.NewCustomerHandler(customerService),
		notification:  handler.NewNotificationHandler(notificationService),
		report:        handler.NewReportHandler(reportService),
		setting:       handler.NewSettingHandler(settingService),
		userRepo:      userRepo,
		orderRateSpec: cfg.OrderRate,
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "Cafe POS v1.0",
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigin}))

	app.Static("/uploads", cfg.UploadDir)
	if err := registerRoutes(app, h, wsHub); err != nil {
		log.Fatal("failed to register routes", zap.Error(err))
	}

	// 8. Housekeeping jobs
	scheduler := jobs.New(loc, notificationService, userService)
	if err := scheduler.Start(); err != nil {
		log.Error("failed to start scheduler", zap.Error(err))
	}

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	scheduler.Stop()
	if err := app.Shutdown(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Error("failed to close database", zap.Error(err))
	}
	log.Info("server exited")
}
