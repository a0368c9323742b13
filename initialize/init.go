package initialize

import (
	"context"
	"fmt"
	"net/http"

	"medstock/app/controllers"
	"medstock/app/db"
	jwtutil "medstock/app/jwt"
	"medstock/app/middleware"
	"medstock/app/models"
	"medstock/app/repo"
	"medstock/app/services"
	"medstock/app/storage"
	"medstock/config"
	"medstock/global"
	"medstock/router"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Router    http.Handler
	Scheduler *services.Scheduler
	Watcher   *storage.Watcher
	Backups   *services.BackupService
	Users     *services.UserService
}

func Build(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	global.Config = cfg

	gdb, err := db.Connect(db.Config{Host: cfg.DB.Host, Port: cfg.DB.Port, User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	global.Mdb = gdb

	if err := gdb.AutoMigrate(
		&models.User{}, &models.BackupCode{}, &models.Session{},
		&models.PasswordResetToken{}, &models.SecurityAuditLog{},
		&models.InventoryItem{}, &models.Backup{}, &models.Notification{},
		&models.HelpArticle{}, &models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Pass, DB: cfg.Redis.DB})
		global.Rdb = rdb
	}

	// Repositories
	userRepo := repo.NewUserRepository(gdb)
	codeRepo := repo.NewBackupCodeRepository(gdb)
	sessionRepo := repo.NewSessionRepository(gdb)
	resetRepo := repo.NewResetTokenRepository(gdb)
	auditRepo := repo.NewAuditRepository(gdb)
	inventoryRepo := repo.NewInventoryRepository(gdb)
	backupRepo := repo.NewBackupRepository(gdb)
	notificationRepo := repo.NewNotificationRepository(gdb)
	helpRepo := repo.NewHelpRepository(gdb)
	settingRepo := repo.NewSettingRepository(gdb)

	// Artifact store
	var store storage.ArtifactStore
	switch cfg.Backup.Driver {
	case "s3":
		s3 := cfg.Backup.S3
		store, err = storage.NewS3Store(context.Background(), s3.Endpoint, s3.AccessKey, s3.SecretKey, s3.Bucket, s3.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
	default:
		store, err = storage.NewLocalStore(cfg.Backup.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("local store: %w", err)
		}
	}

	// Services
	userSvc := services.NewUserService(userRepo, resetRepo)
	twoFactorSvc := services.NewTwoFactorService(userRepo, codeRepo, cfg.JWT.Issuer)
	sessionSvc := services.NewSessionService(sessionRepo, cfg.Session.TTL)
	auditSvc := services.NewAuditService(auditRepo, rdb)
	inventorySvc := services.NewInventoryService(inventoryRepo)
	notificationSvc := services.NewNotificationService(notificationRepo)
	helpSvc := services.NewHelpService(helpRepo)
	backupSvc := services.NewBackupService(cfg.Backup, backupRepo, inventoryRepo, auditRepo, userRepo, settingRepo, store, global.Logger)

	if err := userSvc.EnsureAdmin("admin@medstock.local", "Administrator", "admin123"); err != nil {
		return nil, fmt.Errorf("ensure admin: %w", err)
	}
	if err := helpSvc.SeedDefaults(); err != nil {
		return nil, fmt.Errorf("seed help: %w", err)
	}

	// Flag artifacts changed behind our back.
	var watcher *storage.Watcher
	if cfg.Backup.Driver != "s3" {
		watcher, err = storage.NewWatcher(cfg.Backup.StoragePath, global.Logger, backupSvc.MarkTampered)
		if err != nil {
			global.Logger.Warn().Err(err).Msg("artifact watcher unavailable")
		}
	}

	scheduler := services.NewScheduler(backupSvc, notificationSvc, userRepo, cfg.Backup.ScheduleEvery, global.Logger)

	// Controllers
	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	ctrls := router.Controllers{
		HTTP:          controllers.NewHTTPController(),
		Auth:          controllers.NewAuthController(userSvc, sessionSvc, twoFactorSvc, auditSvc, signer, cfg.Prod()),
		TwoFactor:     controllers.NewTwoFactorController(twoFactorSvc, auditSvc),
		Backup:        controllers.NewBackupController(backupSvc, userSvc, auditSvc),
		Security:      controllers.NewSecurityController(auditSvc),
		Inventory:     controllers.NewInventoryController(inventorySvc),
		Notifications: controllers.NewNotificationController(notificationSvc),
		Help:          controllers.NewHelpController(helpSvc),
	}
	authMW := &middleware.Auth{Signer: signer, Sessions: sessionSvc, Users: userRepo, Prod: cfg.Prod()}
	csrfMW := &middleware.CSRF{Prod: cfg.Prod(), Audit: auditSvc, Logger: global.Logger}

	h := router.NewRouter(ctrls, authMW, csrfMW)
	h = middleware.Logging(h)
	h = middleware.Metrics(h)

	return &App{Cfg: cfg, DB: gdb, Router: h, Scheduler: scheduler, Watcher: watcher, Backups: backupSvc, Users: userSvc}, nil
}
