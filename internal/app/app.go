package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/cache"
	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/mailer"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	rdb       *redis.Client
	cacheGw   *cache.Gateway
	mail      *mailer.Mailer
	sched     *cron.Cron
}

var (
	_ DBProvider     = (*Application)(nil)
	_ ConfigProvider = (*Application)(nil)
	_ CacheProvider  = (*Application)(nil)
	_ MailProvider   = (*Application)(nil)
	_ AppContext     = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Cache() *cache.Gateway {
	return a.cacheGw
}

// OverrideCache replaces the cache gateway (used in tests).
func (a *Application) OverrideCache(gw *cache.Gateway) {
	a.cacheGw = gw
}

func (a *Application) Mailer() *mailer.Mailer {
	return a.mail
}

// OverrideMailer replaces the mailer (used in tests).
func (a *Application) OverrideMailer(m *mailer.Mailer) {
	a.mail = m
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// Redis-backed response cache; requests degrade to store-only when
	// redis is unreachable.
	a.rdb = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Passwd,
		DB:       cfg.Redis.DB,
	})
	a.cacheGw = cache.NewGateway(a.rdb, time.Duration(cfg.Redis.TTLSeconds)*time.Second)

	a.mail, err = mailer.NewMailer(cfg.Smtp)
	if err != nil {
		zap.S().Errorf("mailer init failed: %v", err)
	}

	go func() {
		time.Sleep(3 * time.Second)
		a.checkSuper()
	}()

	a.initJobs()
}

func (a *Application) MigrateDB(track bool) error {
	migrator := a.gormDB.Migrator()
	if track {
		migrator = a.gormDB.Debug().Migrator()
	}
	if err := migrator.AutoMigrate(domain.Tables...); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.mail != nil {
		a.mail.Release()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = zap.L().Sync()
}
