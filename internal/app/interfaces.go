package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/cache"
	"github.com/gocart-dev/gocart/pkg/mailer"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// CacheProvider provides the response cache gateway
type CacheProvider interface {
	Cache() *cache.Gateway
}

// MailProvider provides the transactional mailer
type MailProvider interface {
	Mailer() *mailer.Mailer
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	CacheProvider
	MailProvider
	SchedulerProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
