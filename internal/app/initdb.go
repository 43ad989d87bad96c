package app

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gocart-dev/gocart/config"
	"github.com/gocart-dev/gocart/internal/domain"
	"github.com/gocart-dev/gocart/pkg/common"
)

func getDatabase(cfg config.DBConfig) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=%s",
		cfg.Host, cfg.User, cfg.Passwd, cfg.Name, cfg.Port, time.Local.String())

	logLevel := gormlogger.Silent
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		// Translated errors let handlers classify duplicate-key and
		// foreign-key violations without driver-specific checks.
		TranslateError: true,
	})
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db
}

// checkSuper seeds the default admin account when missing and repairs its
// role/active flags when they drifted.
func (a *Application) checkSuper() {
	const superEmail = "admin@gocart.dev"
	const defaultPassword = "gocart-admin"

	var admin domain.User
	err := a.gormDB.Where("email = ?", superEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := common.HashPassword(defaultPassword)
		if herr != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(herr))
			return
		}
		if err := a.gormDB.Create(&domain.User{
			ID:       common.UUID(),
			Name:     "administrator",
			Email:    superEmail,
			Password: hashed,
			Role:     domain.RoleAdmin,
			Active:   true,
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	repairRole := admin.Role != domain.RoleAdmin
	repairActive := !admin.Active
	if !repairRole && !repairActive {
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if repairRole {
		updates["role"] = domain.RoleAdmin
	}
	if repairActive {
		updates["active"] = true
	}
	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("email", superEmail),
		zap.Bool("roleReset", repairRole),
		zap.Bool("reactivated", repairActive))
}
