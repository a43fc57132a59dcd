package db

import (
	"fmt"
	"strings"

	"naijashop/internal/config"
	"naijashop/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// Connect はDBに接続して *gorm.DB を返す。
// DATABASE_URL が sqlite:// で始まる場合はSQLite（ローカル開発・テスト用）。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel(cfg)),
	}

	// DATABASE_URL があれば最優先で使う
	if dsn := cfg.DatabaseURL; dsn != "" {
		if strings.HasPrefix(dsn, sqlitePrefix) {
			return openSQLite(strings.TrimPrefix(dsn, sqlitePrefix), gcfg)
		}
		return gorm.Open(postgres.Open(dsn), gcfg)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
	return gorm.Open(postgres.Open(dsn), gcfg)
}

// テスト用。名前付きのインメモリSQLiteを開いてマイグレーションする
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := openSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// 全テーブルを作成・更新
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func openSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqliteは書き込みが1本なので接続も1本に絞る
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func logLevel(cfg config.Config) logger.LogLevel {
	if cfg.IsProduction() {
		return logger.Error
	}
	return logger.Warn
}
