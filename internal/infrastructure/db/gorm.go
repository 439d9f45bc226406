package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options selects the driver and the gorm log level.
type Options struct {
	Driver string
	DSN    string
	// Verbose logs every statement; otherwise only warnings and slow queries.
	Verbose bool
}

func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL, "":
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
}

func OpenGorm(opts Options) (*gorm.DB, error) {
	dial, err := Dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	level := logger.Warn
	if opts.Verbose {
		level = logger.Info
	}
	return OpenGormWithDialector(dial, &gorm.Config{Logger: logger.Default.LogMode(level)})
}

// OpenGormWithDialector opens, sizes the pool and pings. cfg may be nil.
func OpenGormWithDialector(dial gorm.Dialector, cfg ...*gorm.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if len(cfg) > 0 && cfg[0] != nil {
		gcfg = cfg[0]
	}
	db, err := gorm.Open(dial, gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
