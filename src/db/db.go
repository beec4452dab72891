package db

import (
	"campusgate/src/config"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDb opens the shared postgres connection on first use. Tests replace it
// with NewDB.
func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	gormConfig := &gorm.Config{}
	if config.API_ENV != "local" {
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	}
	_db, err := gorm.Open(postgres.Open(config.GetDSN()), gormConfig)
	if err != nil {
		log.Printf("Error connecting to database: %s\n", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		log.Fatalf("Error establishing connection to database: %s\n", err.Error())
	}
	pool := config.LoadPoolSettings()
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)

	db = _db
	return _db
}

func NewDB(newdb *gorm.DB) {
	db = newdb
}
