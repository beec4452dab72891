package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=campusgate port=5432 sslmode=disable TimeZone=Asia/Kolkata"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

var API_ENV = os.Getenv("API_ENV")

type GatePassSettings struct {
	// SecurityBuffer widens the validity window on both ends at check-out.
	SecurityBuffer          time.Duration
	UsedWindow              time.Duration
	RequireRejectionComment bool

	NotifyWorkers     int
	NotifyQueueSize   int
	NotifyMaxAttempts int
	NotifyRetryDelay  time.Duration
}

func DefaultGatePassSettings() GatePassSettings {
	return GatePassSettings{
		SecurityBuffer:    24 * time.Hour,
		UsedWindow:        7 * 24 * time.Hour,
		NotifyWorkers:     4,
		NotifyQueueSize:   256,
		NotifyMaxAttempts: 3,
		NotifyRetryDelay:  30 * time.Second,
	}
}

func LoadGatePassSettings() GatePassSettings {
	s := DefaultGatePassSettings()
	s.SecurityBuffer = envDuration("GATEPASS_SECURITY_BUFFER", s.SecurityBuffer)
	s.UsedWindow = envDuration("GATEPASS_USED_WINDOW", s.UsedWindow)
	s.RequireRejectionComment = envBool("GATEPASS_REQUIRE_REJECTION_COMMENT", s.RequireRejectionComment)
	s.NotifyWorkers = envInt("NOTIFY_WORKERS", s.NotifyWorkers)
	s.NotifyQueueSize = envInt("NOTIFY_QUEUE_SIZE", s.NotifyQueueSize)
	s.NotifyMaxAttempts = envInt("NOTIFY_MAX_ATTEMPTS", s.NotifyMaxAttempts)
	s.NotifyRetryDelay = envDuration("NOTIFY_RETRY_DELAY", s.NotifyRetryDelay)
	return s
}

// PoolSettings bounds the postgres connection pool.
type PoolSettings struct {
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
}

func LoadPoolSettings() PoolSettings {
	return PoolSettings{
		MaxIdle:     envInt("DATABASE_MAX_IDLE_CONNS", 10),
		MaxOpen:     envInt("DATABASE_MAX_OPEN_CONNS", 100),
		MaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
