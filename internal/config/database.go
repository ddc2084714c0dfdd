package config

import (
	"fmt"
	"os"
	"sync"
	"time"
)

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

// LoadDBConfig sizes the pool from APP_ENV unless DB_MAX_* overrides it.
func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		idle, open, lifetime := 5, 10, 30*time.Minute
		if os.Getenv("APP_ENV") == "production" {
			idle, open, lifetime = 20, 200, time.Hour
		}
		dbConfig = &DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     envDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  envDefault("DB_SSLMODE", "disable"),

			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", idle),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", open),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", lifetime),
			AutoMigrate:     envBool("DB_AUTO_MIGRATE", true),
		}
	})
	return dbConfig
}

// DSN formats the connection string for the postgres driver.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
	)
}
