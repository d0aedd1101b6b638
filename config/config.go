// Package config reads the settings of the bank tools from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/etnz/bank"
)

// Environment variables read by Load.
const (
	EnvDataFile           = "BANK_DATA_FILE"
	EnvDatabaseURL        = "BANK_DATABASE_URL"
	EnvRedisAddr          = "BANK_REDIS_ADDR"
	EnvDailyTransferLimit = "BANK_DAILY_TRANSFER_LIMIT"
	EnvWithdrawalLimit    = "BANK_WITHDRAWAL_LIMIT"
	EnvLockTimeout        = "BANK_LOCK_TIMEOUT"
	EnvActor              = "BANK_ACTOR"
	EnvLogLevel           = "BANK_LOG_LEVEL"
	EnvBackupDir          = "BANK_BACKUP_DIR"
)

// Config holds the settings of a bank process.
type Config struct {
	DataFile    string
	DatabaseURL string
	RedisAddr   string
	Actor       string
	LogLevel    string
	BackupDir   string
	Options     bank.Options
}

// Load reads an optional .env file in the working directory, then the
// environment. Unset variables keep their defaults.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not read env file: %w", err)
	}

	c := &Config{
		DataFile:    getEnv(EnvDataFile, "bank.jsonl"),
		DatabaseURL: getEnv(EnvDatabaseURL, ""),
		RedisAddr:   getEnv(EnvRedisAddr, ""),
		Actor:       getEnv(EnvActor, "system"),
		LogLevel:    getEnv(EnvLogLevel, "info"),
		BackupDir:   getEnv(EnvBackupDir, "backups"),
		Options:     bank.DefaultOptions(),
	}

	var err error
	if c.Options.DailyTransferLimit, err = getMoney(EnvDailyTransferLimit, c.Options.DailyTransferLimit); err != nil {
		return nil, err
	}
	if c.Options.WithdrawalLimit, err = getMoney(EnvWithdrawalLimit, c.Options.WithdrawalLimit); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(EnvLockTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid %s %q: want a positive duration like 2s", EnvLockTimeout, v)
		}
		c.Options.LockTimeout = d
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}
	return c, nil
}

// Logger returns a logger writing to stderr at level. Debug builds a
// development logger, other levels a production one.
func Logger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// getEnv returns the value of key, or fallback when it is not set.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getMoney(key string, fallback bank.Money) (bank.Money, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	m, err := bank.ParseMoney(v)
	if err != nil || !m.IsPositive() {
		return bank.Money{}, fmt.Errorf("invalid %s %q: want a positive amount", key, v)
	}
	return m, nil
}
