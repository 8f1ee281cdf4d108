package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devSecret = "dev-secret-change-in-production"

// Config holds process-wide settings. It is loaded once at startup and passed
// by value to the constructors that need it.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURI string
	JWTSecret   string
	JWTExpiry   time.Duration

	// DBAutoMigrate creates the schema at startup.
	DBAutoMigrate bool
	// DBTLSSkipVerify connects to the database over TLS without verifying the
	// server certificate (managed cloud databases).
	DBTLSSkipVerify bool

	Password PasswordConfig
}

// PasswordConfig tunes the password hasher work factor.
type PasswordConfig struct {
	Algorithm         string
	Argon2MemoryKB    uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
	BcryptCost        int
}

// IsProduction reports whether the service runs with production defaults.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment. A .env file, if present,
// must be loaded by the caller beforehand.
func Load() (Config, error) {
	env := getEnv("ENV", "development")
	prod := env == "production"

	cfg := Config{
		Port:        getEnv("PORT", "3000"),
		Env:         env,
		LogLevel:    getEnv("LOG_LEVEL", ""),
		DatabaseURI: getEnv("DATABASE_URI", ""),
		JWTSecret:   getEnv("JWT_SECRET", devSecret),
		Password: PasswordConfig{
			Algorithm: strings.ToLower(getEnv("PASSWORD_ALGORITHM", "argon2id")),
		},
	}

	var err error
	if cfg.JWTExpiry, err = getDuration("JWT_EXPIRY", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.DBAutoMigrate, err = getBool("DB_AUTO_MIGRATE", !prod); err != nil {
		return Config{}, err
	}
	if cfg.DBTLSSkipVerify, err = getBool("DB_TLS_SKIP_VERIFY", prod); err != nil {
		return Config{}, err
	}

	mem, err := getUint("ARGON2_MEMORY_KB", 64*1024, 32)
	if err != nil {
		return Config{}, err
	}
	iter, err := getUint("ARGON2_ITERATIONS", 3, 32)
	if err != nil {
		return Config{}, err
	}
	par, err := getUint("ARGON2_PARALLELISM", 2, 8)
	if err != nil {
		return Config{}, err
	}
	cost, err := getUint("BCRYPT_COST", 10, 8)
	if err != nil {
		return Config{}, err
	}
	cfg.Password.Argon2MemoryKB = uint32(mem)
	cfg.Password.Argon2Iterations = uint32(iter)
	cfg.Password.Argon2Parallelism = uint8(par)
	cfg.Password.BcryptCost = int(cost)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.DatabaseURI == "" {
		return errors.New("DATABASE_URI must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == devSecret {
		return errors.New("JWT_SECRET must be set in production environment")
	}
	if c.JWTExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	switch c.Password.Algorithm {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unsupported PASSWORD_ALGORITHM %q", c.Password.Algorithm)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func getUint(key string, fallback uint64, bits int) (uint64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return n, nil
}
