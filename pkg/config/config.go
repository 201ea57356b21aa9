package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root configuration struct, loaded once at boot and
// passed down by value/reference to every collaborator that needs it.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Grid      GridConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GridConfig describes the weekly time discretisation for operators.
// Only the startup log line in cmd/scheduler-api reads it: the model
// builder, the solver and the handler layer all use pkg/grid's
// compile-time constants, so changing these values does not change how
// slots are placed or rendered.
type GridConfig struct {
	StartHour int
	SlotCount int
	DayCount  int
}

// SchedulerConfig governs the Level Solver's and Generator's runtime
// behaviour: how long each level gets to solve, which academic levels
// are solved and in what order, how long a distributed generation lock
// is held before it self-expires.
type SchedulerConfig struct {
	LevelBudget       time.Duration
	LevelOrder        []int
	GenerationLockTTL time.Duration
}

// Load reads configuration from the environment (and an optional .env
// file), applying defaults for anything unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// A missing .env is fine — the environment and defaults cover it.
	// viper reports the miss as ConfigFileNotFoundError when searching
	// paths but as a bare fs error when the file is named explicitly.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Grid = GridConfig{
		StartHour: v.GetInt("GRID_START_HOUR"),
		SlotCount: v.GetInt("GRID_SLOT_COUNT"),
		DayCount:  v.GetInt("GRID_DAY_COUNT"),
	}

	cfg.Scheduler = SchedulerConfig{
		LevelBudget:       parseDuration(v.GetString("SCHEDULER_LEVEL_BUDGET"), 300*time.Second),
		LevelOrder:        parseLevelOrder(v.GetString("SCHEDULER_LEVEL_ORDER"), []int{5, 4, 3, 2}),
		GenerationLockTTL: parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 10*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_engine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRID_START_HOUR", 7)
	v.SetDefault("GRID_SLOT_COUNT", 12)
	v.SetDefault("GRID_DAY_COUNT", 5)

	v.SetDefault("SCHEDULER_LEVEL_BUDGET", "300s")
	v.SetDefault("SCHEDULER_LEVEL_ORDER", "5,4,3,2")
	v.SetDefault("SCHEDULER_LOCK_TTL", "10m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseLevelOrder reads a comma-separated list of academic levels,
// falling back wholesale on any malformed entry rather than solving a
// partial order.
func parseLevelOrder(raw string, fallback []int) []int {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return fallback
	}
	levels := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fallback
		}
		levels = append(levels, n)
	}
	return levels
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
