package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	MigrationsPath string

	// Mapping engine
	MappingSaveWarnThreshold int
	MappingSaveHardLimit     int
	AllocationRoundingPlaces int32

	// HTTP surface
	RateLimit          string   // ulule/limiter formatted rate, e.g. "120-M"
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("MAPPING_SAVE_WARN_THRESHOLD", 500)
	viper.SetDefault("MAPPING_SAVE_HARD_LIMIT", 2000)
	viper.SetDefault("ALLOCATION_ROUNDING_PLACES", 2)
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Values from .env can then be overridden by actual environment variables.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080" // Default port
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "file://migrations"
	}

	cfg.MappingSaveWarnThreshold = viper.GetInt("MAPPING_SAVE_WARN_THRESHOLD")
	if cfg.MappingSaveWarnThreshold <= 0 {
		cfg.MappingSaveWarnThreshold = 500
		log.Printf("Warning: Invalid value for MAPPING_SAVE_WARN_THRESHOLD. Defaulting to %d.\n", cfg.MappingSaveWarnThreshold)
	}

	cfg.MappingSaveHardLimit = viper.GetInt("MAPPING_SAVE_HARD_LIMIT")
	if cfg.MappingSaveHardLimit < cfg.MappingSaveWarnThreshold {
		cfg.MappingSaveHardLimit = max(2000, cfg.MappingSaveWarnThreshold)
		log.Printf("Warning: MAPPING_SAVE_HARD_LIMIT is below the warning threshold. Defaulting to %d.\n", cfg.MappingSaveHardLimit)
	}

	places := viper.GetInt("ALLOCATION_ROUNDING_PLACES")
	if places < 0 || places > 8 {
		log.Printf("Warning: Invalid value for ALLOCATION_ROUNDING_PLACES ('%d'). Defaulting to 2.\n", places)
		places = 2
	}
	cfg.AllocationRoundingPlaces = int32(places)

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "120-M"
	}

	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}
