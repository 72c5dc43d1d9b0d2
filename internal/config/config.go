package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the price service. Values come
// from config.yaml when present, with environment variables taking
// precedence. Credentials come from the environment only.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`

	// Startup artifacts
	ModelPath   string `yaml:"model_path" env:"MODEL_PATH" env-default:"models/lgbm_model.txt"`
	FeaturePath string `yaml:"feature_path" env:"HDB_FEATURE_PATH" env-default:"datasets/HDB_Features.csv"`
	MRTPath     string `yaml:"mrt_path" env:"MRT_COORD_PATH" env-default:"datasets/coordinates/MRT_LatLong.csv"`
	MallPath    string `yaml:"mall_path" env:"MALL_COORD_PATH" env-default:"datasets/coordinates/Mall_LatLong.csv"`
	SchoolPath  string `yaml:"school_path" env:"SCHOOL_COORD_PATH" env-default:"datasets/coordinates/School_LatLong.csv"`

	// Optional alternative sources. When PostgresURL is set the
	// feature table is loaded from the address_features table instead
	// of the CSV. When the MRT CSV is absent and OverpassURL is set,
	// the transit reference set is pulled from OSM.
	PostgresURL string `yaml:"postgres_url" env:"POSTGRES_URL" env-default:""`
	OverpassURL string `yaml:"overpass_url" env:"OVERPASS_URL" env-default:""`

	// OneMap client
	OneMap OneMapConfig `yaml:"onemap"`
}

// OneMapConfig holds the geocoding/routing service settings.
type OneMapConfig struct {
	BaseURL        string `yaml:"base_url" env:"ONEMAP_BASE_URL" env-default:"https://www.onemap.gov.sg"`
	Email          string `yaml:"-" env:"ONEMAP_EMAIL"`
	Password       string `yaml:"-" env:"ONEMAP_PASSWORD"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"ONEMAP_TIMEOUT_SECONDS" env-default:"10"`
	MaxRetries     int    `yaml:"max_retries" env:"ONEMAP_MAX_RETRIES" env-default:"2"`
}

// Load reads the YAML config file if it exists, then applies
// environment overrides. The file location comes from CONFIG_PATH,
// defaulting to config.yaml in the working directory; an explicitly
// configured path that does not exist is an error rather than a silent
// fallback.
func Load() (*Config, error) {
	var cfg Config

	path, explicit := os.LookupEnv("CONFIG_PATH")
	if path == "" {
		path, explicit = "config.yaml", false
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s not found", path)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if cfg.OneMap.Email == "" || cfg.OneMap.Password == "" {
		return nil, fmt.Errorf("ONEMAP_EMAIL and ONEMAP_PASSWORD must be set")
	}

	return &cfg, nil
}
