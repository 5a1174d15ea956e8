package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration sourced from an optional YAML file
// and environment variables. Environment variables win over the file.
type Config struct {
	Environment    string   `yaml:"environment"`
	HTTPPort       string   `yaml:"http_port"`
	DatabasePath   string   `yaml:"database_path"`
	FrontendDir    string   `yaml:"frontend_dir"`
	LogDir         string   `yaml:"log_dir"`
	Debug          bool     `yaml:"debug"`
	JWTSecret      string   `yaml:"jwt_secret"`
	IngestSchedule string   `yaml:"ingest_schedule"`
	IngestLimit    int      `yaml:"ingest_limit"`
	CIRCLURL       string   `yaml:"circl_url"`
	SampleDataPath string   `yaml:"sample_data_path"`
	APIBaseURL     string   `yaml:"api_base_url"`
	APIToken       string   `yaml:"api_token"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

const (
	DefaultIngestSchedule = "@every 6h"
	DefaultIngestLimit    = 50
	DefaultCIRCLURL       = "https://cve.circl.lu/api/last"
)

func defaults() Config {
	return Config{
		Environment:    "development",
		HTTPPort:       "8080",
		DatabasePath:   filepath.Join("data", "cybershield.db"),
		FrontendDir:    filepath.Clean(filepath.Join("..", "frontend", "dist")),
		LogDir:         filepath.Join("data", "logs"),
		IngestSchedule: DefaultIngestSchedule,
		IngestLimit:    DefaultIngestLimit,
		CIRCLURL:       DefaultCIRCLURL,
		APIBaseURL:     "http://localhost:8080",
	}
}

// Load reads the optional CYBERSHIELD_CONFIG file and env vars, falling back
// to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CYBERSHIELD_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Environment = getEnv("CYBERSHIELD_ENV", cfg.Environment)
	cfg.HTTPPort = getEnv("CYBERSHIELD_HTTP_PORT", cfg.HTTPPort)
	cfg.DatabasePath = getEnv("CYBERSHIELD_DB_PATH", cfg.DatabasePath)
	cfg.FrontendDir = getEnv("CYBERSHIELD_FRONTEND_DIR", cfg.FrontendDir)
	cfg.LogDir = getEnv("CYBERSHIELD_LOG_DIR", cfg.LogDir)
	cfg.Debug = getEnvBool("CYBERSHIELD_DEBUG", cfg.Debug)
	cfg.JWTSecret = getEnv("CYBERSHIELD_JWT_SECRET", cfg.JWTSecret)
	cfg.IngestSchedule = getEnv("CYBERSHIELD_INGEST_SCHEDULE", cfg.IngestSchedule)
	cfg.IngestLimit = getEnvInt("CYBERSHIELD_INGEST_LIMIT", cfg.IngestLimit)
	cfg.CIRCLURL = getEnv("CYBERSHIELD_CIRCL_URL", cfg.CIRCLURL)
	cfg.SampleDataPath = getEnv("CYBERSHIELD_SAMPLE_DATA", cfg.SampleDataPath)
	cfg.APIBaseURL = strings.TrimRight(getEnv("CYBERSHIELD_API_BASE_URL", cfg.APIBaseURL), "/")
	cfg.APIToken = getEnv("CYBERSHIELD_API_TOKEN", cfg.APIToken)
	if origins := getEnv("CYBERSHIELD_CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if cfg.IngestLimit <= 0 {
		cfg.IngestLimit = DefaultIngestLimit
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func loadFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}

	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
