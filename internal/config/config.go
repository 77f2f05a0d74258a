package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Uploads       UploadConfig  `yaml:"uploads"`
}

type UploadConfig struct {
	Dir string `yaml:"dir"`
	// PublicBaseURL prefixes resolved document URLs, e.g. "http://localhost:8080".
	PublicBaseURL string `yaml:"public_base_url"`
	// MaxFilesPerSubmission caps the documents accepted on one application.
	MaxFilesPerSubmission int `yaml:"max_files_per_submission"`
	// MaxUploadBytes bounds the whole multipart request body.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("EMPANEL_ADDR", ":8080"),
		JWTSecret:     getEnv("EMPANEL_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("EMPANEL_DATABASE_PATH", "empanel.db"),
		TokenDuration: 1 * time.Hour,
		Uploads: UploadConfig{
			Dir:                   getEnv("EMPANEL_UPLOAD_DIR", "uploads"),
			PublicBaseURL:         getEnv("EMPANEL_PUBLIC_BASE_URL", "http://localhost:8080"),
			MaxFilesPerSubmission: getEnvInt("EMPANEL_MAX_FILES", 5),
			MaxUploadBytes:        32 << 20,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the loaded configuration for values that would be unsafe
// or unusable at runtime. The default JWT secret is only tolerated when
// EMPANEL_ENV is "development".
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.JWTSecret == "" || (c.JWTSecret == "supersecretkey" && os.Getenv("EMPANEL_ENV") != "development") {
		return fmt.Errorf("jwt_secret is insecure; set EMPANEL_JWT_SECRET or run with EMPANEL_ENV=development")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	if c.Uploads.Dir == "" {
		return fmt.Errorf("uploads.dir must not be empty")
	}
	if c.Uploads.MaxFilesPerSubmission <= 0 {
		return fmt.Errorf("uploads.max_files_per_submission must be positive")
	}
	if c.Uploads.MaxUploadBytes <= 0 {
		return fmt.Errorf("uploads.max_upload_bytes must be positive")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return def
}
