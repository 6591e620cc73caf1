// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"phone_standardizer/platform/apperr"
	"phone_standardizer/platform/validator"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// NormalizerConfig provides settings for the phone normalizer.
type NormalizerConfig interface {
	GetDefaultRegion() string
	GetPrefixTableFile() string
	GetPrefixMatchPolicy() string
	GetStrictValidation() bool
	GetSentinel() string
}

// LogConfig provides settings for the log sink.
type LogConfig interface {
	GetEnv() string
	GetLogFile() string
	GetLogToStdout() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string `validate:"required"`
	InputDir          string `validate:"required"`
	OutputDir         string `validate:"required"`
	LogFile           string `validate:"required"`
	LogToStdout       bool
	DefaultRegion     string `validate:"required,region"`
	PrefixTableFile   string
	PrefixMatchPolicy string `validate:"oneof=first longest"`
	StrictValidation  bool
	Sentinel          string   `validate:"required"`
	PhoneField        string   `validate:"required"`
	NameFields        []string `validate:"min=1,dive,required"`
	Delimiter         string   `validate:"required"`
	InputEncoding     string   `validate:"required"`
	SignedValue       string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucket       string `validate:"required_with=MinIOEndpoint"`
	MinIOObjectPrefix string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// NormalizerConfig implementation
func (c *Config) GetDefaultRegion() string     { return c.DefaultRegion }
func (c *Config) GetPrefixTableFile() string   { return c.PrefixTableFile }
func (c *Config) GetPrefixMatchPolicy() string { return c.PrefixMatchPolicy }
func (c *Config) GetStrictValidation() bool    { return c.StrictValidation }
func (c *Config) GetSentinel() string          { return c.Sentinel }

// batch.Config implementation
func (c *Config) GetInputDir() string      { return c.InputDir }
func (c *Config) GetOutputDir() string     { return c.OutputDir }
func (c *Config) GetPhoneField() string    { return c.PhoneField }
func (c *Config) GetNameFields() []string  { return c.NameFields }
func (c *Config) GetInputEncoding() string { return c.InputEncoding }
func (c *Config) GetSignedValue() string   { return c.SignedValue }
func (c *Config) GetDelimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// LogConfig implementation
func (c *Config) GetEnv() string       { return c.Env }
func (c *Config) GetLogFile() string   { return c.LogFile }
func (c *Config) GetLogToStdout() bool { return c.LogToStdout }

// storage.Config implementation
func (c *Config) GetMinIOEndpoint() string     { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string    { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string    { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool         { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucket() string       { return c.MinIOBucket }
func (c *Config) GetMinIOObjectPrefix() string { return c.MinIOObjectPrefix }
func (c *Config) IsMinIOEnabled() bool         { return c.MinIOEndpoint != "" }

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		InputDir:          getEnv("INPUT_DIR", "./non-standardized-list"),
		OutputDir:         getEnv("OUTPUT_DIR", "./standardized-list"),
		LogFile:           getEnv("LOG_FILE", "phone_standardization.log"),
		LogToStdout:       parseBool(getEnv("LOG_TO_STDOUT", "false")),
		DefaultRegion:     strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_REGION", "AT"))),
		PrefixTableFile:   getEnv("PREFIX_TABLE_FILE", ""),
		PrefixMatchPolicy: strings.ToLower(strings.TrimSpace(getEnv("PREFIX_MATCH_POLICY", "first"))),
		StrictValidation:  parseBool(getEnv("STRICT_VALIDATION", "false")),
		Sentinel:          getEnv("SENTINEL", "unknown"),
		PhoneField:        getEnv("PHONE_FIELD", "tel"),
		NameFields:        splitCSV(getEnv("NAME_FIELDS", "Nachname,Weitere Vornamen,Firma")),
		Delimiter:         getEnv("CSV_DELIMITER", ","),
		InputEncoding:     strings.ToLower(strings.TrimSpace(getEnv("INPUT_ENCODING", "utf-8"))),
		SignedValue:       getEnv("SIGNED_VALUE", "0"),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       parseBool(getEnv("MINIO_USE_SSL", "false")),
		MinIOBucket:       getEnv("MINIO_BUCKET_STANDARDIZED", ""),
		MinIOObjectPrefix: getEnv("MINIO_OBJECT_PREFIX", "standardized"),
	}

	if err := cfg.Validate(validator.New()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and the delimiter.
func (c *Config) Validate(val *validator.Validator) error {
	if err := val.Struct(c); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid configuration", err).WithOp("config.Load")
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return apperr.Validation(fmt.Sprintf("CSV_DELIMITER must be a single character, got %q", c.Delimiter)).WithOp("config.Load")
	}
	switch c.GetDelimiter() {
	case '"', '\r', '\n', utf8.RuneError:
		return apperr.Validation(fmt.Sprintf("CSV_DELIMITER %q is not allowed", c.Delimiter)).WithOp("config.Load")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
