package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validatePipeline(cfg.Pipeline); err != nil {
		errors = append(errors, err)
	}

	if err := validateLogging(cfg.Logging); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validatePipeline(cfg PipelineConfig) error {
	if cfg.BucketName == "" {
		return &ValidationError{
			Field:   "pipeline.bucket_name",
			Message: "bucket name is required",
		}
	}

	if cfg.RawDataFolder == "" || strings.Contains(cfg.RawDataFolder, "/") {
		return &ValidationError{
			Field:   "pipeline.raw_data_folder",
			Message: "raw data folder must be a non-empty top-level prefix without slashes",
		}
	}

	if cfg.ReportsFolder == "" || strings.Contains(cfg.ReportsFolder, "/") {
		return &ValidationError{
			Field:   "pipeline.reports_folder",
			Message: "reports folder must be a non-empty top-level prefix without slashes",
		}
	}

	if cfg.ProcessedCollection == "" {
		return &ValidationError{
			Field:   "pipeline.processed_collection",
			Message: "processed collection is required",
		}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	switch cfg.Level {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return &ValidationError{
		Field:   "logging.level",
		Message: fmt.Sprintf("unknown log level %q", cfg.Level),
	}
}
