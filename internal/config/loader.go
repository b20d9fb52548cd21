package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"csvreporter/internal/constants"
)

// LoadConfig reads the optional YAML config file and applies environment
// overrides. An empty configFile means defaults plus environment only.
func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()
	bindEnvVariables()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", constants.DefaultPort)
	viper.SetDefault("server.read_timeout_seconds", 10)
	viper.SetDefault("server.write_timeout_seconds", 30)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("database.mongodb.database", constants.DefaultMongoDBName)

	viper.SetDefault("pipeline.bucket_name", constants.DefaultBucketName)
	viper.SetDefault("pipeline.raw_data_folder", constants.DefaultRawDataFolder)
	viper.SetDefault("pipeline.reports_folder", constants.DefaultReportsFolder)
	viper.SetDefault("pipeline.processed_collection", constants.DefaultProcessedCollection)
}

func bindEnvVariables() {
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	viper.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")

	viper.BindEnv("storage.s3.region", "STORAGE_S3_REGION")
	viper.BindEnv("storage.s3.endpoint", "STORAGE_S3_ENDPOINT")
	viper.BindEnv("storage.s3.access_key", "STORAGE_S3_ACCESS_KEY")
	viper.BindEnv("storage.s3.secret_key", "STORAGE_S3_SECRET_KEY")
	viper.BindEnv("storage.s3.force_path_style", "STORAGE_S3_FORCE_PATH_STYLE")

	viper.BindEnv("pipeline.bucket_name", "PIPELINE_BUCKET_NAME")
	viper.BindEnv("pipeline.raw_data_folder", "PIPELINE_RAW_DATA_FOLDER")
	viper.BindEnv("pipeline.reports_folder", "PIPELINE_REPORTS_FOLDER")
	viper.BindEnv("pipeline.processed_collection", "PIPELINE_PROCESSED_COLLECTION")
}

// applyEnvOverrides honors the short deployment-environment variable names in
// addition to the section-prefixed ones bound above.
func applyEnvOverrides(cfg *Config) {
	if v := viper.GetString("BUCKET_NAME"); v != "" {
		cfg.Pipeline.BucketName = v
	}
	if v := viper.GetString("RAW_DATA_FOLDER"); v != "" {
		cfg.Pipeline.RawDataFolder = v
	}
	if v := viper.GetString("REPORTS_FOLDER"); v != "" {
		cfg.Pipeline.ReportsFolder = v
	}
	if v := viper.GetString("PROCESSED_COLLECTION"); v != "" {
		cfg.Pipeline.ProcessedCollection = v
	}
	if v := viper.GetString("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := viper.GetInt("PORT"); v != 0 {
		cfg.Server.Port = v
	}
}
