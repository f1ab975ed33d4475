// Package config provides configuration loading and validation for bucketfs.
// Supports YAML files with environment variable overrides.
package config

import (
	"errors"
	"fmt"

	"github.com/bucketfs/bucketfs/internal/logging"
)

// MinUploadPartSize is the smallest multipart part size S3 accepts.
const MinUploadPartSize = 5 * 1024 * 1024

// Config holds all configuration for the bucketfs adapter and CLI.
type Config struct {
	ObjectStore   ObjectStoreConfig   `yaml:"objectStore"`
	Adapter       AdapterConfig       `yaml:"adapter"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ObjectStoreConfig struct {
	Bucket              string `yaml:"bucket" env:"BUCKETFS_S3_BUCKET"`
	Prefix              string `yaml:"prefix" env:"BUCKETFS_PATH_PREFIX"`
	Region              string `yaml:"region" env:"BUCKETFS_S3_REGION"`
	Endpoint            string `yaml:"endpoint" env:"BUCKETFS_S3_ENDPOINT"`
	AccessKey           string `yaml:"accessKey" env:"BUCKETFS_S3_ACCESS_KEY"`
	SecretKey           string `yaml:"secretKey" env:"BUCKETFS_S3_SECRET_KEY"`
	UsePathStyle        bool   `yaml:"usePathStyle" env:"BUCKETFS_S3_PATH_STYLE"`
	UploadPartSizeBytes int64  `yaml:"uploadPartSizeBytes" env:"BUCKETFS_S3_PART_SIZE"`
	UploadConcurrency   int    `yaml:"uploadConcurrency" env:"BUCKETFS_S3_CONCURRENCY"`
}

type AdapterConfig struct {
	// DefaultVisibility applies to writes that carry no visibility option.
	DefaultVisibility string `yaml:"defaultVisibility" env:"BUCKETFS_DEFAULT_VISIBILITY"`
}

type ObservabilityConfig struct {
	LogLevel        string `yaml:"logLevel" env:"BUCKETFS_LOG_LEVEL"`
	LogFormat       string `yaml:"logFormat" env:"BUCKETFS_LOG_FORMAT"`
	MetricsTextfile string `yaml:"metricsTextfile" env:"BUCKETFS_METRICS_TEXTFILE"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		ObjectStore: ObjectStoreConfig{
			Region:              "us-east-1",
			UploadPartSizeBytes: 16 * 1024 * 1024, // 16MB
			UploadConcurrency:   5,
		},
		Adapter: AdapterConfig{
			DefaultVisibility: "private",
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	var errs []error

	if c.ObjectStore.Bucket == "" {
		errs = append(errs, errors.New("objectStore.bucket is required"))
	}
	if (c.ObjectStore.AccessKey == "") != (c.ObjectStore.SecretKey == "") {
		errs = append(errs, errors.New("objectStore.accessKey and objectStore.secretKey must be set together"))
	}
	if n := c.ObjectStore.UploadPartSizeBytes; n != 0 && n < MinUploadPartSize {
		errs = append(errs, fmt.Errorf("objectStore.uploadPartSizeBytes must be at least %d, got %d", MinUploadPartSize, n))
	}
	if c.ObjectStore.UploadConcurrency < 0 {
		errs = append(errs, fmt.Errorf("objectStore.uploadConcurrency must not be negative, got %d", c.ObjectStore.UploadConcurrency))
	}
	switch c.Adapter.DefaultVisibility {
	case "public", "private":
	default:
		errs = append(errs, fmt.Errorf("adapter.defaultVisibility must be public or private, got %q", c.Adapter.DefaultVisibility))
	}
	if _, err := logging.ParseLevel(c.Observability.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("observability.logLevel: %w", err))
	}
	if _, err := logging.ParseFormat(c.Observability.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("observability.logFormat: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
