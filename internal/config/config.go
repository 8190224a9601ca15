package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	JWT    JWTConfig    `yaml:"jwt"`
	Images ImagesConfig `yaml:"images"`
	S3     S3Config     `yaml:"s3"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

// MongoConfig holds document store configuration
type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_DB_URI"`
	Database string `yaml:"database" env:"MONGO_DB_NAME"`
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

// ImagesConfig holds image storage configuration
type ImagesConfig struct {
	Dir string `yaml:"dir" env:"IMAGES_DIR"`
}

// S3Config holds the optional object storage backend configuration
type S3Config struct {
	Enabled   bool   `yaml:"enabled" env:"S3_ENABLED"`
	Region    string `yaml:"region" env:"S3_REGION"`
	Bucket    string `yaml:"bucket" env:"S3_BUCKET"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// Load reads configuration from an optional YAML file, then applies
// environment overrides. The store URI and token secret are required;
// returning an error for them aborts startup.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Config files are optional; environment alone is enough.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Mongo.URI == "" {
		return nil, errors.New("no document store URI to connect to")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("no token signing secret configured")
	}
	if cfg.S3.Enabled && cfg.S3.Bucket == "" {
		return nil, errors.New("S3 storage enabled without a bucket")
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "blog"
	}
	if c.Images.Dir == "" {
		c.Images.Dir = "images"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
