// Package config handles assetparser configuration loading and management.
package config

import (
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/logger"
	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/manifest"
)

// Config holds all settings for a run.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Resolve ResolveConfig `yaml:"resolve"`
	Package PackageConfig `yaml:"package"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// PathsConfig holds the directories a run reads from and writes to.
type PathsConfig struct {
	TerrainDir    string `yaml:"terrain_dir"`     // Directory of .adt tiles for one map
	DataRoot      string `yaml:"data_root"`       // Extracted client data
	Output        string `yaml:"output"`          // Manifest file
	AuxObjectRoot string `yaml:"aux_object_root"` // Extra .wmo files outside the data root
	AuxModelRoot  string `yaml:"aux_model_root"`  // Extra .m2 files outside the data root
	IgnoreRoot    string `yaml:"ignore_root"`     // Files the destination already has
	Destination   string `yaml:"destination"`     // Packaging output directory
}

// ResolveConfig holds closure engine settings.
type ResolveConfig struct {
	FullClosure bool `yaml:"full_closure"`
}

// PackageConfig holds packaging settings.
type PackageConfig struct {
	Workers int      `yaml:"workers"` // 0 means one per CPU
	S3      S3Config `yaml:"s3"`
}

// S3Config selects an S3 bucket as the packaging destination when Bucket is set.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string            `yaml:"level"`
	LogFile string            `yaml:"log_file"`
	File    logger.FileConfig `yaml:"rotation"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // Prometheus textfile path; empty disables export
}

// Enabled reports whether packaging should upload to S3.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// FileConfig returns the rotation settings for the configured log file.
// An empty LogFile disables file output.
func (l LoggingConfig) FileConfig() logger.FileConfig {
	if l.LogFile == "" {
		return logger.FileConfig{}
	}
	cfg := l.File
	cfg.Path = l.LogFile
	return cfg
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			TerrainDir: "World/Maps",
			DataRoot:   ".",
			Output:     manifest.DefaultName,
		},
		Package: PackageConfig{
			S3: S3Config{Region: "us-east-1"},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  logger.DefaultFileConfig(""),
		},
	}
}
