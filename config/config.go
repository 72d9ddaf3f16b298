// Package config loads the YAML run configuration of the featsearch command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/featsearch/engine"
)

// ErrInvalid is returned when a configuration fails validation.
var ErrInvalid = errors.New("config: invalid")

// File is the top-level configuration.
type File struct {
	Search    engine.Config   `yaml:"search"`
	State     StateConfig     `yaml:"state"`
	Records   RecordsConfig   `yaml:"records"`
	Samples   SamplesConfig   `yaml:"samples"`
	Generator GeneratorConfig `yaml:"generator"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Targets   TargetsConfig   `yaml:"targets"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Resources ResourceConfig  `yaml:"resources"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// StateConfig selects the blob store holding checkpoints.
type StateConfig struct {
	Backend     string `yaml:"backend" validate:"oneof=memory local s3 minio"`
	Path        string `yaml:"path" validate:"required_if=Backend local"`
	Bucket      string `yaml:"bucket" validate:"required_if=Backend s3,required_if=Backend minio"`
	Prefix      string `yaml:"prefix"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Backend minio"`
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	UseSSL      bool   `yaml:"use_ssl"`
	Region      string `yaml:"region"`
	Codec       string `yaml:"codec" validate:"oneof=json go-json"`
	Compression string `yaml:"compression" validate:"oneof=none zstd lz4"`
}

// RecordsConfig selects the record store.
type RecordsConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory sqlite dynamodb"`
	Path    string `yaml:"path" validate:"required_if=Backend sqlite"`
	Table   string `yaml:"table" validate:"required_if=Backend dynamodb"`
	Region  string `yaml:"region"`
}

// SamplesConfig selects the sample cache.
type SamplesConfig struct {
	Backend string `yaml:"backend" validate:"oneof=discard sqlite"`
	Path    string `yaml:"path" validate:"required_if=Backend sqlite"`
}

// GeneratorConfig points at the language model server.
type GeneratorConfig struct {
	Endpoint string            `yaml:"endpoint" validate:"required,url"`
	Timeout  time.Duration     `yaml:"timeout" validate:"gte=0"`
	Headers  map[string]string `yaml:"headers"`
}

// ExtractorConfig describes the feature extraction tool.
type ExtractorConfig struct {
	Command string        `yaml:"command" validate:"required"`
	Args    []string      `yaml:"args"`
	Format  string        `yaml:"format" validate:"oneof=csv instcount"`
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	TempDir string        `yaml:"temp_dir"`
}

// TokenizerConfig locates the saved vocabulary.
type TokenizerConfig struct {
	Vocab string `yaml:"vocab" validate:"required"`
}

// TargetsConfig locates the benchmark sources. Exactly one of Dir and
// Archive is set.
type TargetsConfig struct {
	Dir     string `yaml:"dir" validate:"required_without=Archive,excluded_with=Archive"`
	Archive string `yaml:"archive" validate:"required_without=Dir"`
}

// CorpusConfig locates the seed programs.
type CorpusConfig struct {
	Dir string `yaml:"dir" validate:"required"`
	Ext string `yaml:"ext"`
}

// ResourceConfig bounds background sample writes.
type ResourceConfig struct {
	MemoryLimitBytes     int64 `yaml:"memory_limit_bytes" validate:"gte=0"`
	MaxBackgroundWorkers int64 `yaml:"max_background_workers" validate:"gte=0"`
	IOLimitBytesPerSec   int64 `yaml:"io_limit_bytes_per_sec" validate:"gte=0"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// Default returns a configuration with every optional field set.
func Default() *File {
	return &File{
		Search: engine.Config{
			ActiveLimitPerFeed:  100,
			ActiveSearchDepth:   1,
			ActiveSearchWidth:   3,
			BatchSizePerFeed:    1,
			SampleBatchSize:     32,
			MaxEvaluatedPerFeed: 160000,
		},
		State:     StateConfig{Backend: "local", Path: "state", Codec: "json", Compression: "zstd"},
		Records:   RecordsConfig{Backend: "sqlite", Path: "records.db"},
		Samples:   SamplesConfig{Backend: "discard"},
		Extractor: ExtractorConfig{Format: "csv", Timeout: 30 * time.Second},
		Generator: GeneratorConfig{Timeout: 5 * time.Minute},
		Corpus:    CorpusConfig{Ext: ".cl"},
		Resources: ResourceConfig{MaxBackgroundWorkers: 1},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys are
// rejected.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks every section.
func (f *File) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalid, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
