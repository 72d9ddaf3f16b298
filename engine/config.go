package engine

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Default values applied by Config.withDefaults.
const (
	DefaultMaxEvaluatedPerFeed = 160_000
	DefaultBatchSizePerFeed    = 1
	DefaultGenerateWorkers     = 1
)

// Config holds the search parameters.
type Config struct {
	// ActiveLimitPerFeed is the number of candidates a feed should produce.
	// It drives the adaptive workload size.
	ActiveLimitPerFeed int `yaml:"active_limit_per_feed" validate:"gt=0"`
	// ActiveSearchDepth is the highest generation a feed may reach.
	ActiveSearchDepth int `yaml:"active_search_depth" validate:"gte=0"`
	// ActiveSearchWidth is the number of root candidates kept.
	ActiveSearchWidth int `yaml:"active_search_width" validate:"gt=0"`
	// BatchSizePerFeed is how often each masked copy of the feed repeats
	// within a generation batch.
	BatchSizePerFeed int `yaml:"batch_size_per_feed" validate:"gte=0"`
	// FeatureSpace names the distance normalizer and extractor space.
	FeatureSpace string `yaml:"feature_space" validate:"required"`
	// Target names the benchmark suite. Informational.
	Target string `yaml:"target"`
	// SampleBatchSize is the number of inputs per generator call.
	SampleBatchSize int `yaml:"sample_batch_size" validate:"gt=0"`
	// WorkloadSize is the number of inputs of the first round of a feed.
	// Zero means SampleBatchSize.
	WorkloadSize int `yaml:"workload_size" validate:"gte=0"`
	// MaxEvaluatedPerFeed stops a feed after this many evaluated outputs.
	MaxEvaluatedPerFeed int `yaml:"max_evaluated_per_feed" validate:"gte=0"`
	// Workers bounds concurrent evaluations. Zero means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`
	// GenerateWorkers bounds concurrent generator calls.
	GenerateWorkers int `yaml:"generate_workers" validate:"gte=0"`
	// SkipFirstQueue drops the first feed popped after start.
	SkipFirstQueue bool `yaml:"skip_first_queue"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := configValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.BatchSizePerFeed <= 0 {
		c.BatchSizePerFeed = DefaultBatchSizePerFeed
	}
	if c.WorkloadSize <= 0 {
		c.WorkloadSize = c.SampleBatchSize
	}
	if c.MaxEvaluatedPerFeed <= 0 {
		c.MaxEvaluatedPerFeed = DefaultMaxEvaluatedPerFeed
	}
	if c.GenerateWorkers <= 0 {
		c.GenerateWorkers = DefaultGenerateWorkers
	}
	return c
}

// initialUnits is the number of generator calls of a feed's first round.
func (c Config) initialUnits() int {
	return max(1, c.WorkloadSize/c.SampleBatchSize)
}
