package featsearch

import (
	"github.com/hupe1980/featsearch/blobstore"
	"github.com/hupe1980/featsearch/codec"
	"github.com/hupe1980/featsearch/engine"
	"github.com/hupe1980/featsearch/evaluator"
	"github.com/hupe1980/featsearch/recordstore"
	"github.com/hupe1980/featsearch/resource"
	"github.com/hupe1980/featsearch/sink"
	"github.com/hupe1980/featsearch/target"
)

type options struct {
	store            blobstore.BlobStore
	codec            codec.Codec
	compression      codec.Compressor
	records          recordstore.Store
	samples          sink.SampleSink
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Config
	masker           engine.Masker
	validator        evaluator.Validator
	splitter         target.Splitter
}

// Option configures Open.
type Option func(*options)

// WithBlobStore sets where the search state and target list are kept.
// Defaults to an in-memory store, which does not survive a restart.
func WithBlobStore(st blobstore.BlobStore) Option {
	return func(o *options) {
		if st != nil {
			o.store = st
		}
	}
}

// WithCodec configures the codec used for checkpoints.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression compresses checkpoints, e.g. codec.Zstd{}.
func WithCompression(c codec.Compressor) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithRecordStore sets the store for accepted candidates. The searcher owns
// it and closes it on Close.
func WithRecordStore(s recordstore.Store) Option {
	return func(o *options) {
		o.records = s
	}
}

// WithSampleSink sets the cache for every evaluated candidate.
func WithSampleSink(s sink.SampleSink) Option {
	return func(o *options) {
		o.samples = s
	}
}

// WithMetricsCollector sets a metrics collector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger sets the logger. Defaults to NoopLogger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResourceLimits bounds the background sample writes.
func WithResourceLimits(cfg resource.Config) Option {
	return func(o *options) {
		o.resources = &cfg
	}
}

// WithMasker sets the feed transformation applied to model inputs.
func WithMasker(m engine.Masker) Option {
	return func(o *options) {
		o.masker = m
	}
}

// WithValidator rejects outputs before feature extraction.
func WithValidator(v evaluator.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithTargetSplitter splits benchmark sources into kernels before scoring.
func WithTargetSplitter(s target.Splitter) Option {
	return func(o *options) {
		o.splitter = s
	}
}
