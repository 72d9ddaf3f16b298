package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/featsearch"
	"github.com/hupe1980/featsearch/blobstore"
	miniostore "github.com/hupe1980/featsearch/blobstore/minio"
	s3store "github.com/hupe1980/featsearch/blobstore/s3"
	"github.com/hupe1980/featsearch/codec"
	"github.com/hupe1980/featsearch/config"
	"github.com/hupe1980/featsearch/corpus"
	"github.com/hupe1980/featsearch/extractor"
	"github.com/hupe1980/featsearch/generator/httpgen"
	"github.com/hupe1980/featsearch/persistence"
	"github.com/hupe1980/featsearch/recordstore"
	dynamostore "github.com/hupe1980/featsearch/recordstore/dynamodb"
	sqlitestore "github.com/hupe1980/featsearch/recordstore/sqlite"
	"github.com/hupe1980/featsearch/resource"
	"github.com/hupe1980/featsearch/sink"
	sqlitesink "github.com/hupe1980/featsearch/sink/sqlite"
	"github.com/hupe1980/featsearch/target"
	"github.com/hupe1980/featsearch/tokenizer"
)

func newLogger(cfg config.LogConfig) (*featsearch.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return featsearch.NewLogger(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return featsearch.NewLogger(slog.NewTextHandler(os.Stderr, opts)), nil
}

func loadAWS(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func openBlobStore(ctx context.Context, cfg config.StateConfig) (blobstore.BlobStore, error) {
	switch cfg.Backend {
	case "memory":
		return blobstore.NewMemoryStore(), nil
	case "local":
		return blobstore.NewLocalStore(cfg.Path), nil
	case "s3":
		awsCfg, err := loadAWS(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return s3store.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	case "minio":
		client, err := minio.New(cfg.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}

func stateCodecs(cfg config.StateConfig) (codec.Codec, codec.Compressor, error) {
	c, ok := codec.ByName(cfg.Codec)
	if !ok {
		return nil, nil, fmt.Errorf("unknown codec %q", cfg.Codec)
	}
	comp, ok := codec.CompressorByName(cfg.Compression)
	if !ok {
		return nil, nil, fmt.Errorf("unknown compression %q", cfg.Compression)
	}
	return c, comp, nil
}

func openCheckpointer(ctx context.Context, cfg config.StateConfig) (*persistence.Checkpointer, error) {
	c, comp, err := stateCodecs(cfg)
	if err != nil {
		return nil, err
	}
	st, err := openBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return persistence.NewCheckpointer(st, persistence.WithCodec(c), persistence.WithCompression(comp)), nil
}

func openRecordStore(ctx context.Context, cfg config.RecordsConfig) (recordstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return recordstore.NewMemory(), nil
	case "sqlite":
		st, err := sqlitestore.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "dynamodb":
		awsCfg, err := loadAWS(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		st, err := dynamostore.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.Table)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown records backend %q", cfg.Backend)
	}
}

func openSampleSink(cfg config.SamplesConfig, dec sink.Decoder) (sink.SampleSink, error) {
	switch cfg.Backend {
	case "discard":
		return sink.Discard{}, nil
	case "sqlite":
		sk, err := sqlitesink.Open(cfg.Path, dec)
		if err != nil {
			return nil, err
		}
		return sk, nil
	default:
		return nil, fmt.Errorf("unknown samples backend %q", cfg.Backend)
	}
}

func newExtractor(cfg config.ExtractorConfig) *extractor.Command {
	parse := extractor.ParseCSV
	if cfg.Format == "instcount" {
		parse = extractor.ParseInstCount
	}
	return &extractor.Command{
		Path:    cfg.Command,
		Args:    cfg.Args,
		Parse:   parse,
		Timeout: cfg.Timeout,
		TempDir: cfg.TempDir,
	}
}

func newGenerator(cfg config.GeneratorConfig) *httpgen.Client {
	opts := []httpgen.Option{httpgen.WithTimeout(cfg.Timeout)}
	for k, v := range cfg.Headers {
		opts = append(opts, httpgen.WithHeader(k, v))
	}
	return httpgen.New(cfg.Endpoint, opts...)
}

func targetLoader(cfg config.TargetsConfig) target.Loader {
	if cfg.Archive != "" {
		return target.ArchiveLoader{Path: cfg.Archive}
	}
	return target.DirLoader{Root: cfg.Dir}
}

// open builds a Searcher from cfg. Stores opened here are owned by the
// Searcher once Open succeeds.
func open(ctx context.Context, cfg *config.File, logger *featsearch.Logger, extra ...featsearch.Option) (*featsearch.Searcher, error) {
	tok, err := tokenizer.Load(cfg.Tokenizer.Vocab)
	if err != nil {
		return nil, fmt.Errorf("load vocab: %w", err)
	}

	src, skipped, err := corpus.LoadDir(ctx, cfg.Corpus.Dir, cfg.Corpus.Ext, tok)
	if err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: %s", corpus.ErrEmpty, cfg.Corpus.Dir)
	}
	if skipped > 0 {
		logger.Warn("corpus files skipped", "skipped", skipped, "loaded", len(src))
	}

	st, err := openBlobStore(ctx, cfg.State)
	if err != nil {
		return nil, err
	}
	c, comp, err := stateCodecs(cfg.State)
	if err != nil {
		return nil, err
	}

	records, err := openRecordStore(ctx, cfg.Records)
	if err != nil {
		return nil, err
	}
	samples, err := openSampleSink(cfg.Samples, tok)
	if err != nil {
		_ = records.Close()
		return nil, err
	}

	opts := append([]featsearch.Option{
		featsearch.WithLogger(logger),
		featsearch.WithBlobStore(st),
		featsearch.WithCodec(c),
		featsearch.WithCompression(comp),
		featsearch.WithRecordStore(records),
		featsearch.WithSampleSink(samples),
		featsearch.WithResourceLimits(resource.Config{
			MemoryLimitBytes:     cfg.Resources.MemoryLimitBytes,
			MaxBackgroundWorkers: cfg.Resources.MaxBackgroundWorkers,
			IOLimitBytesPerSec:   cfg.Resources.IOLimitBytesPerSec,
		}),
	}, extra...)

	s, err := featsearch.Open(ctx, cfg.Search, newGenerator(cfg.Generator), tok, newExtractor(cfg.Extractor),
		targetLoader(cfg.Targets), src, opts...)
	if err != nil {
		_ = records.Close()
		if c, ok := samples.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		return nil, err
	}
	return s, nil
}
