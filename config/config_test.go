package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const minimal = `
search:
  feature_space: GreweFeatures
generator:
  endpoint: http://localhost:8080/generate
extractor:
  command: clgen-features
tokenizer:
  vocab: vocab.json
targets:
  dir: benchmarks
corpus:
  dir: seeds
`

// merged overlays extra onto minimal, section by section.
func merged(t *testing.T, extra string) []byte {
	t.Helper()
	var base, over map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(minimal), &base))
	require.NoError(t, yaml.Unmarshal([]byte(extra), &over))
	for k, v := range over {
		if bm, ok := base[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				for kk, vv := range om {
					bm[kk] = vv
				}
				continue
			}
		}
		base[k] = v
	}
	out, err := yaml.Marshal(base)
	require.NoError(t, err)
	return out
}

func TestParseMinimal(t *testing.T) {
	cfg, err := Parse([]byte(minimal))
	require.NoError(t, err)

	assert.Equal(t, "GreweFeatures", cfg.Search.FeatureSpace)
	assert.Equal(t, 100, cfg.Search.ActiveLimitPerFeed)
	assert.Equal(t, 160000, cfg.Search.MaxEvaluatedPerFeed)
	assert.Equal(t, "local", cfg.State.Backend)
	assert.Equal(t, "zstd", cfg.State.Compression)
	assert.Equal(t, "sqlite", cfg.Records.Backend)
	assert.Equal(t, "csv", cfg.Extractor.Format)
	assert.Equal(t, 30*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, ".cl", cfg.Corpus.Ext)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(merged(t, `
state:
  backend: minio
  bucket: runs
  endpoint: localhost:9000
  compression: lz4
records:
  backend: dynamodb
  table: featsearch
generator:
  endpoint: http://model:8080/generate
  timeout: 90s
  headers:
    Authorization: Bearer token
metrics:
  addr: localhost:9090
`))
	require.NoError(t, err)

	assert.Equal(t, "minio", cfg.State.Backend)
	assert.Equal(t, "lz4", cfg.State.Compression)
	assert.Equal(t, "featsearch", cfg.Records.Table)
	assert.Equal(t, 90*time.Second, cfg.Generator.Timeout)
	assert.Equal(t, "Bearer token", cfg.Generator.Headers["Authorization"])
	assert.Equal(t, "localhost:9090", cfg.Metrics.Addr)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrInvalid)

	tests := []struct {
		name  string
		extra string
	}{
		{"unknown key", "bogus: 1"},
		{"bad backend", "state: {backend: ftp}"},
		{"s3 without bucket", "state: {backend: s3}"},
		{"sqlite samples without path", "samples: {backend: sqlite}"},
		{"dynamodb without table", "records: {backend: dynamodb}"},
		{"zero width", "search: {active_search_width: 0}"},
		{"both target sources", "targets: {archive: b.tar}"},
		{"bad log level", "log: {level: verbose}"},
		{"bad endpoint", "generator: {endpoint: not a url}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(merged(t, tt.extra))
			assert.Error(t, err)
		})
	}
}

func TestParseInvalidWraps(t *testing.T) {
	_, err := Parse(merged(t, "log: {format: xml}"))
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "Format")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "featsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "benchmarks", cfg.Targets.Dir)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
