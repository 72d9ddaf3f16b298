package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/featsearch/model"
)

// Table names a record kind.
type Table string

const (
	TableSpecs    Table = "specifications"
	TableInputs   Table = "input_feeds"
	TableAccepted Table = "active_feeds"
)

// ErrUnknownTable is returned by Count for a table the store does not keep.
var ErrUnknownTable = errors.New("recordstore: unknown table")

// Store persists records with insert-if-absent semantics.
// Implementations must be safe for concurrent use.
type Store interface {
	// InsertSpec stores the run parameters. It reports false when an identical spec exists.
	InsertSpec(ctx context.Context, r SpecRecord) (bool, error)
	// InsertInput stores a root input. It reports false when the input text exists.
	InsertInput(ctx context.Context, r InputRecord) (bool, error)
	// InsertAccepted stores a selected candidate. It reports false when the
	// input and sample pair exists.
	InsertAccepted(ctx context.Context, r AcceptedRecord) (bool, error)
	// Count returns the number of rows in a table.
	Count(ctx context.Context, t Table) (int, error)
	Close() error
}

// SpecRecord holds the parameters of a search run.
type SpecRecord struct {
	LimitPerFeed int    `json:"active_limit_per_feed" dynamodbav:"active_limit_per_feed"`
	SearchDepth  int    `json:"active_search_depth" dynamodbav:"active_search_depth"`
	SearchWidth  int    `json:"active_search_width" dynamodbav:"active_search_width"`
	FeatureSpace string `json:"feature_space" dynamodbav:"feature_space"`
}

// SHA256 returns the row key.
func (r SpecRecord) SHA256() string {
	return model.SHA256(strconv.Itoa(r.LimitPerFeed) + strconv.Itoa(r.SearchDepth) + strconv.Itoa(r.SearchWidth) + r.FeatureSpace)
}

// InputRecord is a corpus item that started a lineage.
type InputRecord struct {
	// Input is the decoded text of Tokens without padding.
	Input     string         `dynamodbav:"input_feed"`
	Tokens    []int          `dynamodbav:"encoded_feed"`
	Features  model.Features `dynamodbav:"input_features"`
	NumTokens int            `dynamodbav:"num_tokens"`
	Added     time.Time      `dynamodbav:"date_added"`
}

// SHA256 returns the row key.
func (r InputRecord) SHA256() string { return model.SHA256(r.Input) }

// AcceptedRecord is a candidate kept by the acceptance policy.
type AcceptedRecord struct {
	Input          string         `dynamodbav:"input_feed"`
	InputTokens    []int          `dynamodbav:"encoded_feed"`
	InputFeatures  model.Features `dynamodbav:"input_features"`
	Sample         string         `dynamodbav:"sample"`
	SampleTokens   []int          `dynamodbav:"encoded_sample"`
	NumTokens      int            `dynamodbav:"num_tokens"`
	SampleFeatures model.Features `dynamodbav:"output_features"`
	Score          float64        `dynamodbav:"sample_quality"`
	TargetName     string         `dynamodbav:"target_name"`
	TargetSource   string         `dynamodbav:"target_source"`
	TargetFeatures model.Features `dynamodbav:"target_features"`
	CompileStatus  bool           `dynamodbav:"compile_status"`
	Generation     int            `dynamodbav:"generation_id"`
	Added          time.Time      `dynamodbav:"date_added"`
}

// SHA256 returns the row key.
func (r AcceptedRecord) SHA256() string { return model.SHA256(r.Input + r.Sample) }

// TargetBenchmark renders the target as a commented source listing.
func (r AcceptedRecord) TargetBenchmark() string {
	return fmt.Sprintf("// %s\n%s", r.TargetName, r.TargetSource)
}

// FormatFeatures renders features as sorted "key:value" lines, or "None" when empty.
func FormatFeatures(f model.Features) string {
	if len(f) == 0 {
		return "None"
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(f[k], 'g', -1, 64))
	}
	return sb.String()
}

// ParseFeatures is the inverse of FormatFeatures.
func ParseFeatures(s string) (model.Features, error) {
	if s == "None" || s == "" {
		return model.Features{}, nil
	}
	out := model.Features{}
	for _, line := range strings.Split(s, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("recordstore: malformed feature line %q", line)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("recordstore: feature %s: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

// FormatTokens renders tokens as a comma separated list.
func FormatTokens(tokens []int) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}
