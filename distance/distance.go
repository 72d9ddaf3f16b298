package distance

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Built-in feature space names.
const (
	SpaceGrewe     = "GreweFeatures"
	SpaceInstCount = "InstCountFeatures"
	SpaceAutophase = "AutophaseFeatures"
)

var (
	// ErrUnknownSpace is returned when no normalizer is registered for a space.
	ErrUnknownSpace = errors.New("unknown feature space")

	// ErrMissingFeature is matched by MissingFeatureError.
	ErrMissingFeature = errors.New("missing feature")
)

// MissingFeatureError indicates a target feature absent from the sample vector.
type MissingFeatureError struct {
	Key string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature %q", e.Key)
}

// Is lets errors.Is match ErrMissingFeature.
func (e *MissingFeatureError) Is(target error) bool { return target == ErrMissingFeature }

// MissingNormalizerError indicates a target feature without a normalization constant.
type MissingNormalizerError struct {
	Space string
	Key   string
}

func (e *MissingNormalizerError) Error() string {
	return fmt.Sprintf("no normalizer for feature %q in space %s", e.Key, e.Space)
}

// Normalizer maps feature names to normalization constants.
type Normalizer map[string]float64

var (
	registryMu sync.RWMutex
	registry   = map[string]Normalizer{
		SpaceGrewe:     greweNormalizer,
		SpaceInstCount: instCountNormalizer,
		SpaceAutophase: autophaseNormalizer,
	}
)

// Register adds or replaces the normalizer of a feature space.
func Register(space string, n Normalizer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[space] = n
}

// Lookup returns the normalizer of a feature space.
func Lookup(space string) (Normalizer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	n, ok := registry[space]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpace, space)
	}
	return n, nil
}

// Spaces returns the registered feature space names in sorted order.
func Spaces() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Features returns the distance of sample a from target b in the given space.
//
// For every key of b both values are divided by the space's constant for that
// key and |b² - a²| is accumulated; the result is the square root of the sum.
// Keys are visited in sorted order so the result is bit-for-bit reproducible.
func Features(a, b map[string]float64, space string) (float64, error) {
	n, err := Lookup(space)
	if err != nil {
		return 0, err
	}

	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sum float64
	for _, k := range keys {
		av, ok := a[k]
		if !ok {
			return 0, &MissingFeatureError{Key: k}
		}
		norm, ok := n[k]
		if !ok {
			return 0, &MissingNormalizerError{Space: space, Key: k}
		}
		// ExtractValue ships with a zero constant.
		if norm == 0 {
			norm = 1
		}
		an := av / norm
		bn := b[k] / norm
		sum += math.Abs(bn*bn - an*an)
	}
	return math.Sqrt(sum), nil
}
