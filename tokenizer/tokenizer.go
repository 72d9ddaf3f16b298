// Package tokenizer converts program text to vocabulary indices and back.
//
// Two atomizers are provided: Character splits text into single characters and
// Word greedily matches the longest multi-character token of a token list.
// Both optionally reserve the meta tokens used for masking.
package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hupe1980/featsearch/codec"
)

// Meta tokens, in vocabulary order.
const (
	StartToken   = "[START]"
	EndToken     = "[END]"
	PadToken     = "[PAD]"
	MaskToken    = "[MASK]"
	HoleToken    = "[HOLE]"
	EndHoleToken = "[ENDHOLE]"
)

// MetaTokens lists the meta tokens in the order they are assigned indices.
var MetaTokens = []string{StartToken, EndToken, PadToken, MaskToken, HoleToken, EndHoleToken}

var (
	// ErrOutOfVocabulary is returned when text or indices fall outside the vocabulary.
	ErrOutOfVocabulary = errors.New("tokenizer: out of vocabulary")
	// ErrNoMetaTokens is returned when a meta token is requested from a vocabulary without them.
	ErrNoMetaTokens = errors.New("tokenizer: vocabulary has no meta tokens")
)

// Kind names an atomizer type in a vocabulary file.
type Kind string

const (
	KindCharacter Kind = "character"
	KindWord      Kind = "word"
)

// Vocab is the serialized form of an atomizer.
type Vocab struct {
	Kind       Kind           `json:"kind"`
	Atoms      map[string]int `json:"atoms"`
	MetaTokens bool           `json:"meta_tokens"`
}

// base holds the state shared by all atomizers.
type base struct {
	vocab   map[string]int
	decoder map[int]string
	meta    bool
}

func newBase(vocab map[string]int, meta bool) (base, error) {
	b := base{vocab: vocab, decoder: make(map[int]string, len(vocab)), meta: meta}
	for atom, idx := range vocab {
		if _, dup := b.decoder[idx]; dup {
			return base{}, fmt.Errorf("tokenizer: index %d assigned twice", idx)
		}
		b.decoder[idx] = atom
	}
	if meta {
		for _, m := range MetaTokens {
			if _, ok := vocab[m]; !ok {
				return base{}, fmt.Errorf("tokenizer: meta token %s missing from vocabulary", m)
			}
		}
	}
	return b, nil
}

// Size returns the number of atoms.
func (b *base) Size() int { return len(b.vocab) }

// Atoms returns the atoms in sorted order.
func (b *base) Atoms() []string {
	out := make([]string, 0, len(b.vocab))
	for a := range b.vocab {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Index returns the index of an atom.
func (b *base) Index(atom string) (int, bool) {
	i, ok := b.vocab[atom]
	return i, ok
}

func (b *base) metaIndex(tok string) (int, error) {
	if !b.meta {
		return 0, ErrNoMetaTokens
	}
	return b.vocab[tok], nil
}

// Pad returns the index of the padding token.
func (b *base) Pad() (int, error) { return b.metaIndex(PadToken) }

// Mask returns the index of the mask token.
func (b *base) Mask() (int, error) { return b.metaIndex(MaskToken) }

// Hole returns the index of the hole token.
func (b *base) Hole() (int, error) { return b.metaIndex(HoleToken) }

// Decode renders tokens as text. Padding is dropped when ignorePad is set.
func (b *base) Decode(tokens []int, ignorePad bool) (string, error) {
	pad := -1
	if ignorePad && b.meta {
		pad = b.vocab[PadToken]
	}
	var sb strings.Builder
	for _, t := range tokens {
		if t == pad {
			continue
		}
		atom, ok := b.decoder[t]
		if !ok {
			return "", fmt.Errorf("%w: index %d", ErrOutOfVocabulary, t)
		}
		sb.WriteString(atom)
	}
	return sb.String(), nil
}

// matchMeta returns the meta token starting text, if any.
func (b *base) matchMeta(text string) (string, bool) {
	if !b.meta || !strings.HasPrefix(text, "[") {
		return "", false
	}
	for _, m := range MetaTokens {
		if strings.HasPrefix(text, m) {
			return m, true
		}
	}
	return "", false
}

func (b *base) vocabFile(kind Kind) Vocab {
	return Vocab{Kind: kind, Atoms: b.vocab, MetaTokens: b.meta}
}

// Tokenizer is implemented by Character and Word.
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(tokens []int, ignorePad bool) (string, error)
	Pad() (int, error)
	Mask() (int, error)
	Hole() (int, error)
	Size() int
	Vocab() Vocab
}

var (
	_ Tokenizer = (*Character)(nil)
	_ Tokenizer = (*Word)(nil)
)

// New builds an atomizer from a vocabulary.
func New(v Vocab) (Tokenizer, error) {
	switch v.Kind {
	case KindCharacter:
		return NewCharacter(v.Atoms, v.MetaTokens)
	case KindWord:
		return NewWord(v.Atoms, v.MetaTokens)
	default:
		return nil, fmt.Errorf("tokenizer: unknown kind %q", v.Kind)
	}
}

// Save writes the vocabulary of t as JSON.
func Save(path string, t Tokenizer) error {
	data, err := codec.Default.Marshal(t.Vocab())
	if err != nil {
		return fmt.Errorf("tokenizer: encode vocabulary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a vocabulary file written by Save.
func Load(path string) (Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Vocab
	if err := codec.Default.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("tokenizer: decode vocabulary %s: %w", path, err)
	}
	return New(v)
}

func firstRune(s string) string {
	_, n := utf8.DecodeRuneInString(s)
	return s[:n]
}
