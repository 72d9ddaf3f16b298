package tokenizer

import (
	"fmt"
	"os"
	"sort"

	"github.com/hupe1980/featsearch/codec"
)

// Word greedily tokenizes text into the longest matching multi-character
// tokens, falling back to single characters.
type Word struct {
	base
	// lookup maps a first character to the multi-character atoms starting
	// with it, longest first.
	lookup map[string][]string
}

// NewWord returns a word atomizer over vocab.
func NewWord(vocab map[string]int, metaTokens bool) (*Word, error) {
	b, err := newBase(vocab, metaTokens)
	if err != nil {
		return nil, err
	}
	w := &Word{base: b, lookup: make(map[string][]string)}
	for atom := range vocab {
		if len([]rune(atom)) > 1 {
			f := firstRune(atom)
			w.lookup[f] = append(w.lookup[f], atom)
		}
	}
	for _, atoms := range w.lookup {
		sort.Slice(atoms, func(i, j int) bool {
			if len(atoms[i]) != len(atoms[j]) {
				return len(atoms[i]) > len(atoms[j])
			}
			return atoms[i] < atoms[j]
		})
	}
	return w, nil
}

// WordFromText derives the subset of tokens needed to encode text. Single
// characters not covered by tokens are added as atoms.
func WordFromText(text string, tokens []string, metaTokens bool) (*Word, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("tokenizer: no tokens specified")
	}

	full := make(map[string]int, len(tokens)+len(MetaTokens))
	add := func(a string) {
		if _, ok := full[a]; !ok {
			full[a] = len(full)
		}
	}
	if metaTokens {
		for _, m := range MetaTokens {
			add(m)
		}
	}
	for _, t := range tokens {
		add(t)
	}
	for _, r := range text {
		add(string(r))
	}

	w, err := NewWord(full, metaTokens)
	if err != nil {
		return nil, err
	}
	used, err := w.split(text)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(used))
	var atoms []string
	for _, a := range used {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		if _, isMeta := w.matchMeta(a); !isMeta {
			atoms = append(atoms, a)
		}
	}
	sort.Strings(atoms)

	vocab := make(map[string]int, len(atoms)+len(MetaTokens))
	if metaTokens {
		for _, m := range MetaTokens {
			vocab[m] = len(vocab)
		}
	}
	for _, a := range atoms {
		if _, ok := vocab[a]; !ok {
			vocab[a] = len(vocab)
		}
	}
	return NewWord(vocab, metaTokens)
}

// LoadTokenList reads a token list file of the form {"opencl": {"tokens": [...]}}.
func LoadTokenList(path, language string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lists map[string]struct {
		Tokens []string `json:"tokens"`
	}
	if err := codec.Default.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("tokenizer: decode token list %s: %w", path, err)
	}
	l, ok := lists[language]
	if !ok {
		return nil, fmt.Errorf("tokenizer: token list %s has no %q section", path, language)
	}
	return l.Tokens, nil
}

func (w *Word) split(text string) ([]string, error) {
	var out []string
	for i := 0; i < len(text); {
		rest := text[i:]
		if m, ok := w.matchMeta(rest); ok {
			out = append(out, m)
			i += len(m)
			continue
		}
		f := firstRune(rest)
		match := ""
		for _, atom := range w.lookup[f] {
			if len(atom) <= len(rest) && rest[:len(atom)] == atom {
				match = atom
				break
			}
		}
		if match == "" {
			if _, ok := w.vocab[f]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrOutOfVocabulary, f)
			}
			match = f
		}
		out = append(out, match)
		i += len(match)
	}
	return out, nil
}

// Encode implements Tokenizer.
func (w *Word) Encode(text string) ([]int, error) {
	atoms, err := w.split(text)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(atoms))
	for i, a := range atoms {
		out[i] = w.vocab[a]
	}
	return out, nil
}

// Vocab implements Tokenizer.
func (w *Word) Vocab() Vocab { return w.vocabFile(KindWord) }
