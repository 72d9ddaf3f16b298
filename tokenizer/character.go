package tokenizer

import (
	"fmt"
	"sort"
)

// Character tokenizes text one character at a time.
type Character struct {
	base
}

// NewCharacter returns a character atomizer over vocab.
func NewCharacter(vocab map[string]int, metaTokens bool) (*Character, error) {
	b, err := newBase(vocab, metaTokens)
	if err != nil {
		return nil, err
	}
	return &Character{base: b}, nil
}

// CharacterFromText derives a vocabulary from a corpus text. Meta tokens take
// the first indices, followed by the characters in descending frequency.
func CharacterFromText(text string, metaTokens bool) (*Character, error) {
	counts := make(map[string]int)
	for _, r := range text {
		counts[string(r)]++
	}
	chars := make([]string, 0, len(counts))
	for c := range counts {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool {
		if counts[chars[i]] != counts[chars[j]] {
			return counts[chars[i]] > counts[chars[j]]
		}
		return chars[i] < chars[j]
	})

	vocab := make(map[string]int, len(chars)+len(MetaTokens))
	if metaTokens {
		for _, m := range MetaTokens {
			vocab[m] = len(vocab)
		}
	}
	for _, c := range chars {
		if _, ok := vocab[c]; !ok {
			vocab[c] = len(vocab)
		}
	}
	return NewCharacter(vocab, metaTokens)
}

// Encode implements Tokenizer.
func (c *Character) Encode(text string) ([]int, error) {
	out := make([]int, 0, len(text))
	for i := 0; i < len(text); {
		if m, ok := c.matchMeta(text[i:]); ok {
			out = append(out, c.vocab[m])
			i += len(m)
			continue
		}
		ch := firstRune(text[i:])
		idx, ok := c.vocab[ch]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrOutOfVocabulary, ch)
		}
		out = append(out, idx)
		i += len(ch)
	}
	return out, nil
}

// Vocab implements Tokenizer.
func (c *Character) Vocab() Vocab { return c.vocabFile(KindCharacter) }
