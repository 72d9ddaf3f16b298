// Package corpus supplies the seed inputs of the search.
//
// A Source is an indexed list of token sequences. A Cursor walks the source in
// order, skipping items already consumed, and starts over once every item has
// been used. The consumed set is a roaring bitmap so the cursor position fits
// into the search checkpoint.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrEmpty is returned when a source has no items.
var ErrEmpty = errors.New("corpus: empty source")

// Item is one seed input.
type Item struct {
	Name   string `json:"name"`
	Tokens []int  `json:"tokens"`
}

// Source is an indexed list of items.
type Source interface {
	Len() int
	Item(i int) (Item, error)
}

// Slice is an in-memory Source.
type Slice []Item

// Len implements Source.
func (s Slice) Len() int { return len(s) }

// Item implements Source.
func (s Slice) Item(i int) (Item, error) {
	if i < 0 || i >= len(s) {
		return Item{}, fmt.Errorf("corpus: index %d out of range [0,%d)", i, len(s))
	}
	return s[i], nil
}

// Encoder turns text into tokens.
type Encoder interface {
	Encode(text string) ([]int, error)
}

// LoadDir encodes every file with extension ext below root. Files that fail to
// encode are skipped and reported through the returned count.
func LoadDir(ctx context.Context, root, ext string, enc Encoder) (Slice, int, error) {
	var (
		out     Slice
		skipped int
	)
	err := filepath.WalkDir(root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !de.Type().IsRegular() || filepath.Ext(p) != ext {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		toks, err := enc.Encode(string(data))
		if err != nil || len(toks) == 0 {
			skipped++
			return nil
		}
		rel, _ := filepath.Rel(root, p)
		out = append(out, Item{Name: filepath.ToSlash(rel), Tokens: toks})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("corpus: load %s: %w", root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, skipped, nil
}

// State is the checkpointable cursor position.
type State struct {
	Consumed []byte `json:"consumed"`
	Restarts int    `json:"restarts"`
}

// Cursor hands out source items, each once per pass.
type Cursor struct {
	src      Source
	consumed *roaring.Bitmap
	restarts int
}

// NewCursor returns a cursor at the start of src.
func NewCursor(src Source) *Cursor {
	return &Cursor{src: src, consumed: roaring.New()}
}

// Next returns the first unconsumed item and marks it consumed. When every
// item has been consumed the cursor restarts from the beginning.
func (c *Cursor) Next() (Item, error) {
	n := c.src.Len()
	if n == 0 {
		return Item{}, ErrEmpty
	}
	if c.consumed.GetCardinality() >= uint64(n) {
		c.consumed.Clear()
		c.restarts++
	}

	it := c.consumed.Iterator()
	idx := uint32(0)
	for it.HasNext() {
		v := it.Next()
		if v != idx {
			break
		}
		idx++
	}

	item, err := c.src.Item(int(idx))
	if err != nil {
		return Item{}, err
	}
	c.consumed.Add(idx)
	return item, nil
}

// Consumed returns the number of items used in the current pass.
func (c *Cursor) Consumed() int { return int(c.consumed.GetCardinality()) }

// Restarts returns how often the cursor wrapped around.
func (c *Cursor) Restarts() int { return c.restarts }

// State captures the cursor position.
func (c *Cursor) State() (State, error) {
	c.consumed.RunOptimize()
	b, err := c.consumed.ToBytes()
	if err != nil {
		return State{}, fmt.Errorf("corpus: encode cursor: %w", err)
	}
	return State{Consumed: b, Restarts: c.restarts}, nil
}

// Restore resets the cursor to a captured position.
func (c *Cursor) Restore(s State) error {
	bm := roaring.New()
	if len(s.Consumed) > 0 {
		if err := bm.UnmarshalBinary(s.Consumed); err != nil {
			return fmt.Errorf("corpus: decode cursor: %w", err)
		}
	}
	c.consumed = bm
	c.restarts = s.Restarts
	return nil
}
