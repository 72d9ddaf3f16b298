package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/featsearch/codec"
)

const (
	// MagicNumber identifies checkpoint frames (ASCII: "FSC1").
	MagicNumber uint32 = 0x46534331
	// Version is the current frame format version.
	Version uint16 = 1

	maxPayload = 1 << 31
)

var (
	ErrInvalidMagic   = errors.New("persistence: invalid magic number")
	ErrInvalidVersion = errors.New("persistence: unsupported version")
	ErrUnknownCodec   = errors.New("persistence: unknown codec")
	ErrTruncated      = errors.New("persistence: truncated frame")
)

// Header describes a decoded frame.
type Header struct {
	Version     uint16
	Codec       string
	Compression string
	Length      uint64
}

// Encode writes v as a single frame.
func Encode(w io.Writer, c codec.Codec, comp codec.Compressor, v any) error {
	if c == nil {
		c = codec.Default
	}
	if comp == nil {
		comp = codec.None{}
	}

	raw, err := c.Marshal(v)
	if err != nil {
		return fmt.Errorf("persistence: encode with %s: %w", c.Name(), err)
	}
	payload, err := comp.Compress(raw)
	if err != nil {
		return fmt.Errorf("persistence: compress with %s: %w", comp.Name(), err)
	}

	cw := newCRCWriter(w)
	var hdr bytes.Buffer
	_ = binary.Write(&hdr, binary.LittleEndian, MagicNumber)
	_ = binary.Write(&hdr, binary.LittleEndian, Version)
	writeName(&hdr, c.Name())
	writeName(&hdr, comp.Name())
	_ = binary.Write(&hdr, binary.LittleEndian, uint64(len(payload)))

	if _, err := cw.Write(hdr.Bytes()); err != nil {
		return err
	}
	if _, err := cw.Write(payload); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, cw.Sum())
}

// Decode reads one frame into v.
func Decode(r io.Reader, v any) (Header, error) {
	cr := newCRCReader(r)
	var h Header

	var magic uint32
	if err := read(cr, &magic); err != nil {
		return h, err
	}
	if magic != MagicNumber {
		return h, ErrInvalidMagic
	}
	if err := read(cr, &h.Version); err != nil {
		return h, err
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}

	var err error
	if h.Codec, err = readName(cr); err != nil {
		return h, err
	}
	if h.Compression, err = readName(cr); err != nil {
		return h, err
	}
	if err := read(cr, &h.Length); err != nil {
		return h, err
	}
	if h.Length > maxPayload {
		return h, fmt.Errorf("persistence: payload of %d bytes exceeds limit", h.Length)
	}

	payload := make([]byte, h.Length)
	if _, err := io.ReadFull(cr, payload); err != nil {
		return h, ErrTruncated
	}

	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return h, ErrTruncated
	}
	if err := cr.verify(sum); err != nil {
		return h, err
	}

	c, ok := codec.ByName(h.Codec)
	if !ok {
		return h, fmt.Errorf("%w: %q", ErrUnknownCodec, h.Codec)
	}
	comp, ok := codec.CompressorByName(h.Compression)
	if !ok {
		return h, fmt.Errorf("%w: compression %q", ErrUnknownCodec, h.Compression)
	}

	raw, err := comp.Decompress(payload)
	if err != nil {
		return h, err
	}
	if err := c.Unmarshal(raw, v); err != nil {
		return h, fmt.Errorf("persistence: decode with %s: %w", c.Name(), err)
	}
	return h, nil
}

func writeName(buf *bytes.Buffer, name string) {
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
}

func readName(r io.Reader) (string, error) {
	var n uint8
	if err := read(r, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", ErrTruncated
	}
	return string(b), nil
}

func read(r io.Reader, v any) error {
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return ErrTruncated
	}
	return nil
}
