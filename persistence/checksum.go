package persistence

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// A frame ends with the CRC32 (IEEE) of all bytes before it. It catches torn
// and truncated blob writes.

type crcWriter struct {
	w   io.Writer
	crc hash.Hash32
}

func newCRCWriter(w io.Writer) *crcWriter {
	return &crcWriter{w: w, crc: crc32.NewIEEE()}
}

func (cw *crcWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.crc.Write(p[:n])
	return n, err
}

func (cw *crcWriter) Sum() uint32 { return cw.crc.Sum32() }

type crcReader struct {
	r   io.Reader
	crc hash.Hash32
}

func newCRCReader(r io.Reader) *crcReader {
	return &crcReader{r: r, crc: crc32.NewIEEE()}
}

func (cr *crcReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.crc.Write(p[:n])
	return n, err
}

// verify compares the running sum of the frame with the stored trailer.
func (cr *crcReader) verify(stored uint32) error {
	if got := cr.crc.Sum32(); got != stored {
		return &ChecksumMismatchError{Expected: stored, Actual: got}
	}
	return nil
}

// ChecksumMismatchError is returned when a frame fails verification.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("persistence: checksum mismatch: stored 0x%08x, computed 0x%08x", e.Expected, e.Actual)
}

// IsChecksumMismatch reports whether err is a ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}
