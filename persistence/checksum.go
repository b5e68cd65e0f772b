package persistence

import (
	"fmt"
	"hash"
	"io"

	ihash "github.com/hupe1980/csrgo/internal/hash"
)

// ChecksumWriter forwards writes and keeps a running CRC32C and byte count.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
	n    int64
}

func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{w: w, hash: ihash.NewCRC32C()}
}

func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	if n > 0 {
		_, _ = cw.hash.Write(p[:n])
		cw.n += int64(n)
	}
	return n, err
}

func (cw *ChecksumWriter) Sum() uint32 { return cw.hash.Sum32() }

func (cw *ChecksumWriter) Count() int64 { return cw.n }

// Verify compares the running state with the expected size and checksum.
func (cw *ChecksumWriter) Verify(size int64, sum uint32) error {
	if cw.n != size {
		return fmt.Errorf("%w: unpacked %d bytes, envelope declares %d", ErrCorruptEnvelope, cw.n, size)
	}
	if got := cw.Sum(); got != sum {
		return &ChecksumMismatchError{Expected: sum, Actual: got}
	}
	return nil
}

// ChecksumMismatchError is returned when an unpacked image fails verification.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Is lets errors.Is(err, ErrCorruptEnvelope) match checksum failures.
func (e *ChecksumMismatchError) Is(target error) bool {
	return target == ErrCorruptEnvelope
}
