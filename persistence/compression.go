package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	ihash "github.com/hupe1980/csrgo/internal/hash"
)

// Compression selects the envelope codec.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps "none", "lz4" or "zstd" (case-insensitive) to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
	}
}

var (
	ErrCorruptEnvelope        = errors.New("persistence: corrupt envelope")
	ErrUnsupportedCompression = errors.New("persistence: unsupported compression")
)

var envelopeMagic = [4]byte{'C', 'S', 'R', 'Z'}

const (
	envelopeVersion = 1
	// magic(4) version(1) codec(1) reserved(2) rawSize(8) crc32c(4) reserved(4)
	EnvelopeHeaderSize = 24
)

// EnvelopeHeader describes a packed image.
type EnvelopeHeader struct {
	Compression Compression
	RawSize     uint64
	Checksum    uint32
}

func (h EnvelopeHeader) encode() [EnvelopeHeaderSize]byte {
	var b [EnvelopeHeaderSize]byte
	copy(b[0:4], envelopeMagic[:])
	b[4] = envelopeVersion
	b[5] = byte(h.Compression)
	binary.LittleEndian.PutUint64(b[8:], h.RawSize)
	binary.LittleEndian.PutUint32(b[16:], h.Checksum)
	return b
}

// ReadEnvelopeHeader reads and validates the envelope prefix.
func ReadEnvelopeHeader(r io.Reader) (EnvelopeHeader, error) {
	var b [EnvelopeHeaderSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return EnvelopeHeader{}, fmt.Errorf("%w: %w", ErrCorruptEnvelope, err)
	}
	if [4]byte(b[0:4]) != envelopeMagic {
		return EnvelopeHeader{}, fmt.Errorf("%w: bad magic %q", ErrCorruptEnvelope, b[0:4])
	}
	if b[4] != envelopeVersion {
		return EnvelopeHeader{}, fmt.Errorf("%w: version %d", ErrCorruptEnvelope, b[4])
	}
	h := EnvelopeHeader{
		Compression: Compression(b[5]),
		RawSize:     binary.LittleEndian.Uint64(b[8:]),
		Checksum:    binary.LittleEndian.Uint32(b[16:]),
	}
	if h.Compression > CompressionZSTD {
		return EnvelopeHeader{}, fmt.Errorf("%w: codec %d", ErrUnsupportedCompression, b[5])
	}
	return h, nil
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	},
}

var lz4WriterPool = sync.Pool{
	New: func() any { return lz4.NewWriter(nil) },
}

// Pack writes raw (a complete image) to dst inside a compressed envelope.
func Pack(dst io.Writer, raw []byte, c Compression) (EnvelopeHeader, error) {
	h := EnvelopeHeader{Compression: c, RawSize: uint64(len(raw)), Checksum: ihash.CRC32C(raw)}
	hdr := h.encode()
	if _, err := dst.Write(hdr[:]); err != nil {
		return h, err
	}

	switch c {
	case CompressionNone:
		_, err := dst.Write(raw)
		return h, err
	case CompressionZSTD:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)
		enc.Reset(dst)
		if _, err := enc.Write(raw); err != nil {
			_ = enc.Close()
			return h, err
		}
		return h, enc.Close()
	case CompressionLZ4:
		zw := lz4WriterPool.Get().(*lz4.Writer)
		defer lz4WriterPool.Put(zw)
		zw.Reset(dst)
		if _, err := zw.Write(raw); err != nil {
			_ = zw.Close()
			return h, err
		}
		return h, zw.Close()
	default:
		return h, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
}

// Unpack decodes an envelope from src into dst and verifies size and checksum.
// A verification failure is reported after dst received the bytes; callers
// writing to a temporary file must discard it.
func Unpack(dst io.Writer, src io.Reader) (EnvelopeHeader, error) {
	h, err := ReadEnvelopeHeader(src)
	if err != nil {
		return h, err
	}

	cw := NewChecksumWriter(dst)
	switch h.Compression {
	case CompressionNone:
		_, err = io.Copy(cw, src)
	case CompressionZSTD:
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		if err = dec.Reset(src); err == nil {
			_, err = io.Copy(cw, dec)
		}
		// Drop the reference to src before pooling.
		_ = dec.Reset(nil)
		zstdDecoderPool.Put(dec)
	case CompressionLZ4:
		_, err = io.Copy(cw, lz4.NewReader(src))
	}
	if err != nil {
		return h, fmt.Errorf("%w: %s payload: %w", ErrCorruptEnvelope, h.Compression, err)
	}

	rawSize, err := checkedSize(h.RawSize)
	if err != nil {
		return h, err
	}
	return h, cw.Verify(rawSize, h.Checksum)
}

func checkedSize(n uint64) (int64, error) {
	if n > 1<<62 {
		return 0, fmt.Errorf("%w: raw size %d", ErrCorruptEnvelope, n)
	}
	return int64(n), nil
}
