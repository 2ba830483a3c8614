package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects how entries are compressed on the store.
type Codec uint8

const (
	CodecNone Codec = 0
	CodecLZ4  Codec = 1
	CodecZstd Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec accepts none, lz4 and zstd.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecNone, fmt.Errorf("unknown cache codec %q (expected: none|lz4|zstd)", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxEntrySize))
}

// Frame layout: [codec uint8][raw size uint32 LE][payload].
const frameHeaderSize = 5

// MaxEntrySize bounds the decoded size of one cache entry. Composed runtimes
// are a few megabytes; the header of a frame read back from a shared store is
// checked against this before anything is allocated.
const MaxEntrySize = 64 << 20

// lz4MaxRatio is the largest expansion an LZ4 block can encode.
const lz4MaxRatio = 255

var (
	errShortFrame    = errors.New("cache frame too short")
	errFrameTooLarge = errors.New("cache frame exceeds the entry size limit")
)

// encodeFrame compresses raw with c. Input that does not shrink is stored
// with CodecNone.
func encodeFrame(c Codec, raw []byte) ([]byte, error) {
	if len(raw) > MaxEntrySize {
		return nil, fmt.Errorf("%w: %d bytes", errFrameTooLarge, len(raw))
	}
	size, err := safecast.Conv[uint32](len(raw))
	if err != nil {
		return nil, fmt.Errorf("cache entry too large: %w", err)
	}

	var body []byte
	switch c {
	case CodecNone:
	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		body = buf[:n]
	case CodecZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		body = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("unknown cache codec %d", uint8(c))
	}
	if len(body) == 0 || len(body) >= len(raw) {
		c, body = CodecNone, raw
	}

	frame := make([]byte, frameHeaderSize+len(body))
	frame[0] = byte(c)
	binary.LittleEndian.PutUint32(frame[1:], size)
	copy(frame[frameHeaderSize:], body)
	return frame, nil
}

func decodeFrame(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, errShortFrame
	}
	c := Codec(frame[0])
	size := binary.LittleEndian.Uint32(frame[1:])
	body := frame[frameHeaderSize:]
	if size > MaxEntrySize {
		return nil, fmt.Errorf("%w: header claims %d bytes", errFrameTooLarge, size)
	}

	switch c {
	case CodecNone:
		if uint64(len(body)) != uint64(size) {
			return nil, fmt.Errorf("cache frame size mismatch: header %d, body %d", size, len(body))
		}
		return body, nil
	case CodecLZ4:
		if uint64(size) > uint64(len(body))*lz4MaxRatio {
			return nil, fmt.Errorf("%w: %d bytes cannot expand to %d", errFrameTooLarge, len(body), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if uint64(n) != uint64(size) {
			return nil, errors.New("lz4: decompressed size mismatch")
		}
		return out, nil
	case CodecZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(body, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		if uint64(len(out)) != uint64(size) {
			return nil, errors.New("zstd: decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown cache codec %d", uint8(c))
	}
}
