package modelstore

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCodec = errors.New("unknown codec")

// CodecType identifies the compression applied to a bundle payload. The value is stored in the
// blob header so it must never be renumbered.
type CodecType byte

const (
	CodecNone CodecType = iota
	CodecZstd
	CodecS2
	CodecLZ4
)

var codecNames = map[CodecType]string{
	CodecNone: "none",
	CodecZstd: "zstd",
	CodecS2:   "s2",
	CodecLZ4:  "lz4",
}

func (c CodecType) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("codec(%d)", byte(c))
}

// ParseCodecType maps a codec name such as "zstd" to its type. Names are case insensitive and
// the empty name selects CodecNone.
func ParseCodecType(name string) (CodecType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CodecNone, nil
	}
	for c, n := range codecNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%q, %w", name, ErrUnknownCodec)
}

// Codec compresses and decompresses bundle payloads. Implementations are safe for concurrent
// use.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// CreateCodec returns the codec for the given type.
func CreateCodec(codecType CodecType) (Codec, error) {
	switch codecType {
	case CodecNone:
		return NewNoOpCodec(), nil
	case CodecZstd:
		return NewZstdCodec(), nil
	case CodecS2:
		return NewS2Codec(), nil
	case CodecLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("%s, %w", codecType, ErrUnknownCodec)
	}
}
