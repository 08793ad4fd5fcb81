package modelstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

var (
	ErrBadMagic         = errors.New("not a model blob")
	ErrShortBlob        = errors.New("model blob is truncated")
	ErrChecksumMismatch = errors.New("model blob checksum mismatch")
)

var blobMagic = []byte("SFM1")

// headerLen is the magic, the codec byte and the 64 bit checksum.
const headerLen = 4 + 1 + 8

// Encode serializes the bundle to JSON, compresses it with the codec and frames it as
//
//	magic "SFM1" | codec (1 byte) | xxhash64 of payload (8 bytes, big endian) | payload
func Encode(b *Bundle, codecType CodecType) ([]byte, error) {
	codec, err := CreateCodec(codecType)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal bundle, %w", err)
	}
	payload, err := codec.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("unable to compress bundle with %s, %w", codecType, err)
	}

	blob := make([]byte, headerLen, headerLen+len(payload))
	copy(blob, blobMagic)
	blob[4] = byte(codecType)
	binary.BigEndian.PutUint64(blob[5:headerLen], xxhash.Sum64(payload))
	return append(blob, payload...), nil
}

// Decode verifies and unpacks a blob written by Encode. The bundle is not validated.
func Decode(blob []byte) (*Bundle, error) {
	if len(blob) < headerLen {
		return nil, fmt.Errorf("%d bytes, %w", len(blob), ErrShortBlob)
	}
	if !bytes.Equal(blob[:4], blobMagic) {
		return nil, ErrBadMagic
	}
	codecType := CodecType(blob[4])
	codec, err := CreateCodec(codecType)
	if err != nil {
		return nil, err
	}

	payload := blob[headerLen:]
	expected := binary.BigEndian.Uint64(blob[5:headerLen])
	if sum := xxhash.Sum64(payload); sum != expected {
		return nil, fmt.Errorf("expected %016x but got %016x, %w", expected, sum, ErrChecksumMismatch)
	}

	data, err := codec.Decompress(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress bundle with %s, %w", codecType, err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("unable to unmarshal bundle, %w", err)
	}
	return &b, nil
}

// DecodeCodec returns the codec recorded in a blob header.
func DecodeCodec(blob []byte) (CodecType, error) {
	if len(blob) < headerLen {
		return 0, fmt.Errorf("%d bytes, %w", len(blob), ErrShortBlob)
	}
	if !bytes.Equal(blob[:4], blobMagic) {
		return 0, ErrBadMagic
	}
	return CodecType(blob[4]), nil
}
