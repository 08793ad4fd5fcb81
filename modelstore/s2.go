package modelstore

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Codec compresses payloads with S2, trading ratio for speed.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

func NewS2Codec() S2Codec {
	return S2Codec{}
}

func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Encode(nil, data), nil
}

func (c S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	res, err := s2.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed, %w", err)
	}
	return res, nil
}
