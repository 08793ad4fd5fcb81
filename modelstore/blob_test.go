package modelstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCodecType(t *testing.T) {
	testData := map[string]struct {
		name     string
		expected CodecType
		err      error
	}{
		"empty":   {"", CodecNone, nil},
		"none":    {"none", CodecNone, nil},
		"zstd":    {"zstd", CodecZstd, nil},
		"s2":      {"S2", CodecS2, nil},
		"lz4":     {" lz4 ", CodecLZ4, nil},
		"unknown": {"gzip", 0, ErrUnknownCodec},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := ParseCodecType(td.name)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}

	assert.Equal(t, "zstd", CodecZstd.String())
	assert.Equal(t, "codec(9)", CodecType(9).String())
	_, err := CreateCodec(CodecType(9))
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestCodecRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"leaf":true,"value":0.0123,"samples":12}`), 200)
	for _, codecType := range []CodecType{CodecNone, CodecZstd, CodecS2, CodecLZ4} {
		t.Run(codecType.String(), func(t *testing.T) {
			codec, err := CreateCodec(codecType)
			require.Nil(t, err)

			compressed, err := codec.Compress(data)
			require.Nil(t, err)
			if codecType != CodecNone {
				assert.Less(t, len(compressed), len(data))
			}

			res, err := codec.Decompress(compressed)
			require.Nil(t, err)
			assert.Equal(t, data, res)

			empty, err := codec.Decompress(nil)
			require.Nil(t, err)
			assert.Len(t, empty, 0)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	b, _ := newTestBundle(t)
	for _, codecType := range []CodecType{CodecNone, CodecZstd, CodecS2, CodecLZ4} {
		t.Run(codecType.String(), func(t *testing.T) {
			blob, err := Encode(b, codecType)
			require.Nil(t, err)
			assert.Equal(t, []byte("SFM1"), blob[:4])

			c, err := DecodeCodec(blob)
			require.Nil(t, err)
			assert.Equal(t, codecType, c)

			res, err := Decode(blob)
			require.Nil(t, err)
			assert.Equal(t, b, res)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	b, _ := newTestBundle(t)
	blob, err := Encode(b, CodecZstd)
	require.Nil(t, err)

	corrupt := func(i int) []byte {
		res := make([]byte, len(blob))
		copy(res, blob)
		res[i] ^= 0xff
		return res
	}

	testData := map[string]struct {
		blob []byte
		err  error
	}{
		"empty":            {nil, ErrShortBlob},
		"truncated header": {blob[:10], ErrShortBlob},
		"bad magic":        {corrupt(0), ErrBadMagic},
		"unknown codec":    {corrupt(4), ErrUnknownCodec},
		"bad checksum":     {corrupt(6), ErrChecksumMismatch},
		"corrupt payload":  {corrupt(len(blob) - 1), ErrChecksumMismatch},
		"truncated body":   {blob[:len(blob)-5], ErrChecksumMismatch},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(td.blob)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
