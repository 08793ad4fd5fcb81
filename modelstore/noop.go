package modelstore

// NoOpCodec stores payloads uncompressed.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns data as is.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as is.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}
