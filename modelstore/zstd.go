package modelstore

// ZstdCodec compresses payloads with Zstandard. Builds with cgo and the gozstd tag use the
// reference C library, all others a pure Go implementation. Both produce standard zstd frames
// so blobs are readable by either build.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
