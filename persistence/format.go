package persistence

import (
	"errors"
	"fmt"
)

const (
	// MagicNumber identifies kcluster snapshot files (ASCII: "KCL0").
	MagicNumber = 0x4B434C30
	// Version is the current snapshot format version (v1.0.0).
	Version = 0x00010000

	// HeaderSize is the encoded size of FileHeader.
	HeaderSize = 32

	// maxPayloadSize is the largest payload length a header may declare.
	maxPayloadSize = 1 << 32
)

var (
	ErrInvalidMagic     = errors.New("invalid magic number")
	ErrInvalidVersion   = errors.New("unsupported version")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrCorrupt          = errors.New("corrupt snapshot")
	ErrUnknownCodec     = errors.New("unknown codec")
	ErrEmptySnapshot    = errors.New("snapshot has no centroids")
)

// FileHeader is the 32-byte header at the start of every snapshot.
type FileHeader struct {
	Magic       uint32 // 0x4B434C30 ("KCL0")
	Version     uint32 // Snapshot format version
	Compression CompressionType
	CodecLen    uint8 // Length of the codec name at the start of the payload
	Padding     [2]byte
	K           uint32 // Number of clusters
	Dimension   uint32 // Centroid dimensionality
	PayloadLen  uint64 // Stored (possibly compressed) payload length
	Reserved    [4]byte
}

func (h *FileHeader) validate() error {
	if h.Magic != MagicNumber {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, h.Version)
	}
	switch h.Compression {
	case CompressionNone, CompressionLZ4, CompressionZSTD:
	default:
		return fmt.Errorf("%w: compression type %d", ErrCorrupt, h.Compression)
	}
	if h.K == 0 || h.Dimension == 0 {
		return ErrEmptySnapshot
	}
	if h.PayloadLen > maxPayloadSize {
		return fmt.Errorf("%w: payload length %d", ErrCorrupt, h.PayloadLen)
	}
	return nil
}
