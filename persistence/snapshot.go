package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/kcluster"
	"github.com/hupe1980/kcluster/codec"
)

// ModelInfo is the metadata section of a snapshot.
type ModelInfo struct {
	Points        int       `json:"points"`
	Iterations    int       `json:"iterations"`
	Converged     bool      `json:"converged"`
	TotalDistance float64   `json:"total_distance"`
	CreatedAt     time.Time `json:"created_at"`
}

// Snapshot is a persisted clustering result: the centroids, the member
// indices of every cluster, and run metadata.
type Snapshot struct {
	Centroids [][]float64
	Clusters  []*roaring.Bitmap
	Info      ModelInfo
}

// NewSnapshot captures a clustering result.
func NewSnapshot(res *kcluster.Result) *Snapshot {
	clusters := make([]*roaring.Bitmap, len(res.Clusters))
	for i, members := range res.Clusters {
		bm := roaring.New()
		for _, idx := range members {
			bm.Add(uint32(idx))
		}
		clusters[i] = bm
	}

	centroids := make([][]float64, len(res.Centroids))
	for i, c := range res.Centroids {
		centroids[i] = append([]float64(nil), c...)
	}

	return &Snapshot{
		Centroids: centroids,
		Clusters:  clusters,
		Info: ModelInfo{
			Points:        len(res.Labels),
			Iterations:    res.Iterations,
			Converged:     res.Converged,
			TotalDistance: res.TotalDistance,
			CreatedAt:     time.Now().UTC(),
		},
	}
}

// K returns the number of clusters.
func (s *Snapshot) K() int { return len(s.Centroids) }

// Dim returns the centroid dimensionality.
func (s *Snapshot) Dim() int {
	if len(s.Centroids) == 0 {
		return 0
	}
	return len(s.Centroids[0])
}

// Model returns a predictor over the snapshot's centroids.
func (s *Snapshot) Model() (*kcluster.Model, error) {
	return kcluster.NewModel(s.Centroids)
}

// Labels rebuilds the per-point cluster assignment. It fails with ErrCorrupt
// unless the membership bitmaps partition [0, Info.Points).
func (s *Snapshot) Labels() ([]int, error) {
	var total uint64
	for _, bm := range s.Clusters {
		total += bm.GetCardinality()
	}
	union := roaring.FastOr(s.Clusters...)
	n := uint64(s.Info.Points)
	if total != n || union.GetCardinality() != n {
		return nil, fmt.Errorf("%w: membership does not cover %d points", ErrCorrupt, n)
	}
	if n > 0 && uint64(union.Maximum()) >= n {
		return nil, fmt.Errorf("%w: member index %d out of range", ErrCorrupt, union.Maximum())
	}

	labels := make([]int, n)
	for j, bm := range s.Clusters {
		it := bm.Iterator()
		for it.HasNext() {
			labels[it.Next()] = j
		}
	}
	return labels, nil
}

type writeOptions struct {
	compression CompressionType
	codec       codec.Codec
}

// WriteOption configures Write and Save.
type WriteOption func(*writeOptions)

// WithCompression selects the payload compression. Default: CompressionNone.
func WithCompression(ct CompressionType) WriteOption {
	return func(o *writeOptions) { o.compression = ct }
}

// WithCodec selects the metadata codec. Default: codec.Default.
func WithCodec(c codec.Codec) WriteOption {
	return func(o *writeOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

func (s *Snapshot) validate() error {
	k := len(s.Centroids)
	if k == 0 {
		return ErrEmptySnapshot
	}
	if len(s.Clusters) != k {
		return fmt.Errorf("%w: %d membership sets for %d centroids", ErrCorrupt, len(s.Clusters), k)
	}
	d := len(s.Centroids[0])
	if d == 0 {
		return ErrEmptySnapshot
	}
	for i, c := range s.Centroids {
		if len(c) != d {
			return fmt.Errorf("%w: centroid %d has dimension %d, expected %d", ErrCorrupt, i, len(c), d)
		}
	}
	return nil
}

// Write encodes the snapshot to w.
func Write(w io.Writer, s *Snapshot, opts ...WriteOption) error {
	o := writeOptions{codec: codec.Default}
	for _, fn := range opts {
		fn(&o)
	}

	if err := s.validate(); err != nil {
		return err
	}

	name := o.codec.Name()
	if len(name) > math.MaxUint8 {
		return fmt.Errorf("codec name %q too long", name)
	}

	raw, err := encodePayload(s, o.codec)
	if err != nil {
		return err
	}
	payload, err := compressBlock(raw, o.compression)
	if err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}

	header := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: o.compression,
		CodecLen:    uint8(len(name)),
		K:           uint32(len(s.Centroids)),
		Dimension:   uint32(len(s.Centroids[0])),
		PayloadLen:  uint64(len(payload)),
	}

	cw := NewChecksumWriter(w)
	if err := binary.Write(cw, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := cw.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return binary.Write(w, binary.LittleEndian, cw.Sum())
}

// Read decodes a snapshot from r and verifies its checksum.
func Read(r io.Reader) (*Snapshot, error) {
	cr := NewChecksumReader(r)

	var header FileHeader
	if err := binary.Read(cr, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	// The buffer grows with the bytes actually present, not with the
	// length claimed by the header.
	payload, err := io.ReadAll(io.LimitReader(cr, int64(header.PayloadLen)))
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if uint64(len(payload)) != header.PayloadLen {
		return nil, fmt.Errorf("read payload: %w (%d of %d bytes)", io.ErrUnexpectedEOF, len(payload), header.PayloadLen)
	}

	var stored uint32
	if err := binary.Read(r, binary.LittleEndian, &stored); err != nil {
		return nil, fmt.Errorf("read checksum: %w", err)
	}
	if sum := cr.Sum(); sum != stored {
		return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksumMismatch, stored, sum)
	}

	raw, err := decompressBlock(payload, header.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return decodePayload(raw, &header)
}

func encodePayload(s *Snapshot, c codec.Codec) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(c.Name())

	var scratch [8]byte
	for _, centroid := range s.Centroids {
		for _, v := range centroid {
			binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(v))
			buf.Write(scratch[:])
		}
	}

	for i, bm := range s.Clusters {
		if bm == nil {
			bm = roaring.New()
		}
		data, err := bm.ToBytes()
		if err != nil {
			return nil, fmt.Errorf("serialize cluster %d: %w", i, err)
		}
		binary.LittleEndian.PutUint32(scratch[:4], uint32(len(data)))
		buf.Write(scratch[:4])
		buf.Write(data)
	}

	meta, err := c.Marshal(&s.Info)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	binary.LittleEndian.PutUint32(scratch[:4], uint32(len(meta)))
	buf.Write(scratch[:4])
	buf.Write(meta)

	return buf.Bytes(), nil
}

// payloadReader consumes a decoded payload and reports truncation as
// ErrCorrupt.
type payloadReader struct {
	data []byte
	off  int
}

func (p *payloadReader) next(n int) ([]byte, error) {
	if n < 0 || len(p.data)-p.off < n {
		return nil, fmt.Errorf("%w: truncated payload", ErrCorrupt)
	}
	b := p.data[p.off : p.off+n]
	p.off += n
	return b, nil
}

func (p *payloadReader) uint32() (uint32, error) {
	b, err := p.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func decodePayload(raw []byte, h *FileHeader) (*Snapshot, error) {
	p := &payloadReader{data: raw}

	nameBytes, err := p.next(int(h.CodecLen))
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByName(string(nameBytes))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, nameBytes)
	}

	k, d := int(h.K), int(h.Dimension)
	if uint64(k)*uint64(d)*8 > uint64(len(raw)) {
		return nil, fmt.Errorf("%w: centroid section exceeds payload", ErrCorrupt)
	}

	flat, err := p.next(k * d * 8)
	if err != nil {
		return nil, err
	}
	centroids := make([][]float64, k)
	for i := range centroids {
		row := make([]float64, d)
		for j := range row {
			off := (i*d + j) * 8
			row[j] = math.Float64frombits(binary.LittleEndian.Uint64(flat[off:]))
		}
		centroids[i] = row
	}

	clusters := make([]*roaring.Bitmap, k)
	for i := range clusters {
		n, err := p.uint32()
		if err != nil {
			return nil, err
		}
		data, err := p.next(int(n))
		if err != nil {
			return nil, err
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("%w: cluster %d: %v", ErrCorrupt, i, err)
		}
		clusters[i] = bm
	}

	metaLen, err := p.uint32()
	if err != nil {
		return nil, err
	}
	meta, err := p.next(int(metaLen))
	if err != nil {
		return nil, err
	}

	s := &Snapshot{Centroids: centroids, Clusters: clusters}
	if err := c.Unmarshal(meta, &s.Info); err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", ErrCorrupt, err)
	}
	return s, nil
}
