// Package persistence reads and writes binary snapshots of clustering results.
//
// A snapshot is laid out as
//
//	[Header 32B][Payload][CRC32 4B]
//
// All integers are little-endian. The payload holds the metadata codec name,
// the centroids as raw float64 values, one serialized roaring bitmap of
// member indices per cluster, and a ModelInfo section encoded with the named
// codec. The payload may be block-compressed with LZ4 or ZSTD; the header
// records which. The trailing CRC32 (IEEE) covers header and payload.
//
// Snapshots can be written to any io.Writer or stored in a blobstore.Store
// with Save and Load.
package persistence
