// Package storage defines the persistence contracts of docpipe: the
// transformation cache consulted by the pipeline executor and the vector
// store that receives embedded nodes.
//
// The cache maps a transformation fingerprint to a stored batch of nodes,
// partitioned by a caller-supplied collection name so that distinct
// pipelines sharing a backend do not collide. A cache is a simple store, not
// a coordinator: concurrent callers racing on the same fingerprint may both
// compute and both put; the last write wins.
//
// Implementations live in sub-packages (storage/badger) plus the in-process
// MemoryCache reference backend in this package. Stored payloads use the MUS
// binary format via the serializers in core.
package storage
