// Package transform defines the transformation contract of the ingestion
// pipeline and its built-in implementations.
//
// A Transformation is a named, configurable unit of work applied to an
// ordered batch of nodes. Its configuration is exposed as a flat, serializable
// core.TransformSpec so that two transformations with identical configuration
// and identical input are cache-equivalent.
//
// Transformations whose work is dominated by external-call latency can
// additionally implement ConcurrentTransformation to parallelize their own
// sub-batch work; the pipeline executor still applies the transformation list
// strictly in order.
//
// Built-in transformations:
//   - Splitter: chunks node content into smaller derived nodes
//   - Embedding: populates node vectors via an ai.Embedder
//   - Keywords: annotates node metadata via an ai.KeywordExtractor
package transform
