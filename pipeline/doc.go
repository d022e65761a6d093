// Package pipeline executes ordered transformation chains over node batches
// with content-addressed memoization.
//
// The executor applies transformations strictly in list order. Before each
// stage it fingerprints the in-flight batch together with the stage's
// configuration; a cache hit substitutes the stored output and skips the
// stage, a miss applies the stage and stores the result. Because each stage's
// key depends on the previous stage's output, a change anywhere in the chain
// invalidates exactly the stages downstream of it.
//
// Caching is a performance optimization, never a correctness dependency: an
// unreachable cache degrades to recomputation, and a failed stage's output is
// never cached.
//
// The Pipeline type wraps the executor with input assembly (documents,
// explicit nodes, readers) and sink forwarding for embedded nodes.
package pipeline
