package transform

import (
	"context"
	"io"
	"os"

	"github.com/poiesic/docpipe/core"
)

// Transformation is a single stage of the ingestion pipeline. It must be a
// pure function of (input batch, its own spec, options): side effects such as
// calling an external embedding service are permitted but are the
// transformation's own responsibility to make idempotent. The pipeline
// executor provides no retry wrapper around a transformation call.
type Transformation interface {
	// Name returns a short stable identifier for logging and specs.
	Name() string

	// Spec returns the serializable configuration of this transformation.
	// It participates in cache fingerprinting and must exclude live handles.
	Spec() core.TransformSpec

	// Apply transforms the batch and returns the resulting batch. Batch
	// order is preserved unless the transformation explicitly reorders, and
	// batch size may change (a splitter grows it, a filter shrinks it).
	Apply(ctx context.Context, nodes []*core.Node, opts *Options) ([]*core.Node, error)
}

// ConcurrentTransformation is an optional capability for transformations that
// can parallelize their own sub-batch work. ApplyConcurrent must have the
// same observable effect as Apply. Detected by type assertion in the
// concurrent executor.
type ConcurrentTransformation interface {
	Transformation

	// ApplyConcurrent behaves like Apply but may process sub-batches
	// concurrently within this single stage.
	ApplyConcurrent(ctx context.Context, nodes []*core.Node, opts *Options) ([]*core.Node, error)
}

// Releaser is implemented by transformations that hold resources (worker
// pools, clients) needing explicit cleanup.
type Releaser interface {
	Release()
}

// Options is an open bag of per-run options forwarded to every
// transformation. The executor interprets nothing here except progress
// toggling; everything else passes through uninterpreted.
type Options struct {
	// ShowProgress enables progress reporting to Progress (os.Stderr when nil).
	ShowProgress bool

	// Progress is the destination for progress output.
	Progress io.Writer

	// Extra carries caller-supplied named options a custom transformation
	// may interpret.
	Extra map[string]any
}

// progressWriter returns the configured progress destination, defaulting to
// os.Stderr. Safe on a nil receiver.
func (o *Options) progressWriter() io.Writer {
	if o == nil || o.Progress == nil {
		return os.Stderr
	}
	return o.Progress
}

// showProgress reports whether progress output is enabled. Safe on a nil
// receiver.
func (o *Options) showProgress() bool {
	return o != nil && o.ShowProgress
}
