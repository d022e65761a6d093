// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
	"github.com/poiesic/docpipe/transform"
)

// RunOptions configures a single executor invocation.
type RunOptions struct {
	// Cache memoizes each stage's output. Nil disables caching entirely:
	// every stage is applied on every run.
	Cache storage.Cache

	// Collection partitions the cache keyspace. Empty means
	// storage.DefaultCollection.
	Collection string

	// Options is forwarded uninterpreted to each transformation.
	Options *transform.Options

	// Logger receives cache-failure warnings. Nil means slog.Default().
	Logger *slog.Logger
}

func (o *RunOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// RunTransformations applies the transformations to the batch strictly in
// list order, consulting the cache before and updating it after each stage.
//
// The cache key for stage i is the fingerprint of stage i-1's output batch
// combined with stage i's configuration, so a content or configuration change
// anywhere in the chain re-computes from that point forward while earlier
// stages still hit. Cache connectivity failures are treated as misses on read
// and logged on write; a failed transformation is returned to the caller
// unmodified and its output is never cached.
func RunTransformations(ctx context.Context, nodes []*core.Node, transformations []transform.Transformation, opts *RunOptions) ([]*core.Node, error) {
	return run(ctx, nodes, transformations, opts, func(ctx context.Context, t transform.Transformation, batch []*core.Node, topts *transform.Options) ([]*core.Node, error) {
		return t.Apply(ctx, batch, topts)
	})
}

// RunTransformationsConcurrent is RunTransformations with intra-stage
// concurrency: stages still execute strictly in list order, but a stage
// implementing transform.ConcurrentTransformation is invoked through
// ApplyConcurrent so it can parallelize its own sub-batch work. Output is
// identical to the sequential run for pure transformations.
func RunTransformationsConcurrent(ctx context.Context, nodes []*core.Node, transformations []transform.Transformation, opts *RunOptions) ([]*core.Node, error) {
	return run(ctx, nodes, transformations, opts, func(ctx context.Context, t transform.Transformation, batch []*core.Node, topts *transform.Options) ([]*core.Node, error) {
		if ct, ok := t.(transform.ConcurrentTransformation); ok {
			return ct.ApplyConcurrent(ctx, batch, topts)
		}
		return t.Apply(ctx, batch, topts)
	})
}

type applyFunc func(ctx context.Context, t transform.Transformation, batch []*core.Node, topts *transform.Options) ([]*core.Node, error)

func run(ctx context.Context, nodes []*core.Node, transformations []transform.Transformation, opts *RunOptions, apply applyFunc) ([]*core.Node, error) {
	if opts == nil {
		opts = &RunOptions{}
	}
	logger := opts.logger()
	topts := opts.Options

	batch := nodes
	for _, t := range transformations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var key core.Fingerprint
		if opts.Cache != nil {
			var err error
			key, err = core.TransformationFingerprint(batch, t.Spec())
			if err != nil {
				// Unserializable configuration is a programmer error.
				return nil, err
			}

			cached, found, err := opts.Cache.Get(ctx, key, opts.Collection)
			if err != nil {
				logger.Warn("cache read failed, recomputing",
					"transformation", t.Name(), "err", err)
			} else if found {
				batch = cached
				continue
			}
		}

		result, err := apply(ctx, t, batch, topts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrTransformationFailed, t.Name(), err)
		}
		batch = result

		if opts.Cache != nil {
			if err := opts.Cache.Put(ctx, key, batch, opts.Collection); err != nil {
				logger.Warn("cache write failed, continuing",
					"transformation", t.Name(), "err", err)
			}
		}
	}

	return batch, nil
}
