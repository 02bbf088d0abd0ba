package engine

import (
	"context"

	"inferd/pkg/types"
)

// ModelRunner abstracts the compute unit behind a registered model. The
// engine never inspects buffers it passes through; it only moves them from
// stage to stage. Implementations must be safe for concurrent use, since the
// engine may call Prepare/Infer/Interpret from several workers at once.
type ModelRunner interface {
	// Prepare transforms the caller's opaque input into a model-ready buffer.
	Prepare(ctx context.Context, input []byte) ([]byte, error)
	// Infer runs the model on one prepared buffer and returns its raw output.
	Infer(ctx context.Context, prepared []byte) ([]byte, error)
	// InferBatch runs the model once over a whole batch of prepared buffers.
	// The returned slice must have one output per input, positionally.
	InferBatch(ctx context.Context, prepared [][]byte) ([][]byte, error)
	// Interpret converts a raw output buffer into the requested output kind.
	Interpret(raw []byte, kind types.OutputKind) (types.Result, error)
	// Close releases resources associated with the runner.
	Close() error
}
