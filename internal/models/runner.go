// Package models provides the builtin deterministic model runners used by
// the serve command and the test suites. Each runner is a pure byte
// transform with an optional artificial latency, which makes pipeline
// behavior observable without any real model runtime.
package models

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"inferd/pkg/types"
)

// Supported runner kinds.
const (
	KindEcho     = "echo"
	KindReverse  = "reverse"
	KindUpper    = "upper"
	KindChecksum = "checksum"
)

// Runner is a builtin compute unit: a named deterministic transform.
type Runner struct {
	kind    string
	latency time.Duration
}

// New constructs a builtin runner. latency is added to every Infer call to
// simulate compute time; zero disables it.
func New(kind string, latency time.Duration) (*Runner, error) {
	switch kind {
	case KindEcho, KindReverse, KindUpper, KindChecksum:
	default:
		return nil, fmt.Errorf("unknown model kind: %s", kind)
	}
	return &Runner{kind: kind, latency: latency}, nil
}

// Kind returns the runner's transform name.
func (r *Runner) Kind() string { return r.kind }

// Prepare trims surrounding whitespace and copies the input so later stages
// never alias caller memory.
func (r *Runner) Prepare(ctx context.Context, input []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(append([]byte(nil), input...)), nil
}

// Infer applies the transform to one prepared buffer.
func (r *Runner) Infer(ctx context.Context, prepared []byte) ([]byte, error) {
	if r.latency > 0 {
		select {
		case <-time.After(r.latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	switch r.kind {
	case KindEcho:
		return prepared, nil
	case KindReverse:
		out := make([]byte, len(prepared))
		for i, b := range prepared {
			out[len(prepared)-1-i] = b
		}
		return out, nil
	case KindUpper:
		return bytes.ToUpper(prepared), nil
	case KindChecksum:
		return []byte(strconv.FormatUint(xxhash.Sum64(prepared), 16)), nil
	}
	return nil, fmt.Errorf("unknown model kind: %s", r.kind)
}

// InferBatch applies the transform to each buffer, one output per input.
func (r *Runner) InferBatch(ctx context.Context, prepared [][]byte) ([][]byte, error) {
	out := make([][]byte, len(prepared))
	for i, p := range prepared {
		res, err := r.Infer(ctx, p)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

// Interpret converts the raw output into the requested kind.
func (r *Runner) Interpret(raw []byte, kind types.OutputKind) (types.Result, error) {
	switch kind {
	case types.OutputText:
		return types.Result{Kind: kind, Text: string(raw)}, nil
	case types.OutputBytes:
		return types.Result{Kind: kind, Bytes: append([]byte(nil), raw...)}, nil
	case types.OutputFloats:
		fields := strings.Split(string(raw), ",")
		floats := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return types.Result{}, fmt.Errorf("output is not a float list: %w", err)
			}
			floats = append(floats, v)
		}
		return types.Result{Kind: kind, Floats: floats}, nil
	}
	return types.Result{}, fmt.Errorf("unsupported output kind: %s", kind)
}

// Close is a no-op for builtin runners.
func (r *Runner) Close() error { return nil }
