package engine

import (
	"context"
	"testing"
	"time"

	"inferd/pkg/types"
)

func TestFutureGetBlocksUntilResolved(t *testing.T) {
	tk := newTask("m", []byte("x"), types.OutputText, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		tk.complete(types.Result{Kind: types.OutputText, Text: "done"})
	}()
	res, err := tk.future.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.Text != "done" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !tk.future.IsDone() {
		t.Fatalf("expected IsDone after resolution")
	}
}

func TestFutureGetTimeoutNoSideEffects(t *testing.T) {
	tk := newTask("m", []byte("x"), types.OutputText, 1)
	if _, err := tk.future.GetTimeout(0); !IsWaitTimeout(err) {
		t.Fatalf("expected wait timeout, got %v", err)
	}
	if tk.future.IsDone() {
		t.Fatalf("timeout must not resolve the future")
	}
	if st := tk.State(); st != StateCreated {
		t.Fatalf("timeout must not alter task state, got %s", st)
	}
	// still resolvable afterwards
	tk.complete(types.Result{Kind: types.OutputText, Text: "late"})
	res, err := tk.future.GetTimeout(time.Second)
	if err != nil || res.Text != "late" {
		t.Fatalf("late resolution lost: %v %+v", err, res)
	}
}

func TestFutureSingleAssignment(t *testing.T) {
	tk := newTask("m", []byte("x"), types.OutputText, 0)
	if !tk.future.resolve(types.Result{Text: "first"}, nil, false) {
		t.Fatalf("first resolve rejected")
	}
	if tk.future.resolve(types.Result{Text: "second"}, nil, false) {
		t.Fatalf("second resolve accepted")
	}
	res, _ := tk.future.Get(context.Background())
	if res.Text != "first" {
		t.Fatalf("value overwritten: %+v", res)
	}
}

func TestFutureCancelBeforeInference(t *testing.T) {
	tk := newTask("m", []byte("x"), types.OutputText, 2)
	if !tk.future.Cancel() {
		t.Fatalf("cancel of created task should succeed")
	}
	if !tk.future.IsCancelled() {
		t.Fatalf("expected IsCancelled")
	}
	if _, err := tk.future.Get(context.Background()); !IsCancelled(err) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if tk.future.Cancel() {
		t.Fatalf("second cancel should report false")
	}
}

func TestFutureCancelAfterInferringIgnored(t *testing.T) {
	tk := newTask("m", []byte("x"), types.OutputText, 2)
	if !tk.begin(StateInferring) {
		t.Fatalf("begin inferring")
	}
	if tk.future.Cancel() {
		t.Fatalf("cancel after inferring must have no effect")
	}
	tk.complete(types.Result{Kind: types.OutputText, Text: "v"})
	res, err := tk.future.Get(context.Background())
	if err != nil || res.Text != "v" {
		t.Fatalf("task should resolve normally: %v %+v", err, res)
	}
}

func TestMultiFutureAggregation(t *testing.T) {
	mf := newMultiFuture(2)
	mf.contribute("a", types.Result{Kind: types.OutputText, Text: "ra"})
	if mf.IsDone() {
		t.Fatalf("aggregate resolved before all constituents")
	}
	mf.contribute("b", types.Result{Kind: types.OutputText, Text: "rb"})
	out, err := mf.GetTimeout(time.Second)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out["a"].Text != "ra" || out["b"].Text != "rb" {
		t.Fatalf("unexpected aggregate: %+v", out)
	}
}

func TestMultiFutureFailFast(t *testing.T) {
	mf := newMultiFuture(2)
	mf.contribute("a", types.Result{Kind: types.OutputText, Text: "ra"})
	mf.failAggregate(stageError{stage: "infer", modelID: "b", err: context.Canceled})
	out, err := mf.GetTimeout(time.Second)
	if !IsStageFailure(err) {
		t.Fatalf("expected stage failure, got %v", err)
	}
	if out != nil {
		t.Fatalf("partial results must be discarded, got %+v", out)
	}
	// a late contribution must not flip the outcome
	mf.contribute("b", types.Result{Kind: types.OutputText, Text: "rb"})
	if _, err := mf.GetTimeout(time.Second); !IsStageFailure(err) {
		t.Fatalf("failure outcome changed: %v", err)
	}
}
