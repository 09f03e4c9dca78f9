package pricer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExecutionMode defines how batch calculations are performed
type ExecutionMode string

const (
	ExecutionModeAuto       ExecutionMode = "auto"
	ExecutionModeParallel   ExecutionMode = "parallel"
	ExecutionModeSequential ExecutionMode = "sequential"
)

// Engine prices batches of requests, optionally spread across worker goroutines.
// It holds no mutable state after construction and may be shared.
type Engine struct {
	executionMode ExecutionMode
	workers       int
}

// NewEngine creates an engine for the given mode ("auto", "parallel", "sequential").
// Unknown modes fall back to auto. workers <= 0 means GOMAXPROCS.
func NewEngine(mode string, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	e := &Engine{workers: workers}

	switch ExecutionMode(mode) {
	case ExecutionModeParallel:
		e.executionMode = ExecutionModeParallel
	case ExecutionModeSequential:
		e.executionMode = ExecutionModeSequential
	default:
		// auto resolves once, here
		if workers > 1 {
			e.executionMode = ExecutionModeParallel
		} else {
			e.executionMode = ExecutionModeSequential
		}
	}

	return e
}

// Mode returns the resolved execution mode (never auto)
func (e *Engine) Mode() ExecutionMode {
	return e.executionMode
}

// Workers returns the worker count used in parallel mode
func (e *Engine) Workers() int {
	return e.workers
}

// PriceBatch prices every request and returns results in input order.
// The first failing request aborts the batch.
func (e *Engine) PriceBatch(ctx context.Context, requests []PricingRequest) ([]PricingResult, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	results := make([]PricingResult, len(requests))

	if e.executionMode == ExecutionModeSequential || e.workers <= 1 || len(requests) == 1 {
		for i, req := range requests {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := req.Price()
			if err != nil {
				return nil, fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	chunk := (len(requests) + e.workers - 1) / e.workers
	for start := 0; start < len(requests); start += chunk {
		start := start
		end := start + chunk
		if end > len(requests) {
			end = len(requests)
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := requests[i].Price()
				if err != nil {
					return fmt.Errorf("request %d: %w", i, err)
				}
				results[i] = res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
