package tools

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/marionette/pkg/content"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/transcript"
)

// Result is the outcome of one tool call within a batch.
type Result struct {
	CallID   string
	ToolName string
	Output   content.Value
	Duration time.Duration
}

// Executor runs a batch of tool calls against a registry. A batch is
// all-or-nothing: either every call produced a result or the whole
// batch failed and no partial results are returned.
type Executor interface {
	ExecuteBatch(ctx context.Context, registry Registry, calls []transcript.ToolCall) ([]Result, error)
}

// ParallelExecutor runs calls concurrently, bounded by the configured
// parallelism, and returns results in call-issue order regardless of
// completion order.
type ParallelExecutor struct {
	cfg Config
}

func NewParallelExecutor(cfg Config) *ParallelExecutor {
	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}
	return &ParallelExecutor{cfg: cfg}
}

// ExecuteBatch resolves every call's tool before executing anything, so
// a call naming an unregistered tool aborts the batch up front. On
// success the returned slice has one Result per call, index-aligned
// with the input.
func (e *ParallelExecutor) ExecuteBatch(ctx context.Context, registry Registry, calls []transcript.ToolCall) ([]Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	resolved := make([]*Tool, len(calls))
	for i, call := range calls {
		tool, err := registry.Get(call.ToolName)
		if err != nil {
			return nil, err
		}
		resolved[i] = tool
	}

	results := make([]Result, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxParallel)
	for i := range calls {
		i := i
		g.Go(func() error {
			res, err := e.executeCall(gctx, resolved[i], calls[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *ParallelExecutor) executeCall(ctx context.Context, tool *Tool, call transcript.ToolCall) (Result, error) {
	callCtx := ctx
	if e.cfg.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.ExecutionTimeout)
		defer cancel()
	}

	meta := events.MetadataFromContext(ctx)

	log.Debug().
		Str("tool", call.ToolName).
		Str("call_id", call.ID).
		Str("turn_id", meta.TurnID).
		Msg("executing tool call")

	events.PublishEventToContext(ctx, events.NewToolCallExecuteEvent(
		meta,
		events.ToolCall{
			ID:    call.ID,
			Name:  call.ToolName,
			Input: content.Encode(call.Arguments),
		},
	))

	start := time.Now()
	output, err := tool.Call(callCtx, call.Arguments)
	duration := time.Since(start)
	if err != nil {
		log.Debug().
			Str("tool", call.ToolName).
			Str("call_id", call.ID).
			Err(err).
			Msg("tool call failed")
		events.PublishEventToContext(ctx, events.NewErrorEvent(meta, err))
		return Result{}, err
	}

	events.PublishEventToContext(ctx, events.NewToolCallExecutionResultEvent(
		meta,
		events.ToolResult{
			ID:     call.ID,
			Result: content.Encode(output),
		},
	))

	return Result{
		CallID:   call.ID,
		ToolName: call.ToolName,
		Output:   output,
		Duration: duration,
	}, nil
}

var _ Executor = &ParallelExecutor{}
