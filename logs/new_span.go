package logs

import (
	"context"
	"crypto/rand"
)

// NewSpan starts a span under parent, or under the span carried by ctx when
// parent is empty. The returned ctx carries the new span.
type NewSpan func(ctx context.Context, parent Span) (context.Context, Span)

type spanDepthKey struct{}

// SpanDepth is the nesting depth of the span carried by ctx, 0 for none.
func SpanDepth(ctx context.Context) int {
	depth, _ := ctx.Value(spanDepthKey{}).(int)
	return depth
}

func (Module) NewSpan(
	logger Logger,
) NewSpan {
	return func(ctx context.Context, parent Span) (context.Context, Span) {
		var creator Span
		if v := ctx.Value(SpanKey); v != nil {
			creator = v.(Span)
		}
		if parent == "" {
			parent = creator
		}

		span := Span(rand.Text())
		depth := SpanDepth(ctx) + 1
		ctx = context.WithValue(ctx, SpanKey, span)
		ctx = context.WithValue(ctx, spanDepthKey{}, depth)

		args := []any{"depth", depth}
		if creator != "" && creator != parent {
			args = append(args, "creator", creator)
		}
		if parent != "" {
			args = append(args, "parent", parent)
		}
		logger.DebugContext(ctx, "new span", args...)

		return ctx, span
	}
}
