package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/capitalize-ai/travelers-buddy/pkg/metrics"
)

const tracerName = "github.com/capitalize-ai/travelers-buddy/internal/llm"

type instrumentedClient struct {
	Client
}

// Instrument wraps c so that every completion is traced and recorded.
func Instrument(c Client) Client {
	if c == nil {
		return nil
	}
	return &instrumentedClient{Client: c}
}

func (c *instrumentedClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.Complete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.provider", c.Name()),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.turns", len(req.Turns)),
		attribute.Int("llm.token_size", req.TokenSize),
	)

	start := time.Now()
	resp, err := c.Client.Complete(ctx, req)
	if err == nil && (resp == nil || resp.Answer == "") {
		err = ErrEmptyAnswer
	}
	duration := time.Since(start).Seconds()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordCompletion(c.Name(), "error", duration, 0, 0)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("llm.tokens_in", resp.TokensIn),
		attribute.Int("llm.tokens_out", resp.TokensOut),
	)
	metrics.RecordCompletion(c.Name(), "success", duration, resp.TokensIn, resp.TokensOut)
	return resp, nil
}
