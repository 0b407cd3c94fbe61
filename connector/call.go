package connector

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/docket/entity"
	apperrors "github.com/kbukum/docket/errors"
	"github.com/kbukum/docket/httpclient"
	"github.com/kbukum/docket/logger"
	"github.com/kbukum/docket/observability"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// call is the single path to the network. It tags the request with a fresh
// correlation id, lowers the first letter of every query key, runs the request
// in a client span and rejects any status outside accept. Exchanges are logged
// at trace level and transport failures at fatal level.
func (c *Client) call(ctx context.Context, op string, req httpclient.Request, accept []int) (*httpclient.Response, error) {
	requestID := uuid.NewString()
	ctx = logger.ContextWithRequestID(ctx, requestID)
	log := c.log.WithContext(ctx)

	headers := make(map[string]string, len(req.Headers)+1)
	maps.Copy(headers, req.Headers)
	headers[RequestIDHeader] = requestID
	req.Headers = headers

	query, err := adaptQuery(req.Query)
	if err != nil {
		return nil, err
	}
	req.Query = query

	verb := req.Verb()
	url := c.adapter.ResolveURL(req.Path)
	if q := httpclient.QueryString(req.Query); q != "" {
		url += "?" + q
	}

	ctx, span := c.tracer.Start(ctx, observability.SpanRequest,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(verb),
			semconv.URLFull(url),
			observability.AttrOperation.String(op),
			observability.AttrRequestID.String(requestID),
		))
	defer span.End()

	start := time.Now()
	resp, err := c.adapter.Do(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		fields := logger.ErrorFields(op, err)
		fields[logger.FieldMethod] = verb
		fields[logger.FieldURL] = url
		log.Critical("Request "+verb+" "+url+" failed", fields)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(semconv.HTTPResponseStatusCode(resp.StatusCode))
	log.Trace("Request "+verb+" "+url+" / Response '"+strconv.Itoa(resp.StatusCode)+"'",
		logger.RequestFields(verb, url, resp.StatusCode, elapsed))

	if !slices.Contains(accept, resp.StatusCode) {
		err := apperrors.UnexpectedStatus(verb, url, resp.StatusCode, resp.Body)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return resp, nil
}

// adaptQuery applies the wire naming rule to query keys. Two keys that
// collapse to the same wire name are rejected.
func adaptQuery(query map[string]string) (map[string]string, error) {
	if len(query) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(query))
	for k, v := range query {
		name := entity.LowerFirst(k)
		if _, dup := out[name]; dup {
			return nil, apperrors.InvalidInput("query", "parameter "+name+" given more than once")
		}
		out[name] = v
	}
	return out, nil
}

