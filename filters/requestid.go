package filters

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/dispatch/internal"
)

// RequestIDKey is the Context value key holding the request ID.
const RequestIDKey = "request_id"

// DefaultRequestIDHeaders are checked in order for an upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDFilter assigns every request an ID, echoes it in the response and
// attaches it to log records.
type RequestIDFilter struct {
	generator      func() string
	source         internal.Extractor
	responseHeader string
	headers        []string
}

// RequestIDOption configures RequestIDFilter.
type RequestIDOption func(*RequestIDFilter)

// WithRequestIDHeaders sets the headers checked for an existing ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(f *RequestIDFilter) {
		f.headers = headers
	}
}

// WithRequestIDGenerator sets the ID generator.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(f *RequestIDFilter) {
		if gen != nil {
			f.generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(f *RequestIDFilter) {
		f.responseHeader = header
	}
}

// NewRequestID returns a request ID filter generating UUIDv7 values.
func NewRequestID(opts ...RequestIDOption) *RequestIDFilter {
	f := &RequestIDFilter{
		headers:        DefaultRequestIDHeaders,
		generator:      newID,
		responseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(f)
	}
	sources := make([]internal.ExtractorSource, len(f.headers))
	for i, h := range f.headers {
		sources[i] = internal.FromHeader(h)
	}
	f.source = internal.NewExtractor(sources...)
	return f
}

// RequestIDFactory builds RequestIDFilter from header and headers.
func RequestIDFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	header, err := at.string("header", "X-Request-ID")
	if err != nil {
		return nil, err
	}
	headers, err := at.strings("headers")
	if err != nil {
		return nil, err
	}
	opts := []RequestIDOption{WithRequestIDResponseHeader(header)}
	if len(headers) > 0 {
		opts = append(opts, WithRequestIDHeaders(headers...))
	}
	return NewRequestID(opts...), nil
}

// DoFilter implements internal.Filter.
func (f *RequestIDFilter) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	id, ok := f.source.Extract(c)
	if !ok {
		id = f.generator()
	}

	c.Set(RequestIDKey, id)
	if f.responseHeader != "" {
		c.Response().Header().Set(f.responseHeader, id)
	}
	c.AddLogAttrs(slog.String(RequestIDKey, id))

	return chain.Proceed(c)
}

// RequestID returns the ID assigned by RequestIDFilter, or "".
func RequestID(c internal.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
