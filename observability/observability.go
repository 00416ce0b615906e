package observability

import (
	"context"
	"time"
)

// Logger is the structured logging contract used across the scan and crop
// stages. Implementations must be safe to call from HTTP handlers.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type durationField struct {
	key string
	val time.Duration
}

func (f durationField) Key() string        { return f.key }
func (f durationField) Value() interface{} { return f.val }

type anyField struct {
	key string
	val interface{}
}

func (f anyField) Key() string        { return f.key }
func (f anyField) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field          { return stringField{key, value} }
func Int(key string, value int) Field         { return intField{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Error(key string, err error) Field       { return errorField{key, err} }

func Duration(key string, d time.Duration) Field { return durationField{key, d} }
func Any(key string, value interface{}) Field    { return anyField{key, value} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// Tracer opens a span around one stage of a document's processing.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

type Span interface {
	SetTag(key string, value interface{})
	SetError(err error)
	Finish()
}

// Span names used by the batch runner, one per stage.
const (
	SpanDocument  = "bensonscan.document"
	SpanRasterize = "bensonscan.rasterize"
	SpanScan      = "bensonscan.scan"
	SpanExtract   = "bensonscan.extract"
)

type nopTracer struct{}

func (nopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, nopSpan{}
}

func NopTracer() Tracer { return nopTracer{} }

type nopSpan struct{}

func (nopSpan) SetTag(string, interface{}) {}
func (nopSpan) SetError(error)             {}
func (nopSpan) Finish()                    {}

// NewLogTracer returns a tracer that writes one debug entry per finished
// span with its name, duration, tags and error.
func NewLogTracer(l Logger) Tracer {
	if l == nil {
		l = NopLogger{}
	}
	return logTracer{logger: l}
}

type logTracer struct {
	logger Logger
}

func (t logTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &logSpan{logger: t.logger, name: name, start: time.Now()}
}

type logSpan struct {
	logger Logger
	name   string
	start  time.Time
	tags   []Field
	err    error
	done   bool
}

func (s *logSpan) SetTag(key string, value interface{}) {
	s.tags = append(s.tags, Any(key, value))
}

func (s *logSpan) SetError(err error) { s.err = err }

// Finish logs the span once; later calls are ignored.
func (s *logSpan) Finish() {
	if s.done {
		return
	}
	s.done = true
	fields := make([]Field, 0, len(s.tags)+3)
	fields = append(fields, String("span", s.name), Duration("duration", time.Since(s.start)))
	fields = append(fields, s.tags...)
	if s.err != nil {
		fields = append(fields, Error("error", s.err))
	}
	s.logger.Debug("span finished", fields...)
}
