package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("internal/storage/mq")
	// kTracer hooks franz-go clients so broker requests show up in traces.
	kTracer = kotel.NewTracer()
)
