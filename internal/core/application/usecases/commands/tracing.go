package commands

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("marketplace/usecases/commands")
