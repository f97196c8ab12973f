package core

import (
	"trailforks-scraper/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("trailforks.lib.trailforks.core")

var meter = telemetry.Meter("trailforks.lib.trailforks.core")
var pageCounter, _ = meter.Int64Counter(
	"trailforks.pages",
	metric.WithDescription("api pages fetched by paginated calls"),
)
