package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/Alturino/storefront/internal/common/constants"
)

var Tracer = otel.Tracer(constants.AppOrderService)
