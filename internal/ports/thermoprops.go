package ports

import (
	"context"

	"github.com/Agrid-Dev/thermoprops/internal/bleve"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

// PropertiesService is the lookup port used by controllers (HTTP/MQTT/Modbus).
type PropertiesService interface {
	Properties(ctx context.Context, pressurePa float64) (saturation.Properties, error)
}

// BleveService runs burst-energy calculations for the HTTP controller.
type BleveService interface {
	Calculate(ctx context.Context, in bleve.Inputs) (bleve.Results, error)
}
