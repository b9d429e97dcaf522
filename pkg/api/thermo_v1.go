// pkg/api/thermo_v1.go
package api

import "github.com/Agrid-Dev/thermoprops/internal/saturation"

// PropertiesV1 is the stable JSON schema for one saturation lookup.
// Keep fields, names, and types stable. Units are SI base units.
type PropertiesV1 struct {
	Pressure    float64 `json:"pressure"`    // Pa, echoed from the request
	Temperature float64 `json:"temperature"` // K
	HLiquid     float64 `json:"h_l"`         // J/kg
	HVapor      float64 `json:"h_v"`
	RhoLiquid   float64 `json:"rho_l"` // kg/m³
	RhoVapor    float64 `json:"rho_v"`
	SLiquid     float64 `json:"s_l"` // J/(kg·K)
	SVapor      float64 `json:"s_v"`
	ULiquid     float64 `json:"u_l"` // J/kg
	UVapor      float64 `json:"u_v"`
}

func FromProperties(p saturation.Properties) PropertiesV1 {
	return PropertiesV1{
		Pressure:    p.Pressure,
		Temperature: p.Temperature,
		HLiquid:     p.HLiquid,
		HVapor:      p.HVapor,
		RhoLiquid:   p.RhoLiquid,
		RhoVapor:    p.RhoVapor,
		SLiquid:     p.SLiquid,
		SVapor:      p.SVapor,
		ULiquid:     p.ULiquid,
		UVapor:      p.UVapor,
	}
}

func (v PropertiesV1) Properties() saturation.Properties {
	return saturation.Properties{
		Pressure:    v.Pressure,
		Temperature: v.Temperature,
		HLiquid:     v.HLiquid,
		HVapor:      v.HVapor,
		RhoLiquid:   v.RhoLiquid,
		RhoVapor:    v.RhoVapor,
		SLiquid:     v.SLiquid,
		SVapor:      v.SVapor,
		ULiquid:     v.ULiquid,
		UVapor:      v.UVapor,
	}
}

// ErrorV1 is the body of every non-2xx HTTP response.
type ErrorV1 struct {
	Detail string `json:"detail"`
}

type HealthV1 struct {
	Status string `json:"status"`
}

type VersionV1 struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}
