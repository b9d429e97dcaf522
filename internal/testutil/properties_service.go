package testutil

import (
	"context"
	"sync"

	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

// FakePropertiesService is a reusable fake implementing ports.PropertiesService.
// Put ONLY what multiple test packages need here.
type FakePropertiesService struct {
	mu sync.Mutex

	P   saturation.Properties
	Err error

	Calls []float64
}

func NewFakePropertiesService() *FakePropertiesService {
	return &FakePropertiesService{
		P: saturation.Properties{
			Temperature: 373.124,
			HLiquid:     419_099,
			HVapor:      2_675_572,
			RhoLiquid:   958.35,
			RhoVapor:    0.5976,
			SLiquid:     1306.9,
			SVapor:      7354.5,
			ULiquid:     418_993,
			UVapor:      2_506_030,
		},
	}
}

// Properties echoes pressurePa in the returned value, like the real service.
func (f *FakePropertiesService) Properties(_ context.Context, pressurePa float64) (saturation.Properties, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, pressurePa)
	if f.Err != nil {
		return saturation.Properties{}, f.Err
	}
	p := f.P
	p.Pressure = pressurePa
	return p, nil
}

func (f *FakePropertiesService) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
