package events

import "math/rand/v2"

// ReferencePoint is the fixed point new events are placed around.
var ReferencePoint = LatLng{Lat: 47.2184, Lng: -1.5536}

const defaultSpread = 0.01

// LocationResolver turns a free-text location label into coordinates.
type LocationResolver interface {
	Resolve(location string) LatLng
}

// OffsetResolver places every location at a pseudo-random offset of up to
// Spread/2 degrees around Reference. It stands in for geocoding.
type OffsetResolver struct {
	Reference LatLng
	Spread    float64
	// Random returns values in [0, 1). Inject a fixed source for exact coordinates.
	Random func() float64
}

// NewOffsetResolver returns an OffsetResolver around ReferencePoint using math/rand.
func NewOffsetResolver() *OffsetResolver {
	return &OffsetResolver{Reference: ReferencePoint, Spread: defaultSpread, Random: rand.Float64}
}

func (r *OffsetResolver) Resolve(string) LatLng {
	random := r.Random
	if random == nil {
		random = rand.Float64
	}
	return LatLng{
		Lat: r.Reference.Lat + (random()-0.5)*r.Spread,
		Lng: r.Reference.Lng + (random()-0.5)*r.Spread,
	}
}
