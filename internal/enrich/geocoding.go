package enrich

import (
	"context"

	"github.com/jeanpaul/lifeline/internal/timeline"
)

// Geocoder resolves a place description to coordinates. ok is false when
// the place is unknown or the lookup budget is exhausted.
type Geocoder interface {
	Lookup(ctx context.Context, place string) (lat, lon timeline.Scalar, ok bool)
}

type geocodingResolver struct {
	inner Resolver
	geo   Geocoder
}

// WithGeocoding wraps a Resolver so that resolved events missing
// coordinates get them filled in from the event's place description.
// Lookup failures leave the event untouched.
func WithGeocoding(r Resolver, g Geocoder) Resolver {
	return &geocodingResolver{inner: r, geo: g}
}

func (gr *geocodingResolver) Resolve(ctx context.Context, name string) (timeline.Person, error) {
	p, err := gr.inner.Resolve(ctx, name)
	if err != nil {
		return p, err
	}
	for i := range p.Events {
		ev := &p.Events[i]
		if ev.Place == "" || (!ev.Lat.IsEmpty() && !ev.Lon.IsEmpty()) {
			continue
		}
		if lat, lon, ok := gr.geo.Lookup(ctx, ev.Place); ok {
			ev.Lat = lat
			ev.Lon = lon
		}
	}
	return p, nil
}
