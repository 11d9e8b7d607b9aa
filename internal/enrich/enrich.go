// Package enrich resolves unknown person names into timeline records
// through the DeepSeek chat-completions API. A resolution that produces
// no events is an ordinary outcome, not an error; only transport and
// configuration failures surface as errors, and the call site downgrades
// those to an empty-events record.
package enrich

import (
	"context"

	"github.com/jeanpaul/lifeline/internal/timeline"
)

// Resolver turns a person name into a timeline record.
type Resolver interface {
	Resolve(ctx context.Context, name string) (timeline.Person, error)
}

// DefaultStyle is applied to enriched records, matching the frontend's
// pink palette.
func DefaultStyle() *timeline.Style {
	return &timeline.Style{MarkerColor: "#e91e63", LineColor: "#f06292"}
}

// EmptyRecord is the uncacheable placeholder returned when a name cannot
// be resolved.
func EmptyRecord(name string) timeline.Person {
	return timeline.Person{Name: name, Style: nil, Events: []timeline.Event{}}
}
