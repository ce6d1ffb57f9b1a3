package planner

import (
	"time"

	"github.com/Potowai/nomad-nantes/internal/events"
)

const handoffLead = 30 * time.Minute

// Handoff turns a recommendation into a prefilled event draft scheduled
// thirty minutes after now.
func Handoff(matcher *CategoryMatcher, recommendation Recommendation, now time.Time) events.Draft {
	return events.Draft{
		Category: matcher.Match(recommendation.Category),
		Title:    "Rencontre à " + recommendation.PlaceName,
		Location: recommendation.PlaceName,
		Time:     now.Add(handoffLead).Format("15:04"),
	}
}
