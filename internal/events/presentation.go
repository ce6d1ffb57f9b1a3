package events

// Presentation is the marker styling derived from a category.
type Presentation struct {
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// DefaultPresentation styles categories without a dedicated entry.
var DefaultPresentation = Presentation{Emoji: "📅", Color: "#3b82f6"}

var presentations = map[Category]Presentation{
	CategoryParty:  {Emoji: "🎉", Color: "#a855f7"},
	CategoryDrinks: {Emoji: "🍸", Color: "#FF7F32"},
	CategoryCowork: {Emoji: "☕", Color: "#4A90E2"},
	CategorySport:  {Emoji: "⚽", Color: "#10b981"},
	CategoryFood:   {Emoji: "🍔", Color: "#ef4444"},
}

// PresentationFor returns the emoji and color assigned to c at creation time.
// Association events and unknown tags get DefaultPresentation.
func PresentationFor(c Category) Presentation {
	if presentation, ok := presentations[c]; ok {
		return presentation
	}
	return DefaultPresentation
}
