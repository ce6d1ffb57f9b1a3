package events

import (
	"errors"
	"slices"
	"strings"
)

// Category tags an event. The constants below are the known kinds; created
// events may carry any other tag and are styled with DefaultPresentation.
type Category string

const (
	CategoryDrinks      Category = "drinks"
	CategoryCowork      Category = "cowork"
	CategoryParty       Category = "party"
	CategoryAssociation Category = "association"
	CategorySport       Category = "sport"
	CategoryFood        Category = "food"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryDrinks,
	CategoryCowork,
	CategoryParty,
	CategoryAssociation,
	CategorySport,
	CategoryFood,
}

var (
	// ErrInvalidDraft indicates a draft missing a required field.
	ErrInvalidDraft = errors.New("events: invalid draft")
	// ErrDuplicateID indicates the id provider returned an identifier already in the catalog.
	ErrDuplicateID = errors.New("events: duplicate event id")
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Label is the display label derived from the category, e.g. "Sport".
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Attendee struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role,omitempty"`
}

type Organizer struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Verified bool   `json:"verified"`
}

// Event is a geo-tagged meetup record. Events are immutable once in the catalog.
type Event struct {
	ID                 string     `json:"id"`
	Category           Category   `json:"type"`
	Position           LatLng     `json:"position"`
	Emoji              string     `json:"emoji"`
	Color              string     `json:"color"`
	Label              string     `json:"label"`
	Title              string     `json:"title"`
	Location           string     `json:"location"`
	Time               string     `json:"time,omitempty"`
	Price              string     `json:"price,omitempty"`
	Description        string     `json:"description,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	AttendeeCountLabel string     `json:"attendeeCountLabel"`
	Attendees          []Attendee `json:"attendees"`
	IsAssociation      bool       `json:"isAssociation,omitempty"`
	Organizer          *Organizer `json:"organizer,omitempty"`
}

func (e Event) clone() Event {
	copied := e
	copied.Tags = slices.Clone(e.Tags)
	copied.Attendees = slices.Clone(e.Attendees)
	if e.Organizer != nil {
		organizer := *e.Organizer
		copied.Organizer = &organizer
	}
	return copied
}

func (e Event) matches(lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	for _, field := range []string{e.Title, e.Location, e.Label, string(e.Category)} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

// Draft is the user-submitted input for a new event.
type Draft struct {
	Category      Category `json:"type" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Location      string   `json:"location" validate:"required"`
	Time          string   `json:"time" validate:"required"`
	CreatorName   string   `json:"creatorName,omitempty"`
	CreatorAvatar string   `json:"creatorAvatar,omitempty"`
}
