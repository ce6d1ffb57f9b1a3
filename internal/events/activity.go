package events

// Activity is the list-presentation projection of an event.
type Activity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Time        string `json:"time"`
	HostID      string `json:"hostId"`
	HostName    string `json:"hostName"`
	Attendees   int    `json:"attendees"`
}

// ToActivity projects an event for the list view.
func ToActivity(e Event) Activity {
	activity := Activity{
		ID:          e.ID,
		Title:       e.Title,
		Type:        activityType(e.Category),
		Description: e.Description,
		Location:    e.Location,
		Time:        e.Time,
		HostID:      "unknown",
		HostName:    "Un Nomade",
		Attendees:   len(e.Attendees),
	}
	if activity.Description == "" {
		activity.Description = "Pas de description"
	}
	if activity.Time == "" {
		activity.Time = "Maintenant"
	}
	if e.Organizer != nil && e.Organizer.Name != "" {
		activity.HostName = e.Organizer.Name
	}
	return activity
}

func activityType(c Category) string {
	switch c {
	case CategoryDrinks:
		return "Drink"
	case CategoryCowork:
		return "Coworking"
	case CategoryParty:
		return "Other"
	default:
		return "Explore"
	}
}
