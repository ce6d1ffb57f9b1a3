package events

// SeedEvents returns the events present in the catalog at startup.
func SeedEvents() []Event {
	return []Event{
		{
			ID:                 "evt_drink_01",
			Category:           CategoryDrinks,
			Position:           LatLng{Lat: 47.2150, Lng: -1.5520},
			Emoji:              "🍸",
			Color:              "#FF7F32",
			Label:              "Bouffay Drinks",
			Title:              "Apéro coucher de soleil",
			Location:           "Place du Bouffay",
			Time:               "19:00",
			AttendeeCountLabel: "12 participants",
			Attendees: []Attendee{
				{Name: "Marc", Avatar: "https://picsum.photos/seed/marc/100"},
				{Name: "Sophie", Avatar: "https://picsum.photos/seed/sophie/100"},
				{Name: "John", Avatar: "https://picsum.photos/seed/john/100"},
			},
		},
		{
			ID:                 "evt_assoc_01",
			Category:           CategoryAssociation,
			Position:           LatLng{Lat: 47.2120, Lng: -1.5500},
			Emoji:              "🂡",
			Color:              "#20B2AA",
			Label:              "Tournoi de Belote",
			Title:              "Venez jouer à la Belote 🂡",
			Location:           "Salle Municipale B, Rezé",
			Time:               "14:00 - 17:00",
			Price:              "Gratuit / Don libre",
			AttendeeCountLabel: "Participants (Locaux & Nomades)",
			IsAssociation:      true,
			Organizer: &Organizer{
				Name:     "Les Aînés de Nantes",
				Type:     "Association Loi 1901",
				Verified: true,
			},
			Description: "Partagez un moment convivial avec nos aînés ! Débutants bienvenus, nous enseignons les règles.",
			Tags:        []string{"Accessible Fauteuil", "Calme", "Débutants bienvenus"},
			Attendees: []Attendee{
				{Name: "Jeanne (72)", Avatar: "https://picsum.photos/seed/jeanne/100", Role: "Hôte Local"},
				{Name: "Pierre (68)", Avatar: "https://picsum.photos/seed/pierre/100", Role: "Hôte Local"},
			},
		},
		{
			ID:                 "evt_coffee_01",
			Category:           CategoryCowork,
			Position:           LatLng{Lat: 47.2090, Lng: -1.5580},
			Emoji:              "☕",
			Color:              "#4A90E2",
			Label:              "Morning Coffee",
			Title:              "Coffee Meetup & Cowork",
			Location:           "La Cantine Numérique",
			Time:               "09:30",
			AttendeeCountLabel: "4 coworkers",
			Description:        "On commence la journée avec un bon café avant d'attaquer les mails.",
			Attendees: []Attendee{
				{Name: "Alex", Avatar: "https://picsum.photos/seed/alex/100"},
				{Name: "Sarah", Avatar: "https://picsum.photos/seed/sarah/100"},
			},
		},
		{
			ID:                 "evt_nantes_1",
			Category:           CategoryParty,
			Position:           LatLng{Lat: 47.2000, Lng: -1.5710},
			Emoji:              "🎉",
			Color:              "#a855f7",
			Label:              "Hangar Party",
			Title:              "Verre afterwork au Nid ?",
			Location:           "Tour de Bretagne, Nantes",
			Time:               "20:30",
			AttendeeCountLabel: "8 nomades présents",
			Attendees: []Attendee{
				{Name: "Tamara", Avatar: "https://picsum.photos/seed/tamara/100"},
			},
		},
	}
}
