package events

import (
	"testing"

	"github.com/Potowai/nomad-nantes/internal/ids"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	created int
}

func (r *countingRecorder) EventCreated() { r.created++ }

func newSeededCatalog(t *testing.T) (*Catalog, *countingRecorder) {
	t.Helper()
	recorder := &countingRecorder{}
	catalog, err := NewCatalog(CatalogConfig{
		Seed:       SeedEvents(),
		IDProvider: &ids.Sequence{Prefix: "evt_test_"},
		Resolver:   &OffsetResolver{Reference: ReferencePoint, Spread: 0.01, Random: func() float64 { return 0.5 }},
		Recorder:   recorder,
	})
	require.NoError(t, err)
	return catalog, recorder
}

func collectIDs(seq func(func(Event) bool)) []string {
	var result []string
	for event := range seq {
		result = append(result, event.ID)
	}
	return result
}

func TestFilterEmptyQueryYieldsAllInInsertionOrder(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	got := collectIDs(catalog.Filter(""))
	assert.Equal(t, []string{"evt_drink_01", "evt_assoc_01", "evt_coffee_01", "evt_nantes_1"}, got)
}

func TestFilterMatchesRawQueryWithoutTrimming(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	assert.Equal(t, []string{"evt_drink_01"}, collectIDs(catalog.Filter("Drinks")))
	assert.Empty(t, collectIDs(catalog.Filter("Drinks ")))
	assert.Empty(t, collectIDs(catalog.Filter("   ")))
}

func TestFilterMatchesEachFieldCaseInsensitively(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	cases := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title", query: "BELOTE", want: []string{"evt_assoc_01"}},
		{name: "location", query: "bouffay", want: []string{"evt_drink_01"}},
		{name: "label", query: "hangar", want: []string{"evt_nantes_1"}},
		{name: "category", query: "cowork", want: []string{"evt_coffee_01"}},
		{name: "shared substring", query: "nantes", want: []string{"evt_nantes_1"}},
		{name: "no match", query: "zzz", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, collectIDs(catalog.Filter(tc.query)))
		})
	}
}

func TestFilterIsRestartableAndReflectsLaterCreates(t *testing.T) {
	catalog, _ := newSeededCatalog(t)
	seq := catalog.Filter("test")

	assert.Empty(t, collectIDs(seq))

	_, err := catalog.Create(Draft{Category: CategorySport, Title: "Test run", Location: "Île de Nantes", Time: "18:00"})
	require.NoError(t, err)

	assert.Equal(t, []string{"evt_test_1"}, collectIDs(seq))
	assert.Equal(t, []string{"evt_test_1"}, collectIDs(seq))
}

func TestFilterStopsWhenConsumerBreaks(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	var seen []string
	for event := range catalog.Filter("") {
		seen = append(seen, event.ID)
		if len(seen) == 2 {
			break
		}
	}
	assert.Len(t, seen, 2)
}

func TestCreateBuildsEventFromDraft(t *testing.T) {
	catalog, recorder := newSeededCatalog(t)

	event, err := catalog.Create(Draft{
		Category:      CategorySport,
		Title:         "  Test  ",
		Location:      "Parc de Procé",
		Time:          "10:00",
		CreatorName:   "Ana",
		CreatorAvatar: "https://ui-avatars.com/api/?name=Ana",
	})
	require.NoError(t, err)

	assert.Equal(t, "evt_test_1", event.ID)
	assert.Equal(t, CategorySport, event.Category)
	assert.Equal(t, "⚽", event.Emoji)
	assert.Equal(t, "#10b981", event.Color)
	assert.Equal(t, "Sport", event.Label)
	assert.Equal(t, "Test", event.Title)
	assert.Equal(t, "1 participant (Vous)", event.AttendeeCountLabel)
	assert.Equal(t, []Attendee{{Name: "Ana", Avatar: "https://ui-avatars.com/api/?name=Ana", Role: "Organisateur"}}, event.Attendees)
	assert.Equal(t, ReferencePoint, event.Position)
	assert.Equal(t, 5, catalog.Len())
	assert.Equal(t, 1, recorder.created)

	found, ok := catalog.FindByID(event.ID)
	require.True(t, ok)
	assert.Equal(t, event, found)
	assert.Equal(t, []string{event.ID}, collectIDs(catalog.Filter("Test")))
}

func TestCreateDefaultsCreatorName(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	event, err := catalog.Create(Draft{Category: CategoryFood, Title: "Crêpes", Location: "Rue Kervégan", Time: "12:30"})
	require.NoError(t, err)
	assert.Equal(t, "Moi", event.Attendees[0].Name)
}

func TestCreateRejectsInvalidDrafts(t *testing.T) {
	catalog, recorder := newSeededCatalog(t)

	cases := map[string]Draft{
		"missing category": {Title: "t", Location: "l", Time: "10:00"},
		"blank title":      {Category: CategoryParty, Title: "   ", Location: "l", Time: "10:00"},
		"missing location": {Category: CategoryParty, Title: "t", Time: "10:00"},
		"missing time":     {Category: CategoryParty, Title: "t", Location: "l"},
	}
	for name, draft := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Create(draft)
			assert.ErrorIs(t, err, ErrInvalidDraft)
		})
	}
	assert.Equal(t, 4, catalog.Len())
	assert.Zero(t, recorder.created)
}

func TestCreateStylesUnknownCategoryWithDefault(t *testing.T) {
	catalog, recorder := newSeededCatalog(t)

	event, err := catalog.Create(Draft{Category: "concert", Title: "X", Location: "Y", Time: "20:00"})
	require.NoError(t, err)
	assert.Equal(t, "📅", event.Emoji)
	assert.Equal(t, "#3b82f6", event.Color)
	assert.Equal(t, "Concert", event.Label)
	assert.Equal(t, 5, catalog.Len())
	assert.Equal(t, 1, recorder.created)

	found, ok := catalog.FindByID(event.ID)
	require.True(t, ok)
	assert.Equal(t, Category("concert"), found.Category)
}

func TestCreateRejectsDuplicateIdentifier(t *testing.T) {
	catalog, err := NewCatalog(CatalogConfig{
		Seed:       SeedEvents(),
		IDProvider: fixedProvider("evt_drink_01"),
	})
	require.NoError(t, err)

	_, err = catalog.Create(Draft{Category: CategoryDrinks, Title: "t", Location: "l", Time: "19:00"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 4, catalog.Len())
}

func TestNewCatalogRejectsInvalidSeed(t *testing.T) {
	seed := SeedEvents()
	_, err := NewCatalog(CatalogConfig{Seed: append(seed, seed[0])})
	assert.ErrorIs(t, err, ErrDuplicateID)

	broken := SeedEvents()[:1]
	broken[0].Category = "karaoke"
	_, err = NewCatalog(CatalogConfig{Seed: broken})
	assert.Error(t, err)
}

func TestReturnedEventsAreCopies(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	event, ok := catalog.FindByID("evt_assoc_01")
	require.True(t, ok)
	event.Attendees[0].Name = "mutated"
	event.Tags[0] = "mutated"
	event.Organizer.Name = "mutated"

	again, _ := catalog.FindByID("evt_assoc_01")
	assert.Equal(t, "Jeanne (72)", again.Attendees[0].Name)
	assert.Equal(t, "Accessible Fauteuil", again.Tags[0])
	assert.Equal(t, "Les Aînés de Nantes", again.Organizer.Name)
}

func TestFindByIDUnknown(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	_, ok := catalog.FindByID("evt_missing")
	assert.False(t, ok)
}

func TestEveryCategoryHasExactlyOnePresentation(t *testing.T) {
	for _, category := range Categories {
		first := PresentationFor(category)
		assert.NotEmpty(t, first.Emoji, category)
		assert.NotEmpty(t, first.Color, category)
		assert.Equal(t, first, PresentationFor(category), category)
	}
	assert.Equal(t, DefaultPresentation, PresentationFor(CategoryAssociation))
	assert.Equal(t, DefaultPresentation, PresentationFor("karaoke"))
}

func TestAllMatchesUnfilteredSequence(t *testing.T) {
	catalog, _ := newSeededCatalog(t)

	all := catalog.All()
	require.Len(t, all, 4)
	ids := make([]string, 0, len(all))
	for _, event := range all {
		ids = append(ids, event.ID)
	}
	assert.Equal(t, collectIDs(catalog.Filter("")), ids)
}

type fixedProvider string

func (p fixedProvider) NewID() (string, error) { return string(p), nil }
