package planner

import (
	"unicode"

	"github.com/Potowai/nomad-nantes/internal/events"
	goahocorasick "github.com/anknown/ahocorasick"
)

// DefaultCategory is used when no keyword matches a recommendation category.
const DefaultCategory = events.CategoryDrinks

type categoryRule struct {
	category events.Category
	keywords []string
}

// Rules are checked in order; the first rule with a matching keyword wins.
var categoryRules = []categoryRule{
	{category: events.CategoryCowork, keywords: []string{"cowork", "travail", "cafe", "café", "wifi"}},
	{category: events.CategoryDrinks, keywords: []string{"bar", "drink", "boire", "pub"}},
	{category: events.CategoryFood, keywords: []string{"restaurant", "manger", "food"}},
}

// CategoryMatcher maps free-text recommendation categories to event categories
// with a single Aho-Corasick pass over the input.
type CategoryMatcher struct {
	machine  *goahocorasick.Machine
	priority map[string]int
}

// NewCategoryMatcher builds the keyword automaton.
func NewCategoryMatcher() (*CategoryMatcher, error) {
	var patterns [][]rune
	priority := make(map[string]int)
	for index, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			normalized := lowerRunes(keyword)
			if _, seen := priority[string(normalized)]; seen {
				continue
			}
			priority[string(normalized)] = index
			patterns = append(patterns, normalized)
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &CategoryMatcher{machine: machine, priority: priority}, nil
}

// Match returns the event category for a recommendation category.
func (m *CategoryMatcher) Match(category string) events.Category {
	content := lowerRunes(category)
	if len(content) == 0 {
		return DefaultCategory
	}
	best := len(categoryRules)
	for _, term := range m.machine.MultiPatternSearch(content, false) {
		if rank, ok := m.priority[string(term.Word)]; ok && rank < best {
			best = rank
		}
	}
	if best == len(categoryRules) {
		return DefaultCategory
	}
	return categoryRules[best].category
}

func lowerRunes(value string) []rune {
	runes := []rune(value)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
