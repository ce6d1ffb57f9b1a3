package ids

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDProviderIssuesVersion7(t *testing.T) {
	provider := NewUUIDProvider()
	first, err := provider.NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := provider.NewID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct identifiers")
	}
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("expected a valid uuid: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected uuid v7, got v%d", parsed.Version())
	}
}

func TestSequenceCounts(t *testing.T) {
	sequence := &Sequence{Prefix: "evt_"}
	for _, want := range []string{"evt_1", "evt_2", "evt_3"} {
		got, _ := sequence.NewID()
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}
