package brief

import (
	"strings"
	"testing"

	"github.com/seenimoa/marketdesk/pkg/models"
)

func TestGenerateDefaults(t *testing.T) {
	b := Generate(models.ClientProfile{})

	if !strings.HasPrefix(b.Brief, "Meeting Brief: Valued Client") {
		t.Errorf("unexpected brief header: %q", b.Brief[:40])
	}
	if !strings.Contains(b.Brief, "This institutional client is a large pension fund") {
		t.Error("expected default background sentence")
	}
	if len(b.TalkingPoints) != 5 {
		t.Fatalf("talking points: got %d, want 5", len(b.TalkingPoints))
	}
	if len(b.CrossSell) != 2 {
		t.Fatalf("cross-sell: got %d, want 2", len(b.CrossSell))
	}
	if !strings.HasPrefix(b.TalkingPoints[0], "Portfolio performance: Outperformed") {
		t.Errorf("talking point 0: %q", b.TalkingPoints[0])
	}
}

func TestGenerateUsesProfile(t *testing.T) {
	p := models.ClientProfile{
		"client_name":        "Northwind Pension",
		"aum":                "$8.1B",
		"market_view":        "Neutral on duration",
		"crosssell_2":        "FX overlay",
		"meeting_type":       "Annual review",
		"relationship_start": 2011.0,
	}
	b := Generate(p)

	for _, want := range []string{"Meeting Brief: Northwind Pension", "approximately $8.1B", "client since 2011"} {
		if !strings.Contains(b.Brief, want) {
			t.Errorf("brief missing %q", want)
		}
	}
	if b.TalkingPoints[1] != "Market outlook: Neutral on duration" {
		t.Errorf("talking point 1: %q", b.TalkingPoints[1])
	}
	if b.CrossSell[1] != "FX overlay" {
		t.Errorf("cross-sell 1: %q", b.CrossSell[1])
	}
	if MeetingType(p) != "Annual review" || ClientName(p) != "Northwind Pension" {
		t.Error("audit helpers should read the profile")
	}
}

func TestBlankFieldsFallBack(t *testing.T) {
	b := Generate(models.ClientProfile{"client_name": "   ", "aum": nil})
	if !strings.HasPrefix(b.Brief, "Meeting Brief: Valued Client") {
		t.Error("blank client_name should use the default")
	}
	if !strings.Contains(b.Brief, "$2.5B") {
		t.Error("null aum should use the default")
	}
	if MeetingType(nil) != "Standard" || ClientName(nil) != "Unknown" {
		t.Error("nil profile should use audit defaults")
	}
}
