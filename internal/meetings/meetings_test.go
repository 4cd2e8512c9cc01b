package meetings

import (
	"reflect"
	"strings"
	"testing"

	"github.com/seenimoa/marketdesk/pkg/models"
)

const call = `Operator: Welcome to the third quarter call.
Jane Park, CEO: Revenue grew 15% to $1.2B, beating guidance by $50M. International expansion shows strong momentum.
Mark Diaz, CFO: Gross margin was 68.5%, up 200 basis points. We raised Q4 guidance to $1.3B.
Jane Park, CEO: We see increased competition in core markets. Supply chain disruptions may affect Q4.`

func TestAnalyzeCall(t *testing.T) {
	a := Analyze(call)

	if a.Sentiment != models.SentimentPositive {
		t.Errorf("sentiment: got %q, want positive", a.Sentiment)
	}
	if got := a.FinancialMetrics.Revenue; got != "Revenue grew 15% to $1.2B, beating guidance by $50M." {
		t.Errorf("revenue: got %q", got)
	}
	if got := a.FinancialMetrics.Margins; got != "Gross margin was 68.5%, up 200 basis points." {
		t.Errorf("margins: got %q", got)
	}
	if got := a.FinancialMetrics.Guidance; got != "We raised Q4 guidance to $1.3B." {
		t.Errorf("guidance: got %q", got)
	}

	wantRisks := []string{
		"We see increased competition in core markets.",
		"Supply chain disruptions may affect Q4.",
	}
	if !reflect.DeepEqual(a.RiskFactors, wantRisks) {
		t.Errorf("risk factors: got %q", a.RiskFactors)
	}

	wantActions := []string{
		"Monitor competitive response in core markets",
		"Track supply chain recovery metrics",
		"Update estimates for revised guidance",
	}
	if !reflect.DeepEqual(a.ActionItems, wantActions) {
		t.Errorf("action items: got %q", a.ActionItems)
	}

	if len(a.KeyInsights) != 3 || !strings.HasPrefix(a.KeyInsights[0], "Revenue grew 15%") {
		t.Errorf("key insights: got %q", a.KeyInsights)
	}
	if !strings.HasPrefix(a.ManagementTone, "Confident and optimistic") {
		t.Errorf("tone: got %q", a.ManagementTone)
	}
}

func TestAnalyzeCapsLists(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString("Revenue rose 5% despite competition. ")
	}
	a := Analyze(b.String())
	if len(a.KeyInsights) != MaxInsights {
		t.Errorf("insights: got %d, want %d", len(a.KeyInsights), MaxInsights)
	}
	if len(a.RiskFactors) != MaxRisks {
		t.Errorf("risks: got %d, want %d", len(a.RiskFactors), MaxRisks)
	}
	if len(a.ActionItems) != 1 {
		t.Errorf("action items should be deduplicated: got %q", a.ActionItems)
	}
}

func TestAnalyzeNegativeCall(t *testing.T) {
	a := Analyze("Sales declined 8%. Margins were weak under pricing pressure. We lowered our outlook to $900M amid a slowdown.")

	if a.Sentiment != models.SentimentNegative {
		t.Errorf("sentiment: got %q, want negative", a.Sentiment)
	}
	if !strings.HasPrefix(a.ManagementTone, "Defensive") {
		t.Errorf("tone: got %q", a.ManagementTone)
	}
	if a.FinancialMetrics.Guidance == "" {
		t.Error("lowered outlook should be captured as guidance")
	}
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	a := Analyze("")
	if a.Sentiment != models.SentimentNeutral {
		t.Errorf("sentiment: got %q", a.Sentiment)
	}
	if a.KeyInsights == nil || a.RiskFactors == nil {
		t.Error("lists should be empty, not nil")
	}
	if len(a.ActionItems) != 1 {
		t.Errorf("expected the default follow-up, got %q", a.ActionItems)
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		pos, neg int
		want     string
	}{
		{5, 1, models.SentimentPositive},
		{2, 1, models.SentimentNeutral},
		{1, 1, models.SentimentNeutral},
		{0, 2, models.SentimentNegative},
	}
	for _, tt := range tests {
		if got := Sentiment(tt.pos, tt.neg); got != tt.want {
			t.Errorf("Sentiment(%d, %d) = %q, want %q", tt.pos, tt.neg, got, tt.want)
		}
	}
}

func TestSentences(t *testing.T) {
	got := Sentences("CEO: Revenue was $1.2B. Up 3.5%!\nQ4: guidance is $1.3B\n\nDone?")
	want := []string{"Revenue was $1.2B.", "Up 3.5%!", "Q4: guidance is $1.3B", "Done?"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sentences: got %q, want %q", got, want)
	}
}
