package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/pkg/models"
)

func sampleBundle() *models.DeskBundle {
	avg := 63.4
	return &models.DeskBundle{
		GeneratedAt: time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC),
		Mode:        models.ModeMock,
		Surveillance: &models.SurveillanceResult{
			Metrics: models.SurveillanceMetrics{
				SelfMatchPct:     40,
				RoundTripAvgSecs: &avg,
				TopAccounts:      []models.AccountFlips{{AccountID: "ACC-104", FlipCount: 3}},
			},
			SarMemoJSON: models.SarMemo{
				Summary:  "Wash-trade pattern on <ACC-104>",
				Evidence: []string{"Self-match rate 40%"},
				Controls: []string{"Escalate to compliance"},
			},
			Mode: models.ModeMock,
		},
		Regime: &models.RegimeDetection{
			Timeline: []models.RegimeEntry{
				{Date: "2025-01-01", Regime: "Risk-On"},
				{Date: "2025-02-01", Regime: "Risk-Off"},
			},
			Changes:       []models.RegimeChange{{Date: "2025-02-01", FromRegime: "Risk-On", ToRegime: "Risk-Off", Significance: 0.82}},
			CurrentRegime: "Risk-Off",
			Hedges: []models.HedgeRecommendation{
				{Desk: "Equities", Recommendation: "Buy index puts", Rationale: "Downside protection"},
			},
		},
		RegImpact: &models.RegImpactAssessment{
			ImpactedDesks: []models.ImpactedDesk{{Desk: "Treasury", ImpactLevel: "High", Description: "Basel III capital"}},
			Checklist: []models.ChecklistItem{
				{Task: "Gap analysis", Owner: "Compliance", DueDate: "2025-04-01", Status: models.StatusPending, Priority: models.PriorityHigh},
			},
			Template: models.CapitalTemplate{
				Before: models.CapitalPosition{
					Tier1Capital: decimal.NewFromInt(2_500_000_000),
					CapitalRatio: decimal.RequireFromString("12.8"),
				},
				After: models.CapitalPosition{
					Tier1Capital: decimal.NewFromInt(2_850_000_000),
					CapitalRatio: decimal.RequireFromString("14.1"),
				},
				Assumptions: []string{"Static balance sheet"},
			},
		},
		Brief: &models.ClientBrief{
			Brief:         "Quarterly review with Northwind",
			TalkingPoints: []string{"Rates outlook"},
			CrossSell:     []string{"FX hedging"},
			Narrative:     "Client is cautious.",
		},
	}
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(sampleBundle(), DefaultReportConfig())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Daily Desk Report</title>")
	assert.Contains(t, html, "10 Mar 2025, 15:30 UTC")
	assert.Contains(t, html, "<svg")
	assert.Contains(t, html, "Wash-trade pattern on &lt;ACC-104&gt;")
	assert.Contains(t, html, "<strong>Risk-Off</strong>")
	assert.Contains(t, html, "$2.5bn")
	assert.Contains(t, html, "12.80%")
	assert.Contains(t, html, "Client is cautious.")
	assert.Contains(t, html, "63.4s")
}

func TestGenerateHTMLSectionFilter(t *testing.T) {
	cfg := DefaultReportConfig()
	cfg.Sections = []ReportSection{SectionRegime}
	cfg.Title = "Regime Only"

	html, err := GenerateHTML(sampleBundle(), cfg)
	require.NoError(t, err)
	assert.Contains(t, html, "Market Regime")
	assert.NotContains(t, html, "Trade Surveillance")
	assert.NotContains(t, html, "Client Brief")
	assert.NotContains(t, html, "Narratives")
}

func TestGenerateText(t *testing.T) {
	txt, err := GenerateText(sampleBundle(), ReportConfig{})
	require.NoError(t, err)

	assert.Contains(t, txt, "Daily Desk Report")
	assert.Contains(t, txt, "Mode: mock")
	assert.Contains(t, txt, "■ TRADE SURVEILLANCE")
	assert.Contains(t, txt, "Risk-On → Risk-Off (0.82)")
	assert.Contains(t, txt, "[Equities] Buy index puts")
	assert.Contains(t, txt, "2025-04-01  high")
	assert.Contains(t, txt, "✎ Client brief narrative")
}

func TestGenerateMissingSections(t *testing.T) {
	b := &models.DeskBundle{Mode: models.ModeMock}
	txt, err := Generate(b, ReportConfig{Format: FormatText})
	require.NoError(t, err)
	assert.NotContains(t, txt, "■")

	_, err = Generate(nil, DefaultReportConfig())
	assert.ErrorIs(t, err, ErrEmptyBundle)
}

func TestNoImpactedDesks(t *testing.T) {
	b := sampleBundle()
	b.RegImpact.ImpactedDesks = nil
	txt, err := GenerateText(b, ReportConfig{Sections: []ReportSection{SectionRegImpact}})
	require.NoError(t, err)
	assert.Contains(t, txt, "No desks impacted.")
}

// ── Charts ──

func TestHorizontalBarChart(t *testing.T) {
	svg := HorizontalBarChart([]BarItem{{Label: "A&B", Value: 3}, {Label: "C", Value: 1.5}}, ChartConfig{Title: "Flips"})
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "A&amp;B")
	assert.Contains(t, svg, ">3<")
	assert.Contains(t, svg, ">1.5<")
	assert.Equal(t, 2, strings.Count(svg, `rx="2"`))

	assert.Contains(t, HorizontalBarChart(nil, ChartConfig{}), "No data")
}

func TestRegimeStrip(t *testing.T) {
	svg := RegimeStrip([]models.RegimeEntry{
		{Date: "2025-01", Regime: "Risk-On"},
		{Date: "2025-02", Regime: "Risk-Off"},
		{Regime: "Inflationary"},
	}, ChartConfig{})
	assert.Contains(t, svg, "#4caf50")
	assert.Contains(t, svg, "#ef5350")
	assert.Contains(t, svg, "#9e9e9e")
	assert.Contains(t, svg, "2025-02")

	assert.Contains(t, RegimeStrip(nil, ChartConfig{}), "No regime history")
}

func TestGaugeChart(t *testing.T) {
	tests := []struct {
		value float64
		color string
		label string
	}{
		{10, "#4caf50", "10.0%"},
		{25, "#ffc107", "25.0%"},
		{50, "#ff9800", "50.0%"},
		{150, "#ef5350", "100.0%"},
		{-3, "#4caf50", "0.0%"},
	}
	for _, tt := range tests {
		svg := GaugeChart(tt.value, "Self-match", 0)
		assert.Contains(t, svg, tt.color, "value %v", tt.value)
		assert.Contains(t, svg, tt.label, "value %v", tt.value)
	}
}
