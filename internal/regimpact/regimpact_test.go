package regimpact

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/pkg/models"
)

var testTaxonomy = models.Taxonomy{DeskMappings: []models.TaxonomyEntry{
	{
		RegulationType: "Basel III",
		Keywords:       []string{"capital adequacy", "risk-weighted"},
		Desk:           "Treasury",
		ImpactLevel:    "high",
		Description:    "Capital requirements for banking book",
	},
	{
		RegulationType: "MiFID II",
		Keywords:       []string{"best execution", "transaction reporting"},
		Desk:           "Equities",
		ImpactLevel:    "medium",
		Description:    "Execution quality and reporting",
	},
	{
		RegulationType: "FRTB",
		Keywords:       []string{"trading book", "", "  "},
		Desk:           "Treasury",
		ImpactLevel:    "high",
		Description:    "Market risk capital for trading book",
	},
}}

func desks(in []models.ImpactedDesk) []string {
	out := make([]string, len(in))
	for i, d := range in {
		out[i] = d.Desk
	}
	return out
}

func TestMapDesksRegulationTypeCaseInsensitive(t *testing.T) {
	got := MapDesks("New BASEL iii guidance published today", testTaxonomy)
	require.Len(t, got, 1)
	assert.Equal(t, models.ImpactedDesk{
		Desk:        "Treasury",
		ImpactLevel: "high",
		Description: "Capital requirements for banking book",
	}, got[0])
}

func TestMapDesksKeywords(t *testing.T) {
	got := MapDesks("Firms must evidence Best Execution and revisit the Trading Book boundary.", testTaxonomy)
	assert.Equal(t, []string{"Equities", "Treasury"}, desks(got))
}

func TestMapDesksDuplicatesNotMerged(t *testing.T) {
	got := MapDesks("basel iii and frtb", testTaxonomy)
	assert.Equal(t, []string{"Treasury", "Treasury"}, desks(got))
}

func TestMapDesksNoMatch(t *testing.T) {
	got := MapDesks("A circular about office holidays.", testTaxonomy)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, MapDesks("", testTaxonomy))
	assert.Empty(t, MapDesks("basel iii", models.Taxonomy{}))
}

func TestBlankTermsNeverMatch(t *testing.T) {
	entry := models.TaxonomyEntry{RegulationType: "", Keywords: []string{"", " "}, Desk: "X"}
	assert.False(t, Matches("anything at all", entry))
}

func TestPaddedKeywordKeepsPadding(t *testing.T) {
	entry := models.TaxonomyEntry{Keywords: []string{" ETF "}, Desk: "Equities"}
	assert.True(t, Matches("new rules for an etf listing", entry))
	assert.False(t, Matches("etfs listed abroad", entry))
	assert.False(t, Matches("etf", entry))
}

func TestChecklist(t *testing.T) {
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	items := Checklist(now)
	require.Len(t, items, 6)

	want := []string{"2024-03-08", "2024-03-15", "2024-03-22", "2024-03-31", "2024-04-15", "2024-04-30"}
	for i, item := range items {
		assert.Equal(t, want[i], item.DueDate, item.Task)
		assert.Equal(t, models.StatusPending, item.Status)
		assert.NotEmpty(t, item.Owner)
		assert.Contains(t, []string{models.PriorityHigh, models.PriorityMedium}, item.Priority)
	}
	for i := 1; i < len(items); i++ {
		assert.Less(t, items[i-1].DueDate, items[i].DueDate)
	}
	assert.Equal(t, []int{7, 14, 21, 30, 45, 60}, ChecklistOffsets())
}

func TestChecklistIndependentOfDesks(t *testing.T) {
	now := time.Now()
	a := Analyze("basel iii", testTaxonomy, now)
	b := Analyze("nothing relevant", testTaxonomy, now)
	assert.Equal(t, a.Checklist, b.Checklist)
	assert.Equal(t, a.Template, b.Template)
	assert.NotEqual(t, len(a.ImpactedDesks), len(b.ImpactedDesks))
}

func TestCapitalImpactFigures(t *testing.T) {
	tpl := CapitalImpact()
	assert.True(t, tpl.Before.Tier1Capital.Equal(decimal.NewFromInt(12_500_000_000)))
	assert.True(t, tpl.After.RiskWeightedAssets.Equal(decimal.NewFromInt(104_500_000_000)))
	assert.True(t, tpl.ImpactSummary.AdditionalCapitalRequired.Equal(
		tpl.After.Tier1Capital.Sub(tpl.Before.Tier1Capital)))
	assert.Equal(t, 6, tpl.ImpactSummary.TimelineMonths)
	assert.Len(t, tpl.Assumptions, 4)
}

func TestCapitalImpactSerializesNumbers(t *testing.T) {
	data, err := json.Marshal(CapitalImpact())
	require.NoError(t, err)

	var raw struct {
		Before map[string]any `json:"before"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.IsType(t, float64(0), raw.Before["tier1_capital"])
	assert.Equal(t, 16.5, raw.Before["capital_ratio"])
}
