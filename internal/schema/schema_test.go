package schema_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/internal/brief"
	"github.com/seenimoa/marketdesk/internal/meetings"
	"github.com/seenimoa/marketdesk/internal/regime"
	"github.com/seenimoa/marketdesk/internal/regimpact"
	"github.com/seenimoa/marketdesk/internal/research"
	"github.com/seenimoa/marketdesk/internal/schema"
	"github.com/seenimoa/marketdesk/internal/surveillance"
	"github.com/seenimoa/marketdesk/pkg/models"
)

func secs(v float64) *float64 { return &v }

func surveillanceResult() *models.SurveillanceResult {
	trades := models.TradesPayload{Trades: []models.Trade{
		{BuyerAccount: "A", SellerAccount: "A", AccountID: "A", RoundTripSeconds: secs(30), FlipIndicator: true},
		{BuyerAccount: "B", SellerAccount: "C", AccountID: "B", RoundTripSeconds: secs(90)},
	}}
	m, memo, text := surveillance.Triage(trades, models.Watchlist{})
	return &models.SurveillanceResult{Metrics: m, SarMemoJSON: memo, SarMemoText: text, Mode: models.ModeMock}
}

func requireViolation(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrSchemaViolation))

	var se *schema.Error
	require.True(t, errors.As(err, &se))
	var names []string
	for _, f := range se.Fields {
		names = append(names, f.Field)
	}
	assert.Contains(t, names, field)
}

// ════════════════════════════════════════════════════════════════════
// Engine output passes
// ════════════════════════════════════════════════════════════════════

func TestEngineResultsValidate(t *testing.T) {
	assert.NoError(t, schema.Validate(surveillanceResult()))

	det := regime.NewDetector(nil).Analyze([]models.RegimeEntry{
		{Regime: "Risk-On"}, {Regime: "Risk-On"}, {Regime: "Risk-Off"},
	})
	det.Mode = models.ModeMock
	assert.NoError(t, schema.Validate(&det))

	imp := regimpact.Analyze("nothing relevant", models.Taxonomy{}, time.Now())
	imp.Mode = models.ModeLive
	assert.NoError(t, schema.Validate(&imp))

	b := brief.Generate(nil)
	b.Mode = models.ModeMock
	assert.NoError(t, schema.Validate(&b))

	note := research.Draft(models.ResearchSource{Company: "Acme"}, models.StyleGuide{}, nil)
	note.Mode = models.ModeMock
	assert.NoError(t, schema.Validate(&note))
	assert.NotNil(t, note.Citations)

	call := meetings.Analyze("")
	call.Mode = models.ModeMock
	assert.NoError(t, schema.Validate(&call))
}

func TestDefaultsApplied(t *testing.T) {
	r := surveillanceResult()
	r.SarMemoJSON.Controls = nil
	r.SarMemoJSON.Appendix.Parameters = nil
	require.NoError(t, schema.Validate(r))
	assert.NotNil(t, r.SarMemoJSON.Controls)
	assert.NotNil(t, r.SarMemoJSON.Appendix.Parameters)

	var det models.RegimeDetection
	det.CurrentRegime = regime.DefaultRegime
	det.Hedges = regime.Hedges(det.CurrentRegime)
	det.Mode = models.ModeMock
	require.NoError(t, schema.Validate(&det))
	assert.NotNil(t, det.Timeline)
	assert.NotNil(t, det.Changes)
}

// ════════════════════════════════════════════════════════════════════
// Violations
// ════════════════════════════════════════════════════════════════════

func TestEmptyEvidenceRejected(t *testing.T) {
	r := surveillanceResult()
	r.SarMemoJSON.Evidence = nil
	requireViolation(t, schema.Validate(r), "sarMemoJson.evidence")
}

func TestNonFiniteAverageRejected(t *testing.T) {
	r := surveillanceResult()
	r.Metrics.RoundTripAvgSecs = secs(math.NaN())
	requireViolation(t, schema.Validate(r), "metrics.round_trip_avg_secs")
}

func TestSelfMatchOutOfRangeRejected(t *testing.T) {
	r := surveillanceResult()
	r.Metrics.SelfMatchPct = 101
	requireViolation(t, schema.Validate(r), "metrics.self_match_pct")
}

func TestTooManyTopAccountsRejected(t *testing.T) {
	r := surveillanceResult()
	r.Metrics.TopAccounts = make([]models.AccountFlips, 11)
	for i := range r.Metrics.TopAccounts {
		r.Metrics.TopAccounts[i] = models.AccountFlips{AccountID: "X", FlipCount: 1}
	}
	requireViolation(t, schema.Validate(r), "metrics.top_accounts")
}

func TestHedgeCountRejected(t *testing.T) {
	det := regime.NewDetector(nil).Analyze(nil)
	det.Mode = models.ModeMock
	det.Hedges = det.Hedges[:2]
	requireViolation(t, schema.Validate(&det), "hedges")
}

func TestSignificanceRangeRejected(t *testing.T) {
	det := regime.NewDetector(nil).Analyze([]models.RegimeEntry{{Regime: "Risk-On"}, {Regime: "Risk-Off"}})
	det.Mode = models.ModeMock
	det.Changes[0].Significance = 1.0
	requireViolation(t, schema.Validate(&det), "changes[0].significance")
}

func TestBadDueDateRejected(t *testing.T) {
	imp := regimpact.Analyze("", models.Taxonomy{}, time.Now())
	imp.Mode = models.ModeMock
	imp.Checklist[2].DueDate = "03/01/2024"
	requireViolation(t, schema.Validate(&imp), "checklist[2].due_date")
}

func TestChecklistLengthRejected(t *testing.T) {
	imp := regimpact.Analyze("", models.Taxonomy{}, time.Now())
	imp.Mode = models.ModeMock
	imp.Checklist = imp.Checklist[:5]
	requireViolation(t, schema.Validate(&imp), "checklist")
}

func TestUnknownModeRejected(t *testing.T) {
	b := brief.Generate(nil)
	b.Mode = "stub"
	requireViolation(t, schema.Validate(&b), "mode")
}

func TestLongBriefRejected(t *testing.T) {
	note := research.Draft(models.ResearchSource{Company: "Acme"}, models.StyleGuide{}, nil)
	note.Mode = models.ModeMock
	note.Brief150 = strings.Repeat("word ", 151)
	requireViolation(t, schema.Validate(&note), "brief150")

	note.Brief150 = strings.Repeat("word ", 150)
	assert.NoError(t, schema.Validate(&note))
}

func TestCitationWithoutPageRejected(t *testing.T) {
	note := research.Draft(models.ResearchSource{Company: "Acme"}, models.StyleGuide{}, nil)
	note.Mode = models.ModeMock
	note.Citations = []models.Citation{{Source: "10-Q Filing"}}
	requireViolation(t, schema.Validate(&note), "citations[0].page")
}

func TestUnknownSentimentRejected(t *testing.T) {
	call := meetings.Analyze("Revenue grew 5%.")
	call.Mode = models.ModeMock
	call.Sentiment = "bullish"
	requireViolation(t, schema.Validate(&call), "sentiment")
}

func TestNonStructIsViolation(t *testing.T) {
	err := schema.Validate(42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrSchemaViolation))
}
