package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/marketdesk/data"
	"github.com/seenimoa/marketdesk/internal/audit"
	"github.com/seenimoa/marketdesk/internal/datasource"
	"github.com/seenimoa/marketdesk/internal/llm"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/internal/schema"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Fixtures
// ════════════════════════════════════════════════════════════════════

type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *stubProvider) Name() string                 { return s.name }
func (s *stubProvider) Models() []string             { return []string{"stub-model"} }
func (s *stubProvider) Ping(context.Context) error   { return nil }
func (s *stubProvider) Chat(_ context.Context, msgs []llm.Message, _ *llm.ChatOptions) (*llm.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Content: s.content, Provider: s.name, FinishReason: llm.FinishStop}, nil
}

func liveRouter(p *stubProvider) *llm.Router {
	r := llm.NewRouter(p.name, llm.WithFallbacks(llm.ProviderMock), llm.WithMaxRetries(0))
	r.RegisterProvider(p)
	r.RegisterProvider(llm.NewMockProvider())
	return r
}

func mockRouter() *llm.Router {
	r := llm.NewRouter(llm.ProviderMock)
	r.RegisterProvider(llm.NewMockProvider())
	return r
}

var fixedNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func newDesk(t *testing.T, opts ...Option) (*Desk, *audit.Log) {
	t.Helper()
	log := audit.NewLog(50)
	base := []Option{WithAudit(log), WithClock(func() time.Time { return fixedNow })}
	return New(datasource.NewSamplesFS(data.FS(), "embedded"), append(base, opts...)...), log
}

func requireOneEntry(t *testing.T, log *audit.Log, route string, success bool) models.AuditEntry {
	t.Helper()
	require.Equal(t, 1, log.Len(), "exactly one audit entry per invocation")
	e := log.All()[0]
	assert.Equal(t, route, e.Route)
	assert.Equal(t, success, e.Success)
	assert.NotEmpty(t, e.ID)
	return e
}

// ════════════════════════════════════════════════════════════════════
// Surveillance
// ════════════════════════════════════════════════════════════════════

func TestSurveillanceWorkedExample(t *testing.T) {
	d, log := newDesk(t)
	res, err := d.Surveillance(context.Background(), SurveillanceRequest{
		TradesJSON:    json.RawMessage(`{"trades":[{"buyer_account":"A","seller_account":"A"},{"buyer_account":"B","seller_account":"C"}]}`),
		WatchlistJSON: json.RawMessage(`{"accounts":[]}`),
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, res.Metrics.SelfMatchPct)
	assert.Nil(t, res.Metrics.RoundTripAvgSecs)
	assert.Empty(t, res.Metrics.TopAccounts)
	assert.Equal(t, models.ModeMock, res.Mode)
	assert.Empty(t, res.Narrative)
	assert.Contains(t, res.SarMemoText, "50")

	e := requireOneEntry(t, log, RouteSurveillance, true)
	assert.Equal(t, "Trades: 2, Watchlist: 0", e.InputsSummary)
	assert.Equal(t, "Generated SAR memo with 5 evidence items", e.OutputsSummary)
}

func TestSurveillanceSampleFallback(t *testing.T) {
	d, log := newDesk(t)
	res, err := d.Surveillance(context.Background(), SurveillanceRequest{})
	require.NoError(t, err)

	assert.Equal(t, 40.0, res.Metrics.SelfMatchPct)
	require.NotNil(t, res.Metrics.RoundTripAvgSecs)
	assert.InDelta(t, 63.375, *res.Metrics.RoundTripAvgSecs, 1e-9)

	var ids []string
	for _, a := range res.Metrics.TopAccounts {
		ids = append(ids, a.AccountID)
	}
	assert.Equal(t, []string{"ACC-104", "ACC-318", "ACC-221", "ACC-512"}, ids)

	e := requireOneEntry(t, log, RouteSurveillance, true)
	assert.Equal(t, "Trades: 10, Watchlist: 4", e.InputsSummary)
}

func TestSurveillanceRejectsWrongShape(t *testing.T) {
	cases := map[string]SurveillanceRequest{
		"trades array":      {TradesJSON: json.RawMessage(`[1,2]`)},
		"trades not a list": {TradesJSON: json.RawMessage(`{"trades":"none"}`)},
		"watchlist string":  {WatchlistJSON: json.RawMessage(`"abc"`)},
		"unknown mode":      {Mode: "turbo"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			d, log := newDesk(t)
			res, err := d.Surveillance(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

			e := requireOneEntry(t, log, RouteSurveillance, false)
			assert.Equal(t, audit.FailedInputs, e.InputsSummary)
			assert.True(t, strings.HasPrefix(e.OutputsSummary, "Error: "))
		})
	}
}

func TestSurveillanceMissingSampleFails(t *testing.T) {
	log := audit.NewLog(10)
	d := New(datasource.NewSamples(t.TempDir()), WithAudit(log))

	_, err := d.Surveillance(context.Background(), SurveillanceRequest{})
	require.ErrorIs(t, err, datasource.ErrSampleNotFound)
	assert.False(t, errors.Is(err, ErrInvalidInput))
	requireOneEntry(t, log, RouteSurveillance, false)
}

// ════════════════════════════════════════════════════════════════════
// Regime
// ════════════════════════════════════════════════════════════════════

func TestRegimeWorkedExample(t *testing.T) {
	d, log := newDesk(t)
	res, err := d.Regime(context.Background(), RegimeRequest{
		DetectRegimeJSON: json.RawMessage(`{"regime_timeline":[{"regime":"Risk-On"},{"regime":"Risk-On"},{"regime":"Risk-Off"}]}`),
	})
	require.NoError(t, err)

	require.Len(t, res.Changes, 1)
	assert.Equal(t, "Risk-On", res.Changes[0].FromRegime)
	assert.Equal(t, "Risk-Off", res.Changes[0].ToRegime)
	assert.GreaterOrEqual(t, res.Changes[0].Significance, 0.5)
	assert.Less(t, res.Changes[0].Significance, 1.0)
	assert.Equal(t, "Risk-Off", res.CurrentRegime)
	assert.Len(t, res.Hedges, 3)

	e := requireOneEntry(t, log, RouteRegime, true)
	assert.Equal(t, "Regime periods: 3, Changes: 1", e.InputsSummary)
	assert.Equal(t, "Current regime: Risk-Off, Hedges: 3", e.OutputsSummary)
}

func TestRegimeSampleFallback(t *testing.T) {
	d, _ := newDesk(t)
	res, err := d.Regime(context.Background(), RegimeRequest{})
	require.NoError(t, err)
	assert.Len(t, res.Timeline, 6)
	assert.Len(t, res.Changes, 3)
	assert.Equal(t, "2025-03-31", res.Changes[0].Date)
	assert.Equal(t, "Risk-Off", res.CurrentRegime)
}

func TestRegimeEmptyTimeline(t *testing.T) {
	d, _ := newDesk(t)
	res, err := d.Regime(context.Background(), RegimeRequest{DetectRegimeJSON: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Empty(t, res.Changes)
	assert.NotNil(t, res.Changes)
	assert.Equal(t, "Risk-On", res.CurrentRegime)
}

func TestRegimeBlankLabelRejected(t *testing.T) {
	d, log := newDesk(t)
	_, err := d.Regime(context.Background(), RegimeRequest{
		DetectRegimeJSON: json.RawMessage(`{"regime_timeline":[{"regime":"Risk-On"},{"regime":" "}]}`),
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "regime_timeline[1]")
	requireOneEntry(t, log, RouteRegime, false)
}

// ════════════════════════════════════════════════════════════════════
// Regulatory impact
// ════════════════════════════════════════════════════════════════════

func TestRegImpactSampleFallback(t *testing.T) {
	d, log := newDesk(t)
	res, err := d.RegImpact(context.Background(), RegImpactRequest{})
	require.NoError(t, err)

	var desks []string
	for _, dk := range res.ImpactedDesks {
		desks = append(desks, dk.Desk)
	}
	assert.Equal(t, []string{"Treasury", "Market Risk", "Equities", "Derivatives"}, desks)
	require.Len(t, res.Checklist, 6)
	assert.Equal(t, "2025-03-17", res.Checklist[0].DueDate)
	assert.Equal(t, "2025-05-09", res.Checklist[5].DueDate)

	e := requireOneEntry(t, log, RouteRegImpact, true)
	assert.Equal(t, "Text length: 0, Impacted desks: 4", e.InputsSummary)
	assert.Equal(t, "Checklist items: 6, Template sections: 4", e.OutputsSummary)
}

func TestRegImpactTextAndTaxonomy(t *testing.T) {
	d, log := newDesk(t)
	tax := &models.Taxonomy{DeskMappings: []models.TaxonomyEntry{
		{RegulationType: "Basel III", Desk: "Treasury"},
		{RegulationType: "SFTR", Keywords: []string{"repo"}, Desk: "Prime Brokerage"},
	}}
	res, err := d.RegImpact(context.Background(), RegImpactRequest{Text: "New BASEL III rules: überarbeitet", Taxonomy: tax})
	require.NoError(t, err)
	require.Len(t, res.ImpactedDesks, 1)
	assert.Equal(t, "Treasury", res.ImpactedDesks[0].Desk)

	e := requireOneEntry(t, log, RouteRegImpact, true)
	assert.Equal(t, "Text length: 33, Impacted desks: 1", e.InputsSummary)
}

func TestRegImpactStubText(t *testing.T) {
	d, _ := newDesk(t)
	res, err := d.RegImpact(context.Background(), RegImpactRequest{
		Stub: &models.RegImpactSample{RegulationText: "nothing relevant here"},
	})
	require.NoError(t, err)
	assert.NotNil(t, res.ImpactedDesks)
	assert.Empty(t, res.ImpactedDesks)
}

func TestRegImpactBlankDeskRejected(t *testing.T) {
	d, log := newDesk(t)
	_, err := d.RegImpact(context.Background(), RegImpactRequest{
		Text:     "Basel III",
		Taxonomy: &models.Taxonomy{DeskMappings: []models.TaxonomyEntry{{RegulationType: "Basel III"}}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	requireOneEntry(t, log, RouteRegImpact, false)
}

func TestRegImpactIgnoresBadUnmatchedRow(t *testing.T) {
	d, log := newDesk(t)
	res, err := d.RegImpact(context.Background(), RegImpactRequest{
		Text: "New Basel III capital rules",
		Taxonomy: &models.Taxonomy{DeskMappings: []models.TaxonomyEntry{
			{RegulationType: "Basel III", Desk: "Treasury"},
			{RegulationType: "MiFID", Desk: ""},
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.ImpactedDesks, 1)
	assert.Equal(t, "Treasury", res.ImpactedDesks[0].Desk)
	requireOneEntry(t, log, RouteRegImpact, true)
}

// ════════════════════════════════════════════════════════════════════
// Client brief
// ════════════════════════════════════════════════════════════════════

func TestClientBriefSampleFallback(t *testing.T) {
	d, log := newDesk(t)
	res, err := d.ClientBrief(context.Background(), BriefRequest{})
	require.NoError(t, err)
	assert.Contains(t, res.Brief, "Northwind Teachers Pension Fund")
	assert.Len(t, res.TalkingPoints, 5)
	assert.Equal(t, []string{
		"Liability hedging overlay using interest rate swaps",
		"Private credit co-investment program",
	}, res.CrossSell)

	e := requireOneEntry(t, log, RouteClientBrief, true)
	assert.Equal(t, "Client: Northwind Teachers Pension Fund, Meeting type: Quarterly Review", e.InputsSummary)
	assert.Equal(t, "Generated brief with 5 talking points and 2 cross-sell opportunities", e.OutputsSummary)
}

func TestClientBriefEmptyStubUsesDefaults(t *testing.T) {
	d, log := newDesk(t)
	_, err := d.ClientBrief(context.Background(), BriefRequest{Stub: models.ClientProfile{}})
	require.NoError(t, err)

	e := requireOneEntry(t, log, RouteClientBrief, true)
	assert.Equal(t, "Client: Unknown, Meeting type: Standard", e.InputsSummary)
}

// ════════════════════════════════════════════════════════════════════
// Mode & narrative
// ════════════════════════════════════════════════════════════════════

func TestLiveRequestWithoutBackendIsMock(t *testing.T) {
	d, _ := newDesk(t, WithRouter(mockRouter()))
	assert.False(t, d.LiveAvailable())

	res, err := d.Regime(context.Background(), RegimeRequest{Mode: "live"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeMock, res.Mode)
	assert.Empty(t, res.Narrative)
}

func TestLiveNarrative(t *testing.T) {
	p := &stubProvider{name: "stub-live", content: "Regime flipped to Risk-Off."}
	m := metrics.New(nil)
	d, log := newDesk(t, WithRouter(liveRouter(p)), WithMetrics(m))

	res, err := d.Regime(context.Background(), RegimeRequest{Mode: "LIVE"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeLive, res.Mode)
	assert.Equal(t, "Regime flipped to Risk-Off.", res.Narrative)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Narratives.WithLabelValues("live")))
	assert.NoError(t, schema.Validate(res))
	requireOneEntry(t, log, RouteRegime, true)
}

func TestMockModeSkipsBackend(t *testing.T) {
	p := &stubProvider{name: "stub-live", content: "unused"}
	d, _ := newDesk(t, WithRouter(liveRouter(p)))

	res, err := d.ClientBrief(context.Background(), BriefRequest{Mode: "mock"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeMock, res.Mode)
	assert.Zero(t, p.calls)
}

func TestNarrativeFailureKeepsResult(t *testing.T) {
	p := &stubProvider{name: "stub-live", err: llm.ErrProviderDown}
	m := metrics.New(nil)
	d, log := newDesk(t, WithRouter(liveRouter(p)), WithMetrics(m))

	res, err := d.Surveillance(context.Background(), SurveillanceRequest{Mode: "live"})
	require.NoError(t, err)
	assert.Equal(t, models.ModeLive, res.Mode)
	assert.Equal(t, llm.FallbackContent, res.Narrative)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Narratives.WithLabelValues("fallback")))
	requireOneEntry(t, log, RouteSurveillance, true)
}

// ════════════════════════════════════════════════════════════════════
// Metrics & concurrency
// ════════════════════════════════════════════════════════════════════

func TestOutcomesAreObserved(t *testing.T) {
	m := metrics.New(nil)
	d, _ := newDesk(t, WithMetrics(m))

	_, _ = d.Regime(context.Background(), RegimeRequest{})
	_, _ = d.Regime(context.Background(), RegimeRequest{Mode: "bogus"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(OpRegime, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(OpRegime, metrics.OutcomeInvalid)))
}

func TestConcurrentInvocationsEachAudited(t *testing.T) {
	d, log := newDesk(t)
	const n = 20

	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			if i%2 == 0 {
				_, _ = d.Surveillance(context.Background(), SurveillanceRequest{})
			} else {
				_, _ = d.RegImpact(context.Background(), RegImpactRequest{})
			}
		}(i)
	}
	for i := 0; i < n; i++ {
		<-done
	}
	assert.Equal(t, n, log.Len())
}

// ════════════════════════════════════════════════════════════════════
// Feeds
// ════════════════════════════════════════════════════════════════════

const testFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Regulator</title>
<item><title>EMIR margin update</title><description>New margin requirements for non-centrally cleared swaps</description><pubDate>Tue, 01 Jul 2025 09:00:00 GMT</pubDate></item>
<item><title>Press release</title><description>Office relocation</description><pubDate>Mon, 02 Jun 2025 09:00:00 GMT</pubDate></item>
</channel></rss>`

func TestFeedImpact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	m := metrics.New(nil)
	feed := datasource.NewRegFeed(datasource.WithFeedHTTPClient(srv.Client()))
	d, log := newDesk(t, WithFeed(feed, []string{srv.URL}), WithMetrics(m))

	items, err := d.FeedImpact(context.Background(), nil, 0, nil, "")
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Assessment)
	require.Len(t, items[0].Assessment.ImpactedDesks, 1)
	assert.Equal(t, "Derivatives", items[0].Assessment.ImpactedDesks[0].Desk)
	assert.Empty(t, items[1].Assessment.ImpactedDesks)

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FeedNotices))
}

func TestNoticesWithoutFeed(t *testing.T) {
	d, _ := newDesk(t)
	_, err := d.Notices(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrNoFeed)
}
