package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/seenimoa/marketdesk/internal/agent/prompts"
	"github.com/seenimoa/marketdesk/internal/brief"
	"github.com/seenimoa/marketdesk/internal/regimpact"
	"github.com/seenimoa/marketdesk/internal/schema"
	"github.com/seenimoa/marketdesk/internal/surveillance"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// capitalTemplateSections is the number of top-level sections in a
// capital-impact template (before, after, impact_summary, assumptions).
const capitalTemplateSections = 4

// ── Requests ──

// SurveillanceRequest carries optional trade and watchlist payloads.
type SurveillanceRequest struct {
	TradesJSON    json.RawMessage `json:"tradesJson,omitempty"`
	WatchlistJSON json.RawMessage `json:"watchlistJson,omitempty"`
	Mode          string          `json:"mode,omitempty"`
}

// RegimeRequest carries an optional regime detection payload.
type RegimeRequest struct {
	DetectRegimeJSON json.RawMessage `json:"detectRegimeJson,omitempty"`
	Mode             string          `json:"mode,omitempty"`
}

// RegImpactRequest carries regulatory text and an optional taxonomy.
// Text wins over Stub; when both are absent the bundled sample is used.
type RegImpactRequest struct {
	Text     string                  `json:"text,omitempty"`
	Taxonomy *models.Taxonomy        `json:"taxonomy,omitempty"`
	Stub     *models.RegImpactSample `json:"stub,omitempty"`
	Mode     string                  `json:"mode,omitempty"`
}

// BriefRequest carries an optional CRM profile.
type BriefRequest struct {
	Stub models.ClientProfile `json:"stub,omitempty"`
	Mode string               `json:"mode,omitempty"`
}

// ── Surveillance ──

// Surveillance computes trade metrics and a SAR memo.
func (d *Desk) Surveillance(ctx context.Context, req SurveillanceRequest) (*models.SurveillanceResult, error) {
	start := time.Now()
	res, inputs, outputs, err := d.surveillance(ctx, req)
	d.record(OpSurveillance, RouteSurveillance, start, inputs, outputs, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Desk) surveillance(ctx context.Context, req SurveillanceRequest) (*models.SurveillanceResult, string, string, error) {
	mode, err := requestedMode(req.Mode)
	if err != nil {
		return nil, "", "", err
	}

	var trades models.TradesPayload
	if present(req.TradesJSON) {
		err = decodeObject("tradesJson", req.TradesJSON, &trades)
	} else {
		trades, err = d.samples.Trades()
	}
	if err != nil {
		return nil, "", "", err
	}

	var watchlist models.Watchlist
	if present(req.WatchlistJSON) {
		err = decodeObject("watchlistJson", req.WatchlistJSON, &watchlist)
	} else {
		watchlist, err = d.samples.Watchlist()
	}
	if err != nil {
		return nil, "", "", err
	}

	m, memo, text := surveillance.Triage(trades, watchlist)
	res := &models.SurveillanceResult{
		Metrics:     m,
		SarMemoJSON: memo,
		SarMemoText: text,
		Mode:        d.resultMode(mode),
	}
	if err := schema.Validate(res); err != nil {
		return nil, "", "", err
	}
	res.Narrative = d.narrate(ctx, res.Mode, prompts.AgentSurveillance, prompts.CoTSurveillance(compactJSON(res)))

	inputs := fmt.Sprintf("Trades: %d, Watchlist: %d", len(trades.Trades), watchlist.Count())
	outputs := fmt.Sprintf("Generated SAR memo with %d evidence items", len(res.SarMemoJSON.Evidence))
	return res, inputs, outputs, nil
}

// ── Regime ──

// Regime detects regime changes and recommends hedges.
func (d *Desk) Regime(ctx context.Context, req RegimeRequest) (*models.RegimeDetection, error) {
	start := time.Now()
	res, inputs, outputs, err := d.regime(ctx, req)
	d.record(OpRegime, RouteRegime, start, inputs, outputs, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Desk) regime(ctx context.Context, req RegimeRequest) (*models.RegimeDetection, string, string, error) {
	mode, err := requestedMode(req.Mode)
	if err != nil {
		return nil, "", "", err
	}

	var payload models.RegimePayload
	if present(req.DetectRegimeJSON) {
		err = decodeObject("detectRegimeJson", req.DetectRegimeJSON, &payload)
	} else {
		payload, err = d.samples.Regime()
	}
	if err != nil {
		return nil, "", "", err
	}
	for i, e := range payload.RegimeTimeline {
		if strings.TrimSpace(e.Regime) == "" {
			return nil, "", "", fmt.Errorf("%w: regime_timeline[%d].regime is required", ErrInvalidInput, i)
		}
	}

	det := d.detector.Analyze(payload.RegimeTimeline)
	res := &det
	res.Mode = d.resultMode(mode)
	if err := schema.Validate(res); err != nil {
		return nil, "", "", err
	}
	res.Narrative = d.narrate(ctx, res.Mode, prompts.AgentRegime, prompts.CoTRegime(compactJSON(res)))

	inputs := fmt.Sprintf("Regime periods: %d, Changes: %d", len(res.Timeline), len(res.Changes))
	outputs := fmt.Sprintf("Current regime: %s, Hedges: %d", res.CurrentRegime, len(res.Hedges))
	return res, inputs, outputs, nil
}

// ── Regulatory impact ──

// RegImpact maps regulatory text to impacted desks and builds the
// implementation checklist and capital template.
func (d *Desk) RegImpact(ctx context.Context, req RegImpactRequest) (*models.RegImpactAssessment, error) {
	start := time.Now()
	res, inputs, outputs, err := d.regImpact(ctx, req)
	d.record(OpRegImpact, RouteRegImpact, start, inputs, outputs, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Desk) regImpact(ctx context.Context, req RegImpactRequest) (*models.RegImpactAssessment, string, string, error) {
	mode, err := requestedMode(req.Mode)
	if err != nil {
		return nil, "", "", err
	}

	text := req.Text
	if text == "" {
		sample := req.Stub
		if sample == nil {
			s, err := d.samples.RegImpact()
			if err != nil {
				return nil, "", "", err
			}
			sample = &s
		}
		text = sample.RegulationText
	}

	var taxonomy models.Taxonomy
	if req.Taxonomy != nil {
		taxonomy = *req.Taxonomy
	} else if taxonomy, err = d.samples.Taxonomy(); err != nil {
		return nil, "", "", err
	}

	a := regimpact.Analyze(text, taxonomy, d.now())
	res := &a
	// Only rows that matched reach the result; a malformed row elsewhere
	// in the taxonomy is ignored.
	for i, desk := range res.ImpactedDesks {
		if strings.TrimSpace(desk.Desk) == "" {
			return nil, "", "", fmt.Errorf("%w: impacted desk %d has no desk name", ErrInvalidInput, i)
		}
	}
	res.Mode = d.resultMode(mode)
	if err := schema.Validate(res); err != nil {
		return nil, "", "", err
	}
	res.Narrative = d.narrate(ctx, res.Mode, prompts.AgentRegImpact, prompts.CoTRegImpact(text, compactJSON(res)))

	inputs := fmt.Sprintf("Text length: %d, Impacted desks: %d", utf8.RuneCountInString(req.Text), len(res.ImpactedDesks))
	outputs := fmt.Sprintf("Checklist items: %d, Template sections: %d", len(res.Checklist), capitalTemplateSections)
	return res, inputs, outputs, nil
}

// ── Client brief ──

// ClientBrief renders a meeting brief from a CRM profile.
func (d *Desk) ClientBrief(ctx context.Context, req BriefRequest) (*models.ClientBrief, error) {
	start := time.Now()
	res, inputs, outputs, err := d.clientBrief(ctx, req)
	d.record(OpClientBrief, RouteClientBrief, start, inputs, outputs, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Desk) clientBrief(ctx context.Context, req BriefRequest) (*models.ClientBrief, string, string, error) {
	mode, err := requestedMode(req.Mode)
	if err != nil {
		return nil, "", "", err
	}

	profile := req.Stub
	if profile == nil {
		if profile, err = d.samples.ClientProfile(); err != nil {
			return nil, "", "", err
		}
	}

	b := brief.Generate(profile)
	res := &b
	res.Mode = d.resultMode(mode)
	if err := schema.Validate(res); err != nil {
		return nil, "", "", err
	}
	name := brief.ClientName(profile)
	res.Narrative = d.narrate(ctx, res.Mode, prompts.AgentClientBrief, prompts.CoTClientBrief(name, compactJSON(res)))

	inputs := fmt.Sprintf("Client: %s, Meeting type: %s", name, brief.MeetingType(profile))
	outputs := fmt.Sprintf("Generated brief with %d talking points and %d cross-sell opportunities",
		len(res.TalkingPoints), len(res.CrossSell))
	return res, inputs, outputs, nil
}
