package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/marketdesk/internal/agent/prompts"
	"github.com/seenimoa/marketdesk/internal/datasource"
	"github.com/seenimoa/marketdesk/internal/meetings"
	"github.com/seenimoa/marketdesk/internal/research"
	"github.com/seenimoa/marketdesk/internal/schema"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// ResearchRequest names the source documents and optional style
// overrides for a research note. Stub replaces the bundled filing extract.
type ResearchRequest struct {
	Files []string               `json:"files,omitempty"`
	Style map[string]any         `json:"style,omitempty"`
	Stub  *models.ResearchSource `json:"stub,omitempty"`
	Mode  string                 `json:"mode,omitempty"`
}

// MeetingsRequest carries an earnings-call transcript. A blank transcript
// or UseSample analyses the bundled call.
type MeetingsRequest struct {
	Transcript string `json:"transcript,omitempty"`
	UseSample  bool   `json:"useSample,omitempty"`
	Mode       string `json:"mode,omitempty"`
}

// ── Research draft ──

// ResearchDraft writes an equity research note with citations, a short
// brief and guidance redlines. In live mode the backend's note replaces
// the drafted markdown.
func (d *Desk) ResearchDraft(ctx context.Context, req ResearchRequest) (*models.ResearchNote, error) {
	start := time.Now()
	res, inputs, outputs, err := d.researchDraft(ctx, req)
	d.record(OpResearch, RouteResearch, start, inputs, outputs, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Desk) researchDraft(ctx context.Context, req ResearchRequest) (*models.ResearchNote, string, string, error) {
	mode, err := requestedMode(req.Mode)
	if err != nil {
		return nil, "", "", err
	}

	var src models.ResearchSource
	if req.Stub != nil {
		src = *req.Stub
	} else if src, err = d.samples.Research(); err != nil {
		return nil, "", "", err
	}
	if err := checkResearchSource(src); err != nil {
		return nil, "", "", err
	}

	guide, err := d.styleGuide(req.Style)
	if err != nil {
		return nil, "", "", err
	}

	note := research.Draft(src, guide, req.Files)
	res := &note
	res.Mode = d.resultMode(mode)
	if err := schema.Validate(res); err != nil {
		return nil, "", "", err
	}
	content, live := d.complete(ctx, res.Mode, prompts.AgentResearch,
		prompts.CoTResearch(len(req.Files), compactJSON(guide), compactJSON(res)))
	if live && strings.TrimSpace(content) != "" {
		res.Markdown = content
	} else {
		res.Narrative = content
	}

	style := "default"
	if len(req.Style) > 0 {
		style = "custom"
	}
	inputs := fmt.Sprintf("Files: %d, Style: %s, Mode: %s", len(req.Files), style, mode)
	outputs := fmt.Sprintf("Generated research note with %d citations", len(res.Citations))
	return res, inputs, outputs, nil
}

// styleGuide overlays the request's style fields on the house style.
func (d *Desk) styleGuide(overrides map[string]any) (models.StyleGuide, error) {
	guide, err := d.samples.StyleGuide()
	if err != nil && !errors.Is(err, datasource.ErrSampleNotFound) {
		return guide, err
	}
	if len(overrides) > 0 {
		raw, err := json.Marshal(overrides)
		if err != nil {
			return guide, fmt.Errorf("%w: style: %v", ErrInvalidInput, err)
		}
		if err := json.Unmarshal(raw, &guide); err != nil {
			return guide, fmt.Errorf("%w: style: %v", ErrInvalidInput, err)
		}
	}
	return research.Normalize(guide), nil
}

func checkResearchSource(src models.ResearchSource) error {
	if strings.TrimSpace(src.Company) == "" {
		return fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	for i, k := range src.KPIs {
		if k.Citation != nil && !citable(*k.Citation) {
			return fmt.Errorf("%w: kpis[%d].citation needs a page and a source", ErrInvalidInput, i)
		}
	}
	for i, q := range src.Quotes {
		if !citable(q.Citation) {
			return fmt.Errorf("%w: quotes[%d].citation needs a page and a source", ErrInvalidInput, i)
		}
	}
	return nil
}

func citable(c models.Citation) bool {
	return c.Page >= 1 && strings.TrimSpace(c.Source) != ""
}

// ── Earnings-call analysis ──

// MeetingsAnalyze extracts insights, sentiment, metrics, risks and
// follow-ups from an earnings-call transcript.
func (d *Desk) MeetingsAnalyze(ctx context.Context, req MeetingsRequest) (*models.MeetingAnalysis, error) {
	start := time.Now()
	res, inputs, outputs, err := d.meetingsAnalyze(ctx, req)
	d.record(OpMeetings, RouteMeetings, start, inputs, outputs, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (d *Desk) meetingsAnalyze(ctx context.Context, req MeetingsRequest) (*models.MeetingAnalysis, string, string, error) {
	mode, err := requestedMode(req.Mode)
	if err != nil {
		return nil, "", "", err
	}

	transcript := req.Transcript
	sample := req.UseSample || strings.TrimSpace(transcript) == ""
	if sample {
		s, err := d.samples.Transcript()
		if err != nil {
			return nil, "", "", err
		}
		transcript = s.Transcript
	}

	a := meetings.Analyze(transcript)
	res := &a
	res.Mode = d.resultMode(mode)
	if err := schema.Validate(res); err != nil {
		return nil, "", "", err
	}
	res.Narrative = d.narrate(ctx, res.Mode, prompts.AgentMeetings, prompts.CoTMeetings(compactJSON(res)))

	inputs := fmt.Sprintf("Transcript words: %d, Sample: %t", len(strings.Fields(transcript)), sample)
	outputs := fmt.Sprintf("Sentiment: %s, Insights: %d, Risk factors: %d",
		res.Sentiment, len(res.KeyInsights), len(res.RiskFactors))
	return res, inputs, outputs, nil
}
