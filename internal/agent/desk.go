// Package agent is the boundary around the analysis engines. A Desk
// decodes a raw request, falls back to bundled sample data for absent
// sections, runs the engine, checks the result against its schema,
// records exactly one audit entry and, in live mode, attaches a
// narrative from the text-generation backend.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/marketdesk/internal/agent/prompts"
	"github.com/seenimoa/marketdesk/internal/audit"
	"github.com/seenimoa/marketdesk/internal/datasource"
	"github.com/seenimoa/marketdesk/internal/llm"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/internal/regime"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// ErrInvalidInput marks a request whose payload has the wrong shape.
var ErrInvalidInput = errors.New("invalid input")

// Audit routes, one per operation.
const (
	RouteSurveillance = "/api/v1/surveillance/triage"
	RouteRegime       = "/api/v1/regime/analyze"
	RouteRegImpact    = "/api/v1/regimpact/analyze"
	RouteClientBrief  = "/api/v1/client/brief"
	RouteResearch     = "/api/v1/research/draft"
	RouteMeetings     = "/api/v1/meetings/analyze"
)

// Operation names used as metric labels.
const (
	OpSurveillance = "surveillance"
	OpRegime       = "regime"
	OpRegImpact    = "regimpact"
	OpClientBrief  = "brief"
	OpResearch     = "research"
	OpMeetings     = "meetings"
	OpFeed         = "feed"
)

// Desk runs the analysis operations. It is safe for concurrent use.
type Desk struct {
	samples  *datasource.Samples
	router   *llm.Router
	audit    audit.Emitter
	metrics  *metrics.Metrics
	log      *zap.Logger
	detector *regime.Detector
	feed     *datasource.RegFeed
	feedURLs []string
	now      func() time.Time
}

// Option configures a Desk.
type Option func(*Desk)

// WithRouter sets the text-generation backend used for live narratives.
func WithRouter(r *llm.Router) Option {
	return func(d *Desk) { d.router = r }
}

// WithAudit sets where audit entries go.
func WithAudit(e audit.Emitter) Option {
	return func(d *Desk) {
		if e != nil {
			d.audit = e
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Desk) { d.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Desk) {
		if l != nil {
			d.log = l
		}
	}
}

// WithDetector overrides the regime detector.
func WithDetector(det *regime.Detector) Option {
	return func(d *Desk) {
		if det != nil {
			d.detector = det
		}
	}
}

// WithFeed sets the regulatory feed reader and its default sources.
func WithFeed(f *datasource.RegFeed, urls []string) Option {
	return func(d *Desk) {
		d.feed = f
		d.feedURLs = urls
	}
}

// WithClock overrides the time source for checklist due dates.
func WithClock(now func() time.Time) Option {
	return func(d *Desk) { d.now = now }
}

// New creates a Desk reading fallback data from samples. A nil samples
// reads from ./data.
func New(samples *datasource.Samples, opts ...Option) *Desk {
	if samples == nil {
		samples = datasource.NewSamples("data")
	}
	d := &Desk{
		samples:  samples,
		audit:    audit.Discard,
		log:      zap.NewNop(),
		detector: regime.NewDetector(nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LiveAvailable reports whether a live text-generation backend is configured.
func (d *Desk) LiveAvailable() bool {
	return d.router != nil && d.router.Live()
}

// ── Outcome recording ──

// record emits the single audit entry for an invocation and observes
// its outcome. On failure the inputs/outputs summaries are replaced by
// the fixed failure texts.
func (d *Desk) record(op, route string, start time.Time, inputs, outputs string, err error) {
	elapsed := time.Since(start)
	if err != nil {
		d.audit.Emit(route, audit.FailedInputs, "Error: "+err.Error(), false)
		outcome := metrics.OutcomeFailure
		if errors.Is(err, ErrInvalidInput) {
			outcome = metrics.OutcomeInvalid
		}
		d.metrics.Observe(op, outcome, elapsed)
		d.log.Warn("operation failed",
			zap.String("operation", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}
	d.audit.Emit(route, inputs, outputs, true)
	d.metrics.Observe(op, metrics.OutcomeSuccess, elapsed)
	d.log.Debug("operation completed",
		zap.String("operation", op),
		zap.Duration("elapsed", elapsed),
		zap.String("outputs", outputs),
	)
}

// ── Mode & narrative ──

// requestedMode parses the optional mode field.
func requestedMode(s string) (models.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(models.ModeMock):
		return models.ModeMock, nil
	case string(models.ModeLive):
		return models.ModeLive, nil
	default:
		return "", fmt.Errorf("%w: mode must be \"mock\" or \"live\", got %q", ErrInvalidInput, s)
	}
}

// resultMode is live only when live was asked for and a backend exists.
func (d *Desk) resultMode(requested models.Mode) models.Mode {
	if requested == models.ModeLive && d.LiveAvailable() {
		return models.ModeLive
	}
	return models.ModeMock
}

// narrate asks the backend to narrate a validated result. It never
// fails the operation; a failed call yields the fallback placeholder.
func (d *Desk) narrate(ctx context.Context, mode models.Mode, agentName, user string) string {
	content, _ := d.complete(ctx, mode, agentName, user)
	return content
}

// complete is narrate that also reports whether a live backend wrote
// the text. Outside live mode it returns "", false.
func (d *Desk) complete(ctx context.Context, mode models.Mode, agentName, user string) (string, bool) {
	if mode != models.ModeLive {
		return "", false
	}
	content, live := d.router.Complete(ctx, prompts.SystemPromptFor(agentName), user, nil)
	if live {
		d.metrics.Narrative("live")
	} else {
		d.metrics.Narrative("fallback")
		d.log.Warn("narrative unavailable, using placeholder", zap.String("agent", agentName))
	}
	return content, live
}

// compactJSON renders v for a prompt; failures degrade to an empty object.
func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ── Decoding ──

// present reports whether an optional raw section was supplied.
func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// decodeObject decodes a supplied section that must be a JSON object.
func decodeObject(field string, raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: %s must be an object", ErrInvalidInput, field)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
	}
	return nil
}
