package agent

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/marketdesk/data"
	"github.com/seenimoa/marketdesk/internal/audit"
	"github.com/seenimoa/marketdesk/internal/config"
	"github.com/seenimoa/marketdesk/internal/datasource"
	"github.com/seenimoa/marketdesk/internal/llm"
	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/internal/regime"
)

// NewFromConfig wires a Desk from cfg. Sample data is read from
// cfg.Data.Dir, or from the embedded set when that directory is missing.
func NewFromConfig(cfg *config.Config, emitter audit.Emitter, m *metrics.Metrics, log *zap.Logger) *Desk {
	if log == nil {
		log = zap.NewNop()
	}

	feedTimeout := time.Duration(cfg.Feeds.TimeoutSec) * time.Second
	if feedTimeout <= 0 {
		feedTimeout = 20 * time.Second
	}
	feed := datasource.NewRegFeed(
		datasource.WithFeedHTTPClient(&http.Client{Timeout: feedTimeout}),
		datasource.WithFeedLogger(log.Named("feed")),
	)

	return New(datasource.OpenSamples(cfg.Data.Dir, data.FS()),
		WithRouter(llm.NewRouterFromConfig(cfg, log.Named("llm"))),
		WithAudit(emitter),
		WithMetrics(m),
		WithLogger(log.Named("desk")),
		WithDetector(regime.NewDetector(regime.NewScorer(cfg.Regime.Significance))),
		WithFeed(feed, cfg.Feeds.Regulatory),
	)
}

// Router returns the text-generation router, which may be nil.
func (d *Desk) Router() *llm.Router { return d.router }

// Samples returns the sample data loader.
func (d *Desk) Samples() *datasource.Samples { return d.samples }
