package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/seenimoa/marketdesk/internal/metrics"
	"github.com/seenimoa/marketdesk/pkg/models"
)

// ErrNoFeed is returned when no regulatory feed reader or source is configured.
var ErrNoFeed = errors.New("no regulatory feed configured")

// NoticeImpact pairs a feed notice with its assessment.
type NoticeImpact struct {
	Notice     models.RegNotice            `json:"notice"`
	Assessment *models.RegImpactAssessment `json:"assessment,omitempty"`
	Error      string                      `json:"error,omitempty"`
}

// Notices reads the configured regulatory feeds, or urls when given.
func (d *Desk) Notices(ctx context.Context, urls []string, limit int) ([]models.RegNotice, error) {
	if len(urls) == 0 {
		urls = d.feedURLs
	}
	if d.feed == nil || len(urls) == 0 {
		return nil, ErrNoFeed
	}

	start := time.Now()
	notices, err := d.feed.Fetch(ctx, urls, limit)
	if err != nil {
		d.metrics.Observe(OpFeed, metrics.OutcomeFailure, time.Since(start))
		return nil, err
	}
	d.metrics.Observe(OpFeed, metrics.OutcomeSuccess, time.Since(start))
	d.metrics.Notices(len(notices))
	return notices, nil
}

// FeedImpact runs the regulatory impact mapping over each fetched notice.
// Every notice is one RegImpact invocation and so one audit entry; a
// failed notice is reported inline instead of failing the batch.
func (d *Desk) FeedImpact(ctx context.Context, urls []string, limit int, taxonomy *models.Taxonomy, mode string) ([]NoticeImpact, error) {
	notices, err := d.Notices(ctx, urls, limit)
	if err != nil {
		return nil, err
	}

	out := make([]NoticeImpact, 0, len(notices))
	for _, n := range notices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := NoticeImpact{Notice: n}
		text := n.MappingText()
		if strings.TrimSpace(text) == "" {
			item.Error = "notice has no text"
			out = append(out, item)
			continue
		}
		a, err := d.RegImpact(ctx, RegImpactRequest{Text: text, Taxonomy: taxonomy, Mode: mode})
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Assessment = a
		}
		out = append(out, item)
	}
	return out, nil
}
