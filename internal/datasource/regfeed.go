package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// maxConcurrentFeeds bounds parallel feed fetches.
const maxConcurrentFeeds = 4

// RegFeed pulls regulatory notices from RSS/Atom feeds.
type RegFeed struct {
	client  *http.Client
	cache   *Cache[[]models.RegNotice]
	limiter *RateLimiter
	log     *zap.Logger
}

// RegFeedOption configures a RegFeed.
type RegFeedOption func(*RegFeed)

// WithFeedHTTPClient sets the HTTP client used for feed requests.
func WithFeedHTTPClient(c *http.Client) RegFeedOption {
	return func(f *RegFeed) { f.client = c }
}

// WithFeedLogger sets the logger for skipped feeds.
func WithFeedLogger(l *zap.Logger) RegFeedOption {
	return func(f *RegFeed) {
		if l != nil {
			f.log = l
		}
	}
}

// WithFeedCacheTTL sets how long parsed feeds are reused.
func WithFeedCacheTTL(ttl time.Duration) RegFeedOption {
	return func(f *RegFeed) { f.cache = NewCache[[]models.RegNotice](ttl) }
}

// NewRegFeed creates a feed reader.
func NewRegFeed(opts ...RegFeedOption) *RegFeed {
	f := &RegFeed{
		client:  HTTPClient,
		cache:   NewCache[[]models.RegNotice](10 * time.Minute),
		limiter: NewRateLimiter(4, time.Second),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch reads every feed concurrently and returns their notices, newest
// first, truncated to limit when limit > 0. A failing feed is skipped;
// Fetch errors only when every feed fails.
func (f *RegFeed) Fetch(ctx context.Context, urls []string, limit int) ([]models.RegNotice, error) {
	if len(urls) == 0 {
		return []models.RegNotice{}, nil
	}

	var (
		mu      sync.Mutex
		notices []models.RegNotice
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)
	for _, url := range urls {
		g.Go(func() error {
			items, err := f.fetchFeed(gctx, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				f.log.Warn("regulatory feed skipped", zap.String("url", url), zap.Error(err))
				return nil // non-fatal
			}
			notices = append(notices, items...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(errs) == len(urls) {
		return nil, fmt.Errorf("all regulatory feeds failed: %w", errors.Join(errs...))
	}

	sortNoticesByDate(notices)
	if limit > 0 && len(notices) > limit {
		notices = notices[:limit]
	}
	if notices == nil {
		notices = []models.RegNotice{}
	}
	return notices, nil
}

// Flush drops every cached feed.
func (f *RegFeed) Flush() { f.cache.Flush() }

// fetchFeed downloads and parses one feed.
func (f *RegFeed) fetchFeed(ctx context.Context, url string) ([]models.RegNotice, error) {
	if cached, ok := f.cache.Get(url); ok {
		return slices.Clone(cached), nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := doGet(ctx, f.client, url, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = url
	}
	notices := make([]models.RegNotice, 0, len(feed.Items))
	for _, item := range feed.Items {
		n := models.RegNotice{
			Source: source,
			Title:  strings.TrimSpace(item.Title),
			Link:   item.Link,
			Text:   cleanHTML(coalesce(item.Content, item.Description)),
		}
		switch {
		case item.PublishedParsed != nil:
			n.Published = item.PublishedParsed
		case item.UpdatedParsed != nil:
			n.Published = item.UpdatedParsed
		}
		notices = append(notices, n)
	}

	f.cache.Set(url, notices)
	return slices.Clone(notices), nil
}

// cleanHTML strips HTML tags from a string using goquery and collapses
// whitespace.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// coalesce returns the first non-blank value.
func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// sortNoticesByDate orders notices newest first; undated notices go last
// and keep their feed order.
func sortNoticesByDate(notices []models.RegNotice) {
	slices.SortStableFunc(notices, func(a, b models.RegNotice) int {
		switch {
		case a.Published == nil && b.Published == nil:
			return 0
		case a.Published == nil:
			return 1
		case b.Published == nil:
			return -1
		}
		return b.Published.Compare(*a.Published)
	})
}
