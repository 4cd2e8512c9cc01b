package agent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// RunAll runs the four desk analyses concurrently on their bundled
// samples. Each still records its own audit entry. The first failure
// cancels the rest and is returned.
func (d *Desk) RunAll(ctx context.Context, mode string) (*models.DeskBundle, error) {
	requested, err := requestedMode(mode)
	if err != nil {
		return nil, err
	}
	b := &models.DeskBundle{GeneratedAt: d.now().UTC(), Mode: d.resultMode(requested)}

	// Each goroutine writes its own field.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := d.Surveillance(ctx, SurveillanceRequest{Mode: mode})
		b.Surveillance = r
		return err
	})
	g.Go(func() error {
		r, err := d.Regime(ctx, RegimeRequest{Mode: mode})
		b.Regime = r
		return err
	})
	g.Go(func() error {
		r, err := d.RegImpact(ctx, RegImpactRequest{Mode: mode})
		b.RegImpact = r
		return err
	})
	g.Go(func() error {
		r, err := d.ClientBrief(ctx, BriefRequest{Mode: mode})
		b.Brief = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}
