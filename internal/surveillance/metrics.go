// Package surveillance implements trade-surveillance triage: wash-trade
// and flip metrics over a trade list, and the Suspicious Activity Report
// memo built from them.
package surveillance

import (
	"math"
	"sort"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// MaxTopAccounts caps the flagged-account ranking.
const MaxTopAccounts = 10

// ComputeMetrics aggregates self-match rate, mean round-trip time and the
// flip ranking over trades. The watchlist is accepted for context only;
// account identity is not cross-checked against the trades.
func ComputeMetrics(trades []models.Trade, _ models.Watchlist) models.SurveillanceMetrics {
	return models.SurveillanceMetrics{
		SelfMatchPct:     SelfMatchPct(trades),
		RoundTripAvgSecs: RoundTripAvg(trades),
		TopAccounts:      TopAccounts(trades, MaxTopAccounts),
	}
}

// SelfMatchPct returns the share of trades whose buyer and seller are the
// same account, as a percentage rounded to two decimals. Zero for no trades.
func SelfMatchPct(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	matches := 0
	for _, t := range trades {
		if t.IsSelfMatch() {
			matches++
		}
	}
	return round2(float64(matches) / float64(len(trades)) * 100)
}

// RoundTripAvg returns the mean round-trip duration over trades that carry
// one, or nil when none does. A running mean keeps large durations finite.
func RoundTripAvg(trades []models.Trade) *float64 {
	var avg float64
	n := 0
	for _, t := range trades {
		if t.RoundTripSeconds == nil {
			continue
		}
		n++
		avg += (*t.RoundTripSeconds - avg) / float64(n)
	}
	if n == 0 {
		return nil
	}
	return &avg
}

// TopAccounts counts flips per account and returns the accounts with the
// most flips, ties kept in first-seen order, truncated to limit.
// Flips on trades without an account id cannot be attributed and are skipped.
func TopAccounts(trades []models.Trade, limit int) []models.AccountFlips {
	counts := make(map[string]int)
	var order []string
	for _, t := range trades {
		if !t.FlipIndicator || t.AccountID == "" {
			continue
		}
		if _, seen := counts[t.AccountID]; !seen {
			order = append(order, t.AccountID)
		}
		counts[t.AccountID]++
	}

	ranked := make([]models.AccountFlips, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, models.AccountFlips{AccountID: id, FlipCount: counts[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FlipCount > ranked[j].FlipCount
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
