package surveillance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Analysis window and thresholds recorded in every memo appendix.
const (
	AnalysisPeriod     = "30 days"
	ThresholdSelfMatch = 5.0  // percent
	ThresholdRoundTrip = 60.0 // seconds
)

// Appendix parameter keys.
const (
	ParamAnalysisPeriod     = "analysis_period"
	ParamThresholdSelfMatch = "threshold_self_match"
	ParamThresholdRoundTrip = "threshold_round_trip"
	ParamAccountsAnalyzed   = "accounts_analyzed"
	ParamTradesAnalyzed     = "trades_analyzed"
)

const memoSummary = "Surveillance analysis identified potential market manipulation patterns requiring further investigation. " +
	"Multiple accounts show suspicious trading behavior including self-matching and rapid round-trip transactions."

var (
	narrativeFindings = []string{
		"Temporal clustering of trades suggests non-random behavior",
		"Cross-account correlation analysis reveals potential coordination",
	}

	recommendedControls = []string{
		"Enhanced monitoring of flagged accounts",
		"Real-time trade pattern analysis",
		"Cross-reference with known manipulation schemes",
		"Escalation to compliance team for review",
	}

	dataSources = []string{
		"Trade surveillance system",
		"Account watchlist database",
		"Historical pattern analysis",
	}
)

// FormatPct renders a self-match percentage the same way in every output.
func FormatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatRoundTrip renders a round-trip average to one decimal, or "N/A".
func FormatRoundTrip(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// BuildMemo assembles the structured SAR memo for the given metrics.
func BuildMemo(m models.SurveillanceMetrics, tradesAnalyzed, accountsAnalyzed int) models.SarMemo {
	evidence := []string{
		fmt.Sprintf("Self-match rate of %s%% exceeds regulatory threshold of %s%%",
			FormatPct(m.SelfMatchPct), FormatPct(ThresholdSelfMatch)),
		fmt.Sprintf("Average round-trip time of %s seconds indicates potential coordination",
			FormatRoundTrip(m.RoundTripAvgSecs)),
		fmt.Sprintf("%d accounts show elevated flip activity patterns", len(m.TopAccounts)),
	}
	evidence = append(evidence, narrativeFindings...)

	return models.SarMemo{
		Summary:  memoSummary,
		Evidence: evidence,
		Metrics:  m,
		Controls: append([]string(nil), recommendedControls...),
		Appendix: models.SarAppendix{
			Sources: append([]string(nil), dataSources...),
			Parameters: map[string]any{
				ParamAnalysisPeriod:     AnalysisPeriod,
				ParamThresholdSelfMatch: ThresholdSelfMatch,
				ParamThresholdRoundTrip: ThresholdRoundTrip,
				ParamAccountsAnalyzed:   accountsAnalyzed,
				ParamTradesAnalyzed:     tradesAnalyzed,
			},
		},
	}
}

// RenderText renders memo as the numbered, section-headed plain-text report.
// Every section is derived from the structured memo, so the two never drift.
func RenderText(memo models.SarMemo) string {
	var b strings.Builder

	b.WriteString("SUSPICIOUS ACTIVITY REPORT - PRELIMINARY ANALYSIS\n\n")

	b.WriteString("SUMMARY\n")
	b.WriteString(memo.Summary)
	b.WriteString("\n\n")

	b.WriteString("EVIDENCE IDENTIFIED\n")
	writeNumbered(&b, memo.Evidence)
	b.WriteString("\n")

	b.WriteString("KEY METRICS\n")
	fmt.Fprintf(&b, "- Self-Match Percentage: %s%%\n", FormatPct(memo.Metrics.SelfMatchPct))
	fmt.Fprintf(&b, "- Average Round-Trip Time: %s seconds\n", FormatRoundTrip(memo.Metrics.RoundTripAvgSecs))
	fmt.Fprintf(&b, "- Flagged Accounts: %d\n\n", len(memo.Metrics.TopAccounts))

	b.WriteString("TOP ACCOUNTS BY ACTIVITY\n")
	for i, a := range memo.Metrics.TopAccounts {
		fmt.Fprintf(&b, "%d. Account %s: %d flips\n", i+1, a.AccountID, a.FlipCount)
	}
	b.WriteString("\n")

	b.WriteString("RECOMMENDED CONTROLS\n")
	writeNumbered(&b, memo.Controls)
	b.WriteString("\n")

	b.WriteString("DATA SOURCES\n")
	writeNumbered(&b, memo.Appendix.Sources)
	b.WriteString("\n")

	p := memo.Appendix.Parameters
	b.WriteString("ANALYSIS PARAMETERS\n")
	fmt.Fprintf(&b, "- Analysis Period: %v\n", p[ParamAnalysisPeriod])
	fmt.Fprintf(&b, "- Self-Match Threshold: %v%%\n", p[ParamThresholdSelfMatch])
	fmt.Fprintf(&b, "- Round-Trip Threshold: %v seconds\n", p[ParamThresholdRoundTrip])
	fmt.Fprintf(&b, "- Trades Analyzed: %v\n", p[ParamTradesAnalyzed])
	fmt.Fprintf(&b, "- Accounts Monitored: %v\n\n", p[ParamAccountsAnalyzed])

	b.WriteString("This preliminary analysis requires further investigation and potential regulatory filing.")
	return b.String()
}

func writeNumbered(b *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

// Triage runs the full surveillance pipeline over a decoded payload.
func Triage(trades models.TradesPayload, watchlist models.Watchlist) (models.SurveillanceMetrics, models.SarMemo, string) {
	metrics := ComputeMetrics(trades.Trades, watchlist)
	memo := BuildMemo(metrics, len(trades.Trades), watchlist.Count())
	return metrics, memo, RenderText(memo)
}
