package regime

import "github.com/seenimoa/marketdesk/pkg/models"

// Regime labels with hedge playbooks.
const (
	RiskOn  = "Risk-On"
	RiskOff = "Risk-Off"

	// DefaultRegime is assumed when the timeline is empty.
	DefaultRegime = RiskOn
)

// Desks covered by every playbook, in reporting order.
const (
	DeskEquities       = "Equities"
	DeskPrimeBrokerage = "Prime Brokerage"
	DeskMacro          = "Macro"
)

type playbookEntry struct {
	recommendation string
	rationale      string
}

type playbook struct {
	equities, primeBrokerage, macro playbookEntry
}

var playbooks = map[string]playbook{
	RiskOn: {
		equities: playbookEntry{
			"Reduce long equity exposure, increase defensive sectors",
			"Risk-on regime suggests potential for increased volatility and rotation",
		},
		primeBrokerage: playbookEntry{
			"Tighten margin requirements, increase collateral buffers",
			"Higher correlation environment increases counterparty risk",
		},
		macro: playbookEntry{
			"Long volatility, short credit spreads",
			"Risk-on periods often precede volatility spikes",
		},
	},
	RiskOff: {
		equities: playbookEntry{
			"Increase cash allocation, focus on quality names",
			"Risk-off environment favors defensive positioning",
		},
		primeBrokerage: playbookEntry{
			"Reduce leverage limits, enhance stress testing",
			"Flight to quality increases funding pressures",
		},
		macro: playbookEntry{
			"Long duration, long safe haven currencies",
			"Risk-off regime supports bond rally and USD strength",
		},
	},
}

// Hedges returns the desk recommendations for regime. Regimes without a
// playbook get the Risk-On playbook.
func Hedges(regime string) []models.HedgeRecommendation {
	pb, ok := playbooks[regime]
	if !ok {
		pb = playbooks[RiskOn]
	}
	return []models.HedgeRecommendation{
		{Desk: DeskEquities, Recommendation: pb.equities.recommendation, Rationale: pb.equities.rationale},
		{Desk: DeskPrimeBrokerage, Recommendation: pb.primeBrokerage.recommendation, Rationale: pb.primeBrokerage.rationale},
		{Desk: DeskMacro, Recommendation: pb.macro.recommendation, Rationale: pb.macro.rationale},
	}
}
