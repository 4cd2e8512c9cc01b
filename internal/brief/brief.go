// Package brief renders client meeting briefs from CRM profile fields.
package brief

import (
	"fmt"
	"strings"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Defaults used when a profile field is missing.
var defaults = map[string]string{
	"meeting_objective":   "Quarterly business review and relationship strengthening",
	"client_type":         "large pension fund",
	"aum":                 "$2.5B",
	"relationship_start":  "2019",
	"investment_focus":    "equity and fixed income strategies",
	"recent_activity":     "increased their allocation to alternative investments and shown interest in ESG-focused products",
	"performance":         "in line with benchmarks despite market volatility",
	"special_interests":   "sustainable investing and risk management solutions",
	"performance_summary": "Outperformed benchmark by 150bps YTD despite challenging market conditions",
	"market_view":         "Cautiously optimistic on equities with focus on quality names and defensive positioning",
	"risk_focus":          "Enhanced downside protection through options strategies and diversification",
	"esg_approach":        "Expanding sustainable investment options with strong performance track record",
	"tech_highlights":     "New portfolio analytics platform providing real-time risk monitoring and reporting",
	"crosssell_1":         "Prime brokerage services: Comprehensive financing and securities lending solutions",
	"crosssell_2":         "Alternative investments: Private equity and hedge fund access through our platform",
}

type talkingPoint struct {
	label, key string
}

var talkingPoints = []talkingPoint{
	{"Portfolio performance", "performance_summary"},
	{"Market outlook", "market_view"},
	{"Risk management", "risk_focus"},
	{"ESG integration", "esg_approach"},
	{"Technology capabilities", "tech_highlights"},
}

// Generate renders the brief, talking points and cross-sell ideas for p.
func Generate(p models.ClientProfile) models.ClientBrief {
	get := func(key string) string { return p.GetOr(key, defaults[key]) }

	var b strings.Builder
	fmt.Fprintf(&b, "Meeting Brief: %s\n\n", p.GetOr("client_name", "Valued Client"))
	fmt.Fprintf(&b, "Objective: %s\n\n", get("meeting_objective"))
	fmt.Fprintf(&b, "Client Background: %s is a %s with approximately %s in assets under management. "+
		"They have been a client since %s and primarily focus on %s.\n\n",
		p.GetOr("client_name", "This institutional client"), get("client_type"), get("aum"),
		get("relationship_start"), get("investment_focus"))
	fmt.Fprintf(&b, "Recent Activity: Over the past quarter, the client has %s. Their portfolio performance has been %s.\n\n",
		get("recent_activity"), get("performance"))
	fmt.Fprintf(&b, "Key Discussion Points: We will review their current portfolio positioning, discuss market outlook "+
		"for the remainder of the year, and explore opportunities to optimize their asset allocation. "+
		"Special attention will be given to their interest in %s.\n\n", get("special_interests"))
	b.WriteString("Relationship Status: The relationship remains strong with regular communication and high satisfaction scores. " +
		"The client values our research capabilities and execution quality. There are opportunities to deepen the " +
		"relationship through additional product offerings and enhanced service delivery.")

	points := make([]string, len(talkingPoints))
	for i, tp := range talkingPoints {
		points[i] = fmt.Sprintf("%s: %s", tp.label, get(tp.key))
	}

	return models.ClientBrief{
		Brief:         b.String(),
		TalkingPoints: points,
		CrossSell:     []string{get("crosssell_1"), get("crosssell_2")},
	}
}

// MeetingType returns the profile's meeting type for audit summaries.
func MeetingType(p models.ClientProfile) string {
	return p.GetOr("meeting_type", "Standard")
}

// ClientName returns the profile's client name for audit summaries.
func ClientName(p models.ClientProfile) string {
	return p.GetOr("client_name", "Unknown")
}
