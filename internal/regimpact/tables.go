package regimpact

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// DateLayout is the due-date format.
const DateLayout = "2006-01-02"

type checklistTask struct {
	task, owner, priority string
	offsetDays            int
}

// implementationPlan is the fixed task list, ordered by due date.
var implementationPlan = []checklistTask{
	{"Conduct impact assessment across affected desks", "Compliance Team", models.PriorityHigh, 7},
	{"Update risk management policies and procedures", "Risk Management", models.PriorityHigh, 14},
	{"Train staff on new regulatory requirements", "HR & Compliance", models.PriorityMedium, 21},
	{"Implement system changes for compliance monitoring", "Technology Team", models.PriorityMedium, 30},
	{"File regulatory notifications and reports", "Legal Team", models.PriorityHigh, 45},
	{"Conduct compliance testing and validation", "Internal Audit", models.PriorityMedium, 60},
}

// ChecklistOffsets returns the due-date offsets in days, in checklist order.
func ChecklistOffsets() []int {
	out := make([]int, len(implementationPlan))
	for i, t := range implementationPlan {
		out[i] = t.offsetDays
	}
	return out
}

// Checklist returns the implementation tasks, all pending, due at fixed
// offsets from now (UTC calendar date).
func Checklist(now time.Time) []models.ChecklistItem {
	base := now.UTC()
	items := make([]models.ChecklistItem, len(implementationPlan))
	for i, t := range implementationPlan {
		items[i] = models.ChecklistItem{
			Task:     t.task,
			Owner:    t.owner,
			DueDate:  base.AddDate(0, 0, t.offsetDays).Format(DateLayout),
			Status:   models.StatusPending,
			Priority: t.priority,
		}
	}
	return items
}

var (
	billion = decimal.New(1, 9)
	million = decimal.New(1, 6)
)

func bn(s string) decimal.Decimal { return decimal.RequireFromString(s).Mul(billion) }
func mn(s string) decimal.Decimal { return decimal.RequireFromString(s).Mul(million) }
func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// CapitalImpact returns the illustrative before/after capital worksheet.
// Figures are reference constants and do not depend on the impacted desks.
func CapitalImpact() models.CapitalTemplate {
	return models.CapitalTemplate{
		Before: models.CapitalPosition{
			Tier1Capital:       bn("12.5"),
			Tier2Capital:       bn("3.2"),
			RiskWeightedAssets: bn("95"),
			CapitalRatio:       pct("16.5"),
			LeverageRatio:      pct("8.2"),
		},
		After: models.CapitalPosition{
			Tier1Capital:       bn("13.75"),
			Tier2Capital:       bn("3.52"),
			RiskWeightedAssets: bn("104.5"),
			CapitalRatio:       pct("16.5"),
			LeverageRatio:      pct("7.9"),
		},
		ImpactSummary: models.ImpactSummary{
			AdditionalCapitalRequired: bn("1.25"),
			ImplementationCost:        mn("25"),
			OngoingComplianceCost:     mn("8"),
			TimelineMonths:            6,
			RegulatoryBuffer:          mn("500"),
		},
		Assumptions: []string{
			"10% increase in risk-weighted assets due to new calculation methodology",
			"Additional Tier 1 capital raised through retained earnings and equity issuance",
			"Implementation costs include system upgrades and staff training",
			"Ongoing costs reflect additional compliance monitoring and reporting",
		},
	}
}
