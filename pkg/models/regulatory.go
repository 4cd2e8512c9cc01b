package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Capital figures are consumed by dashboards that expect JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// ── Taxonomy ──

// TaxonomyEntry maps a regulation type and its trigger keywords to a desk.
type TaxonomyEntry struct {
	RegulationType string   `json:"regulation_type" yaml:"regulation_type"`
	Keywords       []string `json:"keywords"        yaml:"keywords"`
	Desk           string   `json:"desk"            yaml:"desk"`
	ImpactLevel    string   `json:"impact_level"    yaml:"impact_level"`
	Description    string   `json:"description"     yaml:"description"`
}

// Taxonomy is the regulatory desk-mapping reference data.
type Taxonomy struct {
	DeskMappings []TaxonomyEntry `json:"desk_mappings" yaml:"desk_mappings"`
}

// RegImpactSample is the bundled regulation sample used when no text is supplied.
type RegImpactSample struct {
	RegulationText string `json:"regulation_text"`
}

// ── Assessment ──

// ImpactedDesk is one taxonomy match against a regulatory text.
type ImpactedDesk struct {
	Desk        string `json:"desk"         validate:"required"`
	ImpactLevel string `json:"impact_level"`
	Description string `json:"description"`
}

// Checklist statuses and priorities.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ChecklistItem is one implementation task.
type ChecklistItem struct {
	Task     string `json:"task"     validate:"required"`
	Owner    string `json:"owner"    validate:"required"`
	DueDate  string `json:"due_date" validate:"required,datetime=2006-01-02"`
	Status   string `json:"status"   validate:"oneof=pending in_progress done"`
	Priority string `json:"priority" validate:"oneof=high medium low"`
}

// CapitalPosition is a balance-sheet capital snapshot.
type CapitalPosition struct {
	Tier1Capital       decimal.Decimal `json:"tier1_capital"`
	Tier2Capital       decimal.Decimal `json:"tier2_capital"`
	RiskWeightedAssets decimal.Decimal `json:"risk_weighted_assets"`
	CapitalRatio       decimal.Decimal `json:"capital_ratio"`  // percent
	LeverageRatio      decimal.Decimal `json:"leverage_ratio"` // percent
}

// ImpactSummary is the derived cost of complying with a regulation.
type ImpactSummary struct {
	AdditionalCapitalRequired decimal.Decimal `json:"additional_capital_required"`
	ImplementationCost        decimal.Decimal `json:"implementation_cost"`
	OngoingComplianceCost     decimal.Decimal `json:"ongoing_compliance_cost"` // annual
	TimelineMonths            int             `json:"timeline_months" validate:"gte=1"`
	RegulatoryBuffer          decimal.Decimal `json:"regulatory_buffer"`
}

// CapitalTemplate is the before/after capital-impact worksheet.
type CapitalTemplate struct {
	Before        CapitalPosition `json:"before"`
	After         CapitalPosition `json:"after"`
	ImpactSummary ImpactSummary   `json:"impact_summary"`
	Assumptions   []string        `json:"assumptions" validate:"min=1,dive,required"`
}

// RegImpactAssessment is the response of the regulatory impact operation.
type RegImpactAssessment struct {
	ImpactedDesks []ImpactedDesk  `json:"impactedDesks" validate:"required,dive"`
	Checklist     []ChecklistItem `json:"checklist"     validate:"len=6,dive"`
	Template      CapitalTemplate `json:"template"`
	Narrative     string          `json:"narrative,omitempty"`
	Mode          Mode            `json:"mode"          validate:"oneof=mock live"`
}

// ApplyDefaults replaces a nil desk list with an empty one.
func (a *RegImpactAssessment) ApplyDefaults() {
	if a.ImpactedDesks == nil {
		a.ImpactedDesks = []ImpactedDesk{}
	}
}

// ── Feeds ──

// RegNotice is one regulatory notice pulled from an RSS or Atom feed.
type RegNotice struct {
	Source    string     `json:"source"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Published *time.Time `json:"published,omitempty"`
	Text      string     `json:"text"` // plain text, markup stripped
}

// MappingText is the text handed to the desk mapper.
func (n RegNotice) MappingText() string {
	if n.Text == "" {
		return n.Title
	}
	return n.Title + "\n\n" + n.Text
}
