package models

// ── Research notes ──

// Citation points a statement in a research note back to its source
// document.
type Citation struct {
	Page    int    `json:"page"              validate:"gte=1"`
	Section string `json:"section,omitempty"`
	Source  string `json:"source"            validate:"required"`
}

// ResearchKPI is one headline metric with its period-over-period change.
type ResearchKPI struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	YoY      string    `json:"yoy,omitempty"`
	QoQ      string    `json:"qoq,omitempty"`
	Citation *Citation `json:"citation,omitempty"`
}

// ManagementQuote is a sourced remark by an executive.
type ManagementQuote struct {
	Speaker  string   `json:"speaker"`
	Text     string   `json:"text"`
	Citation Citation `json:"citation"`
}

// GuidanceLine compares a guided figure with the reported one.
type GuidanceLine struct {
	Metric string  `json:"metric"`
	Guided float64 `json:"guided"`
	Actual float64 `json:"actual"`
	Unit   string  `json:"unit,omitempty"` // "%" compares in basis points
}

// ResearchSource is the extracted filing data a research note is drafted
// from.
type ResearchSource struct {
	Company     string            `json:"company"`
	Ticker      string            `json:"ticker"`
	Summary     string            `json:"summary"`
	KPIs        []ResearchKPI     `json:"kpis"`
	Risks       []string          `json:"risks"`
	Quotes      []ManagementQuote `json:"quotes"`
	Guidance    []GuidanceLine    `json:"guidance"`
	Rating      string            `json:"rating"`
	Price       float64           `json:"price"`
	PriceTarget float64           `json:"price_target"`
}

// StyleGuide shapes how a research note is written.
type StyleGuide struct {
	Headline      string `json:"headline"`
	QuoteMaxWords int    `json:"quote_max_words"`
	BriefMaxWords int    `json:"brief_max_words"`
	Disclaimer    string `json:"disclaimer"`
}

// ResearchNote is the response of the research draft operation.
type ResearchNote struct {
	Markdown  string     `json:"markdown"            validate:"required"`
	Citations []Citation `json:"citations"           validate:"required,dive"`
	Brief150  string     `json:"brief150,omitempty"  validate:"omitempty,maxwords=150"`
	Redlines  []string   `json:"redlines,omitempty"  validate:"omitempty,dive,required"`
	Narrative string     `json:"narrative,omitempty"`
	Mode      Mode       `json:"mode"                validate:"oneof=mock live"`
}

// ApplyDefaults replaces a nil citation list with an empty one.
func (n *ResearchNote) ApplyDefaults() {
	if n.Citations == nil {
		n.Citations = []Citation{}
	}
}

// ── Earnings calls ──

// TranscriptSample is a bundled earnings-call transcript.
type TranscriptSample struct {
	Company    string `json:"company"`
	Call       string `json:"call"`
	Transcript string `json:"transcript"`
}

// FinancialMetrics are the headline figures quoted on a call.
type FinancialMetrics struct {
	Revenue  string `json:"revenue,omitempty"`
	Guidance string `json:"guidance,omitempty"`
	Margins  string `json:"margins,omitempty"`
}

// Call sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// MeetingAnalysis is the response of the earnings-call analysis operation.
type MeetingAnalysis struct {
	KeyInsights      []string         `json:"keyInsights"      validate:"required,dive,required"`
	Sentiment        string           `json:"sentiment"        validate:"oneof=positive negative neutral"`
	FinancialMetrics FinancialMetrics `json:"financialMetrics"`
	RiskFactors      []string         `json:"riskFactors"      validate:"required,dive,required"`
	ManagementTone   string           `json:"managementTone"   validate:"required"`
	ActionItems      []string         `json:"actionItems"      validate:"required,min=1,dive,required"`
	Narrative        string           `json:"narrative,omitempty"`
	Mode             Mode             `json:"mode"             validate:"oneof=mock live"`
}

// ApplyDefaults replaces nil lists with empty ones.
func (a *MeetingAnalysis) ApplyDefaults() {
	if a.KeyInsights == nil {
		a.KeyInsights = []string{}
	}
	if a.RiskFactors == nil {
		a.RiskFactors = []string{}
	}
	if a.ActionItems == nil {
		a.ActionItems = []string{}
	}
}
