package models

// RegimeEntry is one period of the regime timeline. Entries are
// chronological as supplied and are never re-sorted.
type RegimeEntry struct {
	Date       string  `json:"date"`
	Regime     string  `json:"regime"     validate:"required"`
	Confidence float64 `json:"confidence" validate:"finite"`
}

// RegimePayload is the envelope returned by the regime detection tool.
type RegimePayload struct {
	RegimeTimeline []RegimeEntry `json:"regime_timeline"`
}

// RegimeChange marks a boundary between two differently labelled periods.
type RegimeChange struct {
	Date         string  `json:"date"` // date of the later entry, may be blank
	FromRegime   string  `json:"from_regime"  validate:"required"`
	ToRegime     string  `json:"to_regime"    validate:"required,nefield=FromRegime"`
	Significance float64 `json:"significance" validate:"gte=0.5,lt=1"`
}

// HedgeRecommendation is a desk-level action for the current regime.
type HedgeRecommendation struct {
	Desk           string `json:"desk"           validate:"required"`
	Recommendation string `json:"recommendation" validate:"required"`
	Rationale      string `json:"rationale"      validate:"required"`
}

// RegimeDetection is the response of the regime analysis operation.
type RegimeDetection struct {
	Timeline      []RegimeEntry         `json:"timeline"      validate:"required,dive"`
	Changes       []RegimeChange        `json:"changes"       validate:"required,dive"`
	CurrentRegime string                `json:"currentRegime" validate:"required"`
	Hedges        []HedgeRecommendation `json:"hedges"        validate:"len=3,dive"`
	Narrative     string                `json:"narrative,omitempty"`
	Mode          Mode                  `json:"mode"          validate:"oneof=mock live"`
}

// ApplyDefaults replaces nil slices with empty ones.
func (d *RegimeDetection) ApplyDefaults() {
	if d.Timeline == nil {
		d.Timeline = []RegimeEntry{}
	}
	if d.Changes == nil {
		d.Changes = []RegimeChange{}
	}
}
