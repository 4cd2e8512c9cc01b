package models

import "time"

// DeskBundle holds one run of every desk analysis, as rendered into a
// desk report. Any section may be nil.
type DeskBundle struct {
	GeneratedAt  time.Time            `json:"generated_at"`
	Mode         Mode                 `json:"mode"`
	Surveillance *SurveillanceResult  `json:"surveillance,omitempty"`
	Regime       *RegimeDetection     `json:"regime,omitempty"`
	RegImpact    *RegImpactAssessment `json:"regimpact,omitempty"`
	Brief        *ClientBrief         `json:"brief,omitempty"`
}
