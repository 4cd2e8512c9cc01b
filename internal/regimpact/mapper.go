// Package regimpact maps regulatory text onto the trading desks it
// affects and produces the implementation checklist and capital-impact
// worksheet that accompany every assessment.
package regimpact

import (
	"strings"
	"time"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Matches reports whether entry applies to text: the text contains the
// regulation type or any keyword, compared case-insensitively. Blank
// terms never match.
func Matches(lowerText string, entry models.TaxonomyEntry) bool {
	if containsTerm(lowerText, entry.RegulationType) {
		return true
	}
	for _, kw := range entry.Keywords {
		if containsTerm(lowerText, kw) {
			return true
		}
	}
	return false
}

// containsTerm matches term verbatim, padding included.
func containsTerm(lowerText, term string) bool {
	if strings.TrimSpace(term) == "" {
		return false
	}
	return strings.Contains(lowerText, strings.ToLower(term))
}

// MapDesks returns one impacted desk per matching taxonomy entry, in
// taxonomy order. Desks are not merged. The result is never nil.
func MapDesks(text string, taxonomy models.Taxonomy) []models.ImpactedDesk {
	lower := strings.ToLower(text)
	desks := make([]models.ImpactedDesk, 0)
	for _, entry := range taxonomy.DeskMappings {
		if !Matches(lower, entry) {
			continue
		}
		desks = append(desks, models.ImpactedDesk{
			Desk:        entry.Desk,
			ImpactLevel: entry.ImpactLevel,
			Description: entry.Description,
		})
	}
	return desks
}

// Analyze builds the full assessment for text. now anchors checklist
// due dates.
func Analyze(text string, taxonomy models.Taxonomy, now time.Time) models.RegImpactAssessment {
	return models.RegImpactAssessment{
		ImpactedDesks: MapDesks(text, taxonomy),
		Checklist:     Checklist(now),
		Template:      CapitalImpact(),
	}
}
