// Package meetings analyses earnings-call transcripts: headline
// insights, call sentiment, quoted financial metrics, risk factors,
// management tone and analyst follow-ups.
package meetings

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Caps on the listed insights and risk factors.
const (
	MaxInsights = 5
	MaxRisks    = 5
)

// Word-prefix cue lists. A word matches a cue when it starts with it.
var (
	metricCues   = []string{"revenue", "sales", "margin", "guidance", "outlook", "eps", "earnings", "cash", "profit", "ebitda", "cost", "users", "customers", "growth"}
	positiveCues = []string{"grew", "growth", "record", "strong", "beat", "exceed", "raise", "improv", "momentum", "expan", "confiden", "optimis", "accelerat", "outperform"}
	negativeCues = []string{"declin", "miss", "weak", "headwind", "loss", "pressure", "challeng", "slowdown", "soft", "disappoint", "downturn"}
	riskCues     = []string{"competit", "headwind", "uncertain", "disrupt", "risk", "pressure", "volatil", "regulat", "currency", "inflation", "slowdown"}
	cautionCues  = []string{"may", "might", "could", "cautious", "uncertain", "prudent", "careful"}

	guidanceVerbs = []string{"raise", "lower", "cut", "reaffirm", "maintain", "narrow", "expect", "initiat"}
)

// followUps maps risk cues to the analyst action they prompt.
var followUps = []struct {
	cues   []string
	action string
}{
	{[]string{"competit"}, "Monitor competitive response in core markets"},
	{[]string{"supply", "disrupt"}, "Track supply chain recovery metrics"},
	{[]string{"regulat"}, "Assess regulatory impact on next-quarter guidance"},
	{[]string{"currency", "fx"}, "Model currency sensitivity of reported revenue"},
	{[]string{"inflation", "cost"}, "Review cost assumptions against input inflation"},
}

// Analyze extracts the call analysis from transcript text.
func Analyze(transcript string) models.MeetingAnalysis {
	sentences := Sentences(transcript)

	a := models.MeetingAnalysis{
		KeyInsights: []string{},
		RiskFactors: []string{},
	}
	var pos, neg, caution int
	for _, s := range sentences {
		words := Words(s)
		p, n := countCues(words, positiveCues), countCues(words, negativeCues)
		pos += p
		neg += n
		caution += countCues(words, cautionCues)

		if len(a.KeyInsights) < MaxInsights && hasDigit(s) && countCues(words, metricCues) > 0 {
			a.KeyInsights = append(a.KeyInsights, s)
		}
		if len(a.RiskFactors) < MaxRisks && countCues(words, riskCues) > 0 {
			a.RiskFactors = append(a.RiskFactors, s)
		}
		fillMetrics(&a.FinancialMetrics, s, words)
	}

	a.Sentiment = Sentiment(pos, neg)
	a.ManagementTone = tone(a.Sentiment, pos, neg, caution)
	a.ActionItems = actionItems(a)
	return a
}

// Sentiment labels a call from its positive and negative cue counts.
// One side must lead by more than one cue.
func Sentiment(pos, neg int) string {
	switch {
	case pos > neg+1:
		return models.SentimentPositive
	case neg > pos+1:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Sentences splits text at ., ! or ? followed by whitespace or the end,
// and strips "Speaker:" prefixes. Decimal points stay inside figures.
func Sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = stripSpeaker(line)
		runes := []rune(line)
		start := 0
		for i, r := range runes {
			if r != '.' && r != '!' && r != '?' {
				continue
			}
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Words lowercases s and splits it into letter runs.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
}

// stripSpeaker drops a leading "Name:" when the name has no digits and
// at most four words.
func stripSpeaker(line string) string {
	i := strings.Index(line, ":")
	if i <= 0 {
		return line
	}
	name := line[:i]
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 || len(strings.Fields(name)) > 4 {
		return line
	}
	return line[i+1:]
}

func countCues(words, cues []string) int {
	n := 0
	for _, w := range words {
		for _, c := range cues {
			if strings.HasPrefix(w, c) {
				n++
				break
			}
		}
	}
	return n
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// fillMetrics keeps the first figure-bearing sentence for each metric.
// Guidance also needs a forward-looking verb, so "beat guidance" stays a
// revenue line.
func fillMetrics(m *models.FinancialMetrics, s string, words []string) {
	if !hasDigit(s) {
		return
	}
	has := func(cues ...string) bool { return countCues(words, cues) > 0 }
	if m.Revenue == "" && has("revenue", "sales") {
		m.Revenue = s
	}
	if m.Margins == "" && has("margin") {
		m.Margins = s
	}
	if m.Guidance == "" && has("guidance", "outlook", "guide") && has(guidanceVerbs...) {
		m.Guidance = s
	}
}

func tone(sentiment string, pos, neg, caution int) string {
	var base string
	switch {
	case sentiment == models.SentimentPositive && caution <= pos/2:
		base = "Confident and optimistic, emphasising execution and growth"
	case sentiment == models.SentimentPositive:
		base = "Constructive but measured, pairing growth with caution"
	case sentiment == models.SentimentNegative:
		base = "Defensive, focused on headwinds and cost control"
	default:
		base = "Balanced and measured, with limited forward commitments"
	}
	return fmt.Sprintf("%s (%d positive, %d negative, %d cautionary cues).", base, pos, neg, caution)
}

func actionItems(a models.MeetingAnalysis) []string {
	var items []string
	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			items = append(items, s)
		}
	}
	for _, r := range a.RiskFactors {
		words := Words(r)
		for _, f := range followUps {
			if countCues(words, f.cues) > 0 {
				add(f.action)
			}
		}
	}
	if g := Words(a.FinancialMetrics.Guidance); countCues(g, []string{"raise", "lower", "cut", "narrow"}) > 0 {
		add("Update estimates for revised guidance")
	}
	if len(items) == 0 {
		add("Review transcript for follow-up questions to management")
	}
	return items
}
