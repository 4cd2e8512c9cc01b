// Package research drafts equity research notes from extracted filing
// data: a markdown note, the citations behind it, a short brief and the
// guidance redlines.
package research

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/marketdesk/pkg/models"
)

// Defaults applied to a style guide that leaves a field unset.
const (
	DefaultHeadline      = "Investment Thesis"
	DefaultQuoteMaxWords = 25
	DefaultBriefMaxWords = 150
	DefaultDisclaimer    = "This analysis is based on publicly available information and should not be considered personalized investment advice."
)

// Normalize fills unset style fields. Word limits never exceed the
// defaults.
func Normalize(g models.StyleGuide) models.StyleGuide {
	if strings.TrimSpace(g.Headline) == "" {
		g.Headline = DefaultHeadline
	}
	if g.QuoteMaxWords <= 0 || g.QuoteMaxWords > DefaultQuoteMaxWords {
		g.QuoteMaxWords = DefaultQuoteMaxWords
	}
	if g.BriefMaxWords <= 0 || g.BriefMaxWords > DefaultBriefMaxWords {
		g.BriefMaxWords = DefaultBriefMaxWords
	}
	if strings.TrimSpace(g.Disclaimer) == "" {
		g.Disclaimer = DefaultDisclaimer
	}
	return g
}

// Draft writes the research note for src. files names the source
// documents the note was drafted from and is listed under Sources.
func Draft(src models.ResearchSource, guide models.StyleGuide, files []string) models.ResearchNote {
	guide = Normalize(guide)
	var (
		b     strings.Builder
		cites citations
	)

	fmt.Fprintf(&b, "# %s: %s\n\n", guide.Headline, companyLine(src))

	b.WriteString("## Executive Summary\n")
	b.WriteString(strings.TrimSpace(src.Summary))
	b.WriteString("\n\n")

	if len(src.KPIs) > 0 {
		b.WriteString("## Key Performance Indicators\n")
		for _, k := range src.KPIs {
			fmt.Fprintf(&b, "- **%s**: %s", k.Name, k.Value)
			if change := changeLine(k); change != "" {
				fmt.Fprintf(&b, " (%s)", change)
			}
			if k.Citation != nil {
				cites.add(*k.Citation)
				fmt.Fprintf(&b, " [%s p.%d]", k.Citation.Source, k.Citation.Page)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(src.Risks) > 0 {
		b.WriteString("## Risk Factors\n")
		for _, r := range src.Risks {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	if len(src.Quotes) > 0 {
		b.WriteString("## Management Commentary\n")
		for _, q := range src.Quotes {
			cites.add(q.Citation)
			fmt.Fprintf(&b, "> \"%s\" - %s, %s, Page %d\n\n",
				TruncateWords(q.Text, guide.QuoteMaxWords), q.Speaker, q.Citation.Source, q.Citation.Page)
		}
	}

	redlines := Redlines(src.Guidance)
	if len(redlines) > 0 {
		b.WriteString("## Guidance vs Actual\n")
		for _, r := range redlines {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Investment Recommendation\n")
	b.WriteString(recommendation(src))
	b.WriteString("\n\n")

	if len(files) > 0 {
		b.WriteString("## Sources\n")
		for _, f := range files {
			fmt.Fprintf(&b, "- %s\n", f)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n*%s*", guide.Disclaimer)

	return models.ResearchNote{
		Markdown:  b.String(),
		Citations: cites.list,
		Brief150:  TruncateWords(briefText(src), guide.BriefMaxWords),
		Redlines:  redlines,
	}
}

// Redlines lists each guided figure against the reported one.
func Redlines(lines []models.GuidanceLine) []string {
	var out []string
	for _, g := range lines {
		if strings.TrimSpace(g.Metric) == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s: guided %s → actual %s (%s)",
			g.Metric, figure(g.Guided, g.Unit), figure(g.Actual, g.Unit), delta(g)))
	}
	return out
}

// TruncateWords keeps the first n words of s, marking a cut with "…".
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if n <= 0 || len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "…"
}

// Upside is the percentage move from price to target, or 0 without a
// usable price.
func Upside(price, target float64) float64 {
	if price <= 0 || target <= 0 {
		return 0
	}
	return (target/price - 1) * 100
}

func companyLine(src models.ResearchSource) string {
	if t := strings.TrimSpace(src.Ticker); t != "" {
		return fmt.Sprintf("%s (%s)", src.Company, strings.ToUpper(t))
	}
	return src.Company
}

func changeLine(k models.ResearchKPI) string {
	var parts []string
	if k.YoY != "" {
		parts = append(parts, k.YoY+" YoY")
	}
	if k.QoQ != "" {
		parts = append(parts, k.QoQ+" QoQ")
	}
	return strings.Join(parts, ", ")
}

func rating(src models.ResearchSource) string {
	if r := strings.TrimSpace(src.Rating); r != "" {
		return strings.ToUpper(r)
	}
	return "HOLD"
}

func recommendation(src models.ResearchSource) string {
	if src.PriceTarget <= 0 {
		return fmt.Sprintf("**%s**. No price target set.", rating(src))
	}
	line := fmt.Sprintf("**%s** with 12-month price target of $%s", rating(src), money(src.PriceTarget))
	if src.Price > 0 {
		line += fmt.Sprintf(" (%s from current $%s)", upsideLine(src), money(src.Price))
	}
	return line + "."
}

func upsideLine(src models.ResearchSource) string {
	u := Upside(src.Price, src.PriceTarget)
	if u < 0 {
		return fmt.Sprintf("%.0f%% downside", math.Abs(u))
	}
	return fmt.Sprintf("%.0f%% upside", u)
}

func briefText(src models.ResearchSource) string {
	parts := []string{companyLine(src) + ":", strings.TrimSpace(src.Summary)}
	if len(src.Risks) > 0 {
		parts = append(parts, "Key risks include "+strings.ToLower(strings.Join(firstN(src.Risks, 2), " and "))+".")
	}
	if src.PriceTarget > 0 {
		rec := fmt.Sprintf("Recommend %s with $%s price target", rating(src), money(src.PriceTarget))
		if src.Price > 0 {
			rec += " representing " + upsideLine(src)
		}
		parts = append(parts, rec+".")
	} else {
		parts = append(parts, fmt.Sprintf("Recommend %s.", rating(src)))
	}
	return strings.Join(parts, " ")
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func money(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func figure(v float64, unit string) string {
	switch unit {
	case "%":
		return fmt.Sprintf("%.1f%%", v)
	case "":
		return money(v)
	default:
		return money(v) + unit
	}
}

func delta(g models.GuidanceLine) string {
	diff := g.Actual - g.Guided
	verdict := "beat"
	if diff < 0 {
		verdict = "miss"
	} else if diff == 0 {
		return "in line"
	}
	if g.Unit == "%" {
		return fmt.Sprintf("%+.0f bps %s", diff*100, verdict)
	}
	if g.Guided == 0 {
		return verdict
	}
	return fmt.Sprintf("%+.0f%% %s", diff/math.Abs(g.Guided)*100, verdict)
}

// citations collects distinct citations in first-seen order.
type citations struct {
	seen map[models.Citation]bool
	list []models.Citation
}

func (c *citations) add(ct models.Citation) {
	if c.seen == nil {
		c.seen = map[models.Citation]bool{}
		c.list = []models.Citation{}
	}
	if c.seen[ct] {
		return
	}
	c.seen[ct] = true
	c.list = append(c.list, ct)
}
