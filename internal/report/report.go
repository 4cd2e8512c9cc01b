package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/seenimoa/marketdesk/pkg/models"
	"github.com/seenimoa/marketdesk/pkg/utils"
)

// ErrEmptyBundle is returned when there is nothing to render.
var ErrEmptyBundle = errors.New("report: bundle is nil")

// ════════════════════════════════════════════════════════════════════
// Report Config
// ════════════════════════════════════════════════════════════════════

// ReportFormat specifies the output format.
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatText ReportFormat = "text"
)

// ReportSection identifies a section to include/exclude.
type ReportSection string

const (
	SectionSurveillance ReportSection = "surveillance"
	SectionRegime       ReportSection = "regime"
	SectionRegImpact    ReportSection = "regimpact"
	SectionBrief        ReportSection = "brief"
)

// AllSections returns all report sections in display order.
func AllSections() []ReportSection {
	return []ReportSection{SectionSurveillance, SectionRegime, SectionRegImpact, SectionBrief}
}

// ReportConfig controls report generation behaviour.
type ReportConfig struct {
	Format   ReportFormat    // output format (default: HTML)
	Sections []ReportSection // sections to include (default: all)
	Title    string          // custom report title (optional)
	Author   string          // author name (optional)
}

// DefaultReportConfig returns sensible defaults.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		Format:   FormatHTML,
		Sections: AllSections(),
		Title:    "Daily Desk Report",
		Author:   "MarketDesk",
	}
}

func (rc ReportConfig) hasSection(s ReportSection) bool {
	if len(rc.Sections) == 0 {
		return true
	}
	for _, sec := range rc.Sections {
		if sec == s {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════════════
// Report Data (flattened for template rendering)
// ════════════════════════════════════════════════════════════════════

// ReportData is the template model passed to the HTML template.
type ReportData struct {
	Title       string
	Author      string
	GeneratedAt string
	Mode        string

	// Surveillance
	ShowSurveillance bool
	SelfMatchPct     string
	RoundTripAvg     string
	SelfMatchGauge   template.HTML
	FlipChart        template.HTML
	SarSummary       string
	Evidence         []string
	Controls         []string

	// Regime
	ShowRegime    bool
	CurrentRegime string
	RegimeStrip   template.HTML
	Changes       []ChangeRow
	Hedges        []models.HedgeRecommendation

	// Regulatory impact
	ShowRegImpact bool
	Desks         []models.ImpactedDesk
	Checklist     []models.ChecklistItem
	Capital       []CapitalRow
	Assumptions   []string

	// Client brief
	ShowBrief     bool
	Brief         string
	TalkingPoints []string
	CrossSell     []string

	Narratives []NarrativeRow
}

// ChangeRow is one regime transition.
type ChangeRow struct {
	Date         string
	From         string
	To           string
	Significance string
}

// CapitalRow is one line of the before/after capital worksheet.
type CapitalRow struct {
	Label  string
	Before string
	After  string
}

// NarrativeRow is a live narrative attached to a section.
type NarrativeRow struct {
	Section string
	Text    string
}

// ════════════════════════════════════════════════════════════════════
// Generate Report
// ════════════════════════════════════════════════════════════════════

var reportTmpl = template.Must(template.New("report").Parse(ReportTemplate))

// GenerateHTML renders a desk report as a standalone HTML document.
func GenerateHTML(b *models.DeskBundle, cfg ReportConfig) (string, error) {
	if b == nil {
		return "", ErrEmptyBundle
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, buildReportData(b, cfg)); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders a plain-text desk report (terminal / CLI friendly).
func GenerateText(b *models.DeskBundle, cfg ReportConfig) (string, error) {
	if b == nil {
		return "", ErrEmptyBundle
	}
	return renderTextReport(buildReportData(b, cfg)), nil
}

// Generate renders b in cfg.Format.
func Generate(b *models.DeskBundle, cfg ReportConfig) (string, error) {
	if cfg.Format == FormatText {
		return GenerateText(b, cfg)
	}
	return GenerateHTML(b, cfg)
}

// ════════════════════════════════════════════════════════════════════
// Build template data
// ════════════════════════════════════════════════════════════════════

func buildReportData(b *models.DeskBundle, cfg ReportConfig) ReportData {
	d := ReportData{
		Title:       cfg.Title,
		Author:      cfg.Author,
		GeneratedAt: ReportTimestamp(b.GeneratedAt),
		Mode:        string(b.Mode),
	}
	if d.Title == "" {
		d.Title = "Daily Desk Report"
	}
	if d.Author == "" {
		d.Author = "MarketDesk"
	}

	if s := b.Surveillance; s != nil && cfg.hasSection(SectionSurveillance) {
		d.ShowSurveillance = true
		d.SelfMatchPct = fmt.Sprintf("%.2f%%", s.Metrics.SelfMatchPct)
		d.RoundTripAvg = utils.FormatSeconds(s.Metrics.RoundTripAvgSecs)
		d.SelfMatchGauge = template.HTML(GaugeChart(s.Metrics.SelfMatchPct, "Self-match", 220))
		bars := make([]BarItem, len(s.Metrics.TopAccounts))
		for i, a := range s.Metrics.TopAccounts {
			bars[i] = BarItem{Label: a.AccountID, Value: float64(a.FlipCount)}
		}
		d.FlipChart = template.HTML(HorizontalBarChart(bars, ChartConfig{Title: "Flips by account"}))
		d.SarSummary = s.SarMemoJSON.Summary
		d.Evidence = s.SarMemoJSON.Evidence
		d.Controls = s.SarMemoJSON.Controls
		d.addNarrative("Surveillance", s.Narrative)
	}

	if r := b.Regime; r != nil && cfg.hasSection(SectionRegime) {
		d.ShowRegime = true
		d.CurrentRegime = r.CurrentRegime
		d.RegimeStrip = template.HTML(RegimeStrip(r.Timeline, ChartConfig{}))
		for _, c := range r.Changes {
			d.Changes = append(d.Changes, ChangeRow{
				Date:         c.Date,
				From:         c.FromRegime,
				To:           c.ToRegime,
				Significance: fmt.Sprintf("%.2f", c.Significance),
			})
		}
		d.Hedges = r.Hedges
		d.addNarrative("Regime", r.Narrative)
	}

	if a := b.RegImpact; a != nil && cfg.hasSection(SectionRegImpact) {
		d.ShowRegImpact = true
		d.Desks = a.ImpactedDesks
		d.Checklist = a.Checklist
		d.Capital = buildCapitalRows(a.Template)
		d.Assumptions = a.Template.Assumptions
		d.addNarrative("Regulatory impact", a.Narrative)
	}

	if c := b.Brief; c != nil && cfg.hasSection(SectionBrief) {
		d.ShowBrief = true
		d.Brief = c.Brief
		d.TalkingPoints = c.TalkingPoints
		d.CrossSell = c.CrossSell
		d.addNarrative("Client brief", c.Narrative)
	}

	return d
}

func (d *ReportData) addNarrative(section, text string) {
	if strings.TrimSpace(text) != "" {
		d.Narratives = append(d.Narratives, NarrativeRow{Section: section, Text: text})
	}
}

func buildCapitalRows(t models.CapitalTemplate) []CapitalRow {
	return []CapitalRow{
		{"Tier 1 capital", utils.FormatUSDCompact(t.Before.Tier1Capital), utils.FormatUSDCompact(t.After.Tier1Capital)},
		{"Tier 2 capital", utils.FormatUSDCompact(t.Before.Tier2Capital), utils.FormatUSDCompact(t.After.Tier2Capital)},
		{"Risk-weighted assets", utils.FormatUSDCompact(t.Before.RiskWeightedAssets), utils.FormatUSDCompact(t.After.RiskWeightedAssets)},
		{"Capital ratio", utils.FormatRatio(t.Before.CapitalRatio), utils.FormatRatio(t.After.CapitalRatio)},
		{"Leverage ratio", utils.FormatRatio(t.Before.LeverageRatio), utils.FormatRatio(t.After.LeverageRatio)},
	}
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderTextReport(d ReportData) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	fmt.Fprintf(&sb, "  %s\n", d.Title)
	fmt.Fprintf(&sb, "  Generated: %s | Author: %s | Mode: %s\n", d.GeneratedAt, d.Author, d.Mode)
	sb.WriteString(line + "\n")

	bullets := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "  %s:\n", title)
		for _, it := range items {
			fmt.Fprintf(&sb, "    • %s\n", it)
		}
	}

	if d.ShowSurveillance {
		sb.WriteString("\n  ■ TRADE SURVEILLANCE\n")
		fmt.Fprintf(&sb, "  Self-match: %s | Avg round trip: %s\n", d.SelfMatchPct, d.RoundTripAvg)
		fmt.Fprintf(&sb, "  %s\n", d.SarSummary)
		bullets("Evidence", d.Evidence)
		bullets("Controls", d.Controls)
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowRegime {
		sb.WriteString("\n  ■ MARKET REGIME\n")
		fmt.Fprintf(&sb, "  Current regime: %s\n", d.CurrentRegime)
		for _, c := range d.Changes {
			fmt.Fprintf(&sb, "    %-10s %s → %s (%s)\n", c.Date, c.From, c.To, c.Significance)
		}
		for _, h := range d.Hedges {
			fmt.Fprintf(&sb, "    [%s] %s\n", h.Desk, h.Recommendation)
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowRegImpact {
		sb.WriteString("\n  ■ REGULATORY IMPACT\n")
		if len(d.Desks) == 0 {
			sb.WriteString("  No desks impacted.\n")
		}
		for _, desk := range d.Desks {
			fmt.Fprintf(&sb, "    %-16s %-8s %s\n", desk.Desk, desk.ImpactLevel, desk.Description)
		}
		for _, c := range d.Checklist {
			fmt.Fprintf(&sb, "    %s  %-6s %s (%s)\n", c.DueDate, c.Priority, c.Task, c.Owner)
		}
		for _, r := range d.Capital {
			fmt.Fprintf(&sb, "    %-22s %10s → %s\n", r.Label, r.Before, r.After)
		}
		sb.WriteString(thinLine + "\n")
	}

	if d.ShowBrief {
		sb.WriteString("\n  ■ CLIENT BRIEF\n")
		fmt.Fprintf(&sb, "  %s\n", d.Brief)
		bullets("Talking points", d.TalkingPoints)
		bullets("Cross-sell", d.CrossSell)
		sb.WriteString(thinLine + "\n")
	}

	for _, n := range d.Narratives {
		fmt.Fprintf(&sb, "\n  ✎ %s narrative\n  %s\n", n.Section, n.Text)
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  For internal use. Surveillance output requires compliance review\n")
	sb.WriteString("  before any regulatory filing.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

// ReportTimestamp formats t (UTC) for report headers.
func ReportTimestamp(t time.Time) string {
	return t.UTC().Format("02 Jan 2006, 15:04 MST")
}
