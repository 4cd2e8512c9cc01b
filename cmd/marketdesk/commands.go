package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/marketdesk/api"
	"github.com/seenimoa/marketdesk/internal/agent"
	"github.com/seenimoa/marketdesk/internal/audit"
	"github.com/seenimoa/marketdesk/internal/datasource"
	"github.com/seenimoa/marketdesk/internal/report"
	"github.com/seenimoa/marketdesk/pkg/models"
	"github.com/seenimoa/marketdesk/pkg/utils"
)

// newDesk builds a desk with a process-local audit log.
func newDesk() (*agent.Desk, *audit.Log) {
	auditLog := audit.NewLog(cfg.Audit.Capacity)
	return agent.NewFromConfig(cfg, auditLog, nil, log), auditLog
}

// readRaw reads a JSON file, or returns nil when path is empty.
func readRaw(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return json.RawMessage(b), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAudit(l *audit.Log) {
	for _, e := range l.All() {
		status := "✅"
		if !e.Success {
			status = "❌"
		}
		fmt.Printf("\n🧾 %s %s  %s → %s\n", status, e.Route, e.InputsSummary, e.OutputsSummary)
	}
}

func printNarrative(mode models.Mode, narrative string) {
	if mode == models.ModeLive && narrative != "" {
		fmt.Println("\n🤖 Narrative")
		fmt.Println(narrative)
	}
}

func init() {
	for _, c := range []*cobra.Command{surveillanceCmd, regimeCmd, regimpactCmd, briefCmd, researchCmd, meetingsCmd, demoCmd} {
		c.Flags().String("mode", "mock", "narrative mode (mock or live)")
		c.Flags().Bool("json", false, "print the full result as JSON")
	}

	surveillanceCmd.Flags().String("trades", "", "trades JSON file (default: bundled sample)")
	surveillanceCmd.Flags().String("watchlist", "", "watchlist JSON file (default: bundled sample)")
	surveillanceCmd.Flags().Bool("text", false, "print the SAR memo text")

	regimeCmd.Flags().String("timeline", "", "regime timeline JSON file (default: bundled sample)")

	regimpactCmd.Flags().String("text", "", "regulatory text to map")
	regimpactCmd.Flags().String("file", "", "file containing regulatory text")
	regimpactCmd.Flags().String("taxonomy", "", "desk taxonomy file (.json or .yaml)")
	regimpactCmd.Flags().Bool("feed", false, "map notices from the configured regulatory feeds")
	regimpactCmd.Flags().StringSlice("url", nil, "feed URL (repeatable, overrides configured feeds)")
	regimpactCmd.Flags().Int("limit", 10, "maximum feed notices")

	briefCmd.Flags().String("profile", "", "client profile JSON file (default: bundled sample)")

	researchCmd.Flags().StringSlice("file", nil, "source document name (repeatable)")
	researchCmd.Flags().String("source", "", "filing extract JSON file (default: bundled sample)")
	researchCmd.Flags().String("style", "", "style guide overrides JSON file")
	researchCmd.Flags().Bool("markdown", false, "print only the note markdown")

	meetingsCmd.Flags().String("transcript", "", "transcript text file (default: bundled sample call)")

	demoCmd.Flags().String("html", "", "also write the HTML desk report to this file")
	demoCmd.Flags().Bool("text", false, "print the plain-text desk report")

	auditCmd.Flags().String("server", "http://localhost:8080", "MarketDesk API server")
	auditCmd.Flags().Int("limit", 50, "entries to list (0 for all)")
	auditCmd.Flags().String("export", "", "write the full audit export to this file")
}

// --- Surveillance Command ---

var surveillanceCmd = &cobra.Command{
	Use:   "surveillance",
	Short: "Triage trades for wash-trade and flip patterns and draft a SAR memo",
	RunE: func(cmd *cobra.Command, args []string) error {
		tradesPath, _ := cmd.Flags().GetString("trades")
		watchPath, _ := cmd.Flags().GetString("watchlist")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")
		showText, _ := cmd.Flags().GetBool("text")

		trades, err := readRaw(tradesPath)
		if err != nil {
			return err
		}
		watchlist, err := readRaw(watchPath)
		if err != nil {
			return err
		}

		desk, auditLog := newDesk()
		res, err := desk.Surveillance(cmd.Context(), agent.SurveillanceRequest{
			TradesJSON: trades, WatchlistJSON: watchlist, Mode: mode,
		})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}

		m := res.Metrics
		fmt.Println("🔎 Trade Surveillance")
		fmt.Printf("   Self-match:       %.2f%%\n", m.SelfMatchPct)
		fmt.Printf("   Avg round trip:   %s\n", utils.FormatSeconds(m.RoundTripAvgSecs))
		fmt.Println("   Top accounts by flips:")
		for _, a := range m.TopAccounts {
			fmt.Printf("     %-12s %d\n", a.AccountID, a.FlipCount)
		}
		fmt.Printf("\n📝 %s\n", res.SarMemoJSON.Summary)
		for _, e := range res.SarMemoJSON.Evidence {
			fmt.Printf("   • %s\n", e)
		}
		if showText {
			fmt.Println()
			fmt.Println(res.SarMemoText)
		}
		printNarrative(res.Mode, res.Narrative)
		printAudit(auditLog)
		return nil
	},
}

// --- Regime Command ---

var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Detect regime changes and recommend hedges",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("timeline")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		raw, err := readRaw(path)
		if err != nil {
			return err
		}

		desk, auditLog := newDesk()
		res, err := desk.Regime(cmd.Context(), agent.RegimeRequest{DetectRegimeJSON: raw, Mode: mode})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}

		fmt.Printf("📈 Current regime: %s\n", res.CurrentRegime)
		fmt.Printf("   Periods: %d, changes: %d\n", len(res.Timeline), len(res.Changes))
		for _, c := range res.Changes {
			fmt.Printf("   %-10s %s → %s (significance %.2f)\n", c.Date, c.FromRegime, c.ToRegime, c.Significance)
		}
		fmt.Println("\n🛡️  Hedges")
		for _, h := range res.Hedges {
			fmt.Printf("   %-14s %s\n", h.Desk+":", h.Recommendation)
		}
		printNarrative(res.Mode, res.Narrative)
		printAudit(auditLog)
		return nil
	},
}

// --- Regulatory Impact Command ---

var regimpactCmd = &cobra.Command{
	Use:   "regimpact",
	Short: "Map regulatory text to impacted desks with checklist and capital template",
	Long: `Map regulatory text to the desks it affects.

Examples:
  marketdesk regimpact --text "Basel III leverage ratio changes"
  marketdesk regimpact --file notice.txt --taxonomy data/reg_taxonomy.yaml
  marketdesk regimpact --feed --url https://regulator.example/rss`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		taxPath, _ := cmd.Flags().GetString("taxonomy")
		feed, _ := cmd.Flags().GetBool("feed")
		urls, _ := cmd.Flags().GetStringSlice("url")
		limit, _ := cmd.Flags().GetInt("limit")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		if file != "" {
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}
			text = string(b)
		}

		var taxonomy *models.Taxonomy
		if taxPath != "" {
			t, err := datasource.LoadTaxonomyFile(taxPath)
			if err != nil {
				return err
			}
			taxonomy = &t
		}

		desk, auditLog := newDesk()

		if feed || len(urls) > 0 {
			items, err := desk.FeedImpact(cmd.Context(), urls, limit, taxonomy, mode)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(items)
			}
			for _, it := range items {
				fmt.Printf("📰 %s — %s\n", it.Notice.Source, it.Notice.Title)
				if it.Error != "" {
					fmt.Printf("   ⚠️  %s\n", it.Error)
					continue
				}
				fmt.Printf("   Desks: %s\n", deskNames(it.Assessment.ImpactedDesks))
			}
			printAudit(auditLog)
			return nil
		}

		res, err := desk.RegImpact(cmd.Context(), agent.RegImpactRequest{Text: text, Taxonomy: taxonomy, Mode: mode})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}

		fmt.Println("🏛️  Regulatory Impact")
		fmt.Printf("   Impacted desks: %s\n", deskNames(res.ImpactedDesks))
		fmt.Println("\n✅ Checklist")
		for _, c := range res.Checklist {
			fmt.Printf("   %s  %-8s %-24s %s\n", c.DueDate, c.Priority, c.Owner, c.Task)
		}
		t := res.Template
		fmt.Println("\n💰 Capital impact")
		fmt.Printf("   Capital ratio:    %s → %s\n", utils.FormatRatio(t.Before.CapitalRatio), utils.FormatRatio(t.After.CapitalRatio))
		fmt.Printf("   Leverage ratio:   %s → %s\n", utils.FormatRatio(t.Before.LeverageRatio), utils.FormatRatio(t.After.LeverageRatio))
		fmt.Printf("   RWA:              %s → %s\n", utils.FormatUSDCompact(t.Before.RiskWeightedAssets), utils.FormatUSDCompact(t.After.RiskWeightedAssets))
		fmt.Printf("   Additional capital: %s over %d months\n",
			utils.FormatUSDCompact(t.ImpactSummary.AdditionalCapitalRequired), t.ImpactSummary.TimelineMonths)
		printNarrative(res.Mode, res.Narrative)
		printAudit(auditLog)
		return nil
	},
}

func deskNames(desks []models.ImpactedDesk) string {
	if len(desks) == 0 {
		return "none"
	}
	names := make([]string, len(desks))
	for i, d := range desks {
		names[i] = d.Desk
	}
	return strings.Join(names, ", ")
}

// --- Brief Command ---

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Generate a client meeting brief",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("profile")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		var profile models.ClientProfile
		if path != "" {
			raw, err := readRaw(path)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &profile); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}
		}

		desk, auditLog := newDesk()
		res, err := desk.ClientBrief(cmd.Context(), agent.BriefRequest{Stub: profile, Mode: mode})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}

		fmt.Println(res.Brief)
		fmt.Println("\n💬 Talking points")
		for _, p := range res.TalkingPoints {
			fmt.Printf("   • %s\n", p)
		}
		fmt.Println("\n🤝 Cross-sell")
		for _, c := range res.CrossSell {
			fmt.Printf("   • %s\n", c)
		}
		printNarrative(res.Mode, res.Narrative)
		printAudit(auditLog)
		return nil
	},
}

// --- Research Command ---

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Draft an equity research note with citations and redlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		files, _ := cmd.Flags().GetStringSlice("file")
		sourcePath, _ := cmd.Flags().GetString("source")
		stylePath, _ := cmd.Flags().GetString("style")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")
		onlyMarkdown, _ := cmd.Flags().GetBool("markdown")

		req := agent.ResearchRequest{Files: files, Mode: mode}
		if sourcePath != "" {
			raw, err := readRaw(sourcePath)
			if err != nil {
				return err
			}
			req.Stub = &models.ResearchSource{}
			if err := json.Unmarshal(raw, req.Stub); err != nil {
				return fmt.Errorf("decode %s: %w", sourcePath, err)
			}
		}
		if stylePath != "" {
			raw, err := readRaw(stylePath)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &req.Style); err != nil {
				return fmt.Errorf("decode %s: %w", stylePath, err)
			}
		}

		desk, auditLog := newDesk()
		res, err := desk.ResearchDraft(cmd.Context(), req)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}
		fmt.Println(res.Markdown)
		if onlyMarkdown {
			return nil
		}

		fmt.Println("\n📌 Citations")
		for _, c := range res.Citations {
			if c.Section != "" {
				fmt.Printf("   • %s p.%d (%s)\n", c.Source, c.Page, c.Section)
			} else {
				fmt.Printf("   • %s p.%d\n", c.Source, c.Page)
			}
		}
		if len(res.Redlines) > 0 {
			fmt.Println("\n✏️  Redlines")
			for _, r := range res.Redlines {
				fmt.Printf("   • %s\n", r)
			}
		}
		if res.Brief150 != "" {
			fmt.Println("\n📝 Brief")
			fmt.Println(res.Brief150)
		}
		printNarrative(res.Mode, res.Narrative)
		printAudit(auditLog)
		return nil
	},
}

// --- Meetings Command ---

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "Analyse an earnings-call transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("transcript")
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		req := agent.MeetingsRequest{Mode: mode, UseSample: path == ""}
		if path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			req.Transcript = string(b)
		}

		desk, auditLog := newDesk()
		res, err := desk.MeetingsAnalyze(cmd.Context(), req)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(res)
		}

		fmt.Printf("📞 Sentiment: %s\n", res.Sentiment)
		fmt.Printf("   Tone: %s\n", res.ManagementTone)
		m := res.FinancialMetrics
		for _, kv := range [][2]string{{"Revenue", m.Revenue}, {"Guidance", m.Guidance}, {"Margins", m.Margins}} {
			if kv[1] != "" {
				fmt.Printf("   %-9s %s\n", kv[0]+":", kv[1])
			}
		}
		sections := []struct {
			title string
			items []string
		}{
			{"\n💡 Key insights", res.KeyInsights},
			{"\n⚠️  Risk factors", res.RiskFactors},
			{"\n✅ Action items", res.ActionItems},
		}
		for _, sec := range sections {
			if len(sec.items) == 0 {
				continue
			}
			fmt.Println(sec.title)
			for _, it := range sec.items {
				fmt.Printf("   • %s\n", it)
			}
		}
		printNarrative(res.Mode, res.Narrative)
		printAudit(auditLog)
		return nil
	},
}

// --- Demo Command ---

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run all four analyses on the bundled samples",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		asJSON, _ := cmd.Flags().GetBool("json")

		htmlOut, _ := cmd.Flags().GetString("html")
		textOut, _ := cmd.Flags().GetBool("text")

		desk, auditLog := newDesk()
		start := time.Now()
		bundle, err := desk.RunAll(cmd.Context(), mode)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(bundle)
		}
		if textOut {
			out, err := report.GenerateText(bundle, report.DefaultReportConfig())
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}
		if htmlOut != "" {
			out, err := report.GenerateHTML(bundle, report.DefaultReportConfig())
			if err != nil {
				return err
			}
			if err := os.WriteFile(htmlOut, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", htmlOut, err)
			}
			fmt.Printf("📄 Desk report written to %s\n", htmlOut)
		}

		fmt.Printf("🚀 Ran 4 analyses in %s (samples: %s, mode: %s)\n",
			time.Since(start).Round(time.Millisecond), desk.Samples().Dir(), bundle.Mode)
		printAudit(auditLog)
		return nil
	},
}

// --- Audit Command ---

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List or export the audit log of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		limit, _ := cmd.Flags().GetInt("limit")
		export, _ := cmd.Flags().GetString("export")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		client := datasource.HTTPClient

		if export != "" {
			body, err := fetch(ctx, client, http.MethodPost, server+"/api/v1/audit/export")
			if err != nil {
				return err
			}
			if err := os.WriteFile(export, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", export, err)
			}
			fmt.Printf("💾 Audit log exported to %s\n", export)
			return nil
		}

		q := url.Values{"limit": {strconv.Itoa(limit)}}
		body, err := fetch(ctx, client, http.MethodGet, server+"/api/v1/audit?"+q.Encode())
		if err != nil {
			return err
		}
		var resp api.AuditListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode audit list: %w", err)
		}

		fmt.Printf("🧾 %d of %d audit entries\n", len(resp.Data), resp.Total)
		for _, e := range resp.Data {
			status := "ok  "
			if !e.Success {
				status = "FAIL"
			}
			fmt.Printf("  %s %s %-28s %s → %s\n",
				e.At.Local().Format("2006-01-02 15:04:05"), status, e.Route, e.InputsSummary, e.OutputsSummary)
		}
		return nil
	},
}

func fetch(ctx context.Context, client *http.Client, method, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact server: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: HTTP %d", method, target, resp.StatusCode)
	}
	return body, nil
}
