package report

// ReportTemplate is the HTML template for the desk report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #1e3a8a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  .mode { display: inline-block; background: var(--accent); color: #fff; padding: 0 10px; border-radius: 4px; font-size: 0.8rem; }
  .charts { display: flex; gap: 16px; flex-wrap: wrap; align-items: center; }
  table { width: 100%; border-collapse: collapse; margin: 8px 0; font-size: 0.9rem; }
  th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid var(--border); }
  th { background: var(--section-bg); }
  ul { margin: 6px 0 6px 20px; }
  .narrative { background: var(--section-bg); border-left: 3px solid var(--accent); padding: 8px 12px; margin: 8px 0; white-space: pre-wrap; }
  .footer { margin-top: 32px; border-top: 1px solid var(--border); padding-top: 8px; }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">Generated {{.GeneratedAt}} by {{.Author}} <span class="mode">{{.Mode}}</span></p>
</div>

{{if .ShowSurveillance}}
<h2>Trade Surveillance</h2>
<div class="charts">{{.SelfMatchGauge}}{{.FlipChart}}</div>
<p>Self-match {{.SelfMatchPct}}, average round trip {{.RoundTripAvg}}.</p>
<h3>SAR memo</h3>
<p>{{.SarSummary}}</p>
<ul>{{range .Evidence}}<li>{{.}}</li>{{end}}</ul>
{{if .Controls}}<h3>Controls</h3><ul>{{range .Controls}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}

{{if .ShowRegime}}
<h2>Market Regime</h2>
<p>Current regime: <strong>{{.CurrentRegime}}</strong></p>
{{.RegimeStrip}}
{{if .Changes}}
<table>
<tr><th>Date</th><th>From</th><th>To</th><th>Significance</th></tr>
{{range .Changes}}<tr><td>{{.Date}}</td><td>{{.From}}</td><td>{{.To}}</td><td>{{.Significance}}</td></tr>{{end}}
</table>
{{end}}
<h3>Hedges</h3>
<table>
<tr><th>Desk</th><th>Recommendation</th><th>Rationale</th></tr>
{{range .Hedges}}<tr><td>{{.Desk}}</td><td>{{.Recommendation}}</td><td>{{.Rationale}}</td></tr>{{end}}
</table>
{{end}}

{{if .ShowRegImpact}}
<h2>Regulatory Impact</h2>
{{if .Desks}}
<table>
<tr><th>Desk</th><th>Impact</th><th>Description</th></tr>
{{range .Desks}}<tr><td>{{.Desk}}</td><td>{{.ImpactLevel}}</td><td>{{.Description}}</td></tr>{{end}}
</table>
{{else}}<p class="muted">No desks impacted.</p>{{end}}
<h3>Implementation checklist</h3>
<table>
<tr><th>Due</th><th>Task</th><th>Owner</th><th>Priority</th><th>Status</th></tr>
{{range .Checklist}}<tr><td>{{.DueDate}}</td><td>{{.Task}}</td><td>{{.Owner}}</td><td>{{.Priority}}</td><td>{{.Status}}</td></tr>{{end}}
</table>
<h3>Capital impact</h3>
<table>
<tr><th></th><th>Before</th><th>After</th></tr>
{{range .Capital}}<tr><td>{{.Label}}</td><td>{{.Before}}</td><td>{{.After}}</td></tr>{{end}}
</table>
<ul>{{range .Assumptions}}<li class="muted">{{.}}</li>{{end}}</ul>
{{end}}

{{if .ShowBrief}}
<h2>Client Brief</h2>
<p>{{.Brief}}</p>
<h3>Talking points</h3>
<ul>{{range .TalkingPoints}}<li>{{.}}</li>{{end}}</ul>
<h3>Cross-sell</h3>
<ul>{{range .CrossSell}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{if .Narratives}}
<h2>Narratives</h2>
{{range .Narratives}}<h3>{{.Section}}</h3><div class="narrative">{{.Text}}</div>{{end}}
{{end}}

<div class="footer muted">For internal use. Surveillance output requires compliance review before any regulatory filing.</div>
</body>
</html>
`
