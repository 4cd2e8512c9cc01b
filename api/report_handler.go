package api

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/marketdesk/internal/agent"
	"github.com/seenimoa/marketdesk/internal/report"
)

// handleReport runs every desk analysis on its sample data and renders
// the combined desk report.
//
//	GET /api/v1/report?format=html|text|json&mode=mock|live&sections=regime,brief
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	cfg := report.DefaultReportConfig()
	switch f := strings.ToLower(q.Get("format")); f {
	case "", "html":
		cfg.Format = report.FormatHTML
	case "text", "json":
		cfg.Format = report.ReportFormat(f)
	default:
		writeError(w, http.StatusBadRequest, "format must be html, text or json")
		return
	}
	if raw := q.Get("sections"); raw != "" {
		sections, err := parseSections(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Sections = sections
	}

	bundle, err := s.desk.RunAll(r.Context(), q.Get("mode"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, agent.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	s.wsHub.Broadcast(WSMessage{
		Type: MsgAnalysisComplete,
		Data: map[string]any{"operation": "report"},
	})

	if cfg.Format == "json" {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: bundle})
		return
	}

	out, err := report.Generate(bundle, cfg)
	if err != nil {
		s.log.Error("report rendering failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	contentType := "text/html; charset=utf-8"
	if cfg.Format == report.FormatText {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(out)); err != nil {
		s.log.Warn("failed to write report", zap.Error(err))
	}
}

func parseSections(raw string) ([]report.ReportSection, error) {
	known := map[report.ReportSection]bool{}
	for _, sec := range report.AllSections() {
		known[sec] = true
	}
	var out []report.ReportSection
	for _, part := range strings.Split(raw, ",") {
		sec := report.ReportSection(strings.ToLower(strings.TrimSpace(part)))
		if sec == "" {
			continue
		}
		if !known[sec] {
			return nil, errors.New("unknown report section: " + string(sec))
		}
		out = append(out, sec)
	}
	return out, nil
}
