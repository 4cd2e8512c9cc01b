package prompts

import (
	"strings"
	"testing"
)

// ── Agent Name Constants ──

func TestAgentNameConstants(t *testing.T) {
	names := map[string]string{
		"AgentSurveillance": AgentSurveillance,
		"AgentRegime":       AgentRegime,
		"AgentRegImpact":    AgentRegImpact,
		"AgentClientBrief":  AgentClientBrief,
		"AgentResearch":     AgentResearch,
		"AgentMeetings":     AgentMeetings,
	}
	for label, name := range names {
		if name == "" {
			t.Errorf("%s should not be empty", label)
		}
		if strings.Contains(name, " ") {
			t.Errorf("%s should not contain spaces: %q", label, name)
		}
	}
}

// ── System Prompts ──

func TestSystemPromptFor(t *testing.T) {
	tests := []struct {
		agent string
		want  string
	}{
		{AgentSurveillance, "Surveillance Analyst"},
		{AgentRegime, "Regime Strategist"},
		{AgentRegImpact, "Regulatory Change Analyst"},
		{AgentClientBrief, "Coverage Banker"},
		{AgentResearch, "Senior Equity Research Analyst"},
		{AgentMeetings, "Earnings Call Analyst"},
	}
	for _, tt := range tests {
		got := SystemPromptFor(tt.agent)
		if !strings.Contains(got, tt.want) {
			t.Errorf("SystemPromptFor(%q) missing %q", tt.agent, tt.want)
		}
		if !strings.Contains(got, "## Output Format") {
			t.Errorf("SystemPromptFor(%q) missing output format section", tt.agent)
		}
	}
	if got := SystemPromptFor("unknown"); got != "" {
		t.Errorf("unknown agent should have no prompt, got %q", got)
	}
}

// ── Chain-of-Thought ──

func TestCoTTemplatesEmbedResult(t *testing.T) {
	const payload = `{"marker":"x-42"}`
	templates := map[string]string{
		"surveillance": CoTSurveillance(payload),
		"regime":       CoTRegime(payload),
		"regimpact":    CoTRegImpact("Basel III", payload),
		"brief":        CoTClientBrief("Northwind", payload),
		"research":     CoTResearch(3, "{}", payload),
		"meetings":     CoTMeetings(payload),
	}
	for name, got := range templates {
		if !strings.Contains(got, payload) {
			t.Errorf("%s template does not embed the result", name)
		}
		if !strings.Contains(got, "Think step-by-step") {
			t.Errorf("%s template missing reasoning steps", name)
		}
		if strings.Contains(got, "%!") {
			t.Errorf("%s template has a formatting error: %s", name, got)
		}
	}
	if !strings.Contains(CoTRegImpact("Basel III", payload), "Basel III") {
		t.Error("regimpact template should embed the regulation text")
	}
	if !strings.Contains(CoTClientBrief("Northwind", payload), "Northwind") {
		t.Error("brief template should embed the client name")
	}
	if !strings.Contains(CoTResearch(3, "{}", payload), "3 source document(s)") {
		t.Error("research template should embed the document count")
	}
}
