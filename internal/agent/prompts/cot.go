package prompts

import "fmt"

// ── Chain-of-Thought Templates ──
//
// Each template wraps an already-computed, schema-checked result so the
// model narrates the numbers instead of producing new ones.

// CoTSurveillance asks for a narrative over a surveillance result.
func CoTSurveillance(resultJSON string) string {
	return fmt.Sprintf(`Review this surveillance triage result:

%s

Think step-by-step:

1. **Metrics**: What do the self-match rate and round-trip average indicate?
2. **Accounts**: Which accounts dominate flip activity?
3. **Evidence**: Which evidence lines are strongest?
4. **Controls**: Which recommended controls should come first?

Important: use only the figures above. Never estimate or fabricate numbers.`, resultJSON)
}

// CoTRegime asks for a narrative over a regime detection result.
func CoTRegime(resultJSON string) string {
	return fmt.Sprintf(`Review this regime detection result:

%s

Think step-by-step:

1. **Timeline**: How has the regime evolved?
2. **Changes**: Which transitions matter most, and why?
3. **Hedges**: How should each desk act on the recommendations?`, resultJSON)
}

// CoTRegImpact asks for a narrative over a regulatory impact assessment.
func CoTRegImpact(text, resultJSON string) string {
	return fmt.Sprintf(`Regulatory text:

%s

Assessment:

%s

Think step-by-step:

1. **Scope**: Which desks are affected and how severely?
2. **Plan**: Which checklist items are most urgent?
3. **Capital**: What does the template imply for capital planning?`, text, resultJSON)
}

// CoTClientBrief asks for a meeting note over a client brief.
func CoTClientBrief(clientName, resultJSON string) string {
	return fmt.Sprintf(`Prepare a meeting note for %s from this brief:

%s

Think step-by-step:

1. **Objective**: What does the client want from this meeting?
2. **Story**: Which talking points support that objective?
3. **Opportunity**: Which cross-sell idea fits best?`, clientName, resultJSON)
}

// CoTResearch asks for a research note built on a drafted one.
func CoTResearch(files int, style, draftJSON string) string {
	return fmt.Sprintf(`Write a research note from %d source document(s) using this style guide:

%s

Drafted note and citations:

%s

Think step-by-step:

1. **Thesis**: What is the investment case in one sentence?
2. **Evidence**: Which KPIs and quotes support it, and where are they cited?
3. **Risks**: What could break the thesis?
4. **Call**: What rating and price target follow?

Return only the markdown note.`, files, style, draftJSON)
}

// CoTMeetings asks for a narrative over an earnings-call analysis.
func CoTMeetings(resultJSON string) string {
	return fmt.Sprintf(`Review this earnings call analysis:

%s

Think step-by-step:

1. **Results**: What did the company report against guidance?
2. **Tone**: How confident was management, and where did they hedge?
3. **Follow-ups**: What should analysts ask next?`, resultJSON)
}
