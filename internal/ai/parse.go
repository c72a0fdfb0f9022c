package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// Fixed fallback values returned when the upstream call fails or its
// response cannot be parsed. Degrading to these is a required behavior, not
// best effort.
const (
	fallbackSummary          = "Could not generate summary at this time."
	fallbackSuggestion       = "Could not generate suggestions at this time."
	suggestionPlaceholder    = "Let me think about that..."
	fallbackAnalysisScore    = 50
	fallbackAnalysisReason   = "Could not analyze compatibility at this time."
	undeterminedMatchReasons = "Compatibility factors could not be determined"
)

func fallbackSuggestions(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fallbackSuggestion
	}
	return out
}

func fallbackInsights() []Insight {
	out := make([]Insight, 3)
	for i := range out {
		out[i] = Insight{
			Title:   "Insights Unavailable",
			Content: "Could not generate insights at this time.",
		}
	}
	return out
}

func fallbackAnalysis() MatchAnalysis {
	return MatchAnalysis{
		Score:   fallbackAnalysisScore,
		Reasons: []string{fallbackAnalysisReason},
	}
}

// parseSuggestions splits a completion on the "###" separator the prompt
// asked for and pads up to n entries when the model returned fewer.
func parseSuggestions(text string, n int) []string {
	var suggestions []string
	for _, part := range strings.Split(text, "###") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			suggestions = append(suggestions, trimmed)
		}
	}
	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	for len(suggestions) < n {
		suggestions = append(suggestions, suggestionPlaceholder)
	}
	return suggestions
}

var (
	blockSplitRe = regexp.MustCompile(`\n\s*\n`)
	insightRe    = regexp.MustCompile(`(?s)Title\s*\d*:\s*(.+?)\s*\n\s*Content\s*\d*:\s*(.+)`)
	scoreRe      = regexp.MustCompile(`(?i)Score:\s*(\d+)`)
	reasonRe     = regexp.MustCompile(`(?m)^\s*\d+\.\s*(.+?)\s*$`)
)

// parseInsights extracts up to three Title/Content pairs from the blank-line
// separated blocks the prompt requested, padding with placeholders.
func parseInsights(text string) []Insight {
	var insights []Insight
	for _, block := range blockSplitRe.Split(text, -1) {
		match := insightRe.FindStringSubmatch(block)
		if match == nil {
			continue
		}
		insights = append(insights, Insight{
			Title:   strings.TrimSpace(match[1]),
			Content: strings.TrimSpace(match[2]),
		})
		if len(insights) == 3 {
			break
		}
	}
	for len(insights) < 3 {
		insights = append(insights, Insight{
			Title:   "Insight Not Available",
			Content: "We could not generate this insight at the moment.",
		})
	}
	return insights
}

// parseMatchAnalysis extracts the score and numbered reasons from a freeform
// compatibility analysis. A missing score defaults to 50; the score is
// clamped to [0, 100].
func parseMatchAnalysis(text string) MatchAnalysis {
	score := fallbackAnalysisScore
	if match := scoreRe.FindStringSubmatch(text); match != nil {
		if parsed, err := strconv.Atoi(match[1]); err == nil {
			score = parsed
		}
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var reasons []string
	if _, after, found := strings.Cut(text, "Reasons:"); found {
		for _, match := range reasonRe.FindAllStringSubmatch(after, -1) {
			reasons = append(reasons, match[1])
		}
	}
	if len(reasons) == 0 {
		reasons = []string{undeterminedMatchReasons}
	}

	return MatchAnalysis{Score: score, Reasons: reasons}
}
