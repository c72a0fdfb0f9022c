package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestions(t *testing.T) {
	text := "Sounds great, count me in!\n###\nWhat time works for you?\n###\nLet me check my calendar."

	suggestions := parseSuggestions(text, 3)
	assert.Equal(t, []string{
		"Sounds great, count me in!",
		"What time works for you?",
		"Let me check my calendar.",
	}, suggestions)
}

func TestParseSuggestionsPadsShortOutput(t *testing.T) {
	suggestions := parseSuggestions("Only one idea here", 3)
	assert.Equal(t, []string{
		"Only one idea here",
		suggestionPlaceholder,
		suggestionPlaceholder,
	}, suggestions)
}

func TestParseSuggestionsTruncatesExcess(t *testing.T) {
	suggestions := parseSuggestions("a###b###c###d", 2)
	assert.Equal(t, []string{"a", "b"}, suggestions)
}

func TestParseInsights(t *testing.T) {
	text := `Title 1: Growing Network
Content 1: You added three connections this week.

Title 2: Active Conversations
Content 2: Your message volume doubled.

Title 3: Interest Alignment
Content 3: Most new connections share your interest in DeFi.`

	insights := parseInsights(text)
	assert.Equal(t, []Insight{
		{Title: "Growing Network", Content: "You added three connections this week."},
		{Title: "Active Conversations", Content: "Your message volume doubled."},
		{Title: "Interest Alignment", Content: "Most new connections share your interest in DeFi."},
	}, insights)
}

func TestParseInsightsPadsMissingBlocks(t *testing.T) {
	insights := parseInsights("Title: Lone Insight\nContent: Just the one.")
	assert.Equal(t, "Lone Insight", insights[0].Title)
	assert.Equal(t, "Insight Not Available", insights[1].Title)
	assert.Equal(t, "Insight Not Available", insights[2].Title)
	assert.Len(t, insights, 3)
}

func TestParseInsightsGarbage(t *testing.T) {
	insights := parseInsights("the model rambled with no structure at all")
	for _, insight := range insights {
		assert.Equal(t, "Insight Not Available", insight.Title)
	}
}

func TestParseMatchAnalysis(t *testing.T) {
	text := `Score: 82
Reasons:
1. Both follow DeFi protocols closely
2. Overlapping interest in NFT marketplaces
3. Similar activity patterns`

	analysis := parseMatchAnalysis(text)
	assert.Equal(t, 82, analysis.Score)
	assert.Equal(t, []string{
		"Both follow DeFi protocols closely",
		"Overlapping interest in NFT marketplaces",
		"Similar activity patterns",
	}, analysis.Reasons)
}

func TestParseMatchAnalysisDefaultsAndClamps(t *testing.T) {
	analysis := parseMatchAnalysis("no structure here")
	assert.Equal(t, 50, analysis.Score)
	assert.Equal(t, []string{undeterminedMatchReasons}, analysis.Reasons)

	analysis = parseMatchAnalysis("Score: 250\nReasons:\n1. Too enthusiastic")
	assert.Equal(t, 100, analysis.Score)
}

func TestFallbacks(t *testing.T) {
	assert.Len(t, fallbackSuggestions(2), 2)
	assert.Len(t, fallbackInsights(), 3)

	analysis := fallbackAnalysis()
	assert.Equal(t, fallbackAnalysisScore, analysis.Score)
	assert.Equal(t, []string{fallbackAnalysisReason}, analysis.Reasons)
}
