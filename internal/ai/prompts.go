package ai

import (
	"fmt"
	"strings"

	"github.com/stayx/backend/internal/models"
)

func formatConversation(messages []ChatMessage) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

func summarizePrompt(messages []ChatMessage, maxLength int) string {
	return fmt.Sprintf(`Summarize the following conversation in a concise way.
Focus on the main topics and important points discussed.
Keep the summary under %d characters.

Conversation:
%s

Summary:`, maxLength, formatConversation(messages))
}

func suggestPrompt(messages []ChatMessage, contextNote string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following conversation%s, suggest %d different possible responses.\n",
		map[bool]string{true: " and context", false: ""}[contextNote != ""], n)
	b.WriteString("Make the responses engaging, helpful, and conversational. Each response should be different in tone and approach.\n")
	b.WriteString("Keep responses concise (1-2 sentences each).\n\n")
	if contextNote != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", contextNote)
	}
	fmt.Fprintf(&b, "Conversation:\n%s\n\n", formatConversation(messages))
	fmt.Fprintf(&b, "%d suggested responses (separate each with \"###\"):", n)
	return b.String()
}

func insightsPrompt(snapshot UserSnapshot, timeframe string) string {
	var data strings.Builder
	if len(snapshot.Interests) > 0 {
		fmt.Fprintf(&data, "interests: %s\n", strings.Join(snapshot.Interests, ", "))
	}
	if len(snapshot.RecentActivity) > 0 {
		fmt.Fprintf(&data, "recent activity: %s\n", strings.Join(snapshot.RecentActivity, ", "))
	}
	fmt.Fprintf(&data, "connections: %d\n", snapshot.Connections)
	fmt.Fprintf(&data, "messages: %d", snapshot.MessageCount)

	return fmt.Sprintf(`Based on the following user data, generate 3 insightful observations or recommendations for the user.
Each insight should have a short title and a brief explanation or recommendation (1-2 sentences).
The insights should be relevant to a crypto/tech social platform user for the past %s.

User data:
%s

Generate 3 insights with titles and content in this format:
Title 1: [short title]
Content 1: [brief explanation]

Title 2: [short title]
Content 2: [brief explanation]

Title 3: [short title]
Content 3: [brief explanation]`, timeframe, data.String())
}

// formatProfile renders the profile fields relevant to compatibility.
// Contact details and the photo URL stay out of the prompt.
func formatProfile(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "username: %s\n", u.Username)
	fmt.Fprintf(&b, "display name: %s\n", u.DisplayName)
	if u.Bio != "" {
		fmt.Fprintf(&b, "bio: %s\n", u.Bio)
	}
	if len(u.Interests) > 0 {
		fmt.Fprintf(&b, "interests: %s\n", strings.Join(u.Interests, ", "))
	}
	fmt.Fprintf(&b, "level: %d\n", u.Level)
	fmt.Fprintf(&b, "achievement points: %d", u.AchievementPoints)
	return b.String()
}

func matchAnalysisPrompt(self, candidate *models.User) string {
	return fmt.Sprintf(`Analyze these two user profiles from a crypto/tech social platform and determine their compatibility.
Calculate a match percentage score (0-100) and provide 2-3 specific reasons for this score.

User Profile:
%s

Potential Connection Profile:
%s

Respond in this format:
Score: [0-100]

Reasons:
1. [First reason]
2. [Second reason]
3. [Optional third reason]`, formatProfile(self), formatProfile(candidate))
}
