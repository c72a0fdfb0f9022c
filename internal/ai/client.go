package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/stayx/backend/internal/logger"
	"github.com/stayx/backend/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// ChatMessage is one turn of a conversation handed to the text generator.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Insight is one AI-generated observation about a user's activity.
type Insight struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// MatchAnalysis is the structured result extracted from a freeform
// compatibility analysis.
type MatchAnalysis struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// UserSnapshot is the activity summary fed into insight generation.
type UserSnapshot struct {
	Interests      []string `json:"interests,omitempty"`
	RecentActivity []string `json:"recent_activity,omitempty"`
	Connections    int      `json:"connections"`
	MessageCount   int      `json:"message_count"`
}

// Client wraps the hosted generative-language API. Every feature method
// recovers upstream failures locally: the returned value is always usable,
// falling back to a fixed default when the call or the response parsing
// fails, and the error is informational only.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewClient builds a client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gemini-1.0-pro"
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// generate sends one prompt and returns the completion text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"safetySettings": []map[string]string{
			{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_MEDIUM_AND_ABOVE"},
			{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_MEDIUM_AND_ABOVE"},
			{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_MEDIUM_AND_ABOVE"},
			{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_MEDIUM_AND_ABOVE"},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling generative api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generative api returned status %d", resp.StatusCode)
	}

	text := gjson.GetBytes(data, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("generative api returned no completion")
	}
	return text.String(), nil
}

// SummarizeThread produces a short summary of a conversation.
func (c *Client) SummarizeThread(ctx context.Context, messages []ChatMessage, maxLength int) (string, error) {
	if maxLength <= 0 {
		maxLength = 150
	}

	text, err := c.generate(ctx, summarizePrompt(messages, maxLength))
	if err != nil {
		logger.Log.Warnw("thread summarization failed, using fallback", "error", err)
		return fallbackSummary, err
	}
	return strings.TrimSpace(text), nil
}

// SuggestResponses proposes n possible replies to a conversation.
func (c *Client) SuggestResponses(ctx context.Context, messages []ChatMessage, contextNote string, n int) ([]string, error) {
	if n <= 0 {
		n = 3
	}

	text, err := c.generate(ctx, suggestPrompt(messages, contextNote, n))
	if err != nil {
		logger.Log.Warnw("response suggestion failed, using fallback", "error", err)
		return fallbackSuggestions(n), err
	}
	return parseSuggestions(text, n), nil
}

// GenerateInsights produces three observations about a user's recent activity.
func (c *Client) GenerateInsights(ctx context.Context, snapshot UserSnapshot, timeframe string) ([]Insight, error) {
	if timeframe == "" {
		timeframe = "week"
	}

	text, err := c.generate(ctx, insightsPrompt(snapshot, timeframe))
	if err != nil {
		logger.Log.Warnw("insight generation failed, using fallback", "error", err)
		return fallbackInsights(), err
	}
	return parseInsights(text), nil
}

// AnalyzeConnectionMatch scores the compatibility of two profiles with
// supporting reasons.
func (c *Client) AnalyzeConnectionMatch(ctx context.Context, self, candidate *models.User) (MatchAnalysis, error) {
	text, err := c.generate(ctx, matchAnalysisPrompt(self, candidate))
	if err != nil {
		logger.Log.Warnw("match analysis failed, using fallback", "error", err)
		return fallbackAnalysis(), err
	}
	return parseMatchAnalysis(text), nil
}
