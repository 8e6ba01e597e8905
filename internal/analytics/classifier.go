package analytics

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/genai"
)

// IntentClassifier decides whether a chat message is a graph request and
// extracts a structured plan from it. Implementations never fail observably:
// anything unparseable degrades to the "other" intent.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) *QueryPlan
}

type llmClassifier struct {
	llm       genai.LLMClient
	maxTokens int32
}

// NewIntentClassifier builds the model-backed classifier.
func NewIntentClassifier(llm genai.LLMClient, maxTokens int32) IntentClassifier {
	return &llmClassifier{llm: llm, maxTokens: maxTokens}
}

const classifierPromptFormat = `Based on the following user message, determine if the user is asking for a data visualization (like a graph or chart).
If the user explicitly asks for a graph or chart, respond with a JSON object indicating "graph_request" intent and extract relevant details.
If the user is NOT asking for a graph or chart, respond with a JSON object indicating "other" intent.

Respond ONLY with the JSON object. Do not include any other text or explanations.

JSON format for 'graph_request' intent:
{
  "intent": "graph_request",
  "graph_type": "bar" | "line" | "pie" | "doughnut" | "area" | "scatter",
  "entity_type": "sport" | "influencer" | "post" | "other",
  "metric": "performance" | "engagement" | "sentiment" | "follower_count" | "other",
  "comparison": "comparison" | "trend" | "distribution" | "correlation" | null,
  "time_period": "weekly" | "monthly" | "all_time" | null,
  "group_by": "sport" | "username" | null,
  "filter": {
    "influencer": "username_if_specified" | null,
    "keyword": "keyword_if_specified" | null,
    "limit": "number_if_specified" | null
  },
  "title_suggestion": "Suggested title for the graph",
  "chart_options": {
    "theme": "light" | "dark" | null,
    "show_legend": boolean | null,
    "show_grid": boolean | null
  }
}

JSON format for 'other' intent:
{
  "intent": "other"
}

Examples:
User: "Make me a bar graph of the performance of different sports"
AI: {"intent": "graph_request", "graph_type": "bar", "entity_type": "sport", "metric": "performance", "comparison": "comparison", "group_by": "sport", "filter": null, "title_suggestion": "Performance of Different Sports", "chart_options": {"theme": "light", "show_legend": true, "show_grid": true}}

User: "Show me a line chart of follower growth trends"
AI: {"intent": "graph_request", "graph_type": "line", "entity_type": "influencer", "metric": "follower_count", "comparison": "trend", "time_period": "monthly", "title_suggestion": "Follower Growth Trends", "chart_options": {"theme": "light", "show_legend": true, "show_grid": true}}

User: "Create a pie chart showing the distribution of sports"
AI: {"intent": "graph_request", "graph_type": "pie", "entity_type": "sport", "metric": "performance", "comparison": "distribution", "title_suggestion": "Sports Distribution", "chart_options": {"theme": "light", "show_legend": true, "show_grid": false}}

User: "Compare the performance of posts by @influencerA with 'running' as opposed to their median"
AI: {"intent": "graph_request", "graph_type": "bar", "entity_type": "post", "metric": "performance", "comparison": "comparison", "group_by": null, "filter": {"influencer": "influencerA", "keyword": "running"}, "title_suggestion": "Engagement of @influencerA's 'running' posts vs. Median", "chart_options": {"theme": "light", "show_legend": true, "show_grid": true}}

User: "Show me the top 5 influencers by follower count as a doughnut chart"
AI: {"intent": "graph_request", "graph_type": "doughnut", "entity_type": "influencer", "metric": "follower_count", "comparison": "distribution", "group_by": "influencer_username", "filter": {"limit": 5}, "title_suggestion": "Top 5 Influencers by Follower Count", "chart_options": {"theme": "light", "show_legend": true, "show_grid": false}}

User: "Who is the best influencer for dog food?"
AI: {"intent": "other"}

User message: "%s"
AI: `

// Classify sends the message to the model at temperature zero and parses
// the structured response. Any model or parse failure falls back to the
// "other" intent so the chat request can still be answered.
func (c *llmClassifier) Classify(ctx context.Context, message string) *QueryPlan {
	prompt := fmt.Sprintf(classifierPromptFormat, message)

	raw, err := c.llm.Generate(ctx, prompt, genai.GenerateOptions{
		MaxTokens:   c.maxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		log.Printf("ERROR: Intent classification model call failed: %v", err)
		return &QueryPlan{Intent: IntentOther}
	}

	raw = stripCodeFence(raw)
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") {
		log.Printf("WARN: Intent response is not valid JSON format or empty, falling back. Raw response: %s", raw)
		return &QueryPlan{Intent: IntentOther}
	}

	plan, err := parsePlan(trimmed)
	if err != nil {
		log.Printf("WARN: Failed to parse intent response, falling back: %v", err)
		return &QueryPlan{Intent: IntentOther}
	}
	return plan
}

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence removes surrounding markdown fences the model sometimes
// adds despite the prompt.
func stripCodeFence(s string) string {
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}
