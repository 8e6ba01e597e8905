package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyGraphRequest(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"intent": "graph_request", "graph_type": "pie", "entity_type": "sport", "metric": "follower_count", "comparison": "distribution", "title_suggestion": "Followers by Sport", "chart_options": {"theme": "dark", "show_legend": true, "show_grid": false}}`,
	}}
	c := NewIntentClassifier(llm, 200)

	plan := c.Classify(context.Background(), "pie chart of followers by sport")
	assert.Equal(t, IntentGraphRequest, plan.Intent)
	assert.Equal(t, "pie", plan.GraphType)
	assert.Equal(t, "sport", plan.EntityType)
	assert.Equal(t, "follower_count", plan.Metric)
	assert.Equal(t, "Followers by Sport", plan.TitleSuggestion)
	assert.Equal(t, "dark", plan.Theme())
	assert.True(t, plan.ShowLegend())
	assert.False(t, plan.ShowGrid())
}

func TestClassifyUsesZeroTemperature(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"intent": "graph_request", "graph_type": "bar"}`,
	}}
	c := NewIntentClassifier(llm, 200)

	c.Classify(context.Background(), "bar chart of sports")
	require.Len(t, llm.opts, 1)
	assert.Equal(t, float32(0), llm.opts[0].Temperature)
	assert.Equal(t, int32(200), llm.opts[0].MaxTokens)
}

func TestClassifyIsStableAcrossRepeats(t *testing.T) {
	response := `{"intent": "graph_request", "graph_type": "line", "entity_type": "influencer", "metric": "view_count"}`
	llm := &stubLLM{responses: []string{response, response}}
	c := NewIntentClassifier(llm, 200)

	first := c.Classify(context.Background(), "views over time for top influencers")
	second := c.Classify(context.Background(), "views over time for top influencers")
	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, first.GraphType, second.GraphType)
	assert.Equal(t, first.EntityType, second.EntityType)
	assert.Equal(t, first.Metric, second.Metric)
	require.Len(t, llm.opts, 2)
	assert.Equal(t, llm.opts[0], llm.opts[1])
}

func TestClassifyStripsCodeFence(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"```json\n{\"intent\": \"graph_request\", \"graph_type\": \"bar\"}\n```",
	}}
	c := NewIntentClassifier(llm, 200)

	plan := c.Classify(context.Background(), "bar graph please")
	assert.Equal(t, IntentGraphRequest, plan.Intent)
	assert.Equal(t, "bar", plan.GraphType)
}

func TestClassifyFallsBackOnGarbage(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"Prose instead of JSON", "Sure! Here is the chart you asked for."},
		{"Truncated JSON", `{"intent": "graph_request", "graph_ty`},
		{"Empty response", ""},
		{"Malformed JSON", `{"intent": graph_request}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewIntentClassifier(&stubLLM{responses: []string{tt.response}}, 200)
			plan := c.Classify(context.Background(), "anything")
			assert.Equal(t, IntentOther, plan.Intent)
		})
	}
}

func TestClassifyFallsBackOnModelError(t *testing.T) {
	c := NewIntentClassifier(&stubLLM{err: errors.New("quota exceeded")}, 200)
	plan := c.Classify(context.Background(), "make me a chart")
	assert.Equal(t, IntentOther, plan.Intent)
}

func TestClassifyToleratesQuotedLimit(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"intent": "graph_request", "graph_type": "doughnut", "entity_type": "influencer", "metric": "follower_count", "filter": {"limit": "5"}}`,
	}}
	c := NewIntentClassifier(llm, 200)

	plan := c.Classify(context.Background(), "top 5 influencers as doughnut")
	require.NotNil(t, plan.Filter)
	assert.True(t, plan.Filter.Limit.Set)
	assert.Equal(t, 5, plan.Filter.Limit.Value)
}

func TestClassifyToleratesJunkLimit(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"intent": "graph_request", "filter": {"limit": "lots"}}`,
	}}
	c := NewIntentClassifier(llm, 200)

	plan := c.Classify(context.Background(), "show me lots of influencers")
	assert.Equal(t, IntentGraphRequest, plan.Intent)
	require.NotNil(t, plan.Filter)
	assert.False(t, plan.Filter.Limit.Set)
}

func TestNormalizeDefaults(t *testing.T) {
	plan := &QueryPlan{Intent: IntentGraphRequest}
	plan.Normalize()
	assert.Equal(t, "bar", plan.GraphType)
	assert.Equal(t, "Generated Graph", plan.TitleSuggestion)
	assert.Equal(t, "light", plan.Theme())
	assert.True(t, plan.ShowLegend())
	assert.True(t, plan.ShowGrid())
	assert.Equal(t, "VALUE", plan.DatasetLabel())

	plan.Metric = "follower_count"
	assert.Equal(t, "FOLLOWER COUNT", plan.DatasetLabel())
}
