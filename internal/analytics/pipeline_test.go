package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/chart"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

type stubClassifier struct{ plan *QueryPlan }

func (s *stubClassifier) Classify(ctx context.Context, message string) *QueryPlan {
	s.plan.Normalize()
	return s.plan
}

type stubSynthesizer struct {
	sql string
	err error
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, plan *QueryPlan, schema, message string) (string, error) {
	return s.sql, s.err
}

type stubChartRenderer struct {
	out string
	err error
}

func (s *stubChartRenderer) Name() string { return "stub" }
func (s *stubChartRenderer) Render(spec *chart.Spec) (string, error) {
	return s.out, s.err
}

type stubRetriever struct {
	out string
	err error
}

func (s *stubRetriever) Search(ctx context.Context, message string) (string, error) {
	return s.out, s.err
}

type stubAnswerer struct {
	content string
	meta    map[string]any
	err     error
}

func (s *stubAnswerer) Answer(ctx context.Context, messages []Message) (string, map[string]any, error) {
	return s.content, s.meta, s.err
}

func graphPlan() *QueryPlan {
	return &QueryPlan{
		Intent:          IntentGraphRequest,
		GraphType:       "bar",
		EntityType:      "sport",
		Metric:          "follower_count",
		TitleSuggestion: "Followers by Sport",
	}
}

func userMessages(content string) []Message {
	return []Message{{Role: "user", Content: content}}
}

func TestPipelineRenderedGraph(t *testing.T) {
	store := &fakeStore{queryResult: sportFollowers()}
	p := NewPipeline(
		&stubClassifier{plan: graphPlan()},
		&stubSynthesizer{sql: "SELECT sport, SUM(follower_count) AS follower_count FROM users GROUP BY sport"},
		store,
		&stubChartRenderer{out: "base64-image-bytes"},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{},
	)

	out, err := p.Run(context.Background(), userMessages("bar chart of followers by sport"))
	require.NoError(t, err)

	assert.Equal(t, StateRendered, out.State)
	assert.Equal(t, "Here is the bar chart you requested:", out.Content)
	assert.Equal(t, map[string]any{
		"type":       "graph",
		"chartImage": "base64-image-bytes",
		"chartType":  "bar",
		"title":      "Followers by Sport",
	}, out.Metadata)
	require.Len(t, store.executedSQL, 1)
}

func TestPipelineOtherIntentSkipsSQL(t *testing.T) {
	store := &fakeStore{}
	p := NewPipeline(
		&stubClassifier{plan: &QueryPlan{Intent: IntentOther}},
		&stubSynthesizer{sql: "SELECT 1"},
		store,
		&stubChartRenderer{out: "unused"},
		&stubRetriever{out: "🔥 Top Pick: @jane_tennis"},
		&stubAnswerer{},
	)

	out, err := p.Run(context.Background(), userMessages("who should promote my brand?"))
	require.NoError(t, err)

	assert.Equal(t, StateAnswered, out.State)
	assert.Equal(t, "🔥 Top Pick: @jane_tennis", out.Content)
	assert.Equal(t, "keyword_search", out.Metadata["responseType"])
	assert.Equal(t, "who should promote my brand?", out.Metadata["searchQuery"])
	assert.Empty(t, store.executedSQL)
}

func TestPipelineRejectsWriteSQL(t *testing.T) {
	store := &fakeStore{}
	p := NewPipeline(
		&stubClassifier{plan: graphPlan()},
		&stubSynthesizer{sql: "DROP TABLE users"},
		store,
		&stubChartRenderer{out: "unused"},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{},
	)

	out, err := p.Run(context.Background(), userMessages("chart please"))
	require.NoError(t, err)

	assert.Equal(t, StatePipelineFailed, out.State)
	assert.Equal(t, true, out.Metadata["graphError"])
	assert.Contains(t, out.Content, "Sorry, I encountered an error while generating the graph")
	assert.NotEmpty(t, out.Metadata["errorMessage"])
	// The rejected statement never reaches the store.
	assert.Empty(t, store.executedSQL)
}

func TestPipelineSynthesisFailure(t *testing.T) {
	p := NewPipeline(
		&stubClassifier{plan: graphPlan()},
		&stubSynthesizer{err: errors.New("SQL generation failed: quota")},
		&fakeStore{},
		&stubChartRenderer{},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{},
	)

	out, err := p.Run(context.Background(), userMessages("chart please"))
	require.NoError(t, err)
	assert.Equal(t, StatePipelineFailed, out.State)
	assert.Equal(t, "SQL generation failed: quota", out.Metadata["errorMessage"])
}

func TestPipelineNoData(t *testing.T) {
	store := &fakeStore{queryResult: &database.ResultSet{Columns: []string{"sport", "follower_count"}}}
	p := NewPipeline(
		&stubClassifier{plan: graphPlan()},
		&stubSynthesizer{sql: "SELECT sport, follower_count FROM users WHERE 1 = 0"},
		store,
		&stubChartRenderer{out: "unused"},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{},
	)

	out, err := p.Run(context.Background(), userMessages("chart of nothing"))
	require.NoError(t, err)

	assert.Equal(t, StateNoData, out.State)
	assert.Equal(t, map[string]any{"noData": true}, out.Metadata)
	assert.Contains(t, out.Content, "couldn't find data")
}

func TestPipelineTextFallback(t *testing.T) {
	store := &fakeStore{queryResult: sportFollowers()}
	p := NewPipeline(
		&stubClassifier{plan: graphPlan()},
		&stubSynthesizer{sql: "SELECT sport, follower_count FROM users"},
		store,
		&stubChartRenderer{err: errors.New("no renderer available")},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{},
	)

	out, err := p.Run(context.Background(), userMessages("chart please"))
	require.NoError(t, err)

	assert.Equal(t, StateTextFallback, out.State)
	assert.Equal(t, "text_chart", out.Metadata["type"])
	assert.Equal(t, true, out.Metadata["chartError"])
	assert.Equal(t, "bar", out.Metadata["chartType"])
	assert.Equal(t, "Followers by Sport", out.Metadata["title"])
	assert.Contains(t, out.Content, "but here's your data")
	assert.Contains(t, out.Content, "Soccer")
}

func TestPipelineAnswerFallbackChain(t *testing.T) {
	p := NewPipeline(
		&stubClassifier{plan: &QueryPlan{Intent: IntentOther}},
		&stubSynthesizer{},
		&fakeStore{},
		&stubChartRenderer{},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{content: "generated answer", meta: map[string]any{"responseType": "generated"}},
	)

	out, err := p.Run(context.Background(), userMessages("tell me something"))
	require.NoError(t, err)
	assert.Equal(t, StateAnswered, out.State)
	assert.Equal(t, "generated answer", out.Content)
}

func TestPipelineStaticSuggestionWhenEverythingFails(t *testing.T) {
	p := NewPipeline(
		&stubClassifier{plan: &QueryPlan{Intent: IntentOther}},
		&stubSynthesizer{},
		&fakeStore{},
		&stubChartRenderer{},
		&stubRetriever{err: ErrNoMatches},
		&stubAnswerer{err: errors.New("unavailable")},
	)

	out, err := p.Run(context.Background(), userMessages("obscure question"))
	require.NoError(t, err)
	assert.Equal(t, StateAnswered, out.State)
	assert.Equal(t, "search_fallback", out.Metadata["responseType"])
	assert.Equal(t, "obscure question", out.Metadata["originalQuery"])
	assert.Contains(t, out.Content, "Let me try a different approach")
}

func TestPipelineRequiresMessages(t *testing.T) {
	p := NewPipeline(&stubClassifier{plan: &QueryPlan{}}, &stubSynthesizer{}, &fakeStore{}, &stubChartRenderer{}, &stubRetriever{}, &stubAnswerer{})
	_, err := p.Run(context.Background(), nil)
	require.Error(t, err)
}
