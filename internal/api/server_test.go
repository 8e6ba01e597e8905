package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/analytics"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/chart"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/config"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

type fakeStore struct {
	results map[string]*database.ResultSet
	pingErr error
}

func (f *fakeStore) QueryReadOnly(ctx context.Context, sqlText string, args ...any) (*database.ResultSet, error) {
	return &database.ResultSet{
		Columns: []string{"sport", "follower_count"},
		Rows: []map[string]any{
			{"sport": "Soccer", "follower_count": int64(125000)},
			{"sport": "Tennis", "follower_count": int64(90000)},
		},
	}, nil
}

func (f *fakeStore) NamedQuery(ctx context.Context, name string, args ...any) (*database.ResultSet, error) {
	if rs, ok := f.results[name]; ok {
		return rs, nil
	}
	return &database.ResultSet{}, nil
}

func (f *fakeStore) SchemaContext(ctx context.Context) string { return "CREATE TABLE users (...);" }
func (f *fakeStore) Ping(ctx context.Context) error           { return f.pingErr }
func (f *fakeStore) Close() error                             { return nil }

type fixedClassifier struct{ plan *analytics.QueryPlan }

func (c *fixedClassifier) Classify(ctx context.Context, message string) *analytics.QueryPlan {
	c.plan.Normalize()
	return c.plan
}

type fixedSynthesizer struct{ sql string }

func (s *fixedSynthesizer) Synthesize(ctx context.Context, plan *analytics.QueryPlan, schema, message string) (string, error) {
	return s.sql, nil
}

type fixedRenderer struct{ out string }

func (r *fixedRenderer) Name() string                            { return "fixed" }
func (r *fixedRenderer) Render(spec *chart.Spec) (string, error) { return r.out, nil }

type noMatchRetriever struct{}

func (noMatchRetriever) Search(ctx context.Context, message string) (string, error) {
	return "", analytics.ErrNoMatches
}

type fixedAnswerer struct{}

func (fixedAnswerer) Answer(ctx context.Context, messages []analytics.Message) (string, map[string]any, error) {
	return "", nil, errors.New("unavailable")
}

func testServer(store *fakeStore) *Server {
	pipeline := analytics.NewPipeline(
		&fixedClassifier{plan: &analytics.QueryPlan{
			Intent:          analytics.IntentGraphRequest,
			GraphType:       "bar",
			EntityType:      "sport",
			Metric:          "follower_count",
			TitleSuggestion: "Followers by Sport",
		}},
		&fixedSynthesizer{sql: "SELECT sport, follower_count FROM users"},
		store,
		&fixedRenderer{out: "img-bytes"},
		noMatchRetriever{},
		fixedAnswerer{},
	)
	return NewServer(pipeline, store, config.ServerConfig{
		ListenAddr:     ":0",
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

func TestChatEndpoint(t *testing.T) {
	srv := testServer(&fakeStore{})
	body := `{"messages": [{"role": "user", "content": "bar chart of followers by sport"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var resp struct {
		Content  string         `json:"content"`
		Metadata map[string]any `json:"_metadata"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Here is the bar chart you requested:", resp.Content)
	assert.Equal(t, "graph", resp.Metadata["type"])
	assert.Equal(t, "img-bytes", resp.Metadata["chartImage"])
	assert.Equal(t, "bar", resp.Metadata["chartType"])
	assert.Equal(t, "Followers by Sport", resp.Metadata["title"])
}

func TestChatEndpointRejectsEmptyMessages(t *testing.T) {
	srv := testServer(&fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages": []}`))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Messages array required")
}

func TestChatEndpointRejectsMalformedBody(t *testing.T) {
	srv := testServer(&fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
}

func TestListInfluencers(t *testing.T) {
	store := &fakeStore{results: map[string]*database.ResultSet{
		"all_influencers": {
			Columns: []string{"user_id", "name", "username"},
			Rows: []map[string]any{
				{"user_id": "uid-1", "name": "Jane", "username": "jane_tennis"},
			},
		},
	}}
	srv := testServer(store)
	req := httptest.NewRequest(http.MethodGet, "/api/influencers", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane_tennis")
}

func TestGetInfluencerNotFound(t *testing.T) {
	srv := testServer(&fakeStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/influencers/nobody", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Influencer not found")
}

func TestGetInfluencer(t *testing.T) {
	store := &fakeStore{results: map[string]*database.ResultSet{
		"influencer_by_username": {
			Columns: []string{"user_id", "username", "follower_count"},
			Rows: []map[string]any{
				{"user_id": "uid-1", "username": "jane_tennis", "follower_count": int64(90000)},
			},
		},
		"top_posts_by_user": {
			Columns: []string{"post_id", "title", "content", "view_count", "likes", "created_at"},
			Rows: []map[string]any{
				{"post_id": "p1", "title": "Match point", "content": "Great win", "view_count": int64(10000), "likes": int64(500)},
			},
		},
	}}
	srv := testServer(store)
	req := httptest.NewRequest(http.MethodGet, "/api/influencers/jane_tennis", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"jane_tennis"`)
	assert.Contains(t, rec.Body.String(), `"top_posts"`)
	assert.Contains(t, rec.Body.String(), `"engagement_rate":5`)
}

func TestHealth(t *testing.T) {
	srv := testServer(&fakeStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHealthDegraded(t *testing.T) {
	srv := testServer(&fakeStore{pingErr: errors.New("connection refused")})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}
