package analytics

import (
	"context"
	"errors"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/genai"
)

// stubLLM returns canned responses in order, or a fixed error.
type stubLLM struct {
	responses []string
	err       error
	prompts   []string
	opts      []genai.GenerateOptions
	calls     int
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts genai.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return "", s.err
	}
	if s.calls >= len(s.responses) {
		return "", errors.New("stub exhausted")
	}
	out := s.responses[s.calls]
	s.calls++
	return out, nil
}

func (s *stubLLM) IsAPIKeyValid(ctx context.Context) error { return nil }
func (s *stubLLM) Close() error                            { return nil }

// fakeStore serves canned result sets and records what was asked of it.
type fakeStore struct {
	results      map[string]*database.ResultSet
	queryResult  *database.ResultSet
	queryErr     error
	schema       string
	executedSQL  []string
	namedQueries []string
	namedArgs    [][]any
}

func (f *fakeStore) QueryReadOnly(ctx context.Context, sqlText string, args ...any) (*database.ResultSet, error) {
	f.executedSQL = append(f.executedSQL, sqlText)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.queryResult != nil {
		return f.queryResult, nil
	}
	return &database.ResultSet{}, nil
}

func (f *fakeStore) NamedQuery(ctx context.Context, name string, args ...any) (*database.ResultSet, error) {
	f.namedQueries = append(f.namedQueries, name)
	f.namedArgs = append(f.namedArgs, args)
	if rs, ok := f.results[name]; ok {
		return rs, nil
	}
	return &database.ResultSet{}, nil
}

func (f *fakeStore) SchemaContext(ctx context.Context) string {
	if f.schema != "" {
		return f.schema
	}
	return "CREATE TABLE users (...);"
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }
