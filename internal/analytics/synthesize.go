package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/genai"
)

// SQLSynthesizer turns a query plan into a single read-only SELECT
// statement. The output is untrusted and always revalidated before
// execution.
type SQLSynthesizer interface {
	Synthesize(ctx context.Context, plan *QueryPlan, schema string, message string) (string, error)
}

type llmSynthesizer struct {
	llm       genai.LLMClient
	maxTokens int32
}

// NewSQLSynthesizer builds the two-tier synthesizer: allow-listed templates
// first, model generation as the fallback for plans no template covers.
func NewSQLSynthesizer(llm genai.LLMClient, maxTokens int32) SQLSynthesizer {
	return &llmSynthesizer{llm: llm, maxTokens: maxTokens}
}

const synthesizerPromptFormat = `You are a SQL query generator. Based on the following database schema and user's request for graph data, generate a PostgreSQL SELECT query.
The query must be read-only (no INSERT, UPDATE, DELETE, DROP, CREATE, ALTER, TRUNCATE, GRANT, REVOKE).
The output should be ONLY the SQL query, no explanations or markdown fences.

Database Schema:
%s

User's Graph Request Details:
Entity Type: %s
Metric: %s
Chart Type: %s
Comparison: %s
Time Period: %s
%s%s
Generate SQL query for: "%s"
SQL:`

func (s *llmSynthesizer) Synthesize(ctx context.Context, plan *QueryPlan, schema string, message string) (string, error) {
	if name, sql, ok := templateSQL(plan); ok {
		log.Printf("INFO: Using query template '%s' for graph request.", name)
		return sql, nil
	}

	comparison := plan.Comparison
	if comparison == "" {
		comparison = "none"
	}
	timePeriod := plan.TimePeriod
	if timePeriod == "" {
		timePeriod = "all_time"
	}
	filterLine := ""
	if plan.Filter != nil {
		if encoded, err := json.Marshal(plan.Filter); err == nil {
			filterLine = fmt.Sprintf("Filter: %s\n", encoded)
		}
	}
	groupByLine := ""
	if plan.GroupBy != "" {
		groupByLine = fmt.Sprintf("Group By: %s\n", plan.GroupBy)
	}

	prompt := fmt.Sprintf(synthesizerPromptFormat,
		schema, plan.EntityType, plan.Metric, plan.GraphType,
		comparison, timePeriod, filterLine, groupByLine, message)

	raw, err := s.llm.Generate(ctx, prompt, genai.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		return "", fmt.Errorf("SQL generation failed: %w", err)
	}

	sql := strings.TrimSpace(stripCodeFence(raw))
	sql = strings.TrimSuffix(sql, ";")
	if sql == "" {
		return "", fmt.Errorf("SQL generation returned an empty query")
	}
	log.Printf("INFO: Generated SQL: %s", sql)
	return sql, nil
}
