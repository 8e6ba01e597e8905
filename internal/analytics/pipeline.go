package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/chart"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
)

// Message is one turn of the chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the terminal state a pipeline run ends in.
type State string

const (
	StateRendered       State = "rendered"
	StateTextFallback   State = "text_fallback"
	StateNoData         State = "no_data"
	StatePipelineFailed State = "pipeline_failed"
	StateAnswered       State = "answered"
)

// Outcome is the user-facing result of a pipeline run.
type Outcome struct {
	State    State
	Content  string
	Metadata map[string]any
}

// Pipeline sequences classification, synthesis, validation, execution,
// mapping, and rendering for one chat request. Stages run strictly in
// order; concurrent requests get independent runs sharing only the pooled
// store underneath.
type Pipeline struct {
	classifier  IntentClassifier
	synthesizer SQLSynthesizer
	store       database.Store
	renderer    chart.Renderer
	retriever   Retriever
	answerer    Answerer
}

func NewPipeline(classifier IntentClassifier, synthesizer SQLSynthesizer, store database.Store, renderer chart.Renderer, retriever Retriever, answerer Answerer) *Pipeline {
	return &Pipeline{
		classifier:  classifier,
		synthesizer: synthesizer,
		store:       store,
		renderer:    renderer,
		retriever:   retriever,
		answerer:    answerer,
	}
}

// Run executes the pipeline for a chat transcript. Every failure is
// converted to a structured outcome; the error return is reserved for an
// empty transcript, which the API layer rejects before calling Run.
func (p *Pipeline) Run(ctx context.Context, messages []Message) (*Outcome, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages array required")
	}
	lastMessage := messages[len(messages)-1].Content

	plan := p.classifier.Classify(ctx, lastMessage)

	if plan.Intent == IntentGraphRequest {
		return p.runGraph(ctx, plan, lastMessage), nil
	}
	return p.runAnswer(ctx, messages, lastMessage), nil
}

// runGraph walks synthesize -> validate -> execute -> map -> render. The
// first three failures share one user-facing surface; only mapping
// emptiness and render fallback get distinct outcomes.
func (p *Pipeline) runGraph(ctx context.Context, plan *QueryPlan, lastMessage string) *Outcome {
	schema := p.store.SchemaContext(ctx)

	sql, err := p.synthesizer.Synthesize(ctx, plan, schema, lastMessage)
	if err != nil {
		return graphFailure(err)
	}

	if !ValidateReadOnlySQL(sql) {
		log.Printf("WARN: Generated SQL rejected by read-only validation: %s", sql)
		return graphFailure(errors.New("generated query failed read-only validation"))
	}

	rs, err := p.store.QueryReadOnly(ctx, sql)
	if err != nil {
		return graphFailure(err)
	}

	spec, err := MapChart(rs, plan)
	if err != nil {
		return graphFailure(err)
	}
	if len(spec.Labels) == 0 {
		return &Outcome{
			State:    StateNoData,
			Content:  "I couldn't find data to generate a graph for your request. Please try a different query or ensure data exists.",
			Metadata: map[string]any{"noData": true},
		}
	}

	image, err := p.renderer.Render(spec)
	if err == nil {
		return &Outcome{
			State:   StateRendered,
			Content: fmt.Sprintf("Here is the %s chart you requested:", plan.GraphType),
			Metadata: map[string]any{
				"type":       "graph",
				"chartImage": image,
				"chartType":  plan.GraphType,
				"title":      plan.TitleSuggestion,
			},
		}
	}

	log.Printf("ERROR: Chart generation failed: %v", err)
	textChart := chart.TextChart(spec)
	return &Outcome{
		State:   StateTextFallback,
		Content: fmt.Sprintf("I couldn't generate a visual chart due to missing dependencies, but here's your data:\n\n%s", textChart),
		Metadata: map[string]any{
			"type":       "text_chart",
			"chartType":  plan.GraphType,
			"title":      plan.TitleSuggestion,
			"chartError": true,
		},
	}
}

// runAnswer handles non-graph messages: keyword retrieval first, then the
// model-backed answer, then a static suggestion when both are unavailable.
func (p *Pipeline) runAnswer(ctx context.Context, messages []Message, lastMessage string) *Outcome {
	result, err := p.retriever.Search(ctx, lastMessage)
	if err == nil {
		return &Outcome{
			State:   StateAnswered,
			Content: result,
			Metadata: map[string]any{
				"responseType": "keyword_search",
				"searchQuery":  lastMessage,
			},
		}
	}
	if !errors.Is(err, ErrNoMatches) {
		log.Printf("WARN: Keyword retrieval failed, falling back to generated answer: %v", err)
	}

	content, meta, err := p.answerer.Answer(ctx, messages)
	if err != nil {
		log.Printf("ERROR: Answer generation failed: %v", err)
		return &Outcome{
			State: StateAnswered,
			Content: fmt.Sprintf("I encountered an issue searching for content related to %q. Let me try a different approach.\n\n"+
				"Based on our available influencer data, I can help you find relevant creators. Try being more specific about:\n"+
				"• The sport or activity you're interested in\n"+
				"• The type of content you're looking for\n"+
				"• Any specific brands or products mentioned\n\n"+
				`For example: "fitness influencers who post about protein supplements" or "soccer players reviewing cleats"`, lastMessage),
			Metadata: map[string]any{
				"responseType":  "search_fallback",
				"originalQuery": lastMessage,
				"error":         "Answer generation unavailable",
			},
		}
	}
	if meta == nil {
		meta = map[string]any{"responseType": "generated"}
	}
	return &Outcome{State: StateAnswered, Content: content, Metadata: meta}
}

func graphFailure(err error) *Outcome {
	log.Printf("ERROR: Error generating graph or processing data: %v", err)
	return &Outcome{
		State: StatePipelineFailed,
		Content: fmt.Sprintf("Sorry, I encountered an error while generating the graph: %s. "+
			"This might be due to missing chart rendering dependencies. "+
			"Please try a different query or check the system configuration.", err.Error()),
		Metadata: map[string]any{
			"graphError":   true,
			"errorMessage": err.Error(),
		},
	}
}
