package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/chart"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/genai"
)

// ErrNoMatches signals that keyword retrieval found nothing useful, so the
// caller should fall through to the default answer path.
var ErrNoMatches = errors.New("no relevant posts matched the query")

// Retriever answers non-graph questions by matching posts against keywords
// extracted from the message.
type Retriever interface {
	Search(ctx context.Context, message string) (string, error)
}

type postRetriever struct {
	store database.Store
	llm   genai.LLMClient
}

func NewRetriever(store database.Store, llm genai.LLMClient) Retriever {
	return &postRetriever{store: store, llm: llm}
}

const keywordPromptFormat = `Extract business/product keywords from this message for influencer matching: "%s"

Extract keywords that represent:
1. Products/services they sell or make
2. Industry/business type
3. Themes, interests, or background mentioned
4. Repeated words in business names (ignore person names)

Rules:
- Return 3-6 specific, searchable keywords
- Use simple terms (not "themed" or "branding")
- Include relevant sports, products, industries
- Skip person names and generic business words
- Comma-separated, no explanations
- All keywords should be single words

Examples:
"John Propane Propane company" → propane, gas, outdoor
"Former soccer player with dog business" → soccer, dog, sports, pet
"BBQ restaurant owner" → bbq, food, restaurant, grill`

// rankedPost is one retrieval hit with its derived signals.
type rankedPost struct {
	Username      string
	Name          string
	Content       string
	ViewCount     float64
	Likes         float64
	FollowerCount float64
	Sentiment     string
}

func (p *postRetriever) Search(ctx context.Context, message string) (string, error) {
	keywords := p.extractKeywords(ctx, message)
	if len(keywords) == 0 {
		return "", ErrNoMatches
	}

	var posts []rankedPost
	var matched string
	for _, kw := range keywords {
		pattern := "%" + strings.ToLower(kw) + "%"
		rs, err := p.store.NamedQuery(ctx, "relevant_posts", pattern, pattern)
		if err != nil {
			return "", fmt.Errorf("post search failed: %w", err)
		}
		if rs.Empty() {
			continue
		}
		for _, row := range rs.Rows {
			content := toString(row["content"])
			posts = append(posts, rankedPost{
				Username:      toString(row["username"]),
				Name:          toString(row["name"]),
				Content:       content,
				ViewCount:     toFloat(row["view_count"]),
				Likes:         toFloat(row["likes"]),
				FollowerCount: toFloat(row["follower_count"]),
				Sentiment:     analyzeSentiment(content),
			})
		}
		matched = kw
		break
	}
	if len(posts) == 0 {
		return "", ErrNoMatches
	}

	return formatRecommendation(matched, posts), nil
}

// extractKeywords asks the model for candidate keywords and falls back to a
// crude token split when the model is unavailable.
func (p *postRetriever) extractKeywords(ctx context.Context, message string) []string {
	raw, err := p.llm.Generate(ctx, fmt.Sprintf(keywordPromptFormat, message), genai.GenerateOptions{
		MaxTokens:   40,
		Temperature: 0.2,
	})
	if err != nil {
		log.Printf("WARN: Keyword extraction model call failed, using token fallback: %v", err)
		return fallbackKeywords(message)
	}

	var keywords []string
	for _, k := range strings.Split(raw, ",") {
		k = strings.ToLower(strings.TrimSpace(k))
		if len(k) > 2 && k != "unknown" {
			keywords = append(keywords, k)
		}
		if len(keywords) == 6 {
			break
		}
	}
	if len(keywords) == 0 {
		return fallbackKeywords(message)
	}
	return keywords
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "who": true,
	"what": true, "best": true, "about": true, "that": true, "this": true,
	"influencer": true, "influencers": true,
}

func fallbackKeywords(message string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(message)) {
		w = strings.Trim(w, ".,!?'\"")
		if len(w) > 3 && !stopWords[w] {
			keywords = append(keywords, w)
		}
		if len(keywords) == 6 {
			break
		}
	}
	return keywords
}

var positiveWords = []string{"love", "great", "best", "awesome", "recommend"}
var negativeWords = []string{"hate", "worst", "sucks", "destroy", "avoid"}

// analyzeSentiment is a lexicon check, not a model call. Rough but cheap,
// and sufficient for flagging obviously negative posts.
func analyzeSentiment(text string) string {
	text = strings.ToLower(text)
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			return "positive"
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			return "negative"
		}
	}
	return "neutral"
}

// engagementRate is likes per view as a percentage. Posts without view data
// score zero.
func engagementRate(likes, views float64) float64 {
	if views == 0 {
		return 0
	}
	return likes / views * 100
}

func formatRecommendation(keyword string, posts []rankedPost) string {
	top := posts[0]
	positive := 0
	for _, p := range posts {
		if p.Sentiment == "positive" {
			positive++
		}
	}

	rate := engagementRate(top.Likes, top.ViewCount)

	warning := "✅ No red flags"
	switch {
	case top.Sentiment == "negative":
		warning = "⚠️ Negative sentiment"
	case top.ViewCount == 0:
		warning = "⚠️ No view data available"
	case rate < 1:
		warning = "⚠️ Low engagement"
	}

	excerpt := top.Content
	if chars := []rune(excerpt); len(chars) > 50 {
		excerpt = string(chars[:50]) + "..."
	}

	return fmt.Sprintf(`🔥 Top Pick: @%s
📌 Key Post: "%s"
📈 %.1f%% engagement rate
💵 ROI Justification: %d/%d positive %s mentions with %s followers
%s`,
		top.Username, excerpt, rate, positive, len(posts), keyword,
		chart.FormatValue(top.FollowerCount), warning)
}
