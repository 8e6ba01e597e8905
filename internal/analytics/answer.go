package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Amitav-Krishna/dynamic-media-kits/internal/database"
	"github.com/Amitav-Krishna/dynamic-media-kits/internal/genai"
)

// Answerer produces the default chat reply when a message is neither a
// graph request nor answerable by keyword retrieval.
type Answerer interface {
	Answer(ctx context.Context, messages []Message) (string, map[string]any, error)
}

type roiAnswerer struct {
	store     database.Store
	llm       genai.LLMClient
	maxTokens int32
}

func NewAnswerer(store database.Store, llm genai.LLMClient, maxTokens int32) Answerer {
	return &roiAnswerer{store: store, llm: llm, maxTokens: maxTokens}
}

const answerSystemPrompt = `You are a ruthless ROI-focused matchmaker for brands and influencers. Your ONLY goal is to answer one question:
"Which influencer will make this brand the most money per dollar spent?"

### Rules:
1. Lead with commercial relevance
2. Only show data that impacts ROI
3. Never suggest more than 3 options initially
4. Flag any red flags immediately
5. Do not make up any posts, or any influencers.
6. ONLY USE DATA PRESENT IN THE DATABASE.
7. To inspect an influencer's posts, emit the command [CHECK_POSTS: @username] on its own.

### Response Format:
🔥 Top Pick: @username
📌 Key Post: "[excerpt]"
💵 ROI Justification: [1 sentence]
⚠️ Caveats: [if any]`

var checkPostsPattern = regexp.MustCompile(`\[CHECK_POSTS: @(\w+)\]`)

// Answer builds the ROI prompt over the current influencer roster and
// handles the model's post-inspection command when one is emitted.
func (a *roiAnswerer) Answer(ctx context.Context, messages []Message) (string, map[string]any, error) {
	roster, err := a.store.NamedQuery(ctx, "all_influencers")
	if err != nil {
		return "", nil, fmt.Errorf("failed to load influencer roster: %w", err)
	}
	rosterJSON, err := json.Marshal(roster.Rows)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode influencer roster: %w", err)
	}

	var b strings.Builder
	b.WriteString(answerSystemPrompt)
	b.WriteString("\n\nAvailable influencers: ")
	b.Write(rosterJSON)
	b.WriteString("\n\n")
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("assistant: ")

	text, err := a.llm.Generate(ctx, b.String(), genai.GenerateOptions{
		MaxTokens:   a.maxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", nil, fmt.Errorf("answer generation failed: %w", err)
	}

	if m := checkPostsPattern.FindStringSubmatch(text); m != nil {
		return a.checkPosts(ctx, m[1], roster)
	}

	return text, map[string]any{"responseType": "generated"}, nil
}

// checkPosts resolves the [CHECK_POSTS: @username] command against the
// roster and returns post excerpts for that influencer.
func (a *roiAnswerer) checkPosts(ctx context.Context, username string, roster *database.ResultSet) (string, map[string]any, error) {
	var userID string
	for _, row := range roster.Rows {
		if toString(row["username"]) == username {
			userID = toString(row["user_id"])
			break
		}
	}
	if userID == "" {
		return fmt.Sprintf("@%s not found in our system.", username), nil, nil
	}

	posts, err := a.store.NamedQuery(ctx, "posts_by_user", userID, 10)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load posts for @%s: %w", username, err)
	}
	if posts.Empty() {
		return fmt.Sprintf("No posts found for @%s", username), map[string]any{"influencerId": userID}, nil
	}

	var parts []string
	for _, row := range posts.Rows {
		content := toString(row["content"])
		if chars := []rune(content); len(chars) > 100 {
			content = string(chars[:100])
		}
		parts = append(parts, fmt.Sprintf("📝 \"%s\"\n%s...", toString(row["title"]), content))
	}
	return strings.Join(parts, "\n\n"), map[string]any{"influencerId": userID}, nil
}
