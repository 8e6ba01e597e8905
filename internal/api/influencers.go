package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleListInfluencers returns the full roster with per-influencer post
// counts.
func (s *Server) handleListInfluencers(w http.ResponseWriter, r *http.Request) {
	rs, err := s.store.NamedQuery(r.Context(), "all_influencers")
	if err != nil {
		log.Printf("ERROR: Failed to list influencers: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load influencers", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"influencers": rs.Rows})
}

// handleGetInfluencer returns a single profile with aggregate post metrics.
func (s *Server) handleGetInfluencer(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "Username required", "")
		return
	}

	rs, err := s.store.NamedQuery(r.Context(), "influencer_by_username", username)
	if err != nil {
		log.Printf("ERROR: Failed to load influencer %s: %v", username, err)
		writeError(w, http.StatusInternalServerError, "Failed to load influencer", err.Error())
		return
	}
	if rs.Empty() {
		writeError(w, http.StatusNotFound, "Influencer not found", "")
		return
	}

	profile := rs.Rows[0]
	if userID, ok := profile["user_id"].(string); ok && userID != "" {
		posts, err := s.store.NamedQuery(r.Context(), "top_posts_by_user", userID)
		if err != nil {
			log.Printf("WARN: Failed to load top posts for %s: %v", username, err)
		} else {
			profile["top_posts"] = withEngagementRates(posts.Rows)
		}
	}
	writeJSON(w, http.StatusOK, profile)
}

// withEngagementRates annotates each post with likes per view as a
// percentage. Posts without view data score zero.
func withEngagementRates(posts []map[string]any) []map[string]any {
	for _, post := range posts {
		views := asFloat(post["view_count"])
		likes := asFloat(post["likes"])
		rate := 0.0
		if views > 0 {
			rate = likes / views * 100
		}
		post["engagement_rate"] = rate
	}
	if posts == nil {
		posts = []map[string]any{}
	}
	return posts
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
