package analytics

import "fmt"

// queryTemplate is one entry in the structural allow-list. When a plan
// matches, the template's fixed SQL is used and no model call happens at
// all, which keeps the common chart requests off the free-form path.
type queryTemplate struct {
	name  string
	match func(p *QueryPlan) bool
	build func(p *QueryPlan) string
}

var queryTemplates = []queryTemplate{
	{
		name: "followers_by_sport",
		match: func(p *QueryPlan) bool {
			return p.EntityType == "sport" && p.Metric == "follower_count"
		},
		build: func(p *QueryPlan) string {
			return withLimit(`SELECT sport, SUM(follower_count) AS follower_count FROM users WHERE sport IS NOT NULL GROUP BY sport ORDER BY follower_count DESC`, p)
		},
	},
	{
		name: "followers_by_influencer",
		match: func(p *QueryPlan) bool {
			return p.EntityType == "influencer" && p.Metric == "follower_count"
		},
		build: func(p *QueryPlan) string {
			return withLimit(`SELECT username, follower_count FROM users ORDER BY follower_count DESC`, p)
		},
	},
	{
		name: "influencer_count_by_sport",
		match: func(p *QueryPlan) bool {
			return p.EntityType == "sport" && p.Comparison == "distribution"
		},
		build: func(p *QueryPlan) string {
			return withLimit(`SELECT sport, COUNT(*) AS influencer_count FROM users WHERE sport IS NOT NULL GROUP BY sport ORDER BY influencer_count DESC`, p)
		},
	},
	{
		name: "post_views_by_influencer",
		match: func(p *QueryPlan) bool {
			return p.EntityType == "post" && (p.Metric == "performance" || p.Metric == "engagement") && (p.Filter == nil || p.Filter.Keyword == "")
		},
		build: func(p *QueryPlan) string {
			return withLimit(`SELECT u.username, SUM(p.view_count) AS view_count FROM posts p JOIN users u ON p.user_id = u.user_id GROUP BY u.username ORDER BY view_count DESC`, p)
		},
	},
}

// templateSQL returns the allow-listed SQL for a plan when one matches.
func templateSQL(plan *QueryPlan) (name string, sql string, ok bool) {
	for _, t := range queryTemplates {
		if t.match(plan) {
			return t.name, t.build(plan), true
		}
	}
	return "", "", false
}

// withLimit appends a LIMIT clause for top-N requests. The limit value
// comes from the parsed plan, never from raw message text.
func withLimit(sql string, p *QueryPlan) string {
	if p.Filter != nil && p.Filter.Limit.Set && p.Filter.Limit.Value > 0 {
		return fmt.Sprintf("%s LIMIT %d", sql, p.Filter.Limit.Value)
	}
	return sql
}
