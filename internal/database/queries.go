package database

import (
	"context"
	"fmt"
)

// namedQueries is the fixed catalog of application queries. Handlers and the
// pipeline refer to entries by name; the SQL text itself never comes from
// user input. Placeholders use postgres syntax and are rebound per dialect.
var namedQueries = map[string]string{
	"all_influencers": `SELECT u.user_id, u.name, u.username, u.sport, u.follower_count, u.platforms,
			(SELECT COUNT(*) FROM posts WHERE user_id = u.user_id) AS post_count
		FROM users u
		ORDER BY u.name`,

	"influencer_by_username": `SELECT u.user_id, u.name, u.username, u.sport, u.follower_count, u.platforms,
			(SELECT COUNT(*) FROM posts WHERE user_id = u.user_id) AS post_count,
			(SELECT AVG(view_count) FROM posts WHERE user_id = u.user_id) AS avg_views
		FROM users u
		WHERE u.username = $1`,

	"posts_by_user": `SELECT post_id, title, content, view_count, created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,

	"top_posts_by_user": `SELECT post_id, title, content, view_count, likes, created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY view_count DESC
		LIMIT 3`,

	"relevant_posts": `SELECT p.post_id, p.title, p.content, p.view_count, p.likes, p.created_at,
			u.username, u.name, u.follower_count
		FROM posts p
		JOIN users u ON p.user_id = u.user_id
		WHERE LOWER(p.content) LIKE $1 OR LOWER(p.title) LIKE $2
		ORDER BY p.view_count DESC
		LIMIT 5`,

	"influencers_by_sport": `SELECT user_id, name, username, sport, follower_count, platforms
		FROM users
		WHERE LOWER(sport) = LOWER($1)
		ORDER BY follower_count DESC`,

	"post_count": `SELECT COUNT(*) FROM posts WHERE user_id = $1`,
}

// NamedQuery runs a catalog query by name inside a read-only transaction.
func (db *DB) NamedQuery(ctx context.Context, name string, args ...any) (*ResultSet, error) {
	sqlText, ok := namedQueries[name]
	if !ok {
		return nil, fmt.Errorf("unknown named query: %s", name)
	}
	return db.QueryReadOnly(ctx, db.Handler.Rebind(sqlText), args...)
}
