package database

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// fallbackSchema is used for prompt construction when live introspection is
// unavailable. It mirrors the canonical talent-agency schema.
const fallbackSchema = `
CREATE TABLE users (
	user_id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	username TEXT UNIQUE NOT NULL,
	sport TEXT,
	follower_count INTEGER,
	platforms TEXT
);

CREATE TABLE posts (
	post_id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	view_count INTEGER,
	likes INTEGER,
	user_id UUID NOT NULL,
	created_at TIMESTAMPTZ,
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);
`

// SchemaContext returns a DDL-style description of the connected database
// for inclusion in generation prompts. Live introspection is preferred; the
// fixed fallback schema is returned when introspection fails so prompt
// construction never blocks the pipeline.
func (db *DB) SchemaContext(ctx context.Context) string {
	tables, err := db.Handler.ListTables(db)
	if err != nil || len(tables) == 0 {
		log.Printf("WARN: Schema introspection failed, using fallback schema: %v", err)
		return fallbackSchema
	}

	var b strings.Builder
	for _, table := range tables {
		cols, err := db.Handler.ListColumns(db, table)
		if err != nil {
			log.Printf("WARN: Failed to list columns for table %s, using fallback schema: %v", table, err)
			return fallbackSchema
		}
		fmt.Fprintf(&b, "CREATE TABLE %s (\n", table)
		for i, col := range cols {
			sep := ","
			if i == len(cols)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "\t%s %s%s\n", col.Name, strings.ToUpper(col.DataType), sep)
		}
		b.WriteString(");\n\n")
	}
	return b.String()
}
