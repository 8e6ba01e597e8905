package analytics

import (
	"log"
	"strings"
)

var forbiddenKeywords = []string{
	"INSERT",
	"UPDATE",
	"DELETE",
	"DROP",
	"CREATE",
	"ALTER",
	"TRUNCATE",
	"GRANT",
	"REVOKE",
}

// ValidateReadOnlySQL checks that a candidate query looks like a read-only
// SELECT. The check is a fast-reject heuristic over the raw string: a
// keyword appearing anywhere rejects the query, even inside an identifier
// or literal. The read-only transaction underneath is the real enforcement
// layer; this only filters the obvious cases before a query reaches it.
func ValidateReadOnlySQL(sqlQuery string) bool {
	upper := strings.ToUpper(sqlQuery)

	for _, keyword := range forbiddenKeywords {
		if strings.Contains(upper, keyword) {
			log.Printf("WARN: Forbidden keyword found in query: %s", keyword)
			return false
		}
	}

	if !strings.HasPrefix(strings.TrimSpace(upper), "SELECT") {
		log.Printf("WARN: Query does not start with SELECT, rejecting.")
		return false
	}
	return true
}
