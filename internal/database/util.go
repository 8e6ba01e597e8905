package database

import (
	"regexp"
	"strconv"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// RebindPositional rewrites postgres-style $N placeholders using the token
// function, e.g. "?" for MySQL or "@pN" for SQL Server. Argument order is
// preserved; the token function receives the 1-based placeholder number.
func RebindPositional(query string, token func(n int) string) string {
	return placeholderPattern.ReplaceAllStringFunc(query, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil {
			return m
		}
		return token(n)
	})
}
