package analyzer

import (
	"regexp"
	"strings"
)

// Best-effort column extraction from EXPLAIN predicate text. The filter
// strings are free-form SQL fragments, so this never pretends to parse
// them fully: a failed match is a normal "no column" outcome.

var (
	stringLiteralRe = regexp.MustCompile(`'(?:[^']|'')*'`)
	typeCastRe      = regexp.MustCompile(`::[a-zA-Z_][\w ]*(?:\[\])?`)

	// Equality/comparison, IS, IN and LIKE forms, in match order.
	filterColumnRes = []*regexp.Regexp{
		regexp.MustCompile(`([a-zA-Z_]\w*(?:\.[a-zA-Z_]\w*)?)\)*\s*(?:=|<>|!=|>=|<=|>|<|!?~~\*?)`),
		regexp.MustCompile(`(?i)([a-zA-Z_]\w*(?:\.[a-zA-Z_]\w*)?)\)*\s+IS\s+`),
		regexp.MustCompile(`(?i)([a-zA-Z_]\w*(?:\.[a-zA-Z_]\w*)?)\)*\s+(?:NOT\s+)?IN\s*\(`),
		regexp.MustCompile(`(?i)([a-zA-Z_]\w*(?:\.[a-zA-Z_]\w*)?)\)*\s+(?:NOT\s+)?I?LIKE\s+`),
	}
)

// ExtractFilterColumn pulls a single column name out of a predicate such
// as "(status = 1)" or "((u.email)::text ~~ '%@x.com')". Qualified
// references are reduced to the bare column. Returns false when nothing
// column-like can be found.
func ExtractFilterColumn(cond string) (string, bool) {
	if cond == "" {
		return "", false
	}

	cleaned := stringLiteralRe.ReplaceAllString(cond, "''")
	cleaned = typeCastRe.ReplaceAllString(cleaned, "")

	for _, re := range filterColumnRes {
		m := re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		col := m[1]
		if i := strings.LastIndex(col, "."); i >= 0 {
			col = col[i+1:]
		}
		if col == "" || isSQLKeyword(col) {
			continue
		}
		return col, true
	}
	return "", false
}

// ExtractSortColumn strips ordering qualifiers and any alias prefix from
// one "Sort Key" entry.
func ExtractSortColumn(sortKey string) (string, bool) {
	s := strings.TrimSpace(sortKey)
	for _, suffix := range []string{" NULLS FIRST", " NULLS LAST", " DESC", " ASC"} {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.TrimSpace(strings.Trim(s, "()"))
	if s == "" {
		return "", false
	}

	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	// Expressions (function calls, arithmetic) are not single columns.
	if strings.ContainsAny(s, "(+-/* ") {
		return "", false
	}
	return s, true
}

func isSQLKeyword(s string) bool {
	switch strings.ToUpper(s) {
	case "AND", "OR", "NOT", "ANY", "ALL", "NULL", "TRUE", "FALSE", "IS", "IN", "LIKE", "ILIKE":
		return true
	}
	return false
}
