package history

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Fingerprint identifies a query for grouping repeated analyses of the
// same statement. Valid SQL gets the parser fingerprint, which sees
// through literal and whitespace differences; anything else falls back
// to hashing the whitespace-normalized lowercase text.
func Fingerprint(query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	if fp, err := pg_query.Fingerprint(query); err == nil {
		return fp
	}

	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
