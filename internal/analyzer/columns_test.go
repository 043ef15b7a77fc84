package analyzer

import "testing"

func TestExtractFilterColumn(t *testing.T) {
	tests := []struct {
		name string
		cond string
		want string
		ok   bool
	}{
		{"simple equality", "(status = 1)", "status", true},
		{"qualified column", "(u.created_at >= '2026-01-01'::date)", "created_at", true},
		{"text cast like", "((email)::text ~~ '%@example.com'::text)", "email", true},
		{"case insensitive like", "((name)::text ~~* 'acme%'::text)", "name", true},
		{"not like", "((email)::text !~~ '%spam%'::text)", "email", true},
		{"is null", "(deleted_at IS NULL)", "deleted_at", true},
		{"in list", "(status = ANY ('{1,2,3}'::integer[]))", "status", true},
		{"inequality", "(age <> 0)", "age", true},
		{"literal containing operator", "(note = 'a = b')", "note", true},
		{"empty", "", "", false},
		{"no column", "(random() < '0.5'::double precision)", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFilterColumn(tt.cond)
			if ok != tt.ok {
				t.Fatalf("ExtractFilterColumn(%q) ok = %v, want %v", tt.cond, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ExtractFilterColumn(%q) = %q, want %q", tt.cond, got, tt.want)
			}
		})
	}
}

func TestExtractSortColumn(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
		ok   bool
	}{
		{"bare column", "created_at", "created_at", true},
		{"descending", "created_at DESC", "created_at", true},
		{"nulls last", "score DESC NULLS LAST", "score", true},
		{"qualified", "orders.total ASC", "total", true},
		{"parenthesized", "(priority)", "priority", true},
		{"expression rejected", "lower(name)", "", false},
		{"arithmetic rejected", "a + b", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractSortColumn(tt.key)
			if ok != tt.ok {
				t.Fatalf("ExtractSortColumn(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ExtractSortColumn(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
