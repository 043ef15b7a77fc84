package plan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		filename string
		want     string
	}{
		{"json extension", "anything", "plan.json", "json"},
		{"sql extension", "anything", "query.sql", "sql"},
		{"txt extension", "anything", "explain.txt", "text"},
		{"extension over content", `[{"Plan": {}}]`, "queries.sql", "sql"},
		{"json array content", `[{"Plan": {"Node Type": "Seq Scan"}}]`, "", "json"},
		{"json object content", `{"Plan": {}}`, "-", "json"},
		{"leading whitespace", `  [{"Plan": {}}]`, "", "json"},
		{"text explain content", "Seq Scan on users  (cost=0.00..18.10 rows=810 width=8)", "", "text"},
		{"sql content", "SELECT * FROM users WHERE id = 1", "", "sql"},
		{"cte sql content", "WITH recent AS (SELECT 1) SELECT * FROM recent", "", "sql"},
		{"unknown", "some random text", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectType([]byte(tt.data), tt.filename); got != tt.want {
				t.Errorf("detectType = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")
	content := []byte(`[{"Plan": {}}]`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := readInput(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("content mismatch")
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	if _, err := readInput("/nonexistent/file.json", ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	content := []byte(`[{
		"Plan": {
			"Node Type": "Seq Scan",
			"Relation Name": "users",
			"Total Cost": 20.0,
			"Plan Rows": 100,
			"Actual Total Time": 0.1,
			"Actual Rows": 100,
			"Actual Loops": 1
		},
		"Planning Time": 0.1,
		"Execution Time": 0.2
	}]`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	parsed, err := Resolve(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Root.NodeType != "Seq Scan" {
		t.Errorf("NodeType = %q, want Seq Scan", parsed.Root.NodeType)
	}
	if parsed.ExecutionTime != 0.2 {
		t.Errorf("ExecutionTime = %v, want 0.2", parsed.ExecutionTime)
	}
}

func TestResolve_SQLFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.sql")
	if err := os.WriteFile(path, []byte("SELECT 1"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Resolve(path, ""); err == nil {
		t.Fatal("expected error for SQL input")
	}
}

func TestResolve_TextPlanRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explain.txt")
	if err := os.WriteFile(path, []byte("Seq Scan on users  (cost=0.00..18.10 rows=810 width=8)"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := Resolve(path, ""); err == nil {
		t.Fatal("expected error for text-format plans")
	}
}

func TestResolve_EmptyJSONArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("[]"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Resolve(path, "")
	if !errors.Is(err, ErrNoPlan) {
		t.Fatalf("err = %v, want ErrNoPlan", err)
	}
}

func TestResolve_TruncatedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.json")
	if err := os.WriteFile(path, []byte(`[{"Plan": {"Node Type": "Seq Sc`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Resolve(path, "")
	if err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if errors.Is(err, ErrNoPlan) {
		t.Error("truncated JSON should be a decode error, not ErrNoPlan")
	}
}
