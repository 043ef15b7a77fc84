package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Resolve reads a plan from a file path, "-" for stdin, or interactively
// when input is empty, and parses it. label prefixes prompts and errors
// when resolving more than one plan (e.g. "first ", "second ").
func Resolve(input string, label string) (*ParsedPlan, error) {
	data, err := readInput(input, label)
	if err != nil {
		return nil, err
	}

	switch detectType(data, input) {
	case "json":
		parsed, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%sinput: %w", label, err)
		}
		return parsed, nil
	case "text":
		return nil, fmt.Errorf(`text format not supported - capture the plan as JSON:

EXPLAIN (ANALYZE, VERBOSE, FORMAT JSON) <your query>

Then provide the complete JSON output.`)
	case "sql":
		return nil, fmt.Errorf("SQL input not supported - run EXPLAIN (FORMAT JSON) against your database and provide its output")
	default:
		return nil, fmt.Errorf("unable to detect %sinput type: expected an EXPLAIN JSON plan or a .json file", label)
	}
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %sEXPLAIN (ANALYZE, VERBOSE, FORMAT JSON) output", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))

	if (strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, "{")) &&
		!json.Valid(data) {
		return nil, fmt.Errorf("input appears truncated; for large inputs use: pglens analyze <file>")
	}

	return data, nil
}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	}
	if strings.HasSuffix(filename, ".sql") {
		return "sql"
	}
	if strings.HasSuffix(filename, ".txt") {
		return "text"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return "json"
	}

	if strings.Contains(trimmed, "(cost=") {
		return "text"
	}

	upper := strings.ToUpper(trimmed)
	for _, kw := range []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE", "EXPLAIN"} {
		if strings.HasPrefix(upper, kw) {
			return "sql"
		}
	}

	return "unknown"
}
