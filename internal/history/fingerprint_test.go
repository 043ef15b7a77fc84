package history

import "testing"

func TestFingerprint_LiteralsAndWhitespaceIgnored(t *testing.T) {
	a := Fingerprint("SELECT * FROM users WHERE status = 1")
	b := Fingerprint("SELECT  *  FROM users\nWHERE status = 42")

	if a == "" {
		t.Fatal("expected non-empty fingerprint")
	}
	if a != b {
		t.Errorf("same statement with different literals fingerprints differently: %q vs %q", a, b)
	}
}

func TestFingerprint_DistinctStatements(t *testing.T) {
	a := Fingerprint("SELECT * FROM users")
	b := Fingerprint("SELECT * FROM orders")

	if a == b {
		t.Error("different tables should fingerprint differently")
	}
}

func TestFingerprint_FallbackStable(t *testing.T) {
	// Not parseable as SQL, so the hash fallback applies.
	a := Fingerprint("not really sql at all !!")
	b := Fingerprint("NOT   REALLY\tSQL AT ALL !!")

	if a == "" {
		t.Fatal("expected non-empty fingerprint")
	}
	if a != b {
		t.Errorf("fallback should normalize case and whitespace: %q vs %q", a, b)
	}
}

func TestFingerprint_Empty(t *testing.T) {
	if got := Fingerprint("   \n\t"); got != "" {
		t.Errorf("Fingerprint(blank) = %q, want empty", got)
	}
}
