package logger

import "testing"

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"actor", "admin@example.com",
		"email", "admin@example.com",
		"scenario_id", uint64(7),
	})
	if len(out) != 6 {
		t.Fatalf("len: want=6 got=%d", len(out))
	}
	actor, _ := out[1].(string)
	if actor == "admin@example.com" || len(actor) != len("hash:")+12 {
		t.Fatalf("actor should be hashed, got=%q", actor)
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("email: want=[REDACTED] got=%v", out[3])
	}
	if out[5] != uint64(7) {
		t.Fatalf("scenario_id: want=7 got=%v", out[5])
	}
}

func TestSanitizeKVsKeepsDanglingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"op", "link", "orphan"})
	if len(out) != 3 || out[2] != "orphan" {
		t.Fatalf("dangling key: got=%v", out)
	}
}

func TestHashValueIsStable(t *testing.T) {
	a := hashValue("10.0.0.1")
	b := hashValue("10.0.0.1")
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if hashValue("") != "" {
		t.Fatalf("empty value should hash to empty string")
	}
}
