package json

import (
	"strings"
	"testing"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := map[string]interface{}{"project": "acme", "threads": 4}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out map[string]interface{}
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out["project"] != "acme" {
		t.Errorf("expected 'acme', got %v", out["project"])
	}
}

func TestValid(t *testing.T) {
	if !Valid([]byte(`{"type": "service_account"}`)) {
		t.Error("expected valid JSON")
	}
	if Valid([]byte(`{broken`)) {
		t.Error("expected invalid JSON")
	}
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(map[string]interface{}{"threads": 4}, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"threads\": 4") {
		t.Errorf("expected indented output, got %s", data)
	}
}
