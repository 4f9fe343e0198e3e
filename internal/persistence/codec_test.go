package persistence

import (
	"testing"
)

func TestCodec_RoundTripsNilValues(t *testing.T) {
	blob, err := encodeData(map[string]any{"name": "ada", "region": nil})
	if err != nil {
		t.Fatalf("encodeData failed: %v", err)
	}

	data, err := decodeData(blob)
	if err != nil {
		t.Fatalf("decodeData failed: %v", err)
	}
	if data["name"] != "ada" {
		t.Fatalf("unexpected name: %v", data["name"])
	}
	value, ok := data["region"]
	if !ok {
		t.Fatalf("nil value dropped: %+v", data)
	}
	if value != nil {
		t.Fatalf("expected nil region, got %v", value)
	}
}

func TestCodec_DecodeEmptyBlob(t *testing.T) {
	data, err := decodeData(nil)
	if err != nil {
		t.Fatalf("decodeData failed: %v", err)
	}
	if data == nil || len(data) != 0 {
		t.Fatalf("expected empty map, got %+v", data)
	}
}

func TestCodec_DecodeInvalidBlob(t *testing.T) {
	if _, err := decodeData([]byte("{not json")); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}

func TestMergeData(t *testing.T) {
	stored := map[string]any{"a": "old", "b": "keep"}
	update := map[string]any{"a": "new", "c": nil}

	merged := mergeData(stored, update)

	if merged["a"] != "new" {
		t.Fatalf("update did not overwrite: %+v", merged)
	}
	if merged["b"] != "keep" {
		t.Fatalf("stored key lost: %+v", merged)
	}
	if value, ok := merged["c"]; !ok || value != nil {
		t.Fatalf("nil update value lost: %+v", merged)
	}
	if stored["a"] != "old" {
		t.Fatalf("mergeData mutated its input: %+v", stored)
	}
}
