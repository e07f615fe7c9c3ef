package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

type schemaShape struct {
	Required   []string       `json:"required"`
	Properties map[string]any `json:"properties"`
}

func (s schemaShape) propertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// The reflected schemas must agree with the hand-written ones on field
// names and required fields.
func TestReflectedSchemasMatchHandWritten(t *testing.T) {
	for _, msg := range messages {
		data, err := json.Marshal(buildSchema(msg))
		if err != nil {
			t.Fatalf("%s: marshal: %v", msg.name, err)
		}
		var reflected schemaShape
		if err := json.Unmarshal(data, &reflected); err != nil {
			t.Fatalf("%s: decode reflected: %v", msg.name, err)
		}

		raw, err := os.ReadFile(filepath.Join("..", "..", "schemas", msg.name+".schema.json"))
		if err != nil {
			t.Fatalf("%s: read hand-written schema: %v", msg.name, err)
		}
		var written schemaShape
		if err := json.Unmarshal(raw, &written); err != nil {
			t.Fatalf("%s: decode hand-written: %v", msg.name, err)
		}

		if !equal(sorted(reflected.Required), sorted(written.Required)) {
			t.Errorf("%s: required drifted: reflected %v, hand-written %v", msg.name, sorted(reflected.Required), sorted(written.Required))
		}
		if !equal(reflected.propertyNames(), written.propertyNames()) {
			t.Errorf("%s: properties drifted: reflected %v, hand-written %v", msg.name, reflected.propertyNames(), written.propertyNames())
		}
	}
}

func TestWriteSchemaReplacesFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "nested", "update.schema.json")
	if err := writeSchema(outPath, buildSchema(messages[0])); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := writeSchema(outPath, buildSchema(messages[0])); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var shape struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if shape.Title != "Arena update" {
		t.Fatalf("unexpected title %q", shape.Title)
	}
	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away")
	}
}
