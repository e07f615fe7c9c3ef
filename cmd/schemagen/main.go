package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"snake-arena/server/internal/net/proto"
)

type message struct {
	name  string
	title string
	value any
}

var messages = []message{
	{name: "update", title: "Arena update", value: new(proto.Update)},
	{name: "init", title: "Arena init", value: new(proto.Init)},
	{name: "dead", title: "Arena dead", value: new(proto.Dead)},
	{name: "error", title: "Arena error", value: new(proto.Error)},
	{name: "client", title: "Arena client message", value: new(proto.ClientMessage)},
}

func main() {
	var outDir string
	flag.StringVar(&outDir, "out", "schemas/generated", "directory to write reflected JSON schemas")
	flag.Parse()

	for _, msg := range messages {
		outPath := filepath.Join(outDir, msg.name+".schema.json")
		if err := writeSchema(outPath, buildSchema(msg)); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s schema: %v\n", msg.name, err)
			os.Exit(1)
		}
	}
}

func buildSchema(msg message) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(msg.value)
	schema.Title = msg.title
	schema.Description = "Reflected from proto." + msg.name + "; the hand-written schemas/" + msg.name + ".schema.json is authoritative."
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
