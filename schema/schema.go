// Package schema validates client-supplied snapshot state documents
// against the embedded JSON Schema. Snapshots are otherwise opaque to
// the server; only the shape is checked, never consistency with the
// event log.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed snapshot_state.schema.json
var snapshotStateSchema []byte

var (
	compileOnce   sync.Once
	snapshotState *jsonschema.Schema
	compileErr    error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(snapshotStateSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse snapshot state schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://snapshot_state.json", doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		snapshotState, compileErr = c.Compile("schema://snapshot_state.json")
	})
	return snapshotState, compileErr
}

// ValidateSnapshotState checks a raw snapshot state document against the
// schema. Returns a descriptive error on structural violations.
func ValidateSnapshotState(raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	s, err := compiled()
	if err != nil {
		return err
	}
	if err := s.Validate(parsed); err != nil {
		return fmt.Errorf("snapshot state: %w", err)
	}
	return nil
}
