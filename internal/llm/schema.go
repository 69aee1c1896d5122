package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema for a reply. It compiles on first use, so
// declare it once as a package variable and share the pointer.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Check parses raw and validates it. Failures are *ReplyError.
func (s *Schema) Check(raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ReplyError{Raw: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}
	s.once.Do(s.compile)
	if s.err != nil {
		return &ReplyError{Raw: raw, Err: s.err}
	}
	if err := s.compiled.Validate(doc); err != nil {
		return &ReplyError{Raw: raw, Err: err}
	}
	return nil
}

func (s *Schema) compile() {
	// Round-trip through JSON so nested []string values become []any.
	def, err := json.Marshal(s.Definition)
	if err != nil {
		s.err = fmt.Errorf("schema %s: %w", s.Name, err)
		return
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		s.err = fmt.Errorf("schema %s: %w", s.Name, err)
		return
	}
	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		s.err = fmt.Errorf("schema %s: %w", s.Name, err)
		return
	}
	s.compiled, s.err = c.Compile(url)
}
