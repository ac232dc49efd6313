package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML parses a strategy token from a schema file.
func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var token string
	if err := value.Decode(&token); err != nil {
		return err
	}
	parsed, err := ParseStrategy(token)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML renders a strategy as its schema-file token.
func (s Strategy) MarshalYAML() (interface{}, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid strategy %d", int(s))
	}
	return s.String(), nil
}

// LoadFile reads a YAML schema declaration file mapping record-type
// identifiers to definitions:
//
//	users:
//	  columns:
//	    name: match_partial
//	    age: open_range
//	  order: ["name ASC"]
//	  aliases:
//	    full_name: "first_name || ' ' || last_name"
//
// The returned definitions still need to be registered; LoadFile performs
// no column validation of its own.
func LoadFile(path string) (map[string]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML schema declaration document.
func Parse(data []byte) (map[string]Definition, error) {
	definitions := make(map[string]Definition)
	if err := yaml.Unmarshal(data, &definitions); err != nil {
		return nil, fmt.Errorf("failed to parse schema declarations: %w", err)
	}
	return definitions, nil
}
