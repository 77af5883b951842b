// Package schema holds the versioned question catalogue of the Selbstauskunft.
// A Schema is immutable once loaded and is passed explicitly to every
// validator, renderer and codec call.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Type is the answer type of a question.
type Type string

const (
	Confirmation Type = "confirmation"
	Number       Type = "number"
	Text         Type = "text"
)

// ErrInvalid is returned when a schema document is structurally unusable.
var ErrInvalid = errors.New("invalid schema")

type (
	// Condition makes a question applicable only while the referenced
	// question is answered with Value.
	Condition struct {
		QuestionID string `yaml:"id" json:"id"`
		Value      string `yaml:"value" json:"value"`
	}

	// Question is one entry of a section
	Question struct {
		ID            string     `yaml:"id" json:"id"`
		Text          string     `yaml:"text" json:"text"`
		Type          Type       `yaml:"type" json:"type"`
		ConditionalOn *Condition `yaml:"conditionalOn,omitempty" json:"conditionalOn,omitempty"`
		Required      bool       `yaml:"required,omitempty" json:"required,omitempty"`
	}

	// Section is an ordered group of questions
	Section struct {
		ID          string     `yaml:"id" json:"id"`
		Title       string     `yaml:"title" json:"title"`
		Description string     `yaml:"description" json:"description"`
		Questions   []Question `yaml:"questions" json:"questions"`
	}

	// Schema is the full catalogue in display order
	Schema struct {
		Version  string    `yaml:"version" json:"version"`
		Sections []Section `yaml:"sections" json:"sections"`

		index map[string]Question
	}
)

//go:embed default.yaml
var defaultYAML []byte

// Default returns the catalogue shipped with the binary.
func Default() *Schema {
	s, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded schema: %v", err))
	}
	return s
}

// Load reads a schema document from path. An empty path yields Default.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.build(); err != nil {
		return nil, err
	}
	return &s, nil
}

// New assembles a schema from sections built in code.
func New(version string, sections ...Section) (*Schema, error) {
	s := &Schema{Version: version, Sections: sections}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// build checks ids, types and condition references and fills the lookup index.
// A condition may only point at a question that comes earlier in the schema.
func (s *Schema) build() error {
	s.index = make(map[string]Question)
	for _, sec := range s.Sections {
		for _, q := range sec.Questions {
			if q.ID == "" {
				return fmt.Errorf("%w: question without id in section %q", ErrInvalid, sec.ID)
			}
			if _, dup := s.index[q.ID]; dup {
				return fmt.Errorf("%w: duplicate question id %q", ErrInvalid, q.ID)
			}
			switch q.Type {
			case Confirmation, Number, Text:
			default:
				return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalid, q.ID, q.Type)
			}
			if c := q.ConditionalOn; c != nil {
				if _, ok := s.index[c.QuestionID]; !ok {
					return fmt.Errorf("%w: question %q depends on unknown or later question %q", ErrInvalid, q.ID, c.QuestionID)
				}
			}
			s.index[q.ID] = q
		}
	}
	return nil
}

// Question looks up a question by id.
func (s *Schema) Question(id string) (Question, bool) {
	q, ok := s.index[id]
	return q, ok
}

// Has reports whether id is part of the schema.
func (s *Schema) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Questions returns every question in schema order.
func (s *Schema) Questions() []Question {
	qs := make([]Question, 0, len(s.index))
	for _, sec := range s.Sections {
		qs = append(qs, sec.Questions...)
	}
	return qs
}

// Len is the number of questions.
func (s *Schema) Len() int {
	return len(s.index)
}
