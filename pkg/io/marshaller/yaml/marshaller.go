// Package yamlmarshaller implements the marshaller contract with YAML.
package yamlmarshaller

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlIndent is the indentation width for generated YAML documents.
const yamlIndent = 2

// Marshaller marshals and unmarshals models as YAML.
type Marshaller[T any] struct{}

// NewMarshaller creates a new YAML marshaller for the model type.
func NewMarshaller[T any]() *Marshaller[T] {
	return &Marshaller[T]{}
}

// Marshal converts the model to a YAML document.
func (m *Marshaller[T]) Marshal(model T) (string, error) {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(yamlIndent)

	err := encoder.Encode(model)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	return buf.String(), nil
}

// Unmarshal parses a YAML document into the model.
func (m *Marshaller[T]) Unmarshal(data []byte, model *T) error {
	err := yaml.Unmarshal(data, model)
	if err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return nil
}

// UnmarshalString parses a YAML document string into the model.
func (m *Marshaller[T]) UnmarshalString(data string, model *T) error {
	return m.Unmarshal([]byte(data), model)
}
