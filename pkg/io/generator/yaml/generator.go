// Package yamlgenerator renders a model as YAML and writes it to disk.
package yamlgenerator

import (
	"fmt"

	"github.com/Jaydooooooo/happy-code/pkg/fsutil"
	"github.com/Jaydooooooo/happy-code/pkg/io/marshaller"
	yamlmarshaller "github.com/Jaydooooooo/happy-code/pkg/io/marshaller/yaml"
)

// Options configures where generated content is written.
type Options struct {
	// Output is the destination file path. Empty returns content without writing.
	Output string
	// Force overwrites an existing file.
	Force bool
}

// YAMLGenerator generates YAML documents from models.
type YAMLGenerator[T any] struct {
	Marshaller marshaller.Marshaller[T]
}

// NewYAMLGenerator creates and returns a new YAMLGenerator instance.
func NewYAMLGenerator[T any]() *YAMLGenerator[T] {
	return &YAMLGenerator[T]{
		Marshaller: yamlmarshaller.NewMarshaller[T](),
	}
}

// Generate marshals the model and writes it to the output path when one is set.
func (g *YAMLGenerator[T]) Generate(model T, opts Options) (string, error) {
	out, err := g.Marshaller.Marshal(model)
	if err != nil {
		return "", fmt.Errorf("failed to marshal model: %w", err)
	}

	if opts.Output != "" {
		result, err := fsutil.TryWriteFile(out, opts.Output, opts.Force)
		if err != nil {
			return "", fmt.Errorf("failed to write generated file: %w", err)
		}

		return result, nil
	}

	return out, nil
}
