// Package marshaller defines the serialization contract shared by the file
// generators and the config manager.
package marshaller

// Marshaller converts models to and from a serialized text representation.
type Marshaller[T any] interface {
	Marshal(model T) (string, error)
	Unmarshal(data []byte, model *T) error
	UnmarshalString(data string, model *T) error
}
