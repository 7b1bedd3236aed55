package plotopts

import (
	"fmt"
	"sort"
)

// SchemaFormat identifies the rendering of a schema document.
type SchemaFormat string

const (
	// SchemaFormatDescriptors is the built-in flat descriptor table.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatJSONSchema marks documents produced by JSON Schema
	// generators.
	SchemaFormatJSONSchema SchemaFormat = "jsonschema"
)

// SchemaDocument wraps a generated schema with its format tag.
type SchemaDocument struct {
	Format   SchemaFormat `json:"format"`
	Document any          `json:"document"`
}

// VocabularyDescriptor describes one vocabulary entry for tooling.
type VocabularyDescriptor struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Native      string `json:"native,omitempty"`
	Unsupported bool   `json:"unsupported,omitempty"`
}

// BackendDescriptor describes a backend's capability table.
type BackendDescriptor struct {
	Backend string                 `json:"backend"`
	Active  bool                   `json:"active"`
	Options []VocabularyDescriptor `json:"options"`
}

// SchemaGenerator renders a backend descriptor into a schema document.
type SchemaGenerator interface {
	Generate(descriptor BackendDescriptor) (SchemaDocument, error)
}

// DefaultSchemaGenerator returns the built-in descriptor-table generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(descriptor BackendDescriptor) (SchemaDocument, error) {
	options := descriptor.Options
	if options == nil {
		options = []VocabularyDescriptor{}
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: options,
	}, nil
}

// DescribeBackend reports the named backend's vocabulary sorted by option
// name.
func (s *Store) DescribeBackend(name string) (BackendDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vocab, ok := s.backends[name]
	if !ok {
		return BackendDescriptor{}, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return BackendDescriptor{
		Backend: name,
		Active:  name == s.active,
		Options: describeVocabulary(vocab),
	}, nil
}

// Describe reports every registered backend sorted by name.
func (s *Store) Describe() []BackendDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	descriptors := make([]BackendDescriptor, 0, len(s.backends))
	for name, vocab := range s.backends {
		descriptors = append(descriptors, BackendDescriptor{
			Backend: name,
			Active:  name == s.active,
			Options: describeVocabulary(vocab),
		})
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Backend < descriptors[j].Backend
	})
	return descriptors
}

// Schema renders the named backend's vocabulary with the built-in generator.
func (s *Store) Schema(name string) (SchemaDocument, error) {
	descriptor, err := s.DescribeBackend(name)
	if err != nil {
		return SchemaDocument{}, err
	}
	return DefaultSchemaGenerator().Generate(descriptor)
}

func describeVocabulary(vocab Vocabulary) []VocabularyDescriptor {
	descriptors := make([]VocabularyDescriptor, 0, len(vocab))
	for name, entry := range vocab {
		descriptors = append(descriptors, VocabularyDescriptor{
			Name:        name,
			Kind:        entry.Kind,
			Native:      entry.Native,
			Unsupported: entry.Unsupported,
		})
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors
}
