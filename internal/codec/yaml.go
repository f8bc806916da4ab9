package codec

import (
	"fmt"
	"io"

	"gentle/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exported documents
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// Parse imports a network snapshot from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Network, error) {
	var net domain.Network
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&net); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return normalize(&net), nil
}

// Export writes a network snapshot as YAML
func (c *YAMLCodec) Export(net *domain.Network, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(net); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
