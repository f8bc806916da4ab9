package codec

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"gentle/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports a network snapshot from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Network, error) {
	var net domain.Network
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&net); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return normalize(&net), nil
}

// Export writes a network snapshot as JSON
func (c *JSONCodec) Export(net *domain.Network, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(net); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// normalize replaces missing collections with empty ones
func normalize(net *domain.Network) *domain.Network {
	if net.Nodes == nil {
		net.Nodes = make([]domain.Node, 0)
	}
	if net.Links == nil {
		net.Links = make([]domain.Link, 0)
	}
	if net.Foci == nil {
		net.Foci = make([]domain.Focus, 0)
	}
	return net
}
