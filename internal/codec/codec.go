package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"gentle/internal/domain"
)

// ErrUnsupportedFormat is returned for a format no codec handles
var ErrUnsupportedFormat = errors.New("unsupported format")

// Importer interface for reading network snapshots from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Network, error)
	Format() string
}

// Exporter interface for writing network snapshots to various formats
type Exporter interface {
	Export(net *domain.Network, w io.Writer) error
	Format() string
	ContentType() string
}

// Registry resolves codecs by format identifier
type Registry struct {
	importers map[string]Importer
	exporters map[string]Exporter
}

// NewRegistry creates a registry with every built-in codec
func NewRegistry() *Registry {
	r := &Registry{
		importers: make(map[string]Importer),
		exporters: make(map[string]Exporter),
	}

	jsonCodec := NewJSONCodec()
	yamlCodec := NewYAMLCodec()
	r.RegisterImporter(jsonCodec)
	r.RegisterImporter(yamlCodec)
	r.RegisterExporter(jsonCodec)
	r.RegisterExporter(yamlCodec)
	r.RegisterExporter(NewDOTCodec())
	r.RegisterExporter(NewCSVCodec())

	return r
}

// RegisterImporter adds or replaces an importer
func (r *Registry) RegisterImporter(i Importer) {
	r.importers[i.Format()] = i
}

// RegisterExporter adds or replaces an exporter
func (r *Registry) RegisterExporter(e Exporter) {
	r.exporters[e.Format()] = e
}

// Importer returns the importer for format
func (r *Registry) Importer(format string) (Importer, error) {
	i, ok := r.importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: import %q", ErrUnsupportedFormat, format)
	}
	return i, nil
}

// Exporter returns the exporter for format
func (r *Registry) Exporter(format string) (Exporter, error) {
	e, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("%w: export %q", ErrUnsupportedFormat, format)
	}
	return e, nil
}

// ExportFormats lists the registered export formats in sorted order
func (r *Registry) ExportFormats() []string {
	formats := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
