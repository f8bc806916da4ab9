package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gentle/internal/domain"
)

// csvHeader is the column layout of the alter attribute table
var csvHeader = []string{
	"key", "name", "sex", "age", "category", "closeness", "liking", "degree",
}

// CSVCodec exports one row per alter with every collected attribute. Unset
// values are left empty so that statistical packages read them as missing.
type CSVCodec struct{}

// NewCSVCodec creates a new CSV codec
func NewCSVCodec() *CSVCodec {
	return &CSVCodec{}
}

// Format returns the codec format identifier
func (c *CSVCodec) Format() string {
	return "csv"
}

// ContentType returns the MIME type of exported documents
func (c *CSVCodec) ContentType() string {
	return "text/csv"
}

// Export writes the alter attribute table
func (c *CSVCodec) Export(net *domain.Network, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, n := range net.Nodes {
		if n.IsRespondent() {
			continue
		}
		row := []string{
			strconv.Itoa(n.Key),
			n.Name,
			string(n.Sex),
			optionalInt(n.HasAge(), n.Age),
			n.Category,
			optionalFloat(n.IsSet(domain.FieldCloseness), n.Closeness),
			optionalFloat(n.IsSet(domain.FieldLiking), n.Liking),
			strconv.Itoa(n.Link),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", n.Key, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func optionalInt(set bool, v int) string {
	if !set {
		return ""
	}
	return strconv.Itoa(v)
}

func optionalFloat(set bool, v float64) string {
	if !set {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
