package codec

import (
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"gentle/internal/domain"
)

// DOTCodec exports the ego network as an undirected Graphviz graph. The
// respondent is included as an isolated node; alter ties become edges.
type DOTCodec struct{}

// NewDOTCodec creates a new DOT codec
func NewDOTCodec() *DOTCodec {
	return &DOTCodec{}
}

// Format returns the codec format identifier
func (c *DOTCodec) Format() string {
	return "dot"
}

// ContentType returns the MIME type of exported documents
func (c *DOTCodec) ContentType() string {
	return "text/vnd.graphviz"
}

// Export writes the network in DOT format
func (c *DOTCodec) Export(net *domain.Network, w io.Writer) error {
	g := simple.NewUndirectedGraph()

	nodes := make(map[int]dotNode, len(net.Nodes))
	for _, n := range net.Nodes {
		dn := dotNode{node: n}
		nodes[n.Key] = dn
		g.AddNode(dn)
	}

	for _, l := range net.Links {
		from, okFrom := nodes[l.Source]
		to, okTo := nodes[l.Target]
		if !okFrom || !okTo {
			return fmt.Errorf("failed to encode DOT: link %d references unknown node", l.Key)
		}
		g.SetEdge(dotEdge{Edge: simple.Edge{F: from, T: to}, key: l.Key})
	}

	data, err := dot.Marshal(g, "ego", "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode DOT: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write DOT: %w", err)
	}
	return nil
}

type dotNode struct {
	node domain.Node
}

func (n dotNode) ID() int64 { return int64(n.node.Key) }

func (n dotNode) DOTID() string { return "n" + strconv.Itoa(n.node.Key) }

func (n dotNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "label", Value: strconv.Quote(n.node.Name)},
	}
	if n.node.IsRespondent() {
		return append(attrs, encoding.Attribute{Key: "shape", Value: "doublecircle"})
	}
	if n.node.Sex != domain.SexUnset {
		attrs = append(attrs, encoding.Attribute{Key: "sex", Value: string(n.node.Sex)})
	}
	if n.node.HasAge() {
		attrs = append(attrs, encoding.Attribute{Key: "age", Value: strconv.Itoa(n.node.Age)})
	}
	if n.node.Category != "" {
		attrs = append(attrs,
			encoding.Attribute{Key: "category", Value: strconv.Quote(n.node.Category)},
			encoding.Attribute{Key: "fillcolor", Value: strconv.Quote(n.node.CategoryColor)},
			encoding.Attribute{Key: "style", Value: "filled"},
		)
	}
	return attrs
}

type dotEdge struct {
	simple.Edge
	key int
}

func (e dotEdge) ReversedEdge() graph.Edge {
	return dotEdge{Edge: simple.Edge{F: e.T, T: e.F}, key: e.key}
}

func (e dotEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "key", Value: strconv.Itoa(e.key)}}
}
