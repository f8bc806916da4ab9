package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gentle/internal/domain"
	"gentle/internal/geometry"
)

func sampleNetwork() *domain.Network {
	net := domain.NewNetwork("s-1")
	net.Viewport = geometry.Viewport{Width: 1080, Height: 750}
	for i, name := range []string{"You", "Ann", "Bo"} {
		n := domain.NewNode(i, name, 30)
		net.AddNode(n)
		net.AddFocus(domain.NewFocus(i, geometry.Focus(net.Viewport, i)))
	}
	net.Nodes[1].Age = 41
	net.Nodes[1].Sex = domain.SexFemale
	net.Nodes[1].Category = "Cat2"
	net.Nodes[1].CategoryColor = "#85DCBA"
	net.Nodes[2].Closeness = 120
	net.AddLink(domain.NewLink(1, 1, 2))
	net.Nodes[1].Link, net.Nodes[2].Link = 1, 1
	net.Progress.LinkKeySeq = 1
	return net
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	for _, f := range []string{"json", "yaml"} {
		_, err := r.Importer(f)
		assert.NoError(t, err, f)
	}
	assert.Equal(t, []string{"csv", "dot", "json", "yaml"}, r.ExportFormats())

	_, err := r.Importer("dot")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = r.Exporter("xml")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestJSONCodec(t *testing.T) {
	c := NewJSONCodec()

	t.Run("export then parse keeps the network", func(t *testing.T) {
		net := sampleNetwork()
		var buf bytes.Buffer
		require.NoError(t, c.Export(net, &buf))
		assert.Contains(t, buf.String(), `"session_id": "s-1"`)

		parsed, err := c.Parse(&buf)
		require.NoError(t, err)
		assert.Equal(t, net.Nodes, parsed.Nodes)
		assert.Equal(t, net.Links, parsed.Links)
		assert.Equal(t, net.Progress, parsed.Progress)
	})

	t.Run("missing collections become empty", func(t *testing.T) {
		parsed, err := c.Parse(strings.NewReader(`{"session_id":"x"}`))
		require.NoError(t, err)
		assert.NotNil(t, parsed.Nodes)
		assert.NotNil(t, parsed.Links)
		assert.NotNil(t, parsed.Foci)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := c.Parse(strings.NewReader(`{"session_id":"x","edges":[]}`))
		assert.Error(t, err)
	})

	t.Run("malformed input", func(t *testing.T) {
		_, err := c.Parse(strings.NewReader(`{`))
		assert.Error(t, err)
	})
}

func TestYAMLCodec(t *testing.T) {
	c := NewYAMLCodec()

	t.Run("export then parse keeps the network", func(t *testing.T) {
		net := sampleNetwork()
		var buf bytes.Buffer
		require.NoError(t, c.Export(net, &buf))
		assert.Contains(t, buf.String(), "session_id: s-1")

		parsed, err := c.Parse(&buf)
		require.NoError(t, err)
		assert.Equal(t, net.Nodes, parsed.Nodes)
		assert.Equal(t, net.Foci, parsed.Foci)
		assert.Equal(t, net.Viewport, parsed.Viewport)
	})

	t.Run("parses a hand written document", func(t *testing.T) {
		doc := `
session_id: manual
nodes:
  - key: 0
    name: You
  - key: 1
    name: Ann
    age: 30
foci:
  - {key: 0, x: 10, y: 10}
  - {key: 1, x: 20, y: 20}
`
		parsed, err := c.Parse(strings.NewReader(doc))
		require.NoError(t, err)
		require.Len(t, parsed.Nodes, 2)
		assert.Equal(t, 30, parsed.Nodes[1].Age)
		assert.Empty(t, parsed.Links)
	})
}

func TestDOTCodec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDOTCodec().Export(sampleNetwork(), &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "strict graph ego {") || strings.HasPrefix(out, "graph ego {"), out)
	assert.Contains(t, out, `label="Ann"`)
	assert.Contains(t, out, "shape=doublecircle")
	assert.Contains(t, out, "age=41")
	assert.Contains(t, out, "n1 -- n2")

	t.Run("dangling link", func(t *testing.T) {
		net := sampleNetwork()
		net.Links = append(net.Links, domain.NewLink(2, 1, 9))
		err := NewDOTCodec().Export(net, &bytes.Buffer{})
		assert.Error(t, err)
	})
}

func TestCSVCodec(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVCodec().Export(sampleNetwork(), &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "key,name,sex,age,category,closeness,liking,degree", lines[0])
	assert.Equal(t, "1,Ann,female,41,Cat2,,,1", lines[1])
	assert.Equal(t, "2,Bo,,,,120,,1", lines[2])
}
