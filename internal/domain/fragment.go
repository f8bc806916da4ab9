package domain

import (
	"time"

	"gentle/internal/geometry"
)

// NoSource marks that no link source is selected
const NoSource = -1

// Progress is the per-respondent scalar state of the elicitation
type Progress struct {
	Counter    int `json:"counter" yaml:"counter"`
	Correction int `json:"correction" yaml:"correction"`
	Source     int `json:"source" yaml:"source"`

	// LinkKeySeq is the highest link key ever issued
	LinkKeySeq int `json:"link_key_seq" yaml:"link_key_seq"`
}

// NewProgress returns progress for a session with only the respondent node
func NewProgress() Progress {
	return Progress{Counter: 1, Source: NoSource}
}

// Network is a complete, detached copy of one respondent's elicited network.
// It is what the repository stores and what codecs import and export.
type Network struct {
	SessionID string            `json:"session_id" yaml:"session_id"`
	Viewport  geometry.Viewport `json:"viewport" yaml:"viewport"`
	Nodes     []Node            `json:"nodes" yaml:"nodes"`
	Links     []Link            `json:"links" yaml:"links"`
	Foci      []Focus           `json:"foci" yaml:"foci"`
	Progress  Progress          `json:"progress" yaml:"progress"`
	CreatedAt time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
}

// NewNetwork creates an empty network snapshot
func NewNetwork(sessionID string) *Network {
	now := time.Now()
	return &Network{
		SessionID: sessionID,
		Nodes:     make([]Node, 0),
		Links:     make([]Link, 0),
		Foci:      make([]Focus, 0),
		Progress:  NewProgress(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddNode adds a node to the snapshot
func (n *Network) AddNode(node Node) {
	n.Nodes = append(n.Nodes, node)
}

// AddLink adds a link to the snapshot
func (n *Network) AddLink(link Link) {
	n.Links = append(n.Links, link)
}

// AddFocus adds a focus to the snapshot
func (n *Network) AddFocus(focus Focus) {
	n.Foci = append(n.Foci, focus)
}

// Alters returns the number of non-respondent nodes
func (n *Network) Alters() int {
	if len(n.Nodes) == 0 {
		return 0
	}
	return len(n.Nodes) - 1
}

// Clone returns a deep copy that shares no slices with n
func (n *Network) Clone() *Network {
	c := *n
	c.Nodes = append([]Node(nil), n.Nodes...)
	c.Links = append([]Link(nil), n.Links...)
	c.Foci = append([]Focus(nil), n.Foci...)
	if c.Nodes == nil {
		c.Nodes = make([]Node, 0)
	}
	if c.Links == nil {
		c.Links = make([]Link, 0)
	}
	if c.Foci == nil {
		c.Foci = make([]Focus, 0)
	}
	return &c
}

// SessionSummary is the listing entry of a stored session
type SessionSummary struct {
	SessionID string    `json:"session_id"`
	Alters    int       `json:"alters"`
	Links     int       `json:"links"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary returns the listing entry for the network
func (n *Network) Summary() SessionSummary {
	return SessionSummary{
		SessionID: n.SessionID,
		Alters:    n.Alters(),
		Links:     len(n.Links),
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
