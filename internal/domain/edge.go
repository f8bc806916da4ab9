package domain

import "fmt"

// Link is an undirected tie between two alters
type Link struct {
	Key    int `json:"key" yaml:"key"`
	Source int `json:"source" yaml:"source"`
	Target int `json:"target" yaml:"target"`
}

// NewLink creates a link between two node keys
func NewLink(key, source, target int) Link {
	return Link{Key: key, Source: source, Target: target}
}

// Connects reports whether the link joins a and b, in either direction
func (l Link) Connects(a, b int) bool {
	return (l.Source == a && l.Target == b) || (l.Source == b && l.Target == a)
}

// Involves checks if this link touches the given node key
func (l Link) Involves(key int) bool {
	return l.Source == key || l.Target == key
}

// Pair returns the endpoints ordered low to high, used for uniqueness checks
func (l Link) Pair() [2]int {
	if l.Source > l.Target {
		return [2]int{l.Target, l.Source}
	}
	return [2]int{l.Source, l.Target}
}

func (l Link) String() string {
	return fmt.Sprintf("link %d (%d-%d)", l.Key, l.Source, l.Target)
}
