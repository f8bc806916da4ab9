package domain

import (
	"testing"
)

func TestNewLink(t *testing.T) {
	link := NewLink(4, 2, 5)

	if link.Key != 4 {
		t.Errorf("expected key 4, got %d", link.Key)
	}
	if link.Source != 2 || link.Target != 5 {
		t.Errorf("expected 2-5, got %d-%d", link.Source, link.Target)
	}
}

func TestLinkConnects(t *testing.T) {
	link := NewLink(1, 2, 5)

	tests := []struct {
		name string
		a, b int
		want bool
	}{
		{"same direction", 2, 5, true},
		{"reverse direction", 5, 2, true},
		{"one endpoint", 2, 3, false},
		{"unrelated", 3, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := link.Connects(tt.a, tt.b); got != tt.want {
				t.Errorf("Connects(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLinkInvolves(t *testing.T) {
	link := NewLink(1, 2, 5)

	if !link.Involves(2) || !link.Involves(5) {
		t.Error("expected link to involve both endpoints")
	}
	if link.Involves(3) {
		t.Error("expected link not to involve node 3")
	}
}


func TestLinkPair(t *testing.T) {
	t.Run("orders endpoints", func(t *testing.T) {
		a := NewLink(1, 5, 2).Pair()
		b := NewLink(2, 2, 5).Pair()
		if a != b {
			t.Errorf("expected equal pairs, got %v and %v", a, b)
		}
		if a != [2]int{2, 5} {
			t.Errorf("expected [2 5], got %v", a)
		}
	})
}

func TestLinkString(t *testing.T) {
	if got := NewLink(7, 1, 3).String(); got != "link 7 (1-3)" {
		t.Errorf("unexpected string %q", got)
	}
}
