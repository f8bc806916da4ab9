package network

import (
	"testing"

	"pgregory.net/rapid"

	"gentle/internal/domain"
	"gentle/internal/geometry"
)

func drawViewport(t *rapid.T) geometry.Viewport {
	w := rapid.Float64Range(200, 2000).Draw(t, "screenWidth")
	h := rapid.Float64Range(200, 1400).Draw(t, "screenHeight")
	return geometry.NewViewport(w, h)
}

func drawStore(t *rapid.T, minAlters int) *Store {
	s := New("prop", drawViewport(t))
	n := rapid.IntRange(minAlters, MaxAlters).Draw(t, "alters")
	for i := 0; i < n; i++ {
		if _, err := s.CreateNode(rapid.StringMatching(`[A-Za-z]{1,8}`).Draw(t, "name")); err != nil {
			t.Fatalf("create node %d: %v", i, err)
		}
	}
	return s
}

func pairSet(links []domain.Link) map[[2]int]bool {
	set := make(map[[2]int]bool, len(links))
	for _, l := range links {
		set[l.Pair()] = true
	}
	return set
}

func TestPropertyFociAligned(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New("prop", drawViewport(t))
		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			name := rapid.SampledFrom([]string{"", " ", "A", "Bob", "Carol"}).Draw(t, "name")
			_, _ = s.CreateNode(name)

			nodes, foci := s.Nodes(), s.Foci()
			if len(nodes) != len(foci) {
				t.Fatalf("nodes %d != foci %d", len(nodes), len(foci))
			}
			if s.Network().Alters() > MaxAlters {
				t.Fatalf("alter limit exceeded: %d", s.Network().Alters())
			}
			for j := range foci {
				if foci[j].Key != j || nodes[j].Key != j {
					t.Fatalf("misaligned at %d", j)
				}
			}
		}
	})
}

func TestPropertyToggleSelfInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawStore(t, 2)
		n := len(s.Nodes())

		seed := rapid.IntRange(0, 10).Draw(t, "seedLinks")
		for i := 0; i < seed; i++ {
			a := rapid.IntRange(1, n-1).Draw(t, "a")
			b := rapid.IntRange(1, n-1).Draw(t, "b")
			if a != b {
				if _, err := s.ToggleLink(a, b); err != nil {
					t.Fatal(err)
				}
			}
		}

		a := rapid.IntRange(1, n-1).Draw(t, "x")
		b := rapid.IntRange(1, n-1).Filter(func(v int) bool { return v != a }).Draw(t, "y")

		beforePairs := pairSet(s.Links())
		beforeNodes := s.Nodes()

		for i := 0; i < 2; i++ {
			if _, err := s.ToggleLink(a, b); err != nil {
				t.Fatal(err)
			}
		}

		afterPairs := pairSet(s.Links())
		if len(afterPairs) != len(beforePairs) {
			t.Fatalf("link count changed: %d -> %d", len(beforePairs), len(afterPairs))
		}
		for p := range beforePairs {
			if !afterPairs[p] {
				t.Fatalf("link %v lost", p)
			}
		}
		for i, node := range s.Nodes() {
			if node.Link != beforeNodes[i].Link {
				t.Fatalf("degree of %d changed: %d -> %d", i, beforeNodes[i].Link, node.Link)
			}
		}
	})
}

func TestPropertyNoDuplicatePairs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawStore(t, 1)
		n := len(s.Nodes())

		clicks := rapid.IntRange(0, 60).Draw(t, "clicks")
		for i := 0; i < clicks; i++ {
			target := rapid.IntRange(0, n-1).Draw(t, "click")
			if _, err := s.SelectForLinking(target, nil); err != nil {
				t.Fatal(err)
			}

			links := s.Links()
			seen := make(map[[2]int]bool, len(links))
			degree := make([]int, n)
			for _, l := range links {
				if l.Source == l.Target || l.Involves(domain.RespondentKey) {
					t.Fatalf("invalid link %s", l)
				}
				if seen[l.Pair()] {
					t.Fatalf("duplicate pair %v", l.Pair())
				}
				seen[l.Pair()] = true
				degree[l.Source]++
				degree[l.Target]++
			}
			for j, node := range s.Nodes() {
				if node.Link != degree[j] {
					t.Fatalf("node %d degree %d, counted %d", j, node.Link, degree[j])
				}
				if node.ShouldFloat && node.Link == 0 {
					t.Fatalf("unlinked node %d floats", j)
				}
			}
		}
	})
}

func TestPropertyRecalculateDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawStore(t, 0)
		n := len(s.Nodes())
		links := rapid.IntRange(0, 8).Draw(t, "links")
		for i := 0; i < links; i++ {
			if n < 3 {
				break
			}
			a := rapid.IntRange(1, n-1).Draw(t, "a")
			b := rapid.IntRange(1, n-1).Draw(t, "b")
			if a != b {
				_, _ = s.ToggleLink(a, b)
			}
		}

		stage := rapid.SampledFrom(domain.Stages).Draw(t, "stage")
		rendered := make([]geometry.Point, n)
		for i := range rendered {
			rendered[i] = geometry.Point{
				X: rapid.Float64Range(0, 1000).Draw(t, "rx"),
				Y: rapid.Float64Range(0, 1000).Draw(t, "ry"),
			}
		}

		nodes, foci, vp := s.Nodes(), s.Foci(), s.Viewport()
		first := Recalculate(nodes, foci, vp, stage, rendered)
		second := Recalculate(nodes, foci, vp, stage, rendered)
		again := Recalculate(first, foci, vp, stage, rendered)

		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("node %d differs between identical calls", i)
			}
			if first[i] != again[i] {
				t.Fatalf("node %d not idempotent", i)
			}
		}
		for i := range nodes {
			if nodes[i] != s.Nodes()[i] {
				t.Fatalf("input node %d was modified", i)
			}
		}
	})
}

func TestPropertyCountIncompleteMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawStore(t, 1)
		n := len(s.Nodes())

		prev := s.CountIncomplete(domain.FieldAge)
		answers := rapid.IntRange(0, 50).Draw(t, "answers")
		for i := 0; i < answers; i++ {
			index := rapid.IntRange(1, n-1).Draw(t, "index")
			age := rapid.IntRange(0, 120).Draw(t, "age")
			if _, err := s.SetAge(index, age); err != nil {
				t.Fatal(err)
			}

			count := s.CountIncomplete(domain.FieldAge)
			if count > prev {
				t.Fatalf("incomplete count grew: %d -> %d", prev, count)
			}
			prev = count

			all := true
			for _, node := range s.Nodes()[1:] {
				if !node.HasAge() {
					all = false
				}
			}
			if (count == 0) != all {
				t.Fatalf("count %d but all answered = %v", count, all)
			}
		}
	})
}
