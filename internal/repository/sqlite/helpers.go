package sqlite

import (
	"fmt"
	"time"

	"gentle/internal/domain"
	"gentle/internal/geometry"
)

// ============================================================================
// Conversion Helpers
// ============================================================================

// boolToInt converts a bool to SQLite's integer representation
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timeLayout keeps every fraction digit so TEXT columns sort chronologically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders a timestamp for TEXT columns
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a timestamp written by formatTime
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a column to the nodes table:
// 1. Add the field to nodeRow
// 2. APPEND it to scanArgs(), nodeColumns and insertArgs()
// 3. Map it in toDomain() and newNodeRow()
// 4. Add a migration in sqlite.go migrate()
//
// Column order must match between nodeColumns, scanArgs() and insertArgs().

// ============================================================================
// Session Row Scanner
// ============================================================================

// sessionRow holds all columns of a session query
type sessionRow struct {
	ID             string
	ViewportWidth  float64
	ViewportHeight float64
	Narrow         int
	Counter        int
	Correction     int
	Source         int
	LinkKeySeq     int
	CreatedAt      string
	UpdatedAt      string
}

// scanArgs returns pointers in sessionColumns order
func (r *sessionRow) scanArgs() []any {
	return []any{
		&r.ID,             // 1
		&r.ViewportWidth,  // 2
		&r.ViewportHeight, // 3
		&r.Narrow,         // 4
		&r.Counter,        // 5
		&r.Correction,     // 6
		&r.Source,         // 7
		&r.LinkKeySeq,     // 8
		&r.CreatedAt,      // 9
		&r.UpdatedAt,      // 10
	}
}

// toDomain converts the row to a network without nodes or links
func (r *sessionRow) toDomain() (*domain.Network, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := parseTime(r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	net := domain.NewNetwork(r.ID)
	net.Viewport = geometry.Viewport{
		Width:  r.ViewportWidth,
		Height: r.ViewportHeight,
		Narrow: r.Narrow != 0,
	}
	net.Progress = domain.Progress{
		Counter:    r.Counter,
		Correction: r.Correction,
		Source:     r.Source,
		LinkKeySeq: r.LinkKeySeq,
	}
	net.CreatedAt = created
	net.UpdatedAt = updated
	return net, nil
}

// insertArgs returns values in sessionColumns order
func (r *sessionRow) insertArgs() []any {
	return []any{
		r.ID, r.ViewportWidth, r.ViewportHeight, r.Narrow,
		r.Counter, r.Correction, r.Source, r.LinkKeySeq,
		r.CreatedAt, r.UpdatedAt,
	}
}

func newSessionRow(net *domain.Network) *sessionRow {
	return &sessionRow{
		ID:             net.SessionID,
		ViewportWidth:  net.Viewport.Width,
		ViewportHeight: net.Viewport.Height,
		Narrow:         boolToInt(net.Viewport.Narrow),
		Counter:        net.Progress.Counter,
		Correction:     net.Progress.Correction,
		Source:         net.Progress.Source,
		LinkKeySeq:     net.Progress.LinkKeySeq,
		CreatedAt:      formatTime(net.CreatedAt),
		UpdatedAt:      formatTime(net.UpdatedAt),
	}
}

// sessionColumns is the column list for session queries
const sessionColumns = `id, viewport_width, viewport_height, narrow,
	counter, correction, source, link_key_seq, created_at, updated_at`

// ============================================================================
// Node Row Scanner
// ============================================================================

// nodeRow holds all columns of a node query. The focus of the node is
// stored alongside it since the two are index-aligned.
type nodeRow struct {
	Key           int
	Name          string
	Size          float64
	Sex           string
	Color         string
	Age           int
	Category      string
	CategoryColor string
	Link          int
	FixedPosX     float64
	FixedPosY     float64
	Closeness     float64
	Liking        float64
	FloatX        float64
	FloatY        float64
	ShouldFloat   int
	FocusX        float64
	FocusY        float64
}

// scanArgs returns pointers in nodeColumns order
func (r *nodeRow) scanArgs() []any {
	return []any{
		&r.Key,           // 1
		&r.Name,          // 2
		&r.Size,          // 3
		&r.Sex,           // 4
		&r.Color,         // 5
		&r.Age,           // 6
		&r.Category,      // 7
		&r.CategoryColor, // 8
		&r.Link,          // 9
		&r.FixedPosX,     // 10
		&r.FixedPosY,     // 11
		&r.Closeness,     // 12
		&r.Liking,        // 13
		&r.FloatX,        // 14
		&r.FloatY,        // 15
		&r.ShouldFloat,   // 16
		&r.FocusX,        // 17
		&r.FocusY,        // 18
	}
}

// toDomain converts the row to a node and its focus
func (r *nodeRow) toDomain() (domain.Node, domain.Focus) {
	node := domain.Node{
		Key:           r.Key,
		Name:          r.Name,
		Size:          r.Size,
		Sex:           domain.Sex(r.Sex),
		Color:         r.Color,
		Age:           r.Age,
		Category:      r.Category,
		CategoryColor: r.CategoryColor,
		Link:          r.Link,
		FixedPosX:     r.FixedPosX,
		FixedPosY:     r.FixedPosY,
		Closeness:     r.Closeness,
		Liking:        r.Liking,
		FloatX:        r.FloatX,
		FloatY:        r.FloatY,
		ShouldFloat:   r.ShouldFloat != 0,
	}
	return node, domain.Focus{Key: r.Key, X: r.FocusX, Y: r.FocusY}
}

// insertArgs returns values in nodeColumns order, prefixed by the session id
func (r *nodeRow) insertArgs(sessionID string) []any {
	return []any{
		sessionID,
		r.Key, r.Name, r.Size, r.Sex, r.Color, r.Age, r.Category,
		r.CategoryColor, r.Link, r.FixedPosX, r.FixedPosY, r.Closeness,
		r.Liking, r.FloatX, r.FloatY, r.ShouldFloat, r.FocusX, r.FocusY,
	}
}

func newNodeRow(n domain.Node, f domain.Focus) *nodeRow {
	return &nodeRow{
		Key:           n.Key,
		Name:          n.Name,
		Size:          n.Size,
		Sex:           string(n.Sex),
		Color:         n.Color,
		Age:           n.Age,
		Category:      n.Category,
		CategoryColor: n.CategoryColor,
		Link:          n.Link,
		FixedPosX:     n.FixedPosX,
		FixedPosY:     n.FixedPosY,
		Closeness:     n.Closeness,
		Liking:        n.Liking,
		FloatX:        n.FloatX,
		FloatY:        n.FloatY,
		ShouldFloat:   boolToInt(n.ShouldFloat),
		FocusX:        f.X,
		FocusY:        f.Y,
	}
}

// nodeColumns is the column list for node queries
const nodeColumns = `key, name, size, sex, color, age, category, category_color,
	link, fixed_pos_x, fixed_pos_y, closeness, liking, float_x, float_y,
	should_float, focus_x, focus_y`

// ============================================================================
// Link Row Scanner
// ============================================================================

// linkColumns is the column list for link queries
const linkColumns = `key, source, target`
