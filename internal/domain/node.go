package domain

// Sex is the binary attribute collected on the cycling stage
type Sex string

const (
	SexUnset  Sex = ""
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Display colors
const (
	ColorDefault         = "grey"
	ColorMale            = "blue"
	ColorFemale          = "pink"
	ColorCategoryDefault = "white"
)

// Sentinels for unset numeric attributes
const (
	AgeUnset     = -1
	MeasureUnset = -1.0
)

// RespondentKey is the reserved key of the ego node.
const RespondentKey = 0

// DefaultPlacement is where a node sits on the continuous scales until the
// respondent drags it.
const DefaultPlacement = 250.0

// Node represents either the respondent (key 0) or one named alter
type Node struct {
	Key           int     `json:"key" yaml:"key"`
	Name          string  `json:"name" yaml:"name"`
	Size          float64 `json:"size" yaml:"size"`
	Sex           Sex     `json:"sex" yaml:"sex"`
	Color         string  `json:"color" yaml:"color"`
	Age           int     `json:"age" yaml:"age"`
	Category      string  `json:"category" yaml:"category"`
	CategoryColor string  `json:"category_color" yaml:"category_color"`
	Link          int     `json:"link" yaml:"link"`

	// Continuous placement stages
	FixedPosX float64 `json:"fixed_pos_x" yaml:"fixed_pos_x"`
	FixedPosY float64 `json:"fixed_pos_y" yaml:"fixed_pos_y"`
	Closeness float64 `json:"closeness" yaml:"closeness"`
	Liking    float64 `json:"liking" yaml:"liking"`

	// Render position for anchored and floating layouts
	FloatX      float64 `json:"float_x" yaml:"float_x"`
	FloatY      float64 `json:"float_y" yaml:"float_y"`
	ShouldFloat bool    `json:"should_float" yaml:"should_float"`
}

// NewNode creates a node with unset attributes
func NewNode(key int, name string, size float64) Node {
	return Node{
		Key:           key,
		Name:          name,
		Size:          size,
		Sex:           SexUnset,
		Color:         ColorDefault,
		Age:           AgeUnset,
		CategoryColor: ColorCategoryDefault,
		FixedPosX:     DefaultPlacement,
		FixedPosY:     DefaultPlacement,
		Closeness:     MeasureUnset,
		Liking:        MeasureUnset,
	}
}

// IsRespondent reports whether the node is the ego anchor
func (n Node) IsRespondent() bool {
	return n.Key == RespondentKey
}

// HasAge reports whether an age was assigned
func (n Node) HasAge() bool {
	return n.Age != AgeUnset
}

// IsSet reports whether the attribute collected for field has a value
func (n Node) IsSet(field Field) bool {
	switch field {
	case FieldName:
		return n.Name != ""
	case FieldSex:
		return n.Sex != SexUnset
	case FieldAge:
		return n.HasAge()
	case FieldCategory:
		return n.Category != ""
	case FieldCloseness:
		return n.Closeness != MeasureUnset
	case FieldLiking:
		return n.Liking != MeasureUnset
	default:
		return false
	}
}
