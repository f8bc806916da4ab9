package domain

// Category is one entry of the categorical palette
type Category struct {
	ID    int    `json:"id" yaml:"id"`
	Text  string `json:"text" yaml:"text"`
	Color string `json:"color" yaml:"color"`
}

// DefaultCategories is the demonstration palette
func DefaultCategories() []Category {
	return []Category{
		{ID: 0, Text: "Cat1", Color: "#E27D60"},
		{ID: 1, Text: "Cat2", Color: "#85DCBA"},
		{ID: 2, Text: "Cat3", Color: "#E8A87C"},
		{ID: 3, Text: "Cat4", Color: "red"},
	}
}

// Palette is an ordered set of categories addressed by ID
type Palette []Category

// Lookup finds a category by ID
func (p Palette) Lookup(id int) (Category, bool) {
	for _, c := range p {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
