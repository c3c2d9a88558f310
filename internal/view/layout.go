package view

import "go-wetta-dashboard/internal/registry"

// Tile is one current-value widget.
type Tile struct {
	WidgetID string `json:"widget_id"`
	Label    string `json:"label"`
	Unit     string `json:"unit"`
}

// Section groups the tiles of one category.
type Section struct {
	Category string `json:"category"`
	Tiles    []Tile `json:"tiles"`
}

// Layout is the static tile arrangement of the current-conditions view.
// Header tiles belong to the registry's header category and render above
// the sections.
type Layout struct {
	Header   []Tile    `json:"header"`
	Sections []Section `json:"sections"`
}

// BuildLayout emits one section per declared category, in declaration
// order, and one tile per metric in registry order. Empty categories follow
// the registry's policy.
func BuildLayout(reg *registry.Registry) Layout {
	metrics := reg.Metrics()

	var out Layout
	for _, m := range metrics {
		if m.Category == reg.HeaderCategory() {
			out.Header = append(out.Header, tileOf(m))
		}
	}

	for _, category := range reg.Categories() {
		section := Section{Category: category, Tiles: []Tile{}}
		for _, m := range metrics {
			if m.Category == category {
				section.Tiles = append(section.Tiles, tileOf(m))
			}
		}
		if len(section.Tiles) == 0 && reg.EmptyCategories() == registry.EmptyCategoriesHide {
			continue
		}
		out.Sections = append(out.Sections, section)
	}
	return out
}

// Tiles returns header and section tiles in display order.
func (l Layout) Tiles() []Tile {
	out := append([]Tile(nil), l.Header...)
	for _, s := range l.Sections {
		out = append(out, s.Tiles...)
	}
	return out
}

func tileOf(m registry.Descriptor) Tile {
	return Tile{WidgetID: m.WidgetID, Label: m.Label, Unit: m.Unit}
}
