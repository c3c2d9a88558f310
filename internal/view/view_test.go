package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-wetta-dashboard/internal/registry"
)

func threeMetricRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]string{"Temperatur", "Wind"}, []registry.Descriptor{
		registry.Metric("temp_outdoor_c", "Draußen", "Temperatur", registry.WithID("A"), registry.WithUnit("°C")),
		registry.Metric("temp_indoor_c", "Drinnen", "Temperatur", registry.WithID("B"), registry.WithUnit("°C")),
		registry.Metric("wind_direction", "Richtung", "Wind", registry.WithID("C"), registry.WithFormatter(registry.CompassBearing)),
	})
	require.NoError(t, err)
	return reg
}

func TestDispatch_EndToEnd(t *testing.T) {
	reg := threeMetricRegistry(t)

	updates, err := Dispatch(reg, []any{21.4, 19.8, 225.0})
	require.NoError(t, err)

	assert.Equal(t, []TileUpdate{
		{WidgetID: "A", Text: "21.4"},
		{WidgetID: "B", Text: "19.8"},
		{WidgetID: "C", Text: "Südwest - 225"},
	}, updates)
}

func TestDispatch_ColumnCountMismatchIsFatal(t *testing.T) {
	reg := threeMetricRegistry(t)

	_, err := Dispatch(reg, []any{21.4, 19.8})
	assert.ErrorIs(t, err, ErrSchemaDrift)

	_, err = Dispatch(reg, []any{21.4, 19.8, 225.0, 1.0})
	assert.ErrorIs(t, err, ErrSchemaDrift)
}

func TestBuildLayout_GroupsByCategoryOrder(t *testing.T) {
	reg, err := registry.New([]string{"Wind", "Temperatur"}, []registry.Descriptor{
		registry.Metric("temp_outdoor_c", "Draußen", "Temperatur", registry.WithID("A")),
		registry.Metric("wind_direction", "Richtung", "Wind", registry.WithID("C")),
		registry.Metric("temp_indoor_c", "Drinnen", "Temperatur", registry.WithID("B")),
		registry.Metric("`timestamp`", "Zeit", registry.DefaultHeaderCategory, registry.WithID("T"), registry.WithFormatter(registry.Timestamp)),
	})
	require.NoError(t, err)

	layout := BuildLayout(reg)

	require.Len(t, layout.Sections, 2)
	assert.Equal(t, "Wind", layout.Sections[0].Category)
	assert.Equal(t, []Tile{{WidgetID: "C", Label: "Richtung"}}, layout.Sections[0].Tiles)
	assert.Equal(t, "Temperatur", layout.Sections[1].Category)
	assert.Equal(t, "A", layout.Sections[1].Tiles[0].WidgetID)
	assert.Equal(t, "B", layout.Sections[1].Tiles[1].WidgetID)
	assert.Equal(t, []Tile{{WidgetID: "T", Label: "Zeit"}}, layout.Header)
	assert.Len(t, layout.Tiles(), 4)
}

// An empty category either renders as an empty section or disappears,
// depending on the configured policy. Both behaviours are pinned here.
func TestBuildLayout_EmptyCategory(t *testing.T) {
	categories := []string{"Temperatur", "Sonne"}
	metrics := []registry.Descriptor{registry.Metric("temp_outdoor_c", "Draußen", "Temperatur")}

	t.Run("render", func(t *testing.T) {
		reg, err := registry.New(categories, metrics, registry.WithEmptyCategories(registry.EmptyCategoriesRender))
		require.NoError(t, err)

		layout := BuildLayout(reg)
		require.Len(t, layout.Sections, 2)
		assert.Equal(t, "Sonne", layout.Sections[1].Category)
		assert.Empty(t, layout.Sections[1].Tiles)
	})

	t.Run("hide", func(t *testing.T) {
		reg, err := registry.New(categories, metrics, registry.WithEmptyCategories(registry.EmptyCategoriesHide))
		require.NoError(t, err)

		layout := BuildLayout(reg)
		require.Len(t, layout.Sections, 1)
		assert.Equal(t, "Temperatur", layout.Sections[0].Category)
	})
}

func TestBuildLayout_Wetta(t *testing.T) {
	reg, err := registry.Wetta()
	require.NoError(t, err)

	layout := BuildLayout(reg)
	require.Len(t, layout.Sections, 6)
	assert.Len(t, layout.Sections[2].Tiles, 6, "Niederschlag")
	assert.Equal(t, "current-time", layout.Header[0].WidgetID)
	assert.Len(t, layout.Tiles(), reg.Len())
}

func TestBoard(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, Placeholder, b.Text("A"))

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b.Apply([]TileUpdate{{WidgetID: "A", Text: "21.4"}}, at)
	assert.Equal(t, "21.4", b.Text("A"))
	assert.Equal(t, at, b.UpdatedAt())

	b.Apply([]TileUpdate{{WidgetID: "B", Text: "19.8"}}, at.Add(time.Minute))
	assert.Equal(t, Placeholder, b.Text("A"), "each poll replaces the board")
	assert.Equal(t, "19.8", b.Text("B"))
}
