package view

import (
	"errors"
	"fmt"
	"time"

	"go-wetta-dashboard/internal/registry"
)

// ErrSchemaDrift means the latest-reading row no longer lines up with the
// metric registry. It is a configuration error, never a per-value one.
var ErrSchemaDrift = errors.New("latest reading does not match metric registry")

// TileUpdate is the formatted text for one tile.
type TileUpdate struct {
	WidgetID string `json:"widget_id"`
	Text     string `json:"text"`
}

// Dispatch zips a latest-reading row with the registry by position and
// formats every value with its descriptor's formatter.
func Dispatch(reg *registry.Registry, row []any) ([]TileUpdate, error) {
	metrics := reg.Metrics()
	if len(row) != len(metrics) {
		return nil, fmt.Errorf("%w: row has %d values, registry has %d metrics", ErrSchemaDrift, len(row), len(metrics))
	}

	out := make([]TileUpdate, len(metrics))
	for i, m := range metrics {
		out[i] = TileUpdate{WidgetID: m.WidgetID, Text: m.Format(row[i])}
	}
	return out, nil
}

// Placeholder is shown on tiles that have not received a value yet.
const Placeholder = "Lädt..."

// Board holds the live text of every tile. The poll loop that owns it
// replaces its contents on every tick.
type Board struct {
	text      map[string]string
	updatedAt time.Time
}

func NewBoard() *Board {
	return &Board{text: map[string]string{}}
}

// Apply stores the texts of one poll.
func (b *Board) Apply(updates []TileUpdate, at time.Time) {
	next := make(map[string]string, len(updates))
	for _, u := range updates {
		next[u.WidgetID] = u.Text
	}
	b.text = next
	b.updatedAt = at
}

// Text returns the tile text, or the placeholder before the first poll.
func (b *Board) Text(widgetID string) string {
	if t, ok := b.text[widgetID]; ok {
		return t
	}
	return Placeholder
}

func (b *Board) UpdatedAt() time.Time { return b.updatedAt }
