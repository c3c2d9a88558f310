package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/muesli/termenv"

	"go-wetta-dashboard/internal/connectors/weatherdb"
	"go-wetta-dashboard/internal/registry"
	"go-wetta-dashboard/internal/view"
)

// ReadingSource yields the newest station row.
type ReadingSource interface {
	FetchLatestReading(ctx context.Context) (weatherdb.Reading, error)
}

// Watcher polls the latest reading and redraws the board. It owns the
// board; nothing else mutates it.
type Watcher struct {
	Title    string
	Registry *registry.Registry
	Source   ReadingSource
	Interval time.Duration
	Out      io.Writer
	Width    int
	// Clear redraws in place instead of appending frames.
	Clear bool

	layout view.Layout
	board  *view.Board
}

// Once fetches a single reading and draws one frame.
func (w *Watcher) Once(ctx context.Context) error {
	w.init()
	return w.poll(ctx, true)
}

// Run draws a frame every Interval until ctx is cancelled. Fetch failures
// keep the previous values on screen; a row that no longer matches the
// registry stops the loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.init()
	if w.Interval <= 0 {
		return errors.New("watch interval must be > 0")
	}

	if err := w.poll(ctx, false); err != nil {
		return err
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.poll(ctx, false); err != nil {
				return err
			}
		}
	}
}

func (w *Watcher) init() {
	if w.board == nil {
		w.layout = view.BuildLayout(w.Registry)
		w.board = view.NewBoard()
	}
	if w.Width <= 0 {
		w.Width = 120
	}
}

// poll returns an error only for failures that must end the loop. With
// strict set, every fetch failure is returned.
func (w *Watcher) poll(ctx context.Context, strict bool) error {
	reading, fetchErr := w.Source.FetchLatestReading(ctx)
	switch {
	case fetchErr == nil:
		updates, err := view.Dispatch(w.Registry, reading.Values)
		if err != nil {
			return err
		}
		w.board.Apply(updates, time.Now())
	case ctx.Err() != nil:
		return nil
	case strict:
		return fetchErr
	}

	if w.Clear {
		termenv.NewOutput(w.Out).ClearScreen()
	}
	fmt.Fprint(w.Out, RenderBoard(w.Title, w.layout, w.board, w.Width))
	if fetchErr != nil {
		fmt.Fprintln(w.Out, errorStyle.Render("Abruf fehlgeschlagen: "+fetchErr.Error()))
	} else {
		fmt.Fprintln(w.Out, mutedStyle.Render("Aktualisiert "+w.board.UpdatedAt().Format("15:04:05")))
	}
	return nil
}
