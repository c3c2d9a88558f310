package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"go-wetta-dashboard/internal/app"
	"go-wetta-dashboard/internal/charts"
	"go-wetta-dashboard/internal/connectors/weatherdb"
	"go-wetta-dashboard/internal/history"
	"go-wetta-dashboard/internal/logging"
	"go-wetta-dashboard/internal/registry"
	"go-wetta-dashboard/internal/tui"
	"go-wetta-dashboard/internal/view"
)

// Command-specific flags
var (
	currentWatch     bool
	currentJSON      bool
	historyFrom      string
	historyTo        string
	historyGran      string
	historyJSON      bool
	registryJSON     bool
	seedSQLitePath   string
	seedDays         int
	chartKind        string
	chartOut         string
	chartWidth       int
	chartHeight      int
	chartFrom        string
	chartTo          string
	chartGranularity string
)

// serveCmd runs the web dashboard
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web dashboard",
	Long: `Serve the dashboard page, the JSON API and Prometheus metrics.

The server probes the newest reading on startup and refuses to start when
the row does not match the metric registry.

Examples:
  wetta serve
  APP_LISTEN_ADDR=:9000 wetta serve
  wetta serve --config /etc/wetta/config.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.New(os.Stderr, cfg, version)
		if err != nil {
			return err
		}
		logger.Info("starting", "version", version, "env", cfg.Env, "log_level", cfg.LogLevel)

		err = app.Run(cmd.Context(), cfg, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("shutting down")
		return nil
	},
}

// currentCmd prints the current conditions
var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current conditions",
	Long: `Show the newest station reading as a grid of tiles.

With --watch the grid refreshes every poll interval until interrupted.

Examples:
  wetta current
  wetta current --watch
  wetta current --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(func(c *app.Components) error {
			return currentCommand(cmd.Context(), cmd.OutOrStdout(), c)
		})
	},
}

// historyCmd prints aggregates for a date range
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily or hourly aggregates",
	Long: `Show temperature and rain aggregates for a date range.

Missing dates fall back to the preset of the granularity: the last eight
days for daily, yesterday and today for hourly.

Examples:
  wetta history
  wetta history --from 2024-03-01 --to 2024-03-07
  wetta history --granularity hourly --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(func(c *app.Components) error {
			return historyCommand(cmd.Context(), cmd.OutOrStdout(), c)
		})
	},
}

// chartCmd writes a history chart as SVG
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render a history chart to SVG",
	Long: `Render the temperature or rain chart of a date range as SVG.

Examples:
  wetta chart --kind temperature --out temp.svg
  wetta chart --kind rain --granularity hourly > rain.svg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withComponents(func(c *app.Components) error {
			return chartCommand(cmd.Context(), cmd.OutOrStdout(), c)
		})
	},
}

// registryCmd lists the displayable metrics
var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List the displayable metrics",
	Long: `List every metric of the dashboard in display order with its widget id,
category, unit, formatter and source expression. No database is needed.

Examples:
  wetta registry
  wetta registry --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		policy, err := cfg.EmptyCategoryPolicy()
		if err != nil {
			return err
		}
		reg, err := registry.Wetta(registry.WithEmptyCategories(policy))
		if err != nil {
			return err
		}
		return registryCommand(cmd.OutOrStdout(), reg)
	},
}

// seedCmd fills a SQLite file with demo data
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write demo data into a SQLite database",
	Long: `Create the weather tables in a SQLite file and fill them with a
deterministic synthetic history ending now. Running it twice is safe.

Examples:
  wetta seed --sqlite wetta.db
  wetta seed --sqlite /tmp/demo.db --days 90
  APP_DB_DRIVER=sqlite APP_SQLITE_PATH=/tmp/demo.db wetta serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := seedSQLitePath
		if path == "" {
			path = cfg.SQLitePath
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		return seedCommand(cmd.Context(), cmd.OutOrStdout(), path, seedDays, loc)
	},
}

func init() {
	currentCmd.Flags().BoolVarP(&currentWatch, "watch", "w", false, "Refresh every poll interval until interrupted")
	currentCmd.Flags().BoolVar(&currentJSON, "json", false, "Print the tile texts as JSON")

	historyCmd.Flags().StringVar(&historyFrom, "from", "", "First day, YYYY-MM-DD")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "Last day, YYYY-MM-DD")
	historyCmd.Flags().StringVarP(&historyGran, "granularity", "g", "", "daily or hourly")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the aggregates as JSON")

	chartCmd.Flags().StringVarP(&chartKind, "kind", "k", "temperature", "temperature or rain")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "Output file (default: stdout)")
	chartCmd.Flags().IntVar(&chartWidth, "width", 1000, "Chart width in pixels")
	chartCmd.Flags().IntVar(&chartHeight, "height", 420, "Chart height in pixels")
	chartCmd.Flags().StringVar(&chartFrom, "from", "", "First day, YYYY-MM-DD")
	chartCmd.Flags().StringVar(&chartTo, "to", "", "Last day, YYYY-MM-DD")
	chartCmd.Flags().StringVarP(&chartGranularity, "granularity", "g", "", "daily or hourly")

	registryCmd.Flags().BoolVar(&registryJSON, "json", false, "Print the registry as JSON")

	seedCmd.Flags().StringVar(&seedSQLitePath, "sqlite", "", "SQLite file (default: sqlite_path from config)")
	seedCmd.Flags().IntVar(&seedDays, "days", 30, "Days of history to generate")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(currentCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(seedCmd)
}

func withComponents(fn func(*app.Components) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	comps, err := app.Build(cfg)
	if err != nil {
		return err
	}
	defer comps.Close()
	return fn(comps)
}

func currentCommand(ctx context.Context, out io.Writer, c *app.Components) error {
	if currentJSON {
		reading, err := c.Store.FetchLatestReading(ctx)
		if err != nil {
			return err
		}
		updates, err := view.Dispatch(c.Registry, reading.Values)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"data": updates})
	}

	w := &tui.Watcher{
		Title:    c.Config.StationName,
		Registry: c.Registry,
		Source:   c.Store,
		Interval: c.Config.PollInterval(),
		Out:      out,
		Width:    terminalWidth(out, 120),
	}
	if !currentWatch {
		return w.Once(ctx)
	}
	w.Clear = isTerminal(out)
	return w.Run(ctx)
}

func historyCommand(ctx context.Context, out io.Writer, c *app.Components) error {
	state, err := c.Controller.Resolve(historyFrom, historyTo, historyGran)
	if err != nil {
		return err
	}
	window := history.WindowFor(state)
	aggs, err := c.Store.FetchAggregates(ctx, window)
	if err != nil {
		return err
	}

	if historyJSON {
		return writeJSON(out, map[string]any{
			"meta": map[string]any{
				"from":        state.FromString(),
				"to":          state.ToString(),
				"granularity": state.Granularity,
				"count":       len(aggs),
			},
			"data": aggs,
		})
	}
	_, err = fmt.Fprint(out, tui.RenderAggregates(state, aggs))
	return err
}

func chartCommand(ctx context.Context, out io.Writer, c *app.Components) error {
	var render func(io.Writer, []weatherdb.Aggregate, charts.Options) error
	switch strings.ToLower(chartKind) {
	case "temperature", "temp":
		render = charts.RenderTemperature
	case "rain":
		render = charts.RenderRain
	default:
		return fmt.Errorf("unknown chart kind %q (allowed: temperature, rain)", chartKind)
	}

	state, err := c.Controller.Resolve(chartFrom, chartTo, chartGranularity)
	if err != nil {
		return err
	}
	aggs, err := c.Store.FetchAggregates(ctx, history.WindowFor(state))
	if err != nil {
		return err
	}

	if chartOut != "" {
		f, err := os.Create(chartOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return render(out, aggs, charts.Options{Width: chartWidth, Height: chartHeight, Granularity: state.Granularity})
}

type registryEntry struct {
	WidgetID   string `json:"widget_id"`
	Label      string `json:"label"`
	Category   string `json:"category"`
	Unit       string `json:"unit,omitempty"`
	Formatter  string `json:"formatter"`
	Expression string `json:"expression"`
}

func registryCommand(out io.Writer, reg *registry.Registry) error {
	entries := make([]registryEntry, 0, reg.Len())
	for _, m := range reg.Metrics() {
		entries = append(entries, registryEntry{
			WidgetID:   m.WidgetID,
			Label:      m.Label,
			Category:   m.Category,
			Unit:       m.Unit,
			Formatter:  m.Formatter.String(),
			Expression: m.Expression,
		})
	}
	if registryJSON {
		return writeJSON(out, map[string]any{
			"meta": map[string]any{"categories": reg.Categories(), "count": len(entries)},
			"data": entries,
		})
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.WidgetID, e.Category, e.Label, e.Unit, e.Formatter, e.Expression})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("WIDGET", "CATEGORY", "LABEL", "UNIT", "FORMAT", "EXPRESSION").
		Rows(rows...)
	_, err := fmt.Fprintln(out, t.Render())
	return err
}

func seedCommand(ctx context.Context, out io.Writer, path string, days int, loc *time.Location) error {
	db, err := weatherdb.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := weatherdb.EnsureSQLiteSchema(ctx, db); err != nil {
		return err
	}
	res, err := weatherdb.SeedDemoData(ctx, db, time.Now(), days, loc)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "seeded %s: %d readings, %d hourly rows, %d daily rows\n", path, res.Readings, res.HourlyRows, res.DailyRows)
	return nil
}

var _ tui.ReadingSource = (*weatherdb.Store)(nil)
