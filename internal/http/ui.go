package http

import (
	"bytes"
	"embed"
	"html/template"
	nethttp "net/http"

	"go-wetta-dashboard/internal/history"
	"go-wetta-dashboard/internal/view"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

const pageTitle = "Wetta"

type granularityOption struct {
	Value string
	Label string
}

// clientConfig is handed to the page script as JSON.
type clientConfig struct {
	PollIntervalMS int               `json:"pollIntervalMs"`
	State          rangeState        `json:"state"`
	Bounds         map[string]string `json:"bounds"`
}

type dashboardPage struct {
	Title         string
	Station       string
	Placeholder   string
	Layout        view.Layout
	Granularities []granularityOption
	State         rangeState
	Bounds        map[string]string
	Client        clientConfig
}

func parseDashboardTemplate() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/dashboard.html")
}

func dashboardHandler(page *template.Template, layout view.Layout, station string, pollIntervalMS int, ctrl *history.Controller) nethttp.HandlerFunc {
	options := make([]granularityOption, 0, len(history.Granularities()))
	for _, g := range history.Granularities() {
		options = append(options, granularityOption{Value: string(g), Label: g.Label()})
	}

	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/" {
			nethttp.NotFound(w, r)
			return
		}

		// The picker defaults and bounds depend on today.
		state := stateDTO(ctrl.Default())
		bounds := boundsDTO(ctrl.Bounds())
		data := dashboardPage{
			Title:         pageTitle,
			Station:       station,
			Placeholder:   view.Placeholder,
			Layout:        layout,
			Granularities: options,
			State:         state,
			Bounds:        bounds,
			Client: clientConfig{
				PollIntervalMS: pollIntervalMS,
				State:          state,
				Bounds:         bounds,
			},
		}

		var buf bytes.Buffer
		if err := page.Execute(&buf, data); err != nil {
			nethttp.Error(w, "failed to render dashboard", nethttp.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}
