package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"time"

	"go-wetta-dashboard/internal/charts"
	"go-wetta-dashboard/internal/connectors/weatherdb"
	"go-wetta-dashboard/internal/history"
	"go-wetta-dashboard/internal/registry"
	"go-wetta-dashboard/internal/view"
)

// Source is the read side of the weather database used by the handlers.
type Source interface {
	FetchLatestReading(ctx context.Context) (weatherdb.Reading, error)
	FetchAggregates(ctx context.Context, w history.QueryWindow) ([]weatherdb.Aggregate, error)
	ServiceStats(ctx context.Context) (*weatherdb.ServiceStats, error)
	Ping(ctx context.Context) error
}

type rangeState struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Granularity string `json:"granularity"`
}

type rangeEdit struct {
	Field       string `json:"field"`
	Value       string `json:"value"`
	Granularity string `json:"granularity"`
}

type rangeRequest struct {
	State *rangeState `json:"state"`
	Edit  rangeEdit   `json:"edit"`
}

const windowLayout = "2006-01-02T15:04"

func stateDTO(s history.State) rangeState {
	return rangeState{From: s.FromString(), To: s.ToString(), Granularity: string(s.Granularity)}
}

func boundsDTO(b history.Bounds) map[string]string {
	return map[string]string{
		"min": b.Min.Format(history.DateLayout),
		"max": b.Max.Format(history.DateLayout),
	}
}

func windowDTO(w history.QueryWindow) map[string]string {
	return map[string]string{
		"start":       w.Start.Format(windowLayout),
		"end":         w.End.Format(windowLayout),
		"granularity": string(w.Granularity),
	}
}

func layoutHandler(layout view.Layout, stationName string) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"station":  stationName,
				"sections": len(layout.Sections),
			},
			"data": layout,
		})
	}
}

func currentHandler(reg *registry.Registry, src Source, m *Metrics, logger *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		reading, err := src.FetchLatestReading(r.Context())
		if errors.Is(err, weatherdb.ErrNoReading) {
			writeJSON(w, nethttp.StatusNotFound, map[string]any{"error": "no weather reading stored"})
			return
		}
		if err != nil {
			logger.ErrorContext(r.Context(), "fetch latest reading", "error", err, "request_id", RequestID(r.Context()))
			writeJSON(w, statusForFetchError(err), map[string]any{"error": "failed to fetch latest reading"})
			return
		}

		updates, err := view.Dispatch(reg, reading.Values)
		if err != nil {
			logger.ErrorContext(r.Context(), "latest reading does not match registry", "error", err)
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}

		for _, v := range reading.Values {
			if t, ok := v.(time.Time); ok {
				m.ObserveReadingTime(t)
				break
			}
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"count":      len(updates),
				"fetched_at": time.Now().UTC(),
			},
			"data": updates,
		})
	}
}

// rangeHandler reconciles one date picker edit. GET returns the initial
// selection.
func rangeHandler(ctrl *history.Controller) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			writeRange(w, nethttp.StatusOK, ctrl, ctrl.Default())
			return
		case nethttp.MethodPost:
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		var req rangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
			return
		}

		state := ctrl.Default()
		if req.State != nil {
			restored, err := ctrl.Restore(req.State.From, req.State.To, req.State.Granularity)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid state: " + err.Error()})
				return
			}
			state = restored
		}

		field, err := history.ParseField(req.Edit.Field)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		edit := history.Edit{Field: field, Value: req.Edit.Value}
		if field == history.FieldGranularity {
			g, err := history.ParseGranularity(req.Edit.Granularity)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			edit.Granularity = g
		}

		next, err := ctrl.Apply(state, edit)
		var verr *history.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, nethttp.StatusUnprocessableEntity, map[string]any{
				"error":  verr.Message,
				"field":  string(verr.Field),
				"data":   stateDTO(next),
				"bounds": boundsDTO(ctrl.Bounds()),
			})
			return
		}
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}

		writeRange(w, nethttp.StatusOK, ctrl, next)
	}
}

func writeRange(w nethttp.ResponseWriter, code int, ctrl *history.Controller, s history.State) {
	writeJSON(w, code, map[string]any{
		"data":   stateDTO(s),
		"window": windowDTO(history.WindowFor(s)),
		"bounds": boundsDTO(ctrl.Bounds()),
	})
}

// parseRangeQuery reads from, to and granularity query parameters. Missing
// dates fall back to the preset of the requested granularity.
func parseRangeQuery(ctrl *history.Controller, r *nethttp.Request) (history.State, error) {
	q := r.URL.Query()
	return ctrl.Resolve(q.Get("from"), q.Get("to"), q.Get("granularity"))
}

func historyHandler(ctrl *history.Controller, src Source, logger *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		state, err := parseRangeQuery(ctrl, r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}

		window := history.WindowFor(state)
		items, err := src.FetchAggregates(r.Context(), window)
		if err != nil {
			logger.ErrorContext(r.Context(), "fetch aggregates", "error", err, "request_id", RequestID(r.Context()))
			writeJSON(w, statusForFetchError(err), map[string]any{"error": "failed to fetch historical data"})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"state":  stateDTO(state),
				"window": windowDTO(window),
				"count":  len(items),
			},
			"data": items,
		})
	}
}

type chartRenderer func(io.Writer, []weatherdb.Aggregate, charts.Options) error

func chartHandler(render chartRenderer, ctrl *history.Controller, src Source, logger *slog.Logger) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		state, err := parseRangeQuery(ctrl, r)
		if err != nil {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}

		items, err := src.FetchAggregates(r.Context(), history.WindowFor(state))
		if err != nil {
			logger.ErrorContext(r.Context(), "fetch aggregates for chart", "error", err, "path", r.URL.Path)
			writeJSON(w, statusForFetchError(err), map[string]any{"error": "failed to fetch historical data"})
			return
		}

		opts := charts.Options{
			Width:       parseIntParam(r, "width", 1000, 200, 2400),
			Height:      parseIntParam(r, "height", 420, 150, 1600),
			Granularity: state.Granularity,
		}
		var buf bytes.Buffer
		if err := render(&buf, items, opts); err != nil {
			logger.ErrorContext(r.Context(), "render chart", "error", err, "path", r.URL.Path)
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to render chart"})
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(nethttp.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func statusForFetchError(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return nethttp.StatusGatewayTimeout
	}
	return nethttp.StatusBadGateway
}

func parseIntParam(r *nethttp.Request, key string, def, lo, hi int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return min(max(v, lo), hi)
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
