// Package api serves path queries over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/udisondev/pathtracer/internal/collision"
	"github.com/udisondev/pathtracer/internal/metrics"
	"github.com/udisondev/pathtracer/internal/pathfind"
	"github.com/udisondev/pathtracer/internal/tracer"
)

// SceneSource returns the collision grid of one region plane, or nil.
type SceneSource interface {
	Grid(rx, ry, z int) *collision.Grid
}

type pathResponse struct {
	Path     [][2]int `json:"path"`
	Expanded int      `json:"expanded"`
}

type sightResponse struct {
	Visible bool `json:"visible"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler returns the HTTP API:
//
//	GET /v1/path?region=RX_RY&plane=Z&from=X,Y&to=X,Y
//	GET /v1/sight?region=RX_RY&plane=Z&from=X,Y&to=X,Y
//	GET /metrics
//	GET /health
func NewHandler(scenes SceneSource, tr *tracer.Tracer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /v1/path", func(w http.ResponseWriter, r *http.Request) {
		q, grid, ok := resolveQuery(w, r, scenes)
		if !ok {
			metrics.SearchTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			return
		}

		res, err := tr.Trace(r.Context(), q.from, q.to, grid)
		switch {
		case errors.Is(err, pathfind.ErrUnreachable):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unreachable"})
			return
		case err != nil:
			slog.Error("path query failed", "region", fmt.Sprintf("%d_%d", q.rx, q.ry), "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		out := pathResponse{Path: make([][2]int, len(res.Path)), Expanded: res.Expanded}
		for i, p := range res.Path {
			out.Path[i] = [2]int{p.X, p.Y}
		}
		writeJSON(w, http.StatusOK, out)
	})

	mux.HandleFunc("GET /v1/sight", func(w http.ResponseWriter, r *http.Request) {
		q, grid, ok := resolveQuery(w, r, scenes)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sightResponse{Visible: grid.CanSee(q.from, q.to)})
	})

	return mux
}

// resolveQuery parses the query and looks up its grid. On failure it
// writes the error response and returns false.
func resolveQuery(w http.ResponseWriter, r *http.Request, scenes SceneSource) (pathQuery, *collision.Grid, bool) {
	q, err := parsePathQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return q, nil, false
	}
	grid := scenes.Grid(q.rx, q.ry, q.plane)
	if !grid.IsLoaded() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "region not loaded"})
		return q, nil, false
	}
	return q, grid, true
}

type pathQuery struct {
	rx, ry, plane int
	from, to      collision.Point
}

func parsePathQuery(r *http.Request) (pathQuery, error) {
	v := r.URL.Query()
	var q pathQuery
	var err error

	if q.rx, q.ry, err = ParsePair(v.Get("region"), "_"); err != nil {
		return q, fmt.Errorf("region: %w", err)
	}
	if q.rx < 0 || q.rx >= collision.RegionsX || q.ry < 0 || q.ry >= collision.RegionsY {
		return q, fmt.Errorf("region %d_%d out of range", q.rx, q.ry)
	}

	if s := v.Get("plane"); s != "" {
		if q.plane, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("plane %q: %w", s, err)
		}
	}
	if q.plane < 0 || q.plane >= collision.Planes {
		return q, fmt.Errorf("plane %d out of range", q.plane)
	}

	if q.from, err = ParsePoint(v.Get("from")); err != nil {
		return q, fmt.Errorf("from: %w", err)
	}
	if q.to, err = ParsePoint(v.Get("to")); err != nil {
		return q, fmt.Errorf("to: %w", err)
	}
	return q, nil
}

// ParsePoint parses "X,Y".
func ParsePoint(s string) (collision.Point, error) {
	x, y, err := ParsePair(s, ",")
	if err != nil {
		return collision.Point{}, err
	}
	return collision.Pt(x, y), nil
}

// ParsePair parses two integers joined by sep.
func ParsePair(s, sep string) (int, int, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(s), sep)
	if !ok {
		return 0, 0, fmt.Errorf("want A%sB, got %q", sep, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("parsing %q: %w", a, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("parsing %q: %w", b, err)
	}
	return x, y, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
