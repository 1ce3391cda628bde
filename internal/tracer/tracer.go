// Package tracer wires path searches to the host environment and a presenter.
package tracer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/pathtracer/internal/collision"
	"github.com/udisondev/pathtracer/internal/db"
	"github.com/udisondev/pathtracer/internal/metrics"
	"github.com/udisondev/pathtracer/internal/pathfind"
	"github.com/udisondev/pathtracer/internal/telemetry"
)

// ErrInvalidInput is returned when the start or destination tile cannot be resolved.
var ErrInvalidInput = errors.New("start or destination unavailable")

// Notices shown to the user.
const (
	NoticeNoAgent       = "no active player"
	NoticeNoDestination = "no destination tile selected"
	NoticeUnreachable   = "destination unreachable"
)

// Environment supplies the agent position, the selected tile and collision data.
type Environment interface {
	CurrentTile(ctx context.Context) (collision.Point, bool)
	SelectedTile(ctx context.Context) (collision.Point, bool)
	Collision(ctx context.Context) (*collision.Grid, error)
}

// Presenter displays paths. It holds no pathfinding logic.
type Presenter interface {
	ShowPath(path []collision.Point)
	ClearPath()
	Notify(msg string)
}

// RouteRecorder persists traced routes.
type RouteRecorder interface {
	RecordRoute(ctx context.Context, route db.Route) (int64, error)
}

type cacheKey struct {
	digest      [32]byte
	start, goal collision.Point
}

// Tracer runs searches on user triggers and keeps the last path.
// Safe for concurrent use.
type Tracer struct {
	env       Environment
	presenter Presenter
	finder    *pathfind.Finder
	recorder  RouteRecorder
	cache     *lru.Cache[cacheKey, pathfind.Result]
	otel      trace.Tracer

	mu   sync.Mutex
	last []collision.Point
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithFinder replaces the default path finder.
func WithFinder(f *pathfind.Finder) Option {
	return func(t *Tracer) { t.finder = f }
}

// WithRecorder records every search.
func WithRecorder(r RouteRecorder) Option {
	return func(t *Tracer) { t.recorder = r }
}

// WithCacheSize keeps up to n search results keyed by grid digest, start and goal.
// Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(t *Tracer) {
		if n <= 0 {
			t.cache = nil
			return
		}
		c, err := lru.New[cacheKey, pathfind.Result](n)
		if err != nil {
			slog.Warn("path cache disabled", "size", n, "err", err)
			return
		}
		t.cache = c
	}
}

// New creates a Tracer. env and presenter may be nil when only Trace is used.
func New(env Environment, presenter Presenter, opts ...Option) *Tracer {
	t := &Tracer{
		env:       env,
		presenter: presenter,
		finder:    pathfind.New(pathfind.WithNodeHint(collision.SceneSize * collision.SceneSize / 4)),
		otel:      telemetry.Tracer("tracer"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SelectDestination finds a path from the agent to the selected tile and shows it.
// Returns ErrInvalidInput or pathfind.ErrUnreachable after notifying the presenter.
func (t *Tracer) SelectDestination(ctx context.Context) error {
	if t.env == nil || t.presenter == nil {
		return fmt.Errorf("select destination: %w", ErrInvalidInput)
	}

	start, ok := t.env.CurrentTile(ctx)
	if !ok {
		return t.invalid(NoticeNoAgent)
	}
	goal, ok := t.env.SelectedTile(ctx)
	if !ok {
		return t.invalid(NoticeNoDestination)
	}
	grid, err := t.env.Collision(ctx)
	if err != nil {
		return fmt.Errorf("reading collision data: %w", err)
	}

	res, err := t.Trace(ctx, start, goal, grid)
	if err != nil {
		if errors.Is(err, pathfind.ErrUnreachable) {
			t.drop()
			t.presenter.Notify(NoticeUnreachable)
		}
		return err
	}

	t.mu.Lock()
	t.last = res.Path
	t.mu.Unlock()

	t.presenter.ShowPath(slices.Clone(res.Path))
	return nil
}

// ClearPath drops the last path and clears the highlight.
func (t *Tracer) ClearPath() {
	t.drop()
	if t.presenter != nil {
		t.presenter.ClearPath()
	}
}

// LastPath returns a copy of the last shown path, or nil.
func (t *Tracer) LastPath() []collision.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.last)
}

func (t *Tracer) drop() {
	t.mu.Lock()
	t.last = nil
	t.mu.Unlock()
}

func (t *Tracer) invalid(notice string) error {
	metrics.SearchTotal.WithLabelValues(metrics.ResultInvalid).Inc()
	t.presenter.Notify(notice)
	return fmt.Errorf("%s: %w", notice, ErrInvalidInput)
}

// Trace runs one search on grid. The returned result owns its path slice.
// An unreachable goal yields the result together with pathfind.ErrUnreachable.
func (t *Tracer) Trace(ctx context.Context, start, goal collision.Point, grid *collision.Grid) (pathfind.Result, error) {
	if err := ctx.Err(); err != nil {
		return pathfind.Result{}, err
	}

	ctx, span := t.otel.Start(ctx, "tracer.Trace", trace.WithAttributes(
		attribute.String("start", start.String()),
		attribute.String("goal", goal.String()),
	))
	defer span.End()

	var key cacheKey
	if t.cache != nil || t.recorder != nil {
		key = cacheKey{digest: grid.Digest(), start: start, goal: goal}
	}

	res, cached := t.lookup(key)
	if !cached {
		began := time.Now()
		res = t.finder.Search(start, goal, grid)
		metrics.SearchDuration.Observe(time.Since(began).Seconds())
		metrics.ExpandedNodes.Observe(float64(res.Expanded))
		if t.cache != nil {
			t.cache.Add(key, res)
		}
		t.record(ctx, key, res)
	}

	span.SetAttributes(
		attribute.Bool("cached", cached),
		attribute.Bool("reachable", res.Reachable()),
		attribute.Int("path.length", len(res.Path)),
		attribute.Int("expanded", res.Expanded),
	)

	res.Path = slices.Clone(res.Path)
	if !res.Reachable() {
		metrics.SearchTotal.WithLabelValues(metrics.ResultUnreachable).Inc()
		slog.Debug("no path", "start", start, "goal", goal, "expanded", res.Expanded)
		return res, pathfind.ErrUnreachable
	}

	metrics.SearchTotal.WithLabelValues(metrics.ResultFound).Inc()
	metrics.PathLength.Observe(float64(len(res.Path)))
	slog.Debug("path found", "start", start, "goal", goal, "tiles", len(res.Path), "expanded", res.Expanded, "cached", cached)
	return res, nil
}

func (t *Tracer) lookup(key cacheKey) (pathfind.Result, bool) {
	if t.cache == nil {
		return pathfind.Result{}, false
	}
	res, ok := t.cache.Get(key)
	if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return res, ok
}

// record stores the search. Failures are logged and never fail the search.
func (t *Tracer) record(ctx context.Context, key cacheKey, res pathfind.Result) {
	if t.recorder == nil {
		return
	}
	_, err := t.recorder.RecordRoute(ctx, db.Route{
		Start:      key.start,
		Goal:       key.goal,
		Reachable:  res.Reachable(),
		Path:       res.Path,
		Expanded:   res.Expanded,
		GridDigest: key.digest,
	})
	if err != nil {
		slog.Warn("recording route failed", "start", key.start, "goal", key.goal, "err", err)
	}
}
