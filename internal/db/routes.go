package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/pathtracer/internal/collision"
)

// Route is one traced search as stored in history.
type Route struct {
	ID         int64
	Start      collision.Point
	Goal       collision.Point
	Reachable  bool
	Path       []collision.Point
	Expanded   int
	GridDigest [32]byte
	CreatedAt  time.Time
}

// RouteRepository stores traced routes in PostgreSQL.
type RouteRepository struct {
	pool *pgxpool.Pool
}

// NewRouteRepository creates a repository on pool.
func NewRouteRepository(pool *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{pool: pool}
}

// RecordRoute inserts route and returns its id.
func (r *RouteRepository) RecordRoute(ctx context.Context, route Route) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO routes (start_x, start_y, goal_x, goal_y, reachable, path, expanded, grid_digest)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		route.Start.X, route.Start.Y, route.Goal.X, route.Goal.Y,
		route.Reachable, encodePath(route.Path), route.Expanded, route.GridDigest[:],
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting route %s -> %s: %w", route.Start, route.Goal, err)
	}
	return id, nil
}

// RecentRoutes returns up to limit routes, newest first.
func (r *RouteRepository) RecentRoutes(ctx context.Context, limit int) ([]Route, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, start_x, start_y, goal_x, goal_y, reachable, path, expanded, grid_digest, created_at
		 FROM routes ORDER BY created_at DESC, id DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent routes: %w", err)
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var (
			route  Route
			path   [][2]int
			digest []byte
		)
		if err := rows.Scan(
			&route.ID, &route.Start.X, &route.Start.Y, &route.Goal.X, &route.Goal.Y,
			&route.Reachable, &path, &route.Expanded, &digest, &route.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning route: %w", err)
		}
		route.Path = decodePath(path)
		copy(route.GridDigest[:], digest)
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating routes: %w", err)
	}
	return routes, nil
}

// DeleteBefore removes routes older than t and returns the number removed.
func (r *RouteRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM routes WHERE created_at < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("deleting routes before %s: %w", t.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// encodePath stores points as [[x,y],...] JSON.
func encodePath(path []collision.Point) [][2]int {
	out := make([][2]int, len(path))
	for i, p := range path {
		out[i] = [2]int{p.X, p.Y}
	}
	return out
}

func decodePath(raw [][2]int) []collision.Point {
	if len(raw) == 0 {
		return nil
	}
	out := make([]collision.Point, len(raw))
	for i, xy := range raw {
		out[i] = collision.Pt(xy[0], xy[1])
	}
	return out
}
