// Package batch runs many path queries from a YAML job file.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/pathtracer/internal/api"
	"github.com/udisondev/pathtracer/internal/collision"
	"github.com/udisondev/pathtracer/internal/pathfind"
	"github.com/udisondev/pathtracer/internal/tracer"
)

// Job is one query. Region is "RX_RY", From and To are "X,Y".
type Job struct {
	Name   string `yaml:"name"`
	Region string `yaml:"region"`
	Plane  int    `yaml:"plane"`
	From   string `yaml:"from"`
	To     string `yaml:"to"`
}

type jobFile struct {
	Routes []Job `yaml:"routes"`
}

// Result is the outcome of one Job. Err is set for bad jobs and
// pathfind.ErrUnreachable.
type Result struct {
	Job      Job
	Path     []collision.Point
	Expanded int
	Err      error
}

// LoadJobs reads a job file:
//
//	routes:
//	  - name: bank
//	    region: 50_50
//	    plane: 0
//	    from: 10,10
//	    to: 20,40
func LoadJobs(path string) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs %s: %w", path, err)
	}
	var f jobFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing jobs %s: %w", path, err)
	}
	return f.Routes, nil
}

// Run traces every job with at most workers concurrent searches.
// Results keep job order. Per-job failures are reported in Result.Err;
// only context cancellation stops the run.
func Run(ctx context.Context, tr *tracer.Tracer, scenes api.SceneSource, jobs []Job, workers int) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = runJob(gctx, tr, scenes, job)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	var found, unreachable, failed int
	for _, r := range results {
		switch {
		case r.Err == nil:
			found++
		case errors.Is(r.Err, pathfind.ErrUnreachable):
			unreachable++
		default:
			failed++
		}
	}
	slog.Info("batch done", "jobs", len(jobs), "found", found, "unreachable", unreachable, "failed", failed)
	return results, nil
}

func runJob(ctx context.Context, tr *tracer.Tracer, scenes api.SceneSource, job Job) Result {
	res := Result{Job: job}

	rx, ry, err := api.ParsePair(job.Region, "_")
	if err != nil {
		res.Err = fmt.Errorf("region: %w", err)
		return res
	}
	from, err := api.ParsePoint(job.From)
	if err != nil {
		res.Err = fmt.Errorf("from: %w", err)
		return res
	}
	to, err := api.ParsePoint(job.To)
	if err != nil {
		res.Err = fmt.Errorf("to: %w", err)
		return res
	}

	grid := scenes.Grid(rx, ry, job.Plane)
	if !grid.IsLoaded() {
		res.Err = fmt.Errorf("region %d_%d plane %d: %w", rx, ry, job.Plane, tracer.ErrNoCollisionData)
		return res
	}

	found, err := tr.Trace(ctx, from, to, grid)
	res.Path, res.Expanded, res.Err = found.Path, found.Expanded, err
	return res
}
