package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/pathtracer/internal/api"
	"github.com/udisondev/pathtracer/internal/batch"
	"github.com/udisondev/pathtracer/internal/collision"
	"github.com/udisondev/pathtracer/internal/overlay"
	"github.com/udisondev/pathtracer/internal/pathfind"
	"github.com/udisondev/pathtracer/internal/tracer"
)

func newFindCmd(a *app) *cobra.Command {
	var (
		mapPath  string
		plane    int
		from, to string
		noColor  bool
		los      bool
	)

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Trace one path on a text map or scene file and draw it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			grid, err := loadMap(mapPath, plane)
			if err != nil {
				return err
			}
			start, err := api.ParsePoint(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			goal, err := api.ParsePoint(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			style, err := overlay.StyleFromConfig(a.cfg.Highlight)
			if err != nil {
				return err
			}
			presenter := overlay.NewText(cmd.OutOrStdout(), style, !noColor)
			presenter.SetGrid(grid)

			env := tracer.NewStaticEnvironment(grid)
			env.SetCurrent(start)
			env.Select(goal)

			err = tracer.New(env, presenter, a.tracerOptions()...).SelectDestination(cmd.Context())
			if err != nil && !errors.Is(err, pathfind.ErrUnreachable) {
				return err
			}
			// An unreachable goal was already reported by the presenter.

			if los {
				sight := "blocked"
				if grid.CanSee(start, goal) {
					sight = "clear"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "line of sight %s -> %s: %s\n", start, goal, sight)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mapPath, "map", "", "text map (.txt) or scene file ("+collision.SceneExt+")")
	cmd.Flags().IntVar(&plane, "plane", 0, "plane of a scene file")
	cmd.Flags().StringVar(&from, "from", "", "start tile X,Y")
	cmd.Flags().StringVar(&to, "to", "", "destination tile X,Y")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI colors")
	cmd.Flags().BoolVar(&los, "los", false, "also report line of sight between the tiles")
	_ = cmd.MarkFlagRequired("map")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func loadMap(path string, plane int) (*collision.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}
	if filepath.Ext(path) != collision.SceneExt {
		return collision.ParseText(string(data))
	}

	scene, err := collision.DecodeScene(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	grid := scene.Plane(plane)
	if grid == nil {
		return nil, fmt.Errorf("%s has %d planes, no plane %d", path, scene.PlaneCount(), plane)
	}
	return grid, nil
}

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <jobs.yaml>",
		Short: "Trace every route of a job file against the scene directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := batch.LoadJobs(args[0])
			if err != nil {
				return err
			}
			store, err := loadStore(a.cfg.SceneDir)
			if err != nil {
				return err
			}

			tr := tracer.New(nil, nil, a.tracerOptions()...)
			results, err := batch.Run(cmd.Context(), tr, store, jobs, a.cfg.Workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range results {
				name := r.Job.Name
				if name == "" {
					name = fmt.Sprintf("#%d", i+1)
				}
				if r.Err != nil {
					fmt.Fprintf(out, "%s: %v\n", name, r.Err)
					continue
				}
				fmt.Fprintf(out, "%s: %d tiles, %d expanded: %s\n", name, len(r.Path), r.Expanded, overlay.FormatPath(r.Path))
			}
			return nil
		},
	}
	return cmd
}

func loadStore(dir string) (*collision.Store, error) {
	store := collision.NewStore()
	if err := store.LoadDir(dir); err != nil {
		return nil, fmt.Errorf("loading scenes: %w", err)
	}
	if !store.IsLoaded() {
		return nil, fmt.Errorf("no scenes in %s", dir)
	}
	return store, nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve path queries and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := loadStore(a.cfg.SceneDir)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              a.cfg.HTTP.Addr(),
				Handler:           api.NewHandler(store, tracer.New(nil, nil, a.tracerOptions()...)),
				ReadHeaderTimeout: 5 * time.Second,
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				cmd.PrintErrf("listening on %s\n", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				ctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 5*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			})
			return g.Wait()
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded routes, optionally pruning old ones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.database == nil {
				return errors.New("route history needs database.enabled")
			}
			routes := a.database.Routes()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if prune > 0 {
				n, err := routes.DeleteBefore(ctx, time.Now().Add(-prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "pruned %d routes\n", n)
			}

			recent, err := routes.RecentRoutes(ctx, limit)
			if err != nil {
				return err
			}
			for _, r := range recent {
				status := "unreachable"
				if r.Reachable {
					status = fmt.Sprintf("%d tiles", len(r.Path))
				}
				fmt.Fprintf(out, "%d  %s  %s -> %s  %s  grid=%x\n",
					r.ID, r.CreatedAt.Format(time.DateTime), r.Start, r.Goal, status, r.GridDigest[:4])
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "routes to list")
	cmd.Flags().DurationVar(&prune, "prune", 0, "delete routes older than this first")
	return cmd
}
