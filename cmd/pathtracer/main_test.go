package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/pathtracer/internal/collision"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestLoadMap(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "room.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("..\n#.\n"), 0o644))
	g, err := loadMap(textPath, 0)
	require.NoError(t, err)
	assert.False(t, g.IsEnterable(collision.Pt(0, 0)))
	assert.True(t, g.IsEnterable(collision.Pt(0, 1)))

	scene, err := collision.NewScene(g, collision.NewBuilder(2, 2).Build())
	require.NoError(t, err)
	data, err := collision.EncodeScene(scene)
	require.NoError(t, err)
	scenePath := filepath.Join(dir, "3_4"+collision.SceneExt)
	require.NoError(t, os.WriteFile(scenePath, data, 0o644))

	g0, err := loadMap(scenePath, 0)
	require.NoError(t, err)
	assert.Equal(t, g.Digest(), g0.Digest())

	_, err = loadMap(scenePath, 2)
	assert.Error(t, err)

	_, err = loadMap(filepath.Join(dir, "missing.txt"), 0)
	assert.Error(t, err)
}

func TestFindCommand(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "room.txt")
	require.NoError(t, os.WriteFile(mapPath, []byte("....\n.#..\n....\n"), 0o644))
	t.Setenv("PATHTRACER_CONFIG", filepath.Join(dir, "absent.yaml"))

	run := func(args ...string) (string, error) {
		cmd, a := newRootCmd()
		t.Cleanup(func() { _ = a.close(t.Context()) })
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(t.Context())
		return out.String(), err
	}

	out, err := run("find", "--map", mapPath, "--from", "0,0", "--to", "3,0", "--no-color")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "S**D"), out)

	out, err = run("find", "--map", mapPath, "--from", "0,0", "--to", "3,0", "--no-color", "--los")
	require.NoError(t, err)
	assert.Contains(t, out, "line of sight (0,0) -> (3,0): clear")

	out, err = run("find", "--map", mapPath, "--from", "0,0", "--to", "1,1", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "destination unreachable")

	_, err = run("find", "--map", mapPath, "--from", "zero", "--to", "1,1")
	assert.Error(t, err)
}
