package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codesnap/library"
	"codesnap/snap"
	"codesnap/snapfile"
)

type cli struct {
	t      *testing.T
	dir    string
	config string
	lib    string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{
		t:      t,
		dir:    dir,
		config: filepath.Join(dir, "codesnaprc"),
		lib:    filepath.Join(dir, "data", "library.db"),
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", c.config, "--library", c.lib))
	err := cmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestNewAndInfo(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, "demo")

	out := c.mustRun("new", path, "--title", "Demo", "--aspect", "1:1")
	assert.Equal(t, path+".snap\n", out)

	out = c.mustRun("info", path+".snap")
	assert.Contains(t, out, "Title:   Demo")
	assert.Contains(t, out, "Canvas:  1:1 (1080x1080)")
	assert.Contains(t, out, "Version: "+snap.CurrentVersion)

	var info snapInfo
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("info", path+".snap", "--json")), &info))
	assert.Equal(t, "Demo", info.Title)
	assert.Equal(t, 1080, info.Width)
	assert.Empty(t, info.Elements)
	assert.Empty(t, info.Warnings)
}

func TestNewRejectsUnknownAspect(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("new", filepath.Join(c.dir, "bad"), "--aspect", "7:5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "16:9")
}

func TestInfoCountsNested(t *testing.T) {
	c := newCLI(t)
	s := snap.NewSnap()
	group := snap.Element{ID: "g", Type: snap.TypeGroup, Visible: true, Width: 400, Height: 400}
	group.Elements = []snap.Element{snap.NewCodeElement(0, 0), snap.NewShapeElement(snap.ShapeStar, 10, 10)}
	s.Elements = []snap.Element{snap.NewCodeElement(0, 0), group}
	path, err := snapfile.WriteFile(filepath.Join(c.dir, "nested.snap"), s)
	require.NoError(t, err)

	var info snapInfo
	require.NoError(t, json.Unmarshal([]byte(c.mustRun("info", path, "--json")), &info))
	assert.Equal(t, map[string]int{"code": 2, "group": 1, "shape": 1}, info.Elements)
}

func TestExport(t *testing.T) {
	c := newCLI(t)
	path := strings.TrimSpace(c.mustRun("new", filepath.Join(c.dir, "shot"), "--aspect", "4:3"))
	out := filepath.Join(c.dir, "png", "shot.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))

	assert.Equal(t, out+" (400x300)\n", c.mustRun("export", path, "-o", out, "--scale", "0.25"))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestExportDefaultsNextToInput(t *testing.T) {
	c := newCLI(t)
	path := strings.TrimSpace(c.mustRun("new", filepath.Join(c.dir, "side"), "--aspect", "1:1"))
	require.NoError(t, os.WriteFile(c.config, []byte("export_scale: 0.1\n"), 0o644))

	assert.Equal(t, filepath.Join(c.dir, "side.png")+" (108x108)\n", c.mustRun("export", path))
}

func TestExportMissingFile(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("export", filepath.Join(c.dir, "nope.snap"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLibraryCommands(t *testing.T) {
	c := newCLI(t)
	path := strings.TrimSpace(c.mustRun("new", filepath.Join(c.dir, "kept"), "--title", "Kept"))

	assert.Equal(t, "No saved snaps\n", c.mustRun("library", "list"))

	id := strings.TrimSpace(c.mustRun("library", "save", path))
	require.NotEmpty(t, id)
	assert.FileExists(t, c.lib)

	list := c.mustRun("lib", "list")
	assert.Contains(t, list, id)
	assert.Contains(t, list, "Kept")

	assert.Equal(t, id+"\n", c.mustRun("library", "save", path, "--id", id))
	assert.Len(t, strings.Split(strings.TrimSpace(c.mustRun("library", "list")), "\n"), 1)

	out := filepath.Join(c.dir, "restored.snap")
	assert.Equal(t, out+"\n", c.mustRun("library", "load", id, "-o", out))
	s, _, err := snapfile.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Kept", s.Meta.Title)

	assert.Equal(t, "Deleted "+id+"\n", c.mustRun("library", "rm", id))
	_, err = c.run("library", "rm", id)
	assert.ErrorIs(t, err, library.ErrNotFound)
	_, err = c.run("library", "load", id)
	assert.ErrorIs(t, err, library.ErrNotFound)
}

func TestBadConfigFallsBackToDefaults(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.WriteFile(c.config, []byte("export_scale: [\n"), 0o644))

	out := c.mustRun("new", filepath.Join(c.dir, "x"))
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, filepath.Join(c.dir, "x.snap"))
}
