package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridtree/pkg/cache"
	"github.com/matzehuels/gridtree/pkg/chunk"
	"github.com/matzehuels/gridtree/pkg/errors"
	"github.com/matzehuels/gridtree/pkg/geom"
	"github.com/matzehuels/gridtree/pkg/observability"
)

var scenario = []geom.Vec3{
	geom.V(0, 0, 0),
	geom.V(15, 5, 0),
	geom.V(45, 45, 0),
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return NewRunner(c, nil, quietLogger())
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	assert.NotNil(t, r.Cache)
	assert.NotNil(t, r.Keyer)
	assert.NotNil(t, r.Logger)
	assert.NoError(t, r.Close())
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	out := filepath.Join(t.TempDir(), "world.p3d")

	res, err := r.Execute(context.Background(), Options{Markers: scenario, Output: out})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.MarkerCount)
	assert.Equal(t, 13, res.Stats.NodeCount)
	assert.Equal(t, 7, res.Stats.LeafCount)
	assert.Equal(t, 4, res.Stats.Depth)
	assert.Equal(t, "p3d", res.Format)
	assert.Len(t, res.TreeHash, 64)
	assert.Equal(t, len(res.Artifact), res.Stats.Bytes)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Artifact, written)

	root, err := chunk.DecodeP3D(bytes.NewReader(written))
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Len(t, root.Children[0].Children, 13)
}

func TestExecuteWithoutOutput(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Markers: scenario, Format: "json"})
	require.NoError(t, err)
	assert.Empty(t, res.Output)
	assert.True(t, bytes.HasPrefix(res.Artifact, []byte("{")))
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	r := newFileRunner(t)
	defer r.Close()

	first, err := r.Execute(ctx, Options{Markers: scenario})
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.TreeHit)
	assert.False(t, first.CacheInfo.ArtifactHit)

	second, err := r.Execute(ctx, Options{Markers: scenario})
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.TreeHit)
	assert.True(t, second.CacheInfo.ArtifactHit)
	assert.Equal(t, first.Artifact, second.Artifact)
	assert.Equal(t, first.TreeHash, second.TreeHash)

	// Restored trees are structurally identical.
	assert.Equal(t, first.Tree.String(), second.Tree.String())

	// A different grid unit is a different tree.
	other, err := r.Execute(ctx, Options{Markers: scenario, GridUnit: 10})
	require.NoError(t, err)
	assert.False(t, other.CacheInfo.TreeHit)

	refreshed, err := r.Execute(ctx, Options{Markers: scenario, Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheInfo.TreeHit)
	assert.False(t, refreshed.CacheInfo.ArtifactHit)
}

func TestExecuteDump(t *testing.T) {
	var dump bytes.Buffer
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), Options{Markers: scenario, Dump: &dump})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(dump.String()), "\n")
	require.Len(t, lines, 14)
	assert.True(t, strings.HasPrefix(lines[0], "tree grid=20"))
}

func TestOpenDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	opts := Options{DumpPath: path}
	f, err := OpenDump(&opts)
	require.NoError(t, err)
	require.NotNil(t, f)
	defer f.Close()
	assert.Equal(t, f, opts.Dump)

	none := Options{}
	f, err = OpenDump(&none)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyInput), "no markers: %v", err)

	_, err = r.Execute(ctx, Options{Markers: scenario, GridUnit: -20})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "bad grid: %v", err)

	_, err = r.Execute(ctx, Options{Markers: scenario, Format: "fbx"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "bad format: %v", err)
}

func TestExecuteConfigMarkers(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	opts, err := LoadConfig(writeConfig(t, "gridtree.toml", `
grid_unit = 0.3
markers = [{x = 0, y = 0, z = 0}, {x = 9.1, y = 7.3, z = 0}]
`))
	require.NoError(t, err)
	res, err := r.Execute(ctx, opts)
	require.NoError(t, err)
	assert.Greater(t, res.Stats.LeafCount, 1)

	opts, err = LoadConfig(writeConfig(t, "gridtree.toml", `
markers = [{x = 0, y = 0, z = 0}, {x = inf, y = 5, z = 0}]
`))
	require.NoError(t, err)
	_, err = r.Execute(ctx, opts)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "infinite marker: %v", err)

	opts, err = LoadConfig(writeConfig(t, "gridtree.toml", `
markers = [{x = nan, y = 0, z = 0}]
`))
	require.NoError(t, err)
	_, err = r.Execute(ctx, opts)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidArgument), "nan marker: %v", err)
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "world.p3d")
	require.NoError(t, os.WriteFile(out, []byte("old"), 0o644))

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(ctx, Options{Markers: scenario, Output: out})
	assert.ErrorIs(t, err, context.Canceled)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestExecuteAll(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(nil, nil, quietLogger())

	var jobs []Options
	for i, unit := range []float64{10, 20, 25} {
		jobs = append(jobs, Options{
			Markers:  scenario,
			GridUnit: unit,
			Output:   filepath.Join(dir, string(rune('a'+i))+".p3d"),
		})
	}

	results, err := r.ExecuteAll(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, jobs[i].GridUnit, res.Tree.GridUnit)
		assert.FileExists(t, jobs[i].Output)
	}
}

func TestExecuteAllFailure(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	jobs := []Options{
		{Markers: scenario},
		{MarkersFile: filepath.Join(t.TempDir(), "missing.json")},
	}
	_, err := r.ExecuteAll(context.Background(), jobs, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
	assert.Contains(t, err.Error(), "missing.json")
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnBuildStart(context.Context, int, float64) { h.record("build-start") }
func (h *recordingHooks) OnBuildComplete(_ context.Context, nodes, _ int, _ time.Duration, err error) {
	h.record("build-complete")
}
func (h *recordingHooks) OnEncodeStart(context.Context, string, int) { h.record("encode-start") }
func (h *recordingHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {
	h.record("encode-complete")
}
func (h *recordingHooks) OnCacheHit(_ context.Context, kind string)  { h.record("hit:" + kind) }
func (h *recordingHooks) OnCacheMiss(_ context.Context, kind string) { h.record("miss:" + kind) }
func (h *recordingHooks) OnCacheSet(_ context.Context, kind string, _ int) {
	h.record("set:" + kind)
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := newFileRunner(t)
	ctx := context.Background()

	_, err := r.Execute(ctx, Options{Markers: scenario})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"miss:tree", "build-start", "build-complete", "set:tree",
		"miss:artifact", "encode-start", "encode-complete", "set:artifact",
	}, hooks.events)

	hooks.events = nil
	_, err = r.Execute(ctx, Options{Markers: scenario})
	require.NoError(t, err)
	assert.Equal(t, []string{"hit:tree", "hit:artifact"}, hooks.events)
}

func TestExecuteLogsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	r := NewRunner(nil, nil, logger)

	_, err := r.Execute(context.Background(), Options{Markers: scenario})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "built tree")
	assert.Contains(t, out, "encoded tree")
	assert.Contains(t, out, "nodes=13")
	assert.Equal(t, 6, strings.Count(out, "split"))
}
