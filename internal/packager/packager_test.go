package packager

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/assetfs"
)

func writeAsset(t *testing.T, fsys afero.Fs, name, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(path.Dir(name), 0755))
	require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0644))
}

type fakePutter struct {
	mu      sync.Mutex
	objects map[string]string
	fail    map[string]bool
}

func newFakePutter() *fakePutter {
	return &fakePutter{objects: make(map[string]string), fail: make(map[string]bool)}
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if f.fail[key] {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+key] = string(body)
	return &s3.PutObjectOutput{}, nil
}

type countingRecorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (c *countingRecorder) FilePackaged(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		c.results = make(map[string]int)
	}
	c.results[result]++
}

func TestPackage_DirSink(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAsset(t, fsys, "/data/World/wmo/Tree.wmo", "tree")
	writeAsset(t, fsys, "/data/World/Doodads/Bush.m2", "bush")
	writeAsset(t, fsys, "/data/Textures/Bark.blp", "bark")
	writeAsset(t, fsys, "/data/Textures/Leaf.blp", "leaf")
	writeAsset(t, fsys, "/base/textures/leaf.blp", "leaf")
	writeAsset(t, fsys, "/out/Textures/Bark.blp", "stale")

	rec := &countingRecorder{}
	lines := []string{
		"World/wmo/Tree.wmo",
		`World\Doodads\Bush.mdx`,
		"textures/bark.BLP",
		"Textures/Leaf.blp",
		"Textures/Gone.blp",
	}
	stats, err := Package(context.Background(), lines, Options{
		DataRoot:   "/data",
		IgnoreRoot: "/base",
		Sink:       NewDirSink(fsys, "/out"),
		Workers:    2,
		Fs:         fsys,
		Recorder:   rec,
	})
	require.NoError(t, err)

	assert.Equal(t, Stats{Copied: 3, Skipped: 1, Missing: 1}, stats)
	assert.Equal(t, 5, stats.Total())
	assert.Equal(t, map[string]int{ResultCopied: 3, ResultSkipped: 1, ResultMissing: 1}, rec.results)

	for name, want := range map[string]string{
		"/out/World/wmo/Tree.wmo":    "tree",
		"/out/World/Doodads/Bush.m2": "bush",
		"/out/Textures/Bark.blp":     "bark",
	} {
		got, err := afero.ReadFile(fsys, name)
		require.NoError(t, err, name)
		assert.Equal(t, want, string(got), name)
	}

	exists, err := afero.Exists(fsys, "/out/Textures/Leaf.blp")
	require.NoError(t, err)
	assert.False(t, exists, "file present in ignore root should not be copied")
}

func TestPackage_S3Sink(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAsset(t, fsys, "/data/World/wmo/Tree.wmo", "tree")
	writeAsset(t, fsys, "/data/Textures/Bark.blp", "bark")

	putter := newFakePutter()
	putter.fail["maps/Textures/Bark.blp"] = true

	sink := NewS3SinkWithClient(putter, "assets", "/maps/")
	assert.Equal(t, "s3://assets/maps", sink.String())

	stats, err := Package(context.Background(), []string{"World/wmo/Tree.wmo", "Textures/Bark.blp"}, Options{
		DataRoot: "/data",
		Sink:     sink,
		Fs:       fsys,
	})
	require.NoError(t, err)

	assert.Equal(t, Stats{Copied: 1, Failed: 1}, stats)
	assert.Equal(t, map[string]string{"assets/maps/World/wmo/Tree.wmo": "tree"}, putter.objects)
}

func TestS3Sink_Key(t *testing.T) {
	assert.Equal(t, "a/b.blp", NewS3SinkWithClient(nil, "bucket", "").Key("a/b.blp"))
	assert.Equal(t, "pre/a/b.blp", NewS3SinkWithClient(nil, "bucket", "pre").Key("a/b.blp"))
}

func TestPackage_NoSink(t *testing.T) {
	_, err := Package(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoSink)
}

func TestPackage_Cancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAsset(t, fsys, "/data/a.blp", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Package(ctx, []string{"a.blp"}, Options{
		DataRoot: "/data",
		Sink:     NewDirSink(fsys, "/out"),
		Fs:       fsys,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, stats.Total())
}

func TestLocate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAsset(t, fsys, "/data/World/Doodads/Bush.m2", "bush")

	store := assetfs.New(fsys, "/data")
	rel, err := locate(store, `world\doodads\bush.MDX`)
	require.NoError(t, err)
	assert.Equal(t, "World/Doodads/Bush.m2", rel)

	_, err = locate(store, "World/Doodads/Rock.m2")
	assert.ErrorIs(t, err, ErrSourceMissing)

	_, err = locate(store, `..\data\World\Doodads\Bush.m2`)
	assert.ErrorIs(t, err, ErrUnsafePath)
}

func TestPackage_RejectsEntriesOutsideDataRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeAsset(t, fsys, "/a/secret.blp", "secret")
	writeAsset(t, fsys, "/a/data/Textures/Bark.blp", "bark")

	rec := &countingRecorder{}
	stats, err := Package(context.Background(), []string{`..\secret.blp`, "Textures/../../secret.blp", "Textures/Bark.blp"}, Options{
		DataRoot: "/a/data",
		Sink:     NewDirSink(fsys, "/b/dest"),
		Fs:       fsys,
		Recorder: rec,
	})
	require.NoError(t, err)

	assert.Equal(t, Stats{Copied: 1, Failed: 2}, stats)
	assert.Equal(t, map[string]int{ResultCopied: 1, ResultFailed: 2}, rec.results)

	for _, name := range []string{"/b/secret.blp", "/b/dest/secret.blp"} {
		exists, err := afero.Exists(fsys, name)
		require.NoError(t, err)
		assert.False(t, exists, name)
	}
	got, err := afero.ReadFile(fsys, "/b/dest/Textures/Bark.blp")
	require.NoError(t, err)
	assert.Equal(t, "bark", string(got))
}

func TestSinks_RejectPathsOutsideRoot(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := NewDirSink(fsys, "/b/dest").Put(context.Background(), "../secret.blp", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrUnsafePath)
	exists, _ := afero.Exists(fsys, "/b/secret.blp")
	assert.False(t, exists)

	putter := newFakePutter()
	err = NewS3SinkWithClient(putter, "assets", "maps").Put(context.Background(), "../secret.blp", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, ErrUnsafePath)
	assert.Empty(t, putter.objects)
}
