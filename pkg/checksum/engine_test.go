package checksum

import (
	"context"
	"strings"
	"testing"

	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/internal/bagtest"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit"
	bagitstatus "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/bagit/status"
	"github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/errors"
	storagestatus "github.com/DANS-KNAW/dd-poc-convert-av-dataset/pkg/storage/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const bagDir = "/output/group/bag"

func buildBag(t testing.TB, fs afero.Fs, payload, tag []string) {
	t.Helper()
	bagtest.New(fs, bagDir).
		WithAlgorithms(payload, tag).
		WithInfo(
			bagit.Field{Key: "Bagging-Date", Value: "2024-01-01"},
			bagit.Field{Key: bagit.PayloadOxum, Value: ""},
		).
		WithFile("data/a.txt", []byte("first file")).
		WithFile("data/sub/b.bin", []byte{0, 1, 2, 3}).
		WithFile("data/c.txt", []byte("third")).
		WithFile("metadata/files.xml", []byte("<files/>")).
		Build(t)
}

func assertPayloadManifest(t testing.TB, fs afero.Fs, algorithm string, paths ...string) {
	t.Helper()
	entries := bagtest.ReadManifest(t, fs, bagDir+"/"+bagit.PayloadManifestName(algorithm))
	require.Len(t, entries, len(paths))
	for _, p := range paths {
		assert.Equal(t, bagtest.FileDigest(t, fs, algorithm, bagDir+"/"+p), entries[p], p)
	}
}

func assertTagManifest(t testing.TB, fs afero.Fs, algorithm string, paths ...string) {
	t.Helper()
	entries := bagtest.ReadManifest(t, fs, bagDir+"/"+bagit.TagManifestName(algorithm))
	for p := range entries {
		assert.False(t, bagit.IsTagManifestName(p), "a tag manifest does not list %s", p)
		assert.False(t, strings.HasPrefix(p, "data/"), "a tag manifest does not list payload %s", p)
	}
	require.Len(t, entries, len(paths))
	for _, p := range paths {
		assert.Equal(t, bagtest.FileDigest(t, fs, algorithm, bagDir+"/"+p), entries[p], p)
	}
}

func TestRecomputeAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"sha1"}, []string{"sha1"})
	require.NoError(t, afero.WriteFile(fs, bagDir+"/data/a.txt", []byte("replaced content"), 0644))
	require.NoError(t, afero.WriteFile(fs, bagDir+"/data/d.txt", []byte("new"), 0644))
	core, logs := observer.New(zap.InfoLevel)

	err := New(fs, Logger(zap.New(core))).RecomputeAll(context.Background(), bagDir)
	require.NoError(t, err)

	assertPayloadManifest(t, fs, "sha1", "data/a.txt", "data/sub/b.bin", "data/c.txt", "data/d.txt")
	assertTagManifest(t, fs, "sha1", "bagit.txt", "bag-info.txt", "manifest-sha1.txt", "metadata/files.xml")
	assert.Contains(t, bagtest.ReadInfo(t, fs, bagDir), "Payload-Oxum: 28.4")

	entries := logs.FilterMessage("payload manifests updated").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "full recompute", entries[0].ContextMap()["transform"])
	assert.EqualValues(t, 4, entries[0].ContextMap()["files"])
}

func TestRecomputeAllAlgorithms(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"md5", "sha256", "blake2b-256"}, []string{"sha512", "sha1"})
	require.NoError(t, afero.WriteFile(fs, bagDir+"/data/sub/b.bin", []byte("changed"), 0644))

	require.NoError(t, New(fs).RecomputeAll(context.Background(), bagDir))

	for _, alg := range []string{"md5", "sha256", "blake2b-256"} {
		assertPayloadManifest(t, fs, alg, "data/a.txt", "data/sub/b.bin", "data/c.txt")
	}
	for _, alg := range []string{"sha512", "sha1"} {
		assertTagManifest(t, fs, alg, "bagit.txt", "bag-info.txt", "manifest-md5.txt", "manifest-sha256.txt",
			"manifest-blake2b-256.txt", "metadata/files.xml")
	}
}

func TestRecomputeAllDefaultAlgorithms(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, nil, []string{"sha1"})

	require.NoError(t, New(fs, DefaultAlgorithms("sha256")).RecomputeAll(context.Background(), bagDir))

	assertPayloadManifest(t, fs, "sha256", "data/a.txt", "data/sub/b.bin", "data/c.txt")
	exists, err := afero.Exists(fs, bagDir+"/manifest-sha1.txt")
	require.NoError(t, err)
	assert.False(t, exists)

	err = New(fs, DefaultAlgorithms("crc32")).RecomputeAll(context.Background(), "/output/other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, bagitstatus.ErrNotABag))
}

func TestRecomputeAllUnsupportedDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, nil, []string{"sha1"})

	err := New(fs, DefaultAlgorithms("crc32")).RecomputeAll(context.Background(), bagDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bagitstatus.ErrUnsupportedAlgorithm))
}

func TestRemoveEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"sha1", "md5"}, []string{"sha256"})
	before := map[string]map[string]string{
		"sha1": bagtest.ReadManifest(t, fs, bagDir+"/manifest-sha1.txt"),
		"md5":  bagtest.ReadManifest(t, fs, bagDir+"/manifest-md5.txt"),
	}
	require.NoError(t, fs.Remove(bagDir+"/data/sub/b.bin"))

	err := New(fs).RemoveEntries(context.Background(), bagDir, []string{"data/sub/b.bin", "data/never-there"})
	require.NoError(t, err)

	for alg, entries := range before {
		after := bagtest.ReadManifest(t, fs, bagDir+"/"+bagit.PayloadManifestName(alg))
		delete(entries, "data/sub/b.bin")
		assert.Equal(t, entries, after, alg)
	}
	assert.Contains(t, bagtest.ReadInfo(t, fs, bagDir), "Payload-Oxum: 15.2")
	assertTagManifest(t, fs, "sha256", "bagit.txt", "bag-info.txt", "manifest-sha1.txt", "manifest-md5.txt", "metadata/files.xml")
}

func TestRemoveEntriesDoesNotHash(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"sha1"}, []string{"sha1"})
	before := bagtest.ReadManifest(t, fs, bagDir+"/manifest-sha1.txt")
	// a stale payload file keeps its previous checksum
	require.NoError(t, afero.WriteFile(fs, bagDir+"/data/a.txt", []byte("first fil3"), 0644))

	require.NoError(t, New(fs).Update(context.Background(), bagDir, RemoveEntries()))
	assert.Equal(t, before, bagtest.ReadManifest(t, fs, bagDir+"/manifest-sha1.txt"))
}

func TestRemoveEntriesLegacyBag(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"sha1"}, []string{"sha1"})
	require.NoError(t, afero.WriteFile(fs, bagDir+"/bagit.txt", []byte("BagIt-Version: 0.97\nTag-File-Character-Encoding: UTF-8\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, bagDir+"/data/50%.mp4", []byte("half"), 0644))
	upper := strings.ToUpper(bagtest.FileDigest(t, fs, "sha1", bagDir+"/data/a.txt")) + "  data/a.txt\n"
	percent := bagtest.FileDigest(t, fs, "sha1", bagDir+"/data/50%.mp4") + "  data/50%.mp4\n"
	removed := bagtest.FileDigest(t, fs, "sha1", bagDir+"/data/c.txt") + "  data/c.txt\n"
	require.NoError(t, afero.WriteFile(fs, bagDir+"/manifest-sha1.txt", []byte(upper+removed+percent), 0644))

	require.NoError(t, New(fs).RemoveEntries(context.Background(), bagDir, []string{"data/c.txt"}))

	content, err := afero.ReadFile(fs, bagDir+"/manifest-sha1.txt")
	require.NoError(t, err)
	assert.Equal(t, percent+upper, string(content))
	assert.Contains(t, bagtest.ReadInfo(t, fs, bagDir), "Payload-Oxum: 14.2")
}

func TestRemoveEntriesMissingPayload(t *testing.T) {
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"sha1"}, []string{"sha1"})
	require.NoError(t, fs.Remove(bagDir+"/data/c.txt"))

	err := New(fs).RemoveEntries(context.Background(), bagDir, []string{"data/a.txt"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storagestatus.ErrNotExists))
}

func TestCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)
	fs := afero.NewMemMapFs()
	buildBag(t, fs, []string{"sha1"}, []string{"sha1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(fs).RecomputeAll(ctx, bagDir)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPayloadTransform(t *testing.T) {
	assert.True(t, FullRecompute().IsFullRecompute())
	rm := RemoveEntries("data/b", "data/a")
	assert.False(t, rm.IsFullRecompute())
	assert.Equal(t, []string{"data/a", "data/b"}, rm.Paths())
	assert.Equal(t, "remove 2 entries", rm.String())
}
