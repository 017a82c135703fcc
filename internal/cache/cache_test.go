package cache

import (
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/testutil"
)

func TestKey(t *testing.T) {
	refs := []string{"HEAD abc", "refs/heads/main abc", "refs/tags/v1.0.0 def"}
	key := Key(refs, []byte("mode: Mainline"), nil)
	require.Len(t, key, 40)

	reordered := []string{refs[2], refs[0], refs[1]}
	require.Equal(t, key, Key(reordered, []byte("mode: Mainline"), nil), "ref order does not matter")
	require.Equal(t, []string{"HEAD abc", "refs/heads/main abc", "refs/tags/v1.0.0 def"}, refs, "input is not sorted in place")

	require.NotEqual(t, key, Key(refs, []byte("mode: TrunkBased"), nil))
	require.NotEqual(t, key, Key(refs, []byte("mode: Mainline"), []byte("next-version=2.0.0")))
	require.NotEqual(t, key, Key(refs[:2], []byte("mode: Mainline"), nil))
	require.NotEqual(t, Key(nil, []byte("ab"), []byte("c")), Key(nil, []byte("a"), []byte("bc")))
}

func TestRefs(t *testing.T) {
	repo := testutil.New(t)
	root := repo.Commit("initial")
	repo.Tag("v1.0.0", root)
	repo.Branch("develop")
	head := repo.Commit("work")

	refs, err := Refs(repo.Repository())
	require.NoError(t, err)
	require.Contains(t, refs, "HEAD "+head)
	require.Contains(t, refs, "refs/heads/main "+root)
	require.Contains(t, refs, "refs/heads/develop "+head)
	require.Contains(t, refs, "refs/tags/v1.0.0 "+root)
}

func TestRefs_MovesWithHistory(t *testing.T) {
	repo := testutil.New(t)
	repo.Commit("initial")
	before, err := Refs(repo.Repository())
	require.NoError(t, err)

	repo.Commit("more")
	after, err := Refs(repo.Repository())
	require.NoError(t, err)
	require.NotEqual(t, Key(before, nil, nil), Key(after, nil, nil))
}

func TestRefs_Errors(t *testing.T) {
	repo := &git.MockRepository{
		HeadFunc: func() (git.Branch, error) { return git.Branch{}, errors.New("no HEAD") },
	}
	_, err := Refs(repo)
	require.ErrorContains(t, err, "reading HEAD: no HEAD")

	repo = &git.MockRepository{
		TagsFunc: func() ([]git.Tag, error) { return nil, errors.New("packed-refs unreadable") },
	}
	_, err = Refs(repo)
	require.ErrorContains(t, err, "listing tags")
}

func TestStoreLoad(t *testing.T) {
	c := New(memfs.New(), nil)
	vars := output.VersionVariables{"SemVer": "1.2.0", "FullSemVer": "1.2.0+3"}

	got, err := c.Load("abc")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, c.Store("abc", vars))
	got, err = c.Load("abc")
	require.NoError(t, err)
	require.Equal(t, vars, got)

	vars["SemVer"] = "1.3.0"
	require.NoError(t, c.Store("abc", vars))
	got, err = c.Load("abc")
	require.NoError(t, err)
	require.Equal(t, "1.3.0", got["SemVer"])
}

func TestStore_LeavesNoTempFiles(t *testing.T) {
	fs := memfs.New()
	c := New(fs, nil)
	require.NoError(t, c.Store("abc", output.VersionVariables{"SemVer": "1.0.0"}))

	entries, err := fs.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "abc.yml", entries[0].Name())
}

func TestLoad_CorruptEntry(t *testing.T) {
	tests := map[string]string{
		"not yaml": "{{{ not yaml",
		"empty":    "",
		"wrong":    "- a list\n- of things\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			fs := memfs.New()
			require.NoError(t, util.WriteFile(fs, "abc.yml", []byte(content), 0o644))

			core, logs := observer.New(zap.WarnLevel)
			c := New(fs, zap.New(core))
			got, err := c.Load("abc")
			require.NoError(t, err)
			require.Nil(t, got)

			_, err = fs.Stat("abc.yml")
			require.Error(t, err, "corrupt entry is deleted")
			require.Equal(t, 1, logs.FilterMessage("deleting corrupt cache entry").Len())
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	c := Open(dir, nil)
	require.NoError(t, c.Store("abc", output.VersionVariables{"SemVer": "1.0.0"}))

	again := Open(dir, nil)
	got, err := again.Load("abc")
	require.NoError(t, err)
	require.Equal(t, "1.0.0", got["SemVer"])
}
