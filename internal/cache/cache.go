// Package cache stores calculated version variables on disk, keyed by the
// state of the repository and the configuration that produced them.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/MyCarrier-DevOps/go-gitversion/internal/git"
	"github.com/MyCarrier-DevOps/go-gitversion/internal/output"
)

// DirName is the cache directory inside the .git directory.
const DirName = "gitversion_cache"

// Key hashes the refs of a repository together with the configuration file
// and the command line overrides. Ref order does not matter.
func Key(refs []string, configBytes, overrideBytes []byte) string {
	sorted := slices.Clone(refs)
	slices.Sort(sorted)

	h := sha1.New()
	for _, r := range sorted {
		io.WriteString(h, r)
		h.Write([]byte{'\n'})
	}
	h.Write([]byte{0})
	h.Write(configBytes)
	h.Write([]byte{0})
	h.Write(overrideBytes)
	return hex.EncodeToString(h.Sum(nil))
}

// Refs lists HEAD, every branch and every tag of repo as "name sha" lines.
func Refs(repo git.Repository) ([]string, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD: %w", err)
	}
	refs := []string{"HEAD " + tipSha(head)}

	branches, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	for _, b := range branches {
		refs = append(refs, b.Name.Canonical+" "+tipSha(b))
	}

	tags, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	for _, t := range tags {
		refs = append(refs, t.Name.Canonical+" "+t.TargetSha)
	}
	return refs, nil
}

func tipSha(b git.Branch) string {
	if b.Tip == nil {
		return ""
	}
	return b.Tip.Sha
}

// Cache reads and writes <key>.yml entries in a directory.
type Cache struct {
	fs  billy.Filesystem
	log *zap.Logger
}

// New creates a cache over fs. A nil log discards log output.
func New(fs billy.Filesystem, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{fs: fs, log: log}
}

// Open creates a cache in the gitversion_cache directory of gitDir.
func Open(gitDir string, log *zap.Logger) *Cache {
	return New(osfs.New(filepath.Join(gitDir, DirName)), log)
}

func fileName(key string) string {
	return key + ".yml"
}

// Load returns the entry stored under key, or nil when there is none. A
// corrupt entry is deleted and reported as a miss.
func (c *Cache) Load(key string) (output.VersionVariables, error) {
	data, err := util.ReadFile(c.fs, fileName(key))
	if errors.Is(err, os.ErrNotExist) {
		c.log.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", key, err)
	}

	var vars output.VersionVariables
	if err := yaml.Unmarshal(data, &vars); err != nil || len(vars) == 0 {
		c.log.Warn("deleting corrupt cache entry", zap.String("key", key), zap.Error(err))
		if rmErr := c.fs.Remove(fileName(key)); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return nil, fmt.Errorf("deleting corrupt cache entry %s: %w", key, rmErr)
		}
		return nil, nil
	}
	c.log.Debug("cache hit", zap.String("key", key))
	return vars, nil
}

// Store writes vars under key. The entry is written to a temporary file
// and renamed into place, so readers never see a partial entry.
func (c *Cache) Store(key string, vars output.VersionVariables) error {
	data, err := yaml.Marshal(map[string]string(vars))
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := c.fs.MkdirAll(".", 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := c.fs.TempFile(".", key+"-tmp-")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		c.fs.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		c.fs.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := c.fs.Rename(tmp.Name(), fileName(key)); err != nil {
		c.fs.Remove(tmp.Name())
		return fmt.Errorf("renaming cache entry: %w", err)
	}
	c.log.Debug("cache entry stored", zap.String("key", key))
	return nil
}
