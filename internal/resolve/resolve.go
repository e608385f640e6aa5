// Package resolve turns module specifiers into canonical file paths.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	lru "github.com/hashicorp/golang-lru/v2"
)

var (
	// ErrUnresolved means no file on disk matches the specifier. This is the
	// normal outcome for third-party packages.
	ErrUnresolved = errors.New("unresolved reference")

	// ErrReadFailure means the file system refused to answer (permission
	// denied, entry removed mid-walk). Callers treat it like ErrUnresolved.
	ErrReadFailure = errors.New("read failure")
)

// Alias maps a specifier prefix to a replacement path.
type Alias struct {
	Prefix string
	Path   string
}

// Options configures a Resolver.
type Options struct {
	// Extensions are appended to the literal path, in order.
	Extensions []string
	// IndexFiles are tried inside a directory, each with Extensions applied.
	IndexFiles []string
	Aliases    []Alias
	// BaseDir anchors relative alias targets. Usually the project root.
	BaseDir string
	// CacheSize bounds the resolution cache. Zero disables caching.
	CacheSize int
}

// Resolver resolves specifiers against the file system.
type Resolver struct {
	opts    Options
	aliases []Alias
	cache   *lru.Cache[string, string]
	stat    func(string) (fs.FileInfo, error)
}

// New creates a Resolver. Aliases are matched longest prefix first.
func New(opts Options) (*Resolver, error) {
	aliases := make([]Alias, 0, len(opts.Aliases))
	for _, a := range opts.Aliases {
		if a.Prefix == "" {
			return nil, fmt.Errorf("alias for %q has an empty prefix", a.Path)
		}
		aliases = append(aliases, a)
	}
	sort.SliceStable(aliases, func(i, j int) bool {
		return len(aliases[i].Prefix) > len(aliases[j].Prefix)
	})

	r := &Resolver{
		opts:    opts,
		aliases: aliases,
		stat:    os.Stat,
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("error creating resolution cache: %w", err)
		}
		r.cache = cache
	}

	return r, nil
}

// Canonical returns the cleaned absolute form of path.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// Resolve returns the canonical path of the module that specifier, written
// inside the module at from, refers to.
//
// The lookup order is:
//  1. alias substitution, otherwise relative to from's directory
//  2. the literal path
//  3. the literal path with each extension appended
//  4. index files inside the path when it is a directory
//
// Identical inputs always produce identical results.
func (r *Resolver) Resolve(specifier, from string) (string, error) {
	base, ok := r.basePath(specifier, from)
	if !ok {
		return "", ErrUnresolved
	}

	if r.cache != nil {
		if cached, hit := r.cache.Get(base); hit {
			if cached == "" {
				return "", ErrUnresolved
			}
			return cached, nil
		}
	}

	resolved, err := r.lookup(base)
	if r.cache != nil && (err == nil || errors.Is(err, ErrUnresolved)) {
		// read failures may be transient, so only definite answers are kept
		r.cache.Add(base, resolved)
	}
	return resolved, err
}

// basePath applies alias substitution or relative resolution. It reports
// false for bare specifiers that no alias covers.
func (r *Resolver) basePath(specifier, from string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	for _, a := range r.aliases {
		if strings.HasPrefix(specifier, a.Prefix) {
			target := a.Path + specifier[len(a.Prefix):]
			if !filepath.IsAbs(target) {
				target = filepath.Join(r.opts.BaseDir, target)
			}
			return filepath.Clean(target), true
		}
	}

	if filepath.IsAbs(specifier) {
		return filepath.Clean(specifier), true
	}

	if isRelative(specifier) {
		return filepath.Clean(filepath.Join(filepath.Dir(from), specifier)), true
	}

	return "", false
}

func isRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

func (r *Resolver) lookup(base string) (string, error) {
	found, isDir, err := r.tryFile(base)
	if found || err != nil {
		return r.result(base, err)
	}

	if p, err := r.tryExtensions(base); p != "" || err != nil {
		return r.result(p, err)
	}

	if isDir {
		for _, index := range r.opts.IndexFiles {
			candidate := filepath.Join(base, index)
			ok, _, err := r.tryFile(candidate)
			if ok || err != nil {
				return r.result(candidate, err)
			}
			if p, err := r.tryExtensions(candidate); p != "" || err != nil {
				return r.result(p, err)
			}
		}
	}

	return "", ErrUnresolved
}

func (r *Resolver) result(path string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return Canonical(path)
}

func (r *Resolver) tryExtensions(base string) (string, error) {
	for _, ext := range r.opts.Extensions {
		candidate := base + ext
		ok, _, err := r.tryFile(candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}
	return "", nil
}

// tryFile reports whether path is a regular file, or a directory.
// Missing entries are not an error; anything else is a read failure.
func (r *Resolver) tryFile(path string) (isFile, isDir bool, err error) {
	info, err := r.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("%w: %s: %v", ErrReadFailure, path, err)
	}
	if info.IsDir() {
		return false, true, nil
	}
	return info.Mode().IsRegular(), false, nil
}
