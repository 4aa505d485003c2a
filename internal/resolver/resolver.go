// Package resolver finds the executable behind a pipeline stage's program.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/sbin/internal/cachemanager"
	"github.com/zjrosen/sbin/internal/log"
)

var (
	// ErrNotExecutable means the file exists but has no execute permission.
	ErrNotExecutable = errors.New("permission denied")
	// ErrIsDirectory means the program path names a directory.
	ErrIsDirectory = errors.New("is a directory")
)

// NotExecutableError reports a program that cannot be run. Err is one of
// exec.ErrNotFound, fs.ErrNotExist, ErrNotExecutable or ErrIsDirectory, or
// an underlying stat error.
type NotExecutableError struct {
	Program string
	Path    string
	Err     error
}

func (e *NotExecutableError) Error() string {
	if e.Path != "" && e.Path != e.Program {
		return fmt.Sprintf("%s (%s): %v", e.Program, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Program, e.Err)
}

func (e *NotExecutableError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the program does not exist at all, as opposed to
// existing without being runnable.
func (e *NotExecutableError) NotFound() bool {
	return errors.Is(e.Err, exec.ErrNotFound) || errors.Is(e.Err, fs.ErrNotExist)
}

type resolution struct {
	path string
	err  error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL sets how long a lookup result is reused. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

// WithLookPath replaces exec.LookPath for bare program names.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Resolver) {
		r.lookPath = fn
	}
}

// Resolver maps program names to executable paths. Programs containing a
// path separator resolve against the work dir, bare names search PATH.
// Both successful and failed lookups are cached. It is safe for
// concurrent use.
type Resolver struct {
	workDir  string
	ttl      time.Duration
	lookPath func(string) (string, error)
	cache    *cachemanager.ReadThroughCache[string, resolution, string]
}

// New creates a Resolver for programs run from workDir. An empty workDir
// means the current directory.
func New(workDir string, opts ...Option) *Resolver {
	r := &Resolver{
		workDir:  workDir,
		ttl:      cachemanager.DefaultExpiration,
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	store := cachemanager.NewInMemoryCacheManager[string, resolution]("resolver", r.ttl, cachemanager.DefaultCleanupInterval)
	r.cache = cachemanager.NewReadThroughCache[string, resolution, string](store, r.load, r.ttl <= 0)
	return r
}

// Resolve returns the path that running program would execute. A failure
// is a *NotExecutableError.
func (r *Resolver) Resolve(ctx context.Context, program string) (string, error) {
	res, err := r.cache.Get(ctx, program, program, r.ttl)
	if err != nil {
		return "", err
	}
	return res.path, res.err
}

// Flush forgets every cached lookup.
func (r *Resolver) Flush(ctx context.Context) {
	r.cache.Invalidate(ctx)
}

// load never fails itself so that misses are cached too.
func (r *Resolver) load(_ context.Context, program string) (resolution, error) {
	var res resolution
	if strings.ContainsRune(program, filepath.Separator) || strings.ContainsRune(program, '/') {
		res.path, res.err = r.resolvePath(program)
	} else {
		path, err := r.lookPath(program)
		if err != nil {
			res.err = &NotExecutableError{Program: program, Err: exec.ErrNotFound}
		}
		res.path = path
	}
	if res.err != nil {
		log.Debug(log.CatResolver, "Program not runnable", "program", program, "error", res.err)
	} else {
		log.Debug(log.CatResolver, "Program resolved", "program", program, "path", res.path)
	}
	return res, nil
}

func (r *Resolver) resolvePath(program string) (string, error) {
	path := program
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.workDir, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fs.ErrNotExist
		}
		return "", &NotExecutableError{Program: program, Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &NotExecutableError{Program: program, Path: path, Err: ErrIsDirectory}
	}
	if info.Mode().Perm()&0o111 == 0 {
		return "", &NotExecutableError{Program: program, Path: path, Err: ErrNotExecutable}
	}
	return path, nil
}
