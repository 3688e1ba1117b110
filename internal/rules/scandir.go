package rules

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"retrace/internal/source"
)

// FileReport holds the findings for one scanned file.
type FileReport struct {
	Path   string
	Issues []Issue
	Err    error
}

// ListScriptFiles returns a sorted list of *.js and *.mjs files under dir.
func ListScriptFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".js", ".mjs":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ScanFiles scans the given files in parallel. Results keep the order of
// paths; a file that cannot be read gets its error recorded in Err instead
// of failing the whole batch.
func (s *Scanner) ScanFiles(ctx context.Context, paths []string, jobs int) ([]FileReport, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Index i is unique per goroutine, so no mutex is needed.
	results := make([]FileReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			snip, err := source.Load(path)
			if err != nil {
				results[i] = FileReport{Path: path, Err: err}
				return nil
			}
			results[i] = FileReport{Path: path, Issues: s.Scan(snip)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
