package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kastheco/orchestra/log"
	"github.com/sourcegraph/conc/pool"
)

// tempSeq keeps temp names unique between fan-outs started in the same
// nanosecond.
var tempSeq atomic.Uint64

// TempPath names the output file of worker index of one fan-out.
func TempPath(dir, label string, seq uint64, index int) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, fmt.Sprintf("orchestra_%s_%d_%d_%d_%d.yaml",
		label, os.Getpid(), seq, index, time.Now().UnixNano()))
}

// FanOut describes N independent workers that each write one file.
type FanOut[T any] struct {
	// Label goes into every temp file name.
	Label string
	// Dir holds the temp files; empty means os.TempDir().
	Dir string
	// Limit caps concurrent workers; zero runs all N at once.
	Limit int
	// Work produces the file at outPath for worker index.
	Work func(ctx context.Context, index int, outPath string) error
	// Decode turns the file of worker index into a result.
	Decode func(index int, data []byte) (T, error)
}

type indexed[T any] struct {
	index int
	value T
}

// Run starts n workers and joins them all. Results come back in index
// order. Unless every worker succeeded, and left a decodable file, the
// result is a single aggregate error and no partial results. Every temp
// path is removed exactly once on either path.
func (f FanOut[T]) Run(ctx context.Context, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}

	seq := tempSeq.Add(1)
	paths := make([]string, n)
	for i := range paths {
		paths[i] = TempPath(f.Dir, f.Label, seq, i)
	}
	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			for _, p := range paths {
				if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
					log.WarningLog.Printf("failed to remove fan-out file %s: %v", p, err)
				}
			}
		})
	}
	defer cleanup()

	p := pool.NewWithResults[int]().WithContext(ctx)
	if f.Limit > 0 {
		p = p.WithMaxGoroutines(f.Limit)
	}
	for i := 0; i < n; i++ {
		index := i
		p.Go(func(ctx context.Context) (int, error) {
			if err := f.Work(ctx, index, paths[index]); err != nil {
				return 0, fmt.Errorf("worker %d: %w", index, err)
			}
			return index, nil
		})
	}
	done, err := p.Wait()

	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	results := make([]indexed[T], 0, len(done))
	for _, index := range done {
		data, readErr := os.ReadFile(paths[index])
		if readErr != nil {
			errs = append(errs, fmt.Errorf("worker %d: output missing: %w", index, readErr))
			continue
		}
		v, decodeErr := f.Decode(index, data)
		if decodeErr != nil {
			errs = append(errs, fmt.Errorf("worker %d: %w", index, decodeErr))
			continue
		}
		results = append(results, indexed[T]{index: index, value: v})
	}
	cleanup()

	if len(results) != n {
		return nil, fmt.Errorf("%d of %d workers failed: %w", n-len(results), n, errors.Join(errs...))
	}
	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })
	out := make([]T, n)
	for i, r := range results {
		out[i] = r.value
	}
	return out, nil
}
