// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF<->DOCX conversion with pluggable backends.
// The repository never parses documents itself: a Converter hands the whole
// file to an external tool and success means the output file exists.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/pkg/types"
)

var (
	// ErrOutputMissing is returned when a converter reports success but the
	// output file does not exist afterwards.
	ErrOutputMissing = errors.New("output file was not created")

	// ErrUnsupported is returned by backends that cannot perform a direction.
	ErrUnsupported = errors.New("conversion not supported by backend")

	// ErrDuplicateOutput is returned for a batch job whose output path was
	// already claimed by an earlier job in the same batch.
	ErrDuplicateOutput = errors.New("output path already used by another input")
)

// Converter transforms the document at inPath into outPath. Different
// backends (local soffice, containerized soffice, Gotenberg) implement this
// interface.
type Converter interface {
	// Convert runs one synchronous conversion over the whole document.
	Convert(ctx context.Context, inPath, outPath string) error
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, inPath, outPath string) error

// Convert calls f.
func (f ConverterFunc) Convert(ctx context.Context, inPath, outPath string) error {
	return f(ctx, inPath, outPath)
}

// Run converts a single job and writes a one-line report to w. The input
// must exist before the converter is invoked and the output must exist
// after it returns. The returned error is nil only on success.
func Run(ctx context.Context, c Converter, job types.Job, w io.Writer) error {
	if err := fileutil.RequireFile(job.Input); err != nil {
		fmt.Fprintf(w, "Error: Input file '%s' not found.\n", job.Input)
		return err
	}

	if err := c.Convert(ctx, job.Input, job.Output); err != nil {
		fmt.Fprintf(w, "Conversion error: %v\n", err)
		return err
	}

	if !fileutil.Exists(job.Output) {
		fmt.Fprintln(w, "Error: Output file was not created.")
		return fmt.Errorf("%s: %w", job.Output, ErrOutputMissing)
	}

	fmt.Fprintf(w, "Successfully converted %s to %s\n", job.Input, job.Output)
	return nil
}

// BatchOptions controls ConvertBatch.
type BatchOptions struct {
	// OutDir receives one output per input, named after the input base.
	OutDir string
	// Parallel bounds concurrent conversions. Values below 1 mean 1.
	Parallel int
	// Force re-converts inputs whose output already exists.
	Force bool
	// OnResult, when set, is called once per job after it finishes. Calls
	// never overlap.
	OnResult func(types.JobResult)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of inputs processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any input failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Jobs builds one job per input, placing outputs in outDir under the name
// op produces.
func Jobs(op types.Operation, inputs []string, outDir string) []types.Job {
	jobs := make([]types.Job, len(inputs))
	for i, in := range inputs {
		j := types.Job{Op: op, Input: in}
		j.Output = filepath.Join(outDir, op.OutputName(j.Base()))
		jobs[i] = j
	}
	return jobs
}

// ConvertJob converts a single batch entry and reports its status line to
// w. Existing outputs are skipped unless force is set.
func ConvertJob(ctx context.Context, c Converter, job types.Job, force bool, w io.Writer) types.JobResult {
	res := types.JobResult{Job: job, Started: time.Now()}
	base := job.Base()

	finish := func(status types.JobStatus, err error) types.JobResult {
		res.Status = status
		res.Err = err
		res.Duration = time.Since(res.Started)
		return res
	}

	if !force && fileutil.Exists(job.Output) {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return finish(types.JobSkipped, nil)
	}

	if err := fileutil.RequireFile(job.Input); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return finish(types.JobFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return finish(types.JobFailed, err)
	}

	if err := c.Convert(ctx, job.Input, job.Output); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return finish(types.JobFailed, err)
	}

	if !fileutil.Exists(job.Output) {
		err := fmt.Errorf("%s: %w", job.Output, ErrOutputMissing)
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return finish(types.JobFailed, err)
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return finish(types.JobConverted, nil)
}

// ConvertBatch processes jobs through the converter, printing per-file
// status to w and returning a summary. Status lines are written whole even
// when jobs run in parallel.
func ConvertBatch(ctx context.Context, c Converter, jobs []types.Job, opts BatchOptions, w io.Writer) BatchResult {
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	out := &lockedWriter{w: w, mu: &mu}

	claimed := duplicateOutputs(jobs)

	g := new(errgroup.Group)
	g.SetLimit(parallel)

	for i, job := range jobs {
		g.Go(func() error {
			var res types.JobResult
			if first, dup := claimed[i]; dup {
				res = duplicateResult(job, first, out)
			} else {
				res = ConvertJob(ctx, c, job, opts.Force, out)
			}

			mu.Lock()
			switch res.Status {
			case types.JobConverted:
				result.Converted++
			case types.JobSkipped:
				result.Skipped++
			case types.JobFailed:
				result.Failed++
			}
			if opts.OnResult != nil {
				opts.OnResult(res)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// duplicateOutputs maps the index of every job whose output path repeats
// an earlier job's to that earlier job. The first job keeps the path.
func duplicateOutputs(jobs []types.Job) map[int]types.Job {
	seen := make(map[string]int, len(jobs))
	dups := map[int]types.Job{}
	for i, job := range jobs {
		key := filepath.Clean(job.Output)
		if first, ok := seen[key]; ok {
			dups[i] = jobs[first]
			continue
		}
		seen[key] = i
	}
	return dups
}

func duplicateResult(job, first types.Job, w io.Writer) types.JobResult {
	err := fmt.Errorf("%s: %w (%s)", job.Output, ErrDuplicateOutput, first.Input)
	fmt.Fprintf(w, "failed:  %s (%v)\n", job.Base(), err)
	return types.JobResult{Job: job, Status: types.JobFailed, Err: err, Started: time.Now()}
}

// lockedWriter serializes writes from concurrent jobs.
type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
