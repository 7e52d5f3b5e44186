// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/pkg/types"
)

// fakeConverter implements Converter for testing. It writes canned output,
// returns an error, or does nothing, depending on configuration.
type fakeConverter struct {
	output   string
	err      error
	noOutput bool
	calls    int32
}

func (f *fakeConverter) Convert(_ context.Context, _, outPath string) error {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return f.err
	}
	if f.noOutput {
		return nil
	}
	return os.WriteFile(outPath, []byte(f.output), 0o644)
}

// setupInput creates a temporary input file and returns its path and the temp dir.
func setupInput(t *testing.T, name string) (inPath, tmpDir string) {
	t.Helper()
	tmpDir = t.TempDir()
	inPath = filepath.Join(tmpDir, name)
	require.NoError(t, os.WriteFile(inPath, []byte("input"), 0o644))
	return inPath, tmpDir
}

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		converter *fakeConverter
		missing   bool
		wantOK    bool
		wantErr   error
		wantCalls int32
		wantLog   string
	}{
		{
			name:      "successful conversion",
			converter: &fakeConverter{output: "PK docx"},
			wantOK:    true,
			wantCalls: 1,
			wantLog:   "Successfully converted",
		},
		{
			name:      "missing input never calls converter",
			converter: &fakeConverter{output: "PK docx"},
			missing:   true,
			wantErr:   fileutil.ErrNotFound,
			wantLog:   "not found",
		},
		{
			name:      "converter error",
			converter: &fakeConverter{err: errors.New("soffice crashed")},
			wantCalls: 1,
			wantLog:   "Conversion error: soffice crashed",
		},
		{
			name:      "output not created",
			converter: &fakeConverter{noOutput: true},
			wantErr:   ErrOutputMissing,
			wantCalls: 1,
			wantLog:   "Error: Output file was not created.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inPath, tmpDir := setupInput(t, "report.pdf")
			if tt.missing {
				inPath = filepath.Join(tmpDir, "missing.pdf")
			}
			job := types.Job{Op: types.OpPDFToDOCX, Input: inPath, Output: filepath.Join(tmpDir, "report.docx")}

			var log bytes.Buffer
			err := Run(context.Background(), tt.converter, job, &log)

			assert.Contains(t, log.String(), tt.wantLog)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&tt.converter.calls))
			if tt.wantOK {
				require.NoError(t, err)
				assert.FileExists(t, job.Output)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestJobs(t *testing.T) {
	jobs := Jobs(types.OpDOCXToPDF, []string{"in/a.docx", "b.v2.docx"}, "out")
	require.Len(t, jobs, 2)
	assert.Equal(t, filepath.Join("out", "a.pdf"), jobs[0].Output)
	assert.Equal(t, filepath.Join("out", "b.v2.pdf"), jobs[1].Output)
	assert.Equal(t, types.OpDOCXToPDF, jobs[1].Op)
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	inDir := filepath.Join(tmpDir, "in")
	outDir := filepath.Join(tmpDir, "out")
	require.NoError(t, os.MkdirAll(inDir, 0o755))
	require.NoError(t, os.MkdirAll(outDir, 0o755))

	// a converts, b already has output, c is missing.
	var inputs []string
	for _, name := range []string{"a.docx", "b.docx"} {
		p := filepath.Join(inDir, name)
		require.NoError(t, os.WriteFile(p, []byte("docx"), 0o644))
		inputs = append(inputs, p)
	}
	inputs = append(inputs, filepath.Join(inDir, "c.docx"))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "b.pdf"), []byte("existing"), 0o644))

	var results []types.JobResult
	var log bytes.Buffer
	conv := &fakeConverter{output: "%PDF"}
	res := ConvertBatch(context.Background(), conv, Jobs(types.OpDOCXToPDF, inputs, outDir), BatchOptions{
		OutDir:   outDir,
		OnResult: func(r types.JobResult) { results = append(results, r) },
	}, &log)

	assert.Equal(t, BatchResult{Converted: 1, Skipped: 1, Failed: 1}, res)
	assert.True(t, res.HasFailures())
	assert.Equal(t, 3, res.Total())
	assert.Len(t, results, 3)
	assert.Equal(t, int32(1), conv.calls)

	out := log.String()
	for _, want := range []string{"converted: a", "skipped: b (already exists)", "failed:  c", "Batch summary: 1 converted, 1 skipped, 1 failed (total: 3)"} {
		assert.Contains(t, out, want)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data), "skipped output must not be overwritten")
}

func TestConvertBatch_ForceAndParallel(t *testing.T) {
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "out")

	var inputs []string
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf"} {
		p := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(p, []byte("pdf"), 0o644))
		inputs = append(inputs, p)
	}
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a.docx"), []byte("old"), 0o644))

	conv := &fakeConverter{output: "new"}
	var log bytes.Buffer
	res := ConvertBatch(context.Background(), conv, Jobs(types.OpPDFToDOCX, inputs, outDir), BatchOptions{
		OutDir:   outDir,
		Parallel: 3,
		Force:    true,
	}, &log)

	assert.Equal(t, BatchResult{Converted: 5}, res)
	assert.False(t, res.HasFailures())
	assert.Equal(t, 5, strings.Count(log.String(), "converted: "))

	data, err := os.ReadFile(filepath.Join(outDir, "a.docx"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestConvertBatch_SameBaseName(t *testing.T) {
	tests := []struct {
		name     string
		parallel int
	}{
		{name: "sequential", parallel: 1},
		{name: "parallel", parallel: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			outDir := filepath.Join(tmpDir, "out")

			var inputs []string
			for _, sub := range []string{"a", "b"} {
				p := filepath.Join(tmpDir, sub, "x.docx")
				require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
				require.NoError(t, os.WriteFile(p, []byte(sub), 0o644))
				inputs = append(inputs, p)
			}

			var results []types.JobResult
			var log bytes.Buffer
			conv := &fakeConverter{output: "%PDF"}
			res := ConvertBatch(context.Background(), conv, Jobs(types.OpDOCXToPDF, inputs, outDir), BatchOptions{
				OutDir:   outDir,
				Parallel: tt.parallel,
				OnResult: func(r types.JobResult) { results = append(results, r) },
			}, &log)

			assert.Equal(t, BatchResult{Converted: 1, Failed: 1}, res)
			assert.Equal(t, int32(1), conv.calls)
			require.Len(t, results, 2)

			var failed types.JobResult
			for _, r := range results {
				if r.Status == types.JobFailed {
					failed = r
				}
			}
			assert.Equal(t, inputs[1], failed.Job.Input, "the first input keeps the output path")
			assert.ErrorIs(t, failed.Err, ErrDuplicateOutput)
			assert.Contains(t, log.String(), "failed:  x (")
			assert.Contains(t, log.String(), inputs[0])
		})
	}
}

func TestJobs_Unlock(t *testing.T) {
	jobs := Jobs(types.OpUnlock, []string{"scans/statement.pdf"}, "scans")
	require.Len(t, jobs, 1)
	assert.Equal(t, filepath.Join("scans", "statement_unlocked.pdf"), jobs[0].Output)
	assert.NotEqual(t, jobs[0].Input, jobs[0].Output)
}
